package main

import (
	"github.com/gnewscm/gnew/pkg/repo"
	"github.com/spf13/cobra"
)

func newPullCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "pull <repository>",
		Short: "Pull changes from another repository",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}
			return r.Pull(args[0], all)
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "pull every branch, not just the current one")

	return cmd
}
