package main

import (
	"github.com/gnewscm/gnew/pkg/repo"
	"github.com/spf13/cobra"
)

func newPushCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "push <repository>",
		Short: "Push changes to another repository",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}
			return r.Push(args[0], all)
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "push every branch, not just the current one")

	return cmd
}
