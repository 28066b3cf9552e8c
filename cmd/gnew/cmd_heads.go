package main

import (
	"fmt"

	"github.com/gnewscm/gnew/pkg/repo"
	"github.com/spf13/cobra"
)

func newHeadsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "heads",
		Short: "List the branch heads",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}
			heads, err := r.Heads()
			if err != nil {
				return err
			}
			names, err := r.BranchNames()
			if err != nil {
				return err
			}
			current, err := r.CurrentBranch()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, name := range names {
				marker := " "
				if name == current {
					marker = "*"
				}
				fmt.Fprintf(out, "%s %s %s\n", marker, name, heads[name])
			}
			return nil
		},
	}
}
