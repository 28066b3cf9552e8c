package main

import (
	"fmt"

	"github.com/gnewscm/gnew/pkg/repo"
	"github.com/spf13/cobra"
)

func newCheckoutCmd() *cobra.Command {
	var createBranch bool
	var force bool

	cmd := &cobra.Command{
		Use:   "checkout <branch-or-commit>",
		Short: "Update the working directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := args[0]

			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			if createBranch {
				if err := r.CreateBranch(target); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Switched to new branch '%s'\n", target)
				return nil
			}

			if err := r.Checkout(target, force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Switched to '%s'\n", target)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&createBranch, "branch", "b", false, "create and switch to a new branch")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip the untracked-file safety check")

	return cmd
}
