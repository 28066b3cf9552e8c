package main

import (
	"fmt"

	"github.com/gnewscm/gnew/pkg/repo"
	"github.com/spf13/cobra"
)

func newMergeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "merge <branch-or-commit>",
		Short: "Merge another commit into the current branch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			result, err := r.Merge(args[0])
			if err != nil {
				return err
			}

			if result.FastForward {
				fmt.Fprintln(cmd.OutOrStdout(), "Fast-forward")
				return nil
			}
			if len(result.Conflicts) > 0 {
				for _, path := range result.Conflicts {
					fmt.Fprintf(cmd.ErrOrStderr(), "Merge conflict in %s\n", path)
				}
				return fmt.Errorf("fix conflicts and commit the result")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Merge complete: remember to commit.")
			return nil
		},
	}
}
