package main

import (
	"github.com/gnewscm/gnew/pkg/diff"
	"github.com/gnewscm/gnew/pkg/repo"
	"github.com/spf13/cobra"
)

func newDiffCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "diff [commit] [commit]",
		Short: "Show changes between commits or the working tree",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			var pairs []diff.FilePair
			switch len(args) {
			case 0:
				head, err := r.HeadHash()
				if err != nil {
					return err
				}
				if head == "" {
					return nil
				}
				pairs, err = r.DiffWorktree(head)
				if err != nil {
					return err
				}
			case 1:
				c1, err := r.ResolveRev(args[0])
				if err != nil {
					return err
				}
				pairs, err = r.DiffWorktree(c1)
				if err != nil {
					return err
				}
			case 2:
				c1, err := r.ResolveRev(args[0])
				if err != nil {
					return err
				}
				c2, err := r.ResolveRev(args[1])
				if err != nil {
					return err
				}
				pairs, err = r.DiffCommits(c1, c2)
				if err != nil {
					return err
				}
			}

			diff.FormatAll(cmd.OutOrStdout(), pairs)
			return nil
		},
	}
}
