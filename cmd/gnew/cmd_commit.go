package main

import (
	"fmt"

	"github.com/gnewscm/gnew/pkg/config"
	"github.com/gnewscm/gnew/pkg/repo"
	"github.com/spf13/cobra"
)

func newCommitCmd() *cobra.Command {
	var author string

	cmd := &cobra.Command{
		Use:   "commit <message>",
		Short: "Commit changes to the repository",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			if author == "" {
				cfg, err := config.Load(r.GnewDir)
				if err != nil {
					return err
				}
				author = cfg.Author()
			}

			h, err := r.Commit(args[0], author)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), h)
			return nil
		},
	}

	cmd.Flags().StringVar(&author, "author", "", "override author (default: config, then $USER)")

	return cmd
}
