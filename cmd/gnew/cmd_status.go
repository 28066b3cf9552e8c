package main

import (
	"fmt"

	"github.com/gnewscm/gnew/pkg/repo"
	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the repository status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}
			entries, err := r.Status()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, e := range entries {
				if e.Status == repo.StatusClean {
					continue
				}
				fmt.Fprintf(out, "%c %s\n", e.Status.Code(), e.Path)
			}
			return nil
		},
	}
}
