package main

import (
	"github.com/gnewscm/gnew/pkg/repo"
	"github.com/spf13/cobra"
)

func newRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <path>...",
		Aliases: []string{"remove"},
		Short:   "Remove files from the tracking list",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}
			return r.Remove(args)
		},
	}
}
