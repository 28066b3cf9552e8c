package main

import (
	"fmt"

	"github.com/gnewscm/gnew/pkg/repo"
	"github.com/spf13/cobra"
)

func newCloneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clone <repository>",
		Short: "Copy an existing repository",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Clone(args[0], ".")
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cloned %s into %s\n", args[0], r.RootDir)
			return nil
		},
	}
}
