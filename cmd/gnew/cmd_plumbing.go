package main

import (
	"fmt"
	"os"

	"github.com/gnewscm/gnew/pkg/object"
	"github.com/gnewscm/gnew/pkg/repo"
	"github.com/spf13/cobra"
)

func newHashFileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-file <path>",
		Short: "Write a blob object from a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], repo.ErrFileNotFound)
			}
			h, err := r.Store.WriteBlob(&object.Blob{Data: data})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), h)
			return nil
		},
	}
}

func newWriteTreeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "write-tree",
		Short: "Write a tree object from the working directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}
			h, err := r.WriteTree()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), h)
			return nil
		},
	}
}
