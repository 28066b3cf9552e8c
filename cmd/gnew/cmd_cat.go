package main

import (
	"fmt"
	"path/filepath"

	"github.com/gnewscm/gnew/pkg/object"
	"github.com/gnewscm/gnew/pkg/repo"
	"github.com/spf13/cobra"
)

func newCatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cat <commit> <path>",
		Short: "Output a file at a commit",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}
			c, err := r.ResolveRev(args[0])
			if err != nil {
				return err
			}
			path := filepath.ToSlash(filepath.Clean(args[1]))
			blobHash, err := r.TreeFileAt(c, path)
			if err != nil {
				return err
			}
			blob, err := r.Store.ReadBlob(blobHash)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(blob.Data)
			return err
		},
	}
}

func newCatObjectCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "cat-object <kind> <hash>",
		Short:     "Show the content of an object",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"blob", "tree", "commit"},
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}
			h := object.Hash(args[1])
			out := cmd.OutOrStdout()

			switch args[0] {
			case "blob":
				blob, err := r.Store.ReadBlob(h)
				if err != nil {
					return err
				}
				_, err = out.Write(blob.Data)
				return err
			case "tree":
				tree, err := r.Store.ReadTree(h)
				if err != nil {
					return err
				}
				for _, e := range tree.Entries {
					fmt.Fprintf(out, "%s %s %s\n", e.Mode, e.Name, e.Hash)
				}
				return nil
			case "commit":
				c, err := r.Store.ReadCommit(h)
				if err != nil {
					return err
				}
				payload, err := object.MarshalCommit(c)
				if err != nil {
					return err
				}
				_, err = out.Write(payload)
				return err
			default:
				return fmt.Errorf("invalid object kind %q", args[0])
			}
		},
	}
}
