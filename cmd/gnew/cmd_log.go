package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gnewscm/gnew/pkg/repo"
	"github.com/spf13/cobra"
)

func newLogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "log [amount]",
		Short: "Show the commit log",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			limit := 0
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n < 0 {
					return fmt.Errorf("invalid log amount %q", args[0])
				}
				limit = n
			}

			r, err := repo.Open(".")
			if err != nil {
				return err
			}
			entries, err := r.Log(limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, e := range entries {
				fmt.Fprintf(out, "commit %s\n", e.Hash)
				fmt.Fprintf(out, "Author: %s\n", e.Commit.Author)
				fmt.Fprintf(out, "Date:   %s\n", time.Unix(e.Commit.Timestamp, 0).UTC().Format("2006-01-02 15:04:05"))
				fmt.Fprintln(out)
				fmt.Fprintf(out, "    %s\n", e.Commit.Message)
				fmt.Fprintln(out)
			}
			return nil
		},
	}
}
