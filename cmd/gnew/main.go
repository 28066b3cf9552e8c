package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:           "gnew",
		Short:         "Content-addressed, branch-oriented version control",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newInitCmd())
	root.AddCommand(newCloneCmd())
	root.AddCommand(newAddCmd())
	root.AddCommand(newRmCmd())
	root.AddCommand(newStatusCmd())
	root.AddCommand(newHeadsCmd())
	root.AddCommand(newDiffCmd())
	root.AddCommand(newCatCmd())
	root.AddCommand(newCheckoutCmd())
	root.AddCommand(newCommitCmd())
	root.AddCommand(newLogCmd())
	root.AddCommand(newMergeCmd())
	root.AddCommand(newPullCmd())
	root.AddCommand(newPushCmd())
	root.AddCommand(newHashFileCmd())
	root.AddCommand(newWriteTreeCmd())
	root.AddCommand(newCatObjectCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}
