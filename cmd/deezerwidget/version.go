package main

// file: cmd/deezerwidget/version.go

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "deezerwidget %s (commit %s, built %s, %s)\n",
				Version, commitHash, buildDate, runtime.Version())
		},
	}
}
