// Command deezerwidget runs the MCP server that exposes the content widget and
// the Deezer search tool.
package main

// file: cmd/deezerwidget/main.go

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Set via ldflags during build.
var (
	Version    = "0.1.0-dev"
	commitHash = "unknown"
	buildDate  = "unknown"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "deezerwidget",
		Short:         "MCP server with a content widget and Deezer track search",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("config", "", "path to a YAML configuration file")
	root.PersistentFlags().Bool("debug", false, "enable debug logging")

	root.AddCommand(newServeCmd(), newSearchCmd(), newCheckCmd(), newVersionCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %+v\n", err)
		os.Exit(1)
	}
}
