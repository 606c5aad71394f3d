package main

// file: cmd/deezerwidget/check.go

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/dkoosis/deezerwidget/internal/app"
	"github.com/spf13/cobra"
)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate configuration and list the registered capabilities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			a, err := app.New(cfg, Version)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Configuration OK (transport=%s, widget=%s%s, deezer=%s)\n",
				cfg.Server.Transport, cfg.Widget.BaseURL, cfg.Widget.Path, cfg.Deezer.APIURL)

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "KIND\tID\tTITLE")
			for _, r := range a.Registry.Resources() {
				fmt.Fprintf(tw, "resource\t%s\t%s\n", r.URI, r.Title)
			}
			for _, t := range a.Registry.Tools() {
				fmt.Fprintf(tw, "tool\t%s\t%s\n", t.Name, t.Title)
			}
			fmt.Fprintf(tw, "methods\t%s\t\n", strings.Join(a.Dispatcher.Methods(), ", "))
			return tw.Flush()
		},
	}
}
