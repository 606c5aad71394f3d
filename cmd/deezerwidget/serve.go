package main

// file: cmd/deezerwidget/serve.go

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/deezerwidget/internal/app"
	"github.com/dkoosis/deezerwidget/internal/logging"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var transport, address string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server over stdio or HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if transport != "" {
				cfg.Server.Transport = transport
			}
			if address != "" {
				cfg.Server.Address = address
			}

			a, err := app.New(cfg, Version)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger := logging.GetLogger("main")
			logger.Info("Starting deezerwidget server.", "transport", cfg.Server.Transport, "version", a.Info.Version)
			err = a.Run(ctx, os.Stdin, os.Stdout)
			if err != nil && !errors.Is(err, context.Canceled) {
				return errors.Wrap(err, "server failed")
			}
			logger.Info("Server stopped.")
			return nil
		},
	}
	cmd.Flags().StringVar(&transport, "transport", "", "transport to serve on: stdio or http (overrides config)")
	cmd.Flags().StringVar(&address, "address", "", "listen address for the http transport (overrides config)")
	return cmd
}
