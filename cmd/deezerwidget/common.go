package main

// file: cmd/deezerwidget/common.go

import (
	"github.com/cockroachdb/errors"
	"github.com/dkoosis/deezerwidget/internal/config"
	"github.com/dkoosis/deezerwidget/internal/logging"
	"github.com/spf13/cobra"
)

// loadConfig reads --config (or the defaults) and sets up logging on stderr.
// --debug wins over the configured level.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	debug, _ := cmd.Flags().GetBool("debug")

	cfg, err := config.Load(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load configuration")
	}
	if debug {
		cfg.Logging.Level = string(logging.LevelDebug)
	}
	logging.SetupDefaultLogger(cfg.Logging.Level)
	return cfg, nil
}
