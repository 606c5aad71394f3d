// Package config handles loading, parsing, and validating application configuration.
// It defines the structure for configuration settings, provides default values,
// loads settings from YAML files, and applies overrides from environment variables.
// file: internal/config/config.go.
package config

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/deezerwidget/internal/logging"
	"gopkg.in/yaml.v3"
)

// Transport names accepted by ServerConfig.Transport.
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// Defaults used by DefaultConfig.
const (
	DefaultServerName      = "deezerwidget"
	DefaultAddress         = ":3000"
	DefaultBaseURL         = "http://localhost:3000"
	DefaultWidgetDomain    = "https://nextjs.org/docs"
	DefaultDeezerAPIURL    = "https://api.deezer.com"
	DefaultSearchLimit     = 100
	DefaultUpstreamTimeout = 10 * time.Second
)

// ServerConfig contains settings specific to the MCP server component.
type ServerConfig struct {
	// Name is reported to clients as serverInfo.name.
	Name string `yaml:"name"`
	// Version is reported to clients as serverInfo.version. Filled from build info when empty.
	Version string `yaml:"version"`
	// Transport selects "stdio" or "http".
	Transport string `yaml:"transport"`
	// Address is the listen address for the HTTP transport. Ignored for stdio.
	Address string `yaml:"address"`
	// RequestTimeout bounds a single HTTP request.
	RequestTimeout time.Duration `yaml:"request_timeout"`
	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	// MaxInFlight limits concurrently handled requests on the stdio transport.
	MaxInFlight int `yaml:"max_in_flight"`
	// MetricsAddress, if set, exposes /metrics on a separate listener when running over stdio.
	MetricsAddress string `yaml:"metrics_address,omitempty"`
}

// WidgetConfig describes where the widget HTML is fetched from and how it is annotated.
type WidgetConfig struct {
	// BaseURL is the site hosting the widget page. Resolved from the hosting environment when empty.
	BaseURL string `yaml:"base_url"`
	// Path is appended to BaseURL to fetch the page.
	Path string `yaml:"path"`
	// Domain is sent to the host as the widget domain hint.
	Domain string `yaml:"domain"`
	// FetchTimeout bounds the page fetch.
	FetchTimeout time.Duration `yaml:"fetch_timeout"`
}

// DeezerConfig contains settings for the upstream search API.
type DeezerConfig struct {
	// APIURL is the API root; "/search" is appended.
	APIURL string `yaml:"api_url"`
	// Limit is the result-count ceiling sent with every search.
	Limit int `yaml:"limit"`
	// Timeout bounds one search call.
	Timeout time.Duration `yaml:"timeout"`
}

// LoggingConfig controls the log level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Config is the root configuration structure.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Widget  WidgetConfig  `yaml:"widget"`
	Deezer  DeezerConfig  `yaml:"deezer"`
	Logging LoggingConfig `yaml:"logging"`
}

// DefaultConfig returns a configuration populated with default values, with
// environment overrides applied on top.
func DefaultConfig() *Config {
	cfg := defaults()
	applyEnvironmentOverrides(cfg, logging.GetLogger("config_default"))
	return cfg
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Name:            DefaultServerName,
			Transport:       TransportStdio,
			Address:         DefaultAddress,
			RequestTimeout:  30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxInFlight:     16,
		},
		Widget: WidgetConfig{
			Path:         "/",
			Domain:       DefaultWidgetDomain,
			FetchTimeout: DefaultUpstreamTimeout,
		},
		Deezer: DeezerConfig{
			APIURL:  DefaultDeezerAPIURL,
			Limit:   DefaultSearchLimit,
			Timeout: DefaultUpstreamTimeout,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// LoadFromFile loads configuration from the specified YAML file path.
// It starts with default values, merges the values from the YAML file,
// and finally applies any environment variable overrides.
// Supports '~' expansion in the file path.
func LoadFromFile(path string) (*Config, error) {
	if len(path) > 0 && path[0] == '~' {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, errors.Wrap(err, "failed to get home directory to expand path")
		}
		path = filepath.Join(homeDir, path[1:])
	}

	// #nosec G304 -- Path comes from a command-line flag.
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read config file: %s", path)
	}

	config := defaults()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, errors.Wrapf(err, "failed to parse config file YAML: %s", path)
	}

	applyEnvironmentOverrides(config, logging.GetLogger("config_load"))
	return config, nil
}

// Load returns the file configuration when path is set and the defaults otherwise.
func Load(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadFromFile(path)
}

// applyEnvironmentOverrides applies configuration overrides from environment variables.
// Environment variables take precedence over values set in configuration files or defaults.
func applyEnvironmentOverrides(config *Config, logger logging.Logger) {
	if v := os.Getenv("DEEZERWIDGET_TRANSPORT"); v != "" {
		logger.Debug("Overriding transport from environment.", "envVar", "DEEZERWIDGET_TRANSPORT", "value", v)
		config.Server.Transport = v
	}
	if v := os.Getenv("DEEZERWIDGET_ADDRESS"); v != "" {
		logger.Debug("Overriding listen address from environment.", "envVar", "DEEZERWIDGET_ADDRESS", "value", v)
		config.Server.Address = v
	}
	if v := os.Getenv("DEEZERWIDGET_LOG_LEVEL"); v != "" {
		logger.Debug("Overriding log level from environment.", "envVar", "DEEZERWIDGET_LOG_LEVEL", "value", v)
		config.Logging.Level = v
	}
	if v := os.Getenv("DEEZER_API_URL"); v != "" {
		logger.Debug("Overriding Deezer API URL from environment.", "envVar", "DEEZER_API_URL", "value", v)
		config.Deezer.APIURL = v
	}

	source := "config file"
	if v := os.Getenv("DEEZERWIDGET_BASE_URL"); v != "" {
		config.Widget.BaseURL = v
		source = "environment variable"
	} else if config.Widget.BaseURL == "" {
		config.Widget.BaseURL, source = resolveHostedBaseURL()
	}
	config.Widget.BaseURL = strings.TrimRight(config.Widget.BaseURL, "/")
	logger.Debug("Widget base URL source determined.", "source", source, "baseURL", config.Widget.BaseURL)
}

// resolveHostedBaseURL derives the public site URL from hosting-platform variables.
func resolveHostedBaseURL() (string, string) {
	if os.Getenv("VERCEL_ENV") == "production" {
		if host := os.Getenv("VERCEL_PROJECT_PRODUCTION_URL"); host != "" {
			return "https://" + host, "VERCEL_PROJECT_PRODUCTION_URL"
		}
	}
	if host := os.Getenv("VERCEL_BRANCH_URL"); host != "" {
		return "https://" + host, "VERCEL_BRANCH_URL"
	}
	if host := os.Getenv("VERCEL_URL"); host != "" {
		return "https://" + host, "VERCEL_URL"
	}
	return DefaultBaseURL, "default"
}

// Validate checks the configuration for values the server cannot run with.
func (c *Config) Validate() error {
	switch c.Server.Transport {
	case TransportStdio, TransportHTTP:
	default:
		return errors.Newf("unknown transport %q (want %q or %q)", c.Server.Transport, TransportStdio, TransportHTTP)
	}
	if c.Server.Transport == TransportHTTP && c.Server.Address == "" {
		return errors.New("server.address is required for the http transport")
	}
	if err := validateHTTPURL("widget.base_url", c.Widget.BaseURL); err != nil {
		return err
	}
	if err := validateHTTPURL("deezer.api_url", c.Deezer.APIURL); err != nil {
		return err
	}
	if !strings.HasPrefix(c.Widget.Path, "/") {
		return errors.Newf("widget.path must start with '/', got %q", c.Widget.Path)
	}
	if c.Deezer.Limit <= 0 {
		return errors.Newf("deezer.limit must be positive, got %d", c.Deezer.Limit)
	}
	if c.Server.MaxInFlight <= 0 {
		return errors.Newf("server.max_in_flight must be positive, got %d", c.Server.MaxInFlight)
	}
	for name, d := range map[string]time.Duration{
		"deezer.timeout":          c.Deezer.Timeout,
		"widget.fetch_timeout":    c.Widget.FetchTimeout,
		"server.request_timeout":  c.Server.RequestTimeout,
		"server.shutdown_timeout": c.Server.ShutdownTimeout,
	} {
		if d <= 0 {
			return errors.Newf("%s must be positive, got %s", name, d)
		}
	}
	return nil
}

func validateHTTPURL(field, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return errors.Wrapf(err, "%s is not a valid URL", field)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.Newf("%s must be an absolute http(s) URL, got %q", field, raw)
	}
	return nil
}
