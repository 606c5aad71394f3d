// internal/config/config_test.go

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable the loader reads so host settings don't leak into tests.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"DEEZERWIDGET_BASE_URL", "DEEZERWIDGET_TRANSPORT", "DEEZERWIDGET_ADDRESS",
		"DEEZERWIDGET_LOG_LEVEL", "DEEZER_API_URL", "VERCEL_ENV",
		"VERCEL_PROJECT_PRODUCTION_URL", "VERCEL_BRANCH_URL", "VERCEL_URL",
	} {
		t.Setenv(k, "")
	}
}

func TestDefaultConfig(t *testing.T) {
	clearEnv(t)
	cfg := DefaultConfig()

	assert.Equal(t, TransportStdio, cfg.Server.Transport)
	assert.Equal(t, "http://localhost:3000", cfg.Widget.BaseURL)
	assert.Equal(t, "/", cfg.Widget.Path)
	assert.Equal(t, "https://nextjs.org/docs", cfg.Widget.Domain)
	assert.Equal(t, "https://api.deezer.com", cfg.Deezer.APIURL)
	assert.Equal(t, 100, cfg.Deezer.Limit)
	assert.Equal(t, 10*time.Second, cfg.Deezer.Timeout)
	assert.Equal(t, 10*time.Second, cfg.Widget.FetchTimeout)
	require.NoError(t, cfg.Validate())
}

func TestLoadFromFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  name: "Test Server"
  transport: http
  address: "127.0.0.1:9000"
  request_timeout: 5s
widget:
  base_url: "https://widget.example.com/"
deezer:
  limit: 25
  timeout: 3s
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "Test Server", cfg.Server.Name)
	assert.Equal(t, TransportHTTP, cfg.Server.Transport)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Address)
	assert.Equal(t, 5*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, "https://widget.example.com", cfg.Widget.BaseURL, "trailing slash is trimmed")
	assert.Equal(t, "/", cfg.Widget.Path, "unset fields keep defaults")
	assert.Equal(t, 25, cfg.Deezer.Limit)
	assert.Equal(t, 3*time.Second, cfg.Deezer.Timeout)
	assert.Equal(t, "debug", cfg.Logging.Level)
	require.NoError(t, cfg.Validate())
}

func TestLoadFromFile_Errors(t *testing.T) {
	clearEnv(t)
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("server: [unclosed"), 0o600))
	_, err = LoadFromFile(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file YAML")
}

func TestEnvironmentOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DEEZERWIDGET_TRANSPORT", "http")
	t.Setenv("DEEZERWIDGET_ADDRESS", ":8081")
	t.Setenv("DEEZERWIDGET_LOG_LEVEL", "warn")
	t.Setenv("DEEZER_API_URL", "http://127.0.0.1:1234")
	t.Setenv("DEEZERWIDGET_BASE_URL", "https://override.example.com")

	cfg := DefaultConfig()
	assert.Equal(t, TransportHTTP, cfg.Server.Transport)
	assert.Equal(t, ":8081", cfg.Server.Address)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "http://127.0.0.1:1234", cfg.Deezer.APIURL)
	assert.Equal(t, "https://override.example.com", cfg.Widget.BaseURL)
}

func TestHostedBaseURLResolution(t *testing.T) {
	t.Run("production url", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("VERCEL_ENV", "production")
		t.Setenv("VERCEL_PROJECT_PRODUCTION_URL", "app.example.com")
		t.Setenv("VERCEL_URL", "preview.example.com")
		assert.Equal(t, "https://app.example.com", DefaultConfig().Widget.BaseURL)
	})
	t.Run("preview deployment", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("VERCEL_URL", "preview.example.com")
		assert.Equal(t, "https://preview.example.com", DefaultConfig().Widget.BaseURL)
	})
	t.Run("branch url wins over deployment url", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("VERCEL_BRANCH_URL", "branch.example.com")
		t.Setenv("VERCEL_URL", "preview.example.com")
		assert.Equal(t, "https://branch.example.com", DefaultConfig().Widget.BaseURL)
	})
}

func TestValidate(t *testing.T) {
	clearEnv(t)
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"unknown transport", func(c *Config) { c.Server.Transport = "grpc" }, "unknown transport"},
		{"bad base url", func(c *Config) { c.Widget.BaseURL = "ftp://x" }, "widget.base_url"},
		{"relative api url", func(c *Config) { c.Deezer.APIURL = "/search" }, "deezer.api_url"},
		{"zero limit", func(c *Config) { c.Deezer.Limit = 0 }, "deezer.limit"},
		{"negative timeout", func(c *Config) { c.Deezer.Timeout = -time.Second }, "deezer.timeout"},
		{"zero in flight", func(c *Config) { c.Server.MaxInFlight = 0 }, "max_in_flight"},
		{"path without slash", func(c *Config) { c.Widget.Path = "index" }, "widget.path"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
