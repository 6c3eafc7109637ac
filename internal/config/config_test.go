package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, ProviderTradier, cfg.Provider.Name)
	assert.Equal(t, "AAPL", cfg.Provider.DefaultTicker)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Refresh.Enabled)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CHAINPULSE_SERVER_PORT", "9090")
	t.Setenv("CHAINPULSE_PROVIDER_NAME", "static")
	t.Setenv("CHAINPULSE_PROVIDER_DEFAULT_TICKER", "SPY")
	t.Setenv("CHAINPULSE_LOGGING_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, ProviderStatic, cfg.Provider.Name)
	assert.Equal(t, "SPY", cfg.Provider.DefaultTicker)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_YAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := []byte(`
server:
  port: 9191
provider:
  name: static
  default_ticker: MSFT
refresh:
  enabled: true
  schedule: "@every 1m"
  watchlist:
    - MSFT
    - AAPL
`)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	t.Setenv("CHAINPULSE_CONFIG", path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9191, cfg.Server.Port)
	assert.Equal(t, "MSFT", cfg.Provider.DefaultTicker)
	assert.True(t, cfg.Refresh.Enabled)
	assert.Equal(t, []string{"MSFT", "AAPL"}, cfg.Refresh.Watchlist)
	// File values must not clobber untouched defaults.
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid default",
			mutate: func(c *Config) {},
		},
		{
			name:    "bad port",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: "invalid server port",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: "invalid log level",
		},
		{
			name:    "unknown provider",
			mutate:  func(c *Config) { c.Provider.Name = "bloomberg" },
			wantErr: "unknown provider",
		},
		{
			name:    "empty default ticker",
			mutate:  func(c *Config) { c.Provider.DefaultTicker = "" },
			wantErr: "default_ticker",
		},
		{
			name: "refresh enabled without watchlist",
			mutate: func(c *Config) {
				c.Refresh.Enabled = true
				c.Refresh.Watchlist = nil
			},
			wantErr: "watchlist",
		},
		{
			name: "missing base url",
			mutate: func(c *Config) {
				c.Provider.Name = ProviderTradier
				c.Provider.BaseURL = ""
			},
			wantErr: "base_url",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
