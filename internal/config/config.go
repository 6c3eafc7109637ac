package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config is the complete application configuration. Values are resolved in
// three layers: built-in defaults, then the optional YAML file, then
// CHAINPULSE_* environment variables.
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Provider  ProviderConfig  `yaml:"provider" envconfig:"PROVIDER"`
	Refresh   RefreshConfig   `yaml:"refresh" envconfig:"REFRESH"`
	Security  SecurityConfig  `yaml:"security" envconfig:"SECURITY"`
	WebSocket WebSocketConfig `yaml:"websocket" envconfig:"WEBSOCKET"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL"`
	Format      string `yaml:"format" envconfig:"FORMAT"`
	Output      string `yaml:"output" envconfig:"OUTPUT"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT"`
}

// ProviderConfig selects and configures the market-data provider. Name and
// DefaultTicker are the two recognized pipeline options; the rest is
// transport tuning for the HTTP provider.
type ProviderConfig struct {
	Name           string        `yaml:"name" envconfig:"NAME"`
	DefaultTicker  string        `yaml:"default_ticker" envconfig:"DEFAULT_TICKER"`
	BaseURL        string        `yaml:"base_url" envconfig:"BASE_URL"`
	APIKey         string        `yaml:"api_key" envconfig:"API_KEY"`
	Timeout        time.Duration `yaml:"timeout" envconfig:"TIMEOUT"`
	RateLimit      float64       `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
	RateBurst      int           `yaml:"rate_burst" envconfig:"RATE_BURST"`
	MaxConcurrency int           `yaml:"max_concurrency" envconfig:"MAX_CONCURRENCY"`
	FixturesDir    string        `yaml:"fixtures_dir" envconfig:"FIXTURES_DIR"`
}

// RefreshConfig drives the scheduled watchlist refresher.
type RefreshConfig struct {
	Enabled   bool     `yaml:"enabled" envconfig:"ENABLED"`
	Schedule  string   `yaml:"schedule" envconfig:"SCHEDULE"`
	Watchlist []string `yaml:"watchlist" envconfig:"WATCHLIST"`
}

// SecurityConfig contains CORS and inbound rate limiting.
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains inbound rate limiting configuration.
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS"`
	Burst   int     `yaml:"burst" envconfig:"BURST"`
}

// WebSocketConfig contains push-channel tuning.
type WebSocketConfig struct {
	ReadBufferSize  int           `yaml:"read_buffer_size" envconfig:"READ_BUFFER_SIZE"`
	WriteBufferSize int           `yaml:"write_buffer_size" envconfig:"WRITE_BUFFER_SIZE"`
	PingPeriod      time.Duration `yaml:"ping_period" envconfig:"PING_PERIOD"`
	PongWait        time.Duration `yaml:"pong_wait" envconfig:"PONG_WAIT"`
}

// ProviderTradier and ProviderStatic are the recognized provider names.
const (
	ProviderTradier = "tradier"
	ProviderStatic  = "static"
)

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:       "info",
			Format:      "json",
			Output:      "stdout",
			FilePath:    "logs/chainpulse.log",
			Development: false,
		},
		Provider: ProviderConfig{
			Name:           ProviderTradier,
			DefaultTicker:  "AAPL",
			BaseURL:        "https://api.tradier.com",
			Timeout:        10 * time.Second,
			RateLimit:      2,
			RateBurst:      4,
			MaxConcurrency: 4,
			FixturesDir:    "fixtures",
		},
		Refresh: RefreshConfig{
			Enabled:  false,
			Schedule: "@every 5m",
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     100,
				Burst:   50,
			},
		},
		WebSocket: WebSocketConfig{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			PingPeriod:      30 * time.Second,
			PongWait:        60 * time.Second,
		},
	}
}

// Load resolves configuration: defaults, optional YAML file (path from
// CHAINPULSE_CONFIG, falling back to config.yaml in the working directory),
// then environment variables with the CHAINPULSE prefix.
func Load() (*Config, error) {
	cfg := Default()

	if path := configFilePath(); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := envconfig.Process("CHAINPULSE", &cfg); err != nil {
		return nil, fmt.Errorf("load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func configFilePath() string {
	if path := os.Getenv("CHAINPULSE_CONFIG"); path != "" {
		return path
	}
	if _, err := os.Stat("config.yaml"); err == nil {
		return "config.yaml"
	}
	return ""
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate checks the configuration for values the application cannot run
// with.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	switch c.Provider.Name {
	case ProviderTradier, ProviderStatic:
	default:
		return fmt.Errorf("unknown provider: %s", c.Provider.Name)
	}
	if c.Provider.Name == ProviderTradier && c.Provider.BaseURL == "" {
		return fmt.Errorf("provider base_url is required for %s", ProviderTradier)
	}
	if c.Provider.DefaultTicker == "" {
		return fmt.Errorf("provider default_ticker must not be empty")
	}
	if c.Provider.MaxConcurrency < 1 {
		return fmt.Errorf("provider max_concurrency must be at least 1")
	}

	if c.Refresh.Enabled {
		if c.Refresh.Schedule == "" {
			return fmt.Errorf("refresh schedule must not be empty when refresh is enabled")
		}
		if len(c.Refresh.Watchlist) == 0 {
			return fmt.Errorf("refresh watchlist must not be empty when refresh is enabled")
		}
	}

	if c.Security.RateLimit.Enabled && c.Security.RateLimit.RPS <= 0 {
		return fmt.Errorf("rate limit rps must be positive")
	}
	return nil
}
