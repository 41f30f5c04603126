package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Host      HostConfig
	Terminal  TerminalConfig
	Reconnect ReconnectConfig
	Logging   LogConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8090"`
	Host string `envconfig:"HOST" default:"0.0.0.0"`
}

// HostConfig selects the process host backing the sessions.
type HostConfig struct {
	// Mode is "local" (in-process PTY host) or "remote" (WebSocket).
	Mode string `envconfig:"HOST_MODE" default:"local"`
	URL  string `envconfig:"HOST_URL" default:"ws://localhost:9090/host"`
}

// TerminalConfig holds session defaults.
type TerminalConfig struct {
	HistoryCap int `envconfig:"HISTORY_CAP" default:"1000"`
	Cols       int `envconfig:"TERM_COLS" default:"80"`
	Rows       int `envconfig:"TERM_ROWS" default:"24"`
}

// ReconnectConfig holds the transport retry policy.
type ReconnectConfig struct {
	MaxAttempts int           `envconfig:"RECONNECT_MAX_ATTEMPTS" default:"5"`
	BackoffBase time.Duration `envconfig:"RECONNECT_BACKOFF_BASE" default:"500ms"`
	BackoffMax  time.Duration `envconfig:"RECONNECT_BACKOFF_MAX" default:"8s"`
	QueueDepth  int           `envconfig:"WRITE_QUEUE_DEPTH" default:"64"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8090",
			Host: "0.0.0.0",
		},
		Host: HostConfig{
			Mode: "local",
			URL:  "ws://localhost:9090/host",
		},
		Terminal: TerminalConfig{
			HistoryCap: 1000,
			Cols:       80,
			Rows:       24,
		},
		Reconnect: ReconnectConfig{
			MaxAttempts: 5,
			BackoffBase: 500 * time.Millisecond,
			BackoffMax:  8 * time.Second,
			QueueDepth:  64,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
	}
}
