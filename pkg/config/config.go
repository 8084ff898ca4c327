// Package config loads the application configuration from
// <base>/config.json, falling back to defaults when the file is absent.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/workgrid/studio/pkg/appdir"
)

// Config is the application configuration.
type Config struct {
	Server     ServerConfig     `json:"server"`
	Connection ConnectionConfig `json:"connection"`
	Log        LogConfig        `json:"log"`
}

// ServerConfig configures the command (MCP) listener.
type ServerConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// ConnectionConfig tunes every profile's connection pool.
type ConnectionConfig struct {
	MaxOpen        int           `json:"max_open"`
	MaxIdle        int           `json:"max_idle"`
	Lifetime       time.Duration `json:"lifetime"`
	IdleTimeout    time.Duration `json:"idle_timeout"`
	ConnectTimeout time.Duration `json:"connect_timeout"`
}

// LogConfig configures the operational (not audit) logger.
type LogConfig struct {
	Level string `json:"level"`
	File  string `json:"file"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 7411,
		},
		Connection: ConnectionConfig{
			MaxOpen:        10,
			MaxIdle:        5,
			Lifetime:       30 * time.Minute,
			IdleTimeout:    5 * time.Minute,
			ConnectTimeout: 10 * time.Second,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// GetListenAddress returns the host:port the command server binds to.
func (c *Config) GetListenAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// LoadConfig loads configuration from a file, layered over the defaults.
func LoadConfig(configPath string) (*Config, error) {
	if configPath == "" {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfigOrDefault reads <base>/config.json, returning defaults when
// the file does not exist or the base directory cannot be resolved.
func LoadConfigOrDefault() *Config {
	base, err := appdir.Base()
	if err != nil {
		return DefaultConfig()
	}
	path := filepath.Join(base, "config.json")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig()
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		return DefaultConfig()
	}
	return cfg
}

func validateConfig(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", cfg.Server.Port)
	}
	if cfg.Connection.MaxOpen <= 0 {
		return fmt.Errorf("connection.max_open must be positive")
	}
	if cfg.Connection.MaxIdle < 0 {
		return fmt.Errorf("connection.max_idle must not be negative")
	}
	return nil
}
