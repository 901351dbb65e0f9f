// Package config handles rxconsole configuration loading and validation.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tOgg1/rxconsole/internal/models"
)

// Config is the root configuration structure for rxconsole.
type Config struct {
	// Backend API settings
	API APIConfig `yaml:"api" mapstructure:"api"`

	// Polling settings
	Sync SyncConfig `yaml:"sync" mapstructure:"sync"`

	// CSV export settings
	Export ExportConfig `yaml:"export" mapstructure:"export"`

	// Logging settings
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`

	// Prometheus endpoint settings
	Metrics MetricsConfig `yaml:"metrics" mapstructure:"metrics"`

	// TUI settings
	TUI TUIConfig `yaml:"tui" mapstructure:"tui"`
}

// APIConfig describes the backend serving messages and stats.
type APIConfig struct {
	// BaseURL is the API root, e.g. http://localhost:8000.
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`

	// Role filters the message list (RX by default).
	Role string `yaml:"role" mapstructure:"role"`

	// Token is an optional bearer token sent with every request.
	Token string `yaml:"token" mapstructure:"token"`

	// Timeout bounds each request. Zero leaves the transport default.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// SyncConfig contains polling settings.
type SyncConfig struct {
	// Interval is the live polling period.
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`

	// Limit is the number of recent messages fetched per cycle.
	Limit int `yaml:"limit" mapstructure:"limit"`

	// StartPaused starts in paused mode instead of live.
	StartPaused bool `yaml:"start_paused" mapstructure:"start_paused"`
}

// ExportConfig contains CSV export settings.
type ExportConfig struct {
	// Dir is where CSV exports are written.
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string `yaml:"level" mapstructure:"level"`

	// Format is the output format (json, console).
	Format string `yaml:"format" mapstructure:"format"`

	// File is an optional log file path. The TUI logs only here.
	File string `yaml:"file" mapstructure:"file"`

	// EnableCaller adds caller information to logs.
	EnableCaller bool `yaml:"enable_caller" mapstructure:"enable_caller"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	// Addr is the listen address for /metrics; empty disables the listener.
	Addr string `yaml:"addr" mapstructure:"addr"`
}

// TUIConfig contains TUI settings.
type TUIConfig struct {
	// Theme is the color theme (default, high-contrast).
	Theme string `yaml:"theme" mapstructure:"theme"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: "http://localhost:8000",
			Role:    models.DefaultRole,
		},
		Sync: SyncConfig{
			Interval: 3 * time.Second,
			Limit:    models.DefaultLimit,
		},
		Export: ExportConfig{
			Dir: ".",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		TUI: TUIConfig{
			Theme: "default",
		},
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	validation := &models.ValidationErrors{}

	base := strings.TrimSpace(c.API.BaseURL)
	if base == "" {
		validation.AddMessage("api.base_url", "base URL is required")
	} else if u, err := url.Parse(base); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		validation.AddMessage("api.base_url", fmt.Sprintf("must be an http(s) URL, got %q", base))
	}

	if c.API.Timeout < 0 {
		validation.AddMessage("api.timeout", "must not be negative")
	}

	validation.Require("api.role", c.API.Role)
	models.OneOf(validation, "sync.limit", c.Sync.Limit, models.Limits, models.ErrInvalidLimit)

	if c.Sync.Interval < 100*time.Millisecond {
		validation.AddMessage("sync.interval", "must be at least 100ms")
	}

	models.OneOf(validation, "tui.theme", c.TUI.Theme, []string{"default", "high-contrast"}, nil)

	return validation.Err()
}

// Query returns the initial query parameters.
func (c *Config) Query() models.QueryParams {
	return models.QueryParams{Role: c.API.Role, Limit: c.Sync.Limit}
}

// EnsureDirectories creates required directories.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Export.Dir}
	if c.Logging.File != "" {
		dirs = append(dirs, filepath.Dir(c.Logging.File))
	}

	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}
