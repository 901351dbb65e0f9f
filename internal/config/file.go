package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ErrConfigExists is returned when WriteFile would overwrite a config file.
var ErrConfigExists = errors.New("config file already exists")

// DefaultPath is where WriteFile puts a new config when no path is given:
// $XDG_CONFIG_HOME/rxconsole/config.yaml, else ~/.config/rxconsole/config.yaml.
func DefaultPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "rxconsole", "config.yaml")
	}
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".config", "rxconsole", "config.yaml")
}

// Marshal renders cfg as YAML. The API token is masked.
func Marshal(cfg *Config) ([]byte, error) {
	out := *cfg
	if out.API.Token != "" {
		out.API.Token = "[REDACTED]"
	}
	data, err := yaml.Marshal(&out)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize config: %w", err)
	}
	return data, nil
}

// WriteFile saves cfg to path, creating parent directories. An existing
// file is kept unless force is set.
func WriteFile(path string, cfg *Config, force bool) error {
	if path == "" {
		path = DefaultPath()
	}
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s", ErrConfigExists, path)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
