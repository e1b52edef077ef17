// Package config loads and watches the client configuration file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Protocol timing contract. These mirror what the desktop expects; keep them
// here as named constants so the state machines stay free of magic numbers.
const (
	// ConnectTimeout bounds a single WebSocket connect attempt.
	ConnectTimeout = 8 * time.Second
	// ReconnectDelay is the fixed wait between a close event and the next
	// connect attempt.
	ReconnectDelay = 3 * time.Second
	// HTTPTimeout bounds every pairing/status/config HTTP round-trip.
	HTTPTimeout = 8 * time.Second
	// RawSendTimeout is how long a raw send waits for its ack.
	RawSendTimeout = 15 * time.Second
	// TransformTimeout is how long an AI transform waits for its preview.
	TransformTimeout = 20 * time.Second
)

// Config is the on-disk client configuration (~/.gtalk-remote/config.json).
type Config struct {
	// ServerURL is the desktop's base URL, e.g. "https://192.168.1.20:9999".
	ServerURL string `json:"serverUrl"`
	// LogLevel is one of "debug", "info", "warn", "error". Default "info".
	LogLevel string `json:"logLevel,omitempty"`
}

// DefaultDir returns the client state directory (~/.gtalk-remote).
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".gtalk-remote"
	}
	return filepath.Join(home, ".gtalk-remote")
}

// DefaultPath returns the default config file path.
func DefaultPath() string {
	return filepath.Join(DefaultDir(), "config.json")
}

// Load reads the config file at path. A missing file yields defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{LogLevel: "info"}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	return cfg, nil
}

// Save writes the config file, creating the directory if needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
