// Package config provides configuration loading and management.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultDir is the config directory under the user's home.
	DefaultDir = ".streamchat"
	// ConfigFile is the config file name inside DefaultDir.
	ConfigFile = "config.yaml"

	// DefaultBaseURL matches the backend's default local bind address.
	DefaultBaseURL = "http://localhost:8000"
)

// Config is the client configuration.
type Config struct {
	// BaseURL is the backend root; the stream endpoint lives at
	// <BaseURL>/chat_stream/<query>.
	BaseURL string `yaml:"base_url"`

	Log LogConfig `yaml:"log"`
}

// LogConfig controls diagnostic logging.
type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// Default returns a config with sensible defaults.
func Default() *Config {
	return &Config{
		BaseURL: DefaultBaseURL,
		Log: LogConfig{
			Level:  "info",
			Pretty: true,
		},
	}
}

// Loader handles loading configuration files.
type Loader struct {
	homeDir string
}

// NewLoader creates a config loader. The base directory is resolved in
// this order:
//  1. STREAMCHAT_CONFIG environment variable.
//  2. User home directory.
//  3. /tmp/streamchat-fallback (containers without a home dir; Load
//     then returns defaults with env overrides applied).
func NewLoader() *Loader {
	if baseDir := os.Getenv("STREAMCHAT_CONFIG"); baseDir != "" {
		return &Loader{homeDir: baseDir}
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		return &Loader{homeDir: homeDir}
	}
	return &Loader{homeDir: "/tmp/streamchat-fallback"}
}

// Path returns the path to the config file.
func (l *Loader) Path() string {
	return filepath.Join(l.homeDir, DefaultDir, ConfigFile)
}

// Load reads the configuration. A missing file yields defaults;
// environment variables override either way.
func (l *Loader) Load() (*Config, error) {
	cfg := Default()

	path := l.Path()
	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	mergeFromEnv(cfg)

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// mergeFromEnv applies environment variable overrides for layered
// configuration.
func mergeFromEnv(cfg *Config) {
	if v := os.Getenv("STREAMCHAT_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("STREAMCHAT_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}

// Validate checks configuration invariants.
func Validate(cfg *Config) error {
	if cfg.BaseURL == "" {
		return fmt.Errorf("base_url must not be empty")
	}
	switch cfg.Log.Level {
	case "", "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", cfg.Log.Level)
	}
	return nil
}
