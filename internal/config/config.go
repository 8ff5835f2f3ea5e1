// Package config loads the eva configuration: YAML file under the state
// directory, overridden by EVA_* environment variables, with a local .env
// loaded first.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all eva configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	OAuth   OAuthConfig   `yaml:"oauth"`
	UI      UIConfig      `yaml:"ui"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig points at the Eva backend.
type ServerConfig struct {
	BaseURL        string `yaml:"base_url"`
	ConnectTimeout string `yaml:"connect_timeout"`
	RequestTimeout string `yaml:"request_timeout"`
}

// OAuthConfig identifies the Google OAuth client used for sign-in.
type OAuthConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
}

// UIConfig configures the TUI.
type UIConfig struct {
	Theme string `yaml:"theme"` // auto, dark, light
}

// LoggingConfig configures the category file logger.
type LoggingConfig struct {
	DebugMode  bool     `yaml:"debug_mode"`
	Categories []string `yaml:"categories"` // empty means all
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			BaseURL:        "https://api.eva-assistant.app",
			ConnectTimeout: "10s",
			RequestTimeout: "60s",
		},
		UI: UIConfig{
			Theme: "auto",
		},
		Logging: LoggingConfig{
			DebugMode: false,
		},
	}
}

// Dir returns the eva state directory, ~/.eva unless EVA_HOME overrides it.
func Dir() string {
	if dir := os.Getenv("EVA_HOME"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".eva"
	}
	return filepath.Join(home, ".eva")
}

// Path returns the config file location inside Dir.
func Path() string {
	return filepath.Join(Dir(), "config.yaml")
}

// Load reads the config file, falling back to defaults when it does not
// exist, then applies .env and EVA_* environment overrides.
func Load(path string) (*Config, error) {
	// Ignore a missing .env; it is a development convenience.
	_ = godotenv.Load()

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the configuration to a YAML file.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies EVA_* environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("EVA_BASE_URL"); v != "" {
		c.Server.BaseURL = v
	}
	if v := os.Getenv("EVA_OAUTH_CLIENT_ID"); v != "" {
		c.OAuth.ClientID = v
	}
	if v := os.Getenv("EVA_OAUTH_CLIENT_SECRET"); v != "" {
		c.OAuth.ClientSecret = v
	}
	if v := os.Getenv("EVA_THEME"); v != "" {
		c.UI.Theme = v
	}
	if v := os.Getenv("EVA_DEBUG"); v == "1" || v == "true" {
		c.Logging.DebugMode = true
	}
}

// ConnectTimeout returns the dial timeout as a duration.
func (c *Config) ConnectTimeout() time.Duration {
	d, err := time.ParseDuration(c.Server.ConnectTimeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// RequestTimeout returns the overall request timeout as a duration.
func (c *Config) RequestTimeout() time.Duration {
	d, err := time.ParseDuration(c.Server.RequestTimeout)
	if err != nil {
		return 60 * time.Second
	}
	return d
}
