// Package config handles coach configuration loading and management.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	apperrors "github.com/moola-ai/coach/internal/errors"
)

// Default returns the default configuration.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	dataDir := filepath.Join(homeDir, ".coach")

	return &Config{
		Server: ServerConfig{
			Addr: ":8090",
		},
		Model: ModelConfig{
			BaseURL:    "https://api.openai.com/v1",
			Model:      "gpt-4o-mini",
			APIKeyEnv:  "OPENAI_API_KEY",
			TimeoutSec: 120,
			MaxRetries: 3,
		},
		Chat: ChatConfig{
			DefaultMode: "goals",
			MaxTokens:   1024,
		},
		Paths: PathsConfig{
			DataDir:    dataDir,
			SessionsDB: filepath.Join(dataDir, "sessions.db"),
		},
	}
}

// Load loads the configuration from the given path.
// If the file doesn't exist, returns defaults.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, apperrors.Wrap(err, apperrors.CodeConfigNotFound, "read config file", apperrors.CategoryPermanent)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeConfigInvalid, "parse config file", apperrors.CategoryPermanent)
	}

	expandPaths(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save saves the configuration to the given path.
func (c *Config) Save(configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	file, err := os.Create(configPath)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := toml.NewEncoder(file)
	return encoder.Encode(c)
}

// Validate checks the configuration for values that would break the service
// at runtime rather than at startup.
func (c *Config) Validate() error {
	switch c.Chat.DefaultMode {
	case "goals", "health", "events":
	default:
		return apperrors.User(apperrors.CodeConfigInvalid,
			"chat.default_mode must be one of: goals, health, events")
	}
	if c.Model.TimeoutSec <= 0 {
		return apperrors.User(apperrors.CodeConfigInvalid, "model.timeout_seconds must be positive")
	}
	if c.Model.MaxRetries < 0 {
		return apperrors.User(apperrors.CodeConfigInvalid, "model.max_retries must not be negative")
	}
	return nil
}

// ResolveAPIKey returns the model API key, preferring the literal value and
// falling back to the configured environment variable.
func (c *Config) ResolveAPIKey() string {
	if c.Model.APIKey != "" {
		return c.Model.APIKey
	}
	if c.Model.APIKeyEnv != "" {
		return os.Getenv(c.Model.APIKeyEnv)
	}
	return ""
}

// ModelTimeout returns the model timeout as a duration.
func (c *Config) ModelTimeout() time.Duration {
	return time.Duration(c.Model.TimeoutSec) * time.Second
}

// expandPaths expands a leading ~ in configured paths.
func expandPaths(cfg *Config) {
	homeDir, _ := os.UserHomeDir()

	expand := func(p string) string {
		if p != "" && p[0] == '~' {
			return filepath.Join(homeDir, p[1:])
		}
		return p
	}

	cfg.Paths.DataDir = expand(cfg.Paths.DataDir)
	cfg.Paths.SessionsDB = expand(cfg.Paths.SessionsDB)
}
