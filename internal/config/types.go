// Package config provides configuration types for the coach service.
package config

// Config represents the main coach configuration.
type Config struct {
	Server ServerConfig `toml:"server"`
	Model  ModelConfig  `toml:"model"`
	Chat   ChatConfig   `toml:"chat"`
	Paths  PathsConfig  `toml:"paths"`
}

// ServerConfig contains HTTP listener settings.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// ModelConfig configures the upstream language model endpoint.
type ModelConfig struct {
	BaseURL    string `toml:"base_url"`
	Model      string `toml:"model"`
	APIKey     string `toml:"api_key"`
	APIKeyEnv  string `toml:"api_key_env"`
	TimeoutSec int    `toml:"timeout_seconds"`
	MaxRetries int    `toml:"max_retries"`
}

// ChatConfig contains conversation defaults.
type ChatConfig struct {
	DefaultMode string `toml:"default_mode"` // goals, health, events
	MaxTokens   int    `toml:"max_tokens"`
}

// PathsConfig contains file system paths.
type PathsConfig struct {
	DataDir    string `toml:"data_dir"`
	SessionsDB string `toml:"sessions_db"`
}
