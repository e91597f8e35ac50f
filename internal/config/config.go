// Package config loads client configuration from a YAML file, with
// environment variables as a fallback for the common knobs.
package config

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the full client configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Storage  StorageConfig  `yaml:"storage"`
	DebugAPI DebugAPIConfig `yaml:"debug_api"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig locates the game server.
type ServerConfig struct {
	// Addr is the host:port of the game server.
	Addr string `yaml:"addr"`
}

// StorageConfig selects the replay storage backend.
type StorageConfig struct {
	// Type is "memory" or "redis".
	Type string `yaml:"type"`

	// RedisURL is the Redis connection URL, used when Type is "redis".
	RedisURL string `yaml:"redis_url"`
}

// DebugAPIConfig controls the local replay inspection API.
type DebugAPIConfig struct {
	Enabled bool   `yaml:"enabled"`
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
}

// LogConfig controls logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`
}

// Default returns the built-in configuration, with environment overrides for
// the server address and Redis URL.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr: getEnvOrDefault("RIICHI_SERVER", "127.0.0.1:7777"),
		},
		Storage: StorageConfig{
			Type:     getEnvOrDefault("RIICHI_STORAGE", "memory"),
			RedisURL: getEnvOrDefault("RIICHI_REDIS_URL", "redis://localhost:6379"),
		},
		DebugAPI: DebugAPIConfig{
			Enabled: false,
			Host:    "127.0.0.1",
			Port:    8737,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from path, layered over the defaults. A missing
// file is not an error; the defaults are returned.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// SlogLevel maps the configured level name onto a slog level.
func (c LogConfig) SlogLevel() slog.Level {
	switch c.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
