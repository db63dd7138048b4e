package plugin

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/joeshaw/envdecode"
)

// Config is the process environment a plugin is started with.
type Config struct {
	// Plugin is set by the host daemon when it spawns the process. ENV: LIGHTNINGD_PLUGIN
	Plugin bool `env:"LIGHTNINGD_PLUGIN"`
	// LogLevel is the minimum level of the diagnostics logger. ENV: PLUGIN_LOG_LEVEL
	LogLevel string `env:"PLUGIN_LOG_LEVEL,default=info"`
}

// LoadConfig populates a Config from the environment using envdecode.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return Config{}, fmt.Errorf("decode plugin config: %w", err)
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	return cfg, nil
}

// Level parses LogLevel, falling back to info.
func (c Config) Level() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return l
}
