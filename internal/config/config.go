// Package config loads habitloop's TOML configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/julianstephens/habitloop/internal/constants"
)

type Config struct {
	Database DatabaseConfig `toml:"database"`
	Log      LogConfig      `toml:"log"`
	Server   ServerConfig   `toml:"server"`
	Tracing  TracingConfig  `toml:"tracing"`
	Dispatch DispatchConfig `toml:"dispatch"`
	Runner   RunnerConfig   `toml:"runner"`
}

type DatabaseConfig struct {
	// Path is the SQLite file. Ignored when DSN is set.
	Path string `toml:"path"`
	// DSN is a PostgreSQL connection string without a password.
	DSN string `toml:"dsn"`
	// KeyringUser selects the OS keyring entry holding the full DSN.
	KeyringUser string `toml:"keyring_user"`
}

type LogConfig struct {
	Debug bool `toml:"debug"`
}

type ServerConfig struct {
	Addr string `toml:"addr"`
}

type TracingConfig struct {
	Endpoint string `toml:"endpoint"`
	Insecure bool   `toml:"insecure"`
}

type DispatchConfig struct {
	Interval      time.Duration `toml:"interval"`
	RatePerMinute int           `toml:"rate_per_minute"`
	Burst         int           `toml:"burst"`
}

type RunnerConfig struct {
	Workers int `toml:"workers"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads the file at path. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	path, err := ExpandPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.Database.Path) == "" {
		cfg.Database.Path = constants.DefaultDBPath
	}
	if strings.TrimSpace(cfg.Database.KeyringUser) == "" {
		cfg.Database.KeyringUser = constants.DefaultKeyringUser
	}
	if strings.TrimSpace(cfg.Server.Addr) == "" {
		cfg.Server.Addr = constants.DefaultServerAddr
	}
	if cfg.Dispatch.Interval == 0 {
		cfg.Dispatch.Interval = constants.DefaultDispatchInterval
	}
	if cfg.Dispatch.RatePerMinute == 0 {
		cfg.Dispatch.RatePerMinute = constants.DefaultDispatchPerMin
	}
	if cfg.Dispatch.Burst == 0 {
		cfg.Dispatch.Burst = constants.DefaultDispatchBurst
	}
	if cfg.Runner.Workers == 0 {
		cfg.Runner.Workers = constants.DefaultRunnerWorkers
	}
}

func validate(cfg *Config) error {
	if cfg.Dispatch.Interval < time.Second {
		return fmt.Errorf("dispatch.interval must be at least 1s, got %s", cfg.Dispatch.Interval)
	}
	if cfg.Dispatch.RatePerMinute < 1 {
		return fmt.Errorf("dispatch.rate_per_minute must be positive, got %d", cfg.Dispatch.RatePerMinute)
	}
	if cfg.Dispatch.Burst < 1 {
		return fmt.Errorf("dispatch.burst must be positive, got %d", cfg.Dispatch.Burst)
	}
	if cfg.Runner.Workers < 1 || cfg.Runner.Workers > 64 {
		return fmt.Errorf("runner.workers must be between 1 and 64, got %d", cfg.Runner.Workers)
	}
	if dsn := cfg.Database.DSN; dsn != "" && !strings.HasPrefix(dsn, "postgres://") && !strings.HasPrefix(dsn, "postgresql://") && !strings.Contains(dsn, "=") {
		return fmt.Errorf("database.dsn is not a PostgreSQL connection string")
	}
	return nil
}

// ExpandPath replaces a leading "~" with the user's home directory.
func ExpandPath(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
