// Package config loads tabman's user configuration from
// ~/.tabman/config.toml. A missing file is not an error; every field
// has a working default.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// FileName is the config file inside the tabman home directory.
const FileName = "config.toml"

// Config is the user-facing TOML configuration.
type Config struct {
	// Terminal is an explicit driver-name override consulted by the
	// detection chain after the automatic strategies ("tmux", "kitty",
	// "wezterm", "alacritty", "konsole", "iterm2", "apple-terminal").
	Terminal string `toml:"terminal"`

	// ProbeTimeoutSecs bounds remote-control availability probes.
	ProbeTimeoutSecs int `toml:"probe_timeout_secs"`

	// OpenTimeoutSecs bounds tab open operations.
	OpenTimeoutSecs int `toml:"open_timeout_secs"`

	// CloseTimeoutSecs bounds tab close operations.
	CloseTimeoutSecs int `toml:"close_timeout_secs"`

	// ProcessScanDepth bounds the parent-process-tree walk.
	ProcessScanDepth int `toml:"process_scan_depth"`

	// Logging configures the debug log.
	Logging LogSettings `toml:"logging"`
}

// LogSettings configures the rotating debug log.
type LogSettings struct {
	// Enabled turns file logging on.
	Enabled bool `toml:"enabled"`

	// Level is "debug", "info", "warn" or "error".
	Level string `toml:"level"`

	// MaxSizeMB is the rotation threshold.
	MaxSizeMB int `toml:"max_size_mb"`

	// MaxBackups is how many rotated files to keep.
	MaxBackups int `toml:"max_backups"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		ProbeTimeoutSecs: 3,
		OpenTimeoutSecs:  10,
		CloseTimeoutSecs: 10,
		ProcessScanDepth: 5,
		Logging: LogSettings{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// HomeDir returns the tabman state directory (~/.tabman).
func HomeDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".tabman"), nil
}

// Load reads the config file from the tabman home directory, applying
// defaults for anything unset. A missing file yields the defaults.
func Load() (Config, error) {
	dir, err := HomeDir()
	if err != nil {
		return Default(), err
	}
	return LoadFrom(filepath.Join(dir, FileName))
}

// LoadFrom reads a specific config file path.
func LoadFrom(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

// applyDefaults backfills zero values after an explicit file load.
func (c *Config) applyDefaults() {
	d := Default()
	if c.ProbeTimeoutSecs <= 0 {
		c.ProbeTimeoutSecs = d.ProbeTimeoutSecs
	}
	if c.OpenTimeoutSecs <= 0 {
		c.OpenTimeoutSecs = d.OpenTimeoutSecs
	}
	if c.CloseTimeoutSecs <= 0 {
		c.CloseTimeoutSecs = d.CloseTimeoutSecs
	}
	if c.ProcessScanDepth <= 0 {
		c.ProcessScanDepth = d.ProcessScanDepth
	}
	if c.Logging.Level == "" {
		c.Logging.Level = d.Logging.Level
	}
	if c.Logging.MaxSizeMB <= 0 {
		c.Logging.MaxSizeMB = d.Logging.MaxSizeMB
	}
	if c.Logging.MaxBackups <= 0 {
		c.Logging.MaxBackups = d.Logging.MaxBackups
	}
}

// ProbeTimeout returns the probe bound as a duration.
func (c Config) ProbeTimeout() time.Duration {
	return time.Duration(c.ProbeTimeoutSecs) * time.Second
}

// OpenTimeout returns the open bound as a duration.
func (c Config) OpenTimeout() time.Duration {
	return time.Duration(c.OpenTimeoutSecs) * time.Second
}

// CloseTimeout returns the close bound as a duration.
func (c Config) CloseTimeout() time.Duration {
	return time.Duration(c.CloseTimeoutSecs) * time.Second
}
