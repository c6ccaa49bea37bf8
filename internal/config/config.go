// Package config contains global variables that are set according to
// the command line, and the user configuration file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Quiet is true if --quiet was passed on the command line.
var Quiet bool

// AppName names the per-user directories holding the config file and
// the store.
const AppName = "package-deps-admin"

// DefaultReinstallPause is how long reinstall waits between removing
// dependencies and installing them again, so the package manager can
// release its lock file.
const DefaultReinstallPause = time.Second

// Store drivers.
const (
	StoreDriverJSON   = "json"
	StoreDriverSQLite = "sqlite"
)

// Duration is a time.Duration written as a string ("1500ms") in the
// config file.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Config is the contents of config.toml.
type Config struct {
	// Backend forces a package manager for every project.
	Backend string `toml:"backend"`

	ReinstallPause Duration `toml:"reinstall_pause"`

	// StoreDriver is "json" or "sqlite".
	StoreDriver string `toml:"store_driver"`
	StorePath   string `toml:"store_path"`

	LogLevel string `toml:"log_level"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		ReinstallPause: Duration{DefaultReinstallPause},
		StoreDriver:    StoreDriverJSON,
		LogLevel:       "info",
	}
}

// Dir returns the per-user directory for config and store files.
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, AppName), nil
}

func getConfigLocation() (string, error) {
	if loc, ok := os.LookupEnv("PDA_CONFIG"); ok {
		return loc, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the config file. A missing file yields Default().
func Load() (Config, error) {
	cfg := Default()
	filename, err := getConfigLocation()
	if err != nil {
		return cfg, nil
	}
	return LoadFile(filename)
}

// LoadFile reads filename over the defaults.
func LoadFile(filename string) (Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(filename, &cfg); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("%s: %w", filename, err)
	}
	if cfg.StoreDriver == "" {
		cfg.StoreDriver = StoreDriverJSON
	}
	if cfg.StoreDriver != StoreDriverJSON && cfg.StoreDriver != StoreDriverSQLite {
		return cfg, fmt.Errorf("%s: unknown store_driver %q", filename, cfg.StoreDriver)
	}
	if cfg.ReinstallPause.Duration < 0 {
		return cfg, fmt.Errorf("%s: reinstall_pause must not be negative", filename)
	}
	return cfg, nil
}

// StoreLocation returns where the transit link store lives: $PDA_STORE,
// then store_path, then a file in Dir().
func (c Config) StoreLocation() (string, error) {
	if loc, ok := os.LookupEnv("PDA_STORE"); ok {
		return loc, nil
	}
	if c.StorePath != "" {
		return c.StorePath, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	name := "store.json"
	if c.StoreDriver == StoreDriverSQLite {
		name = "store.db"
	}
	return filepath.Join(dir, name), nil
}
