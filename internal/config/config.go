package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	CurrentUser string `toml:"current_user"`
	ArchiveRoot string `toml:"archive_root"`
	DBPath      string `toml:"db_path"`
	CacheDir    string `toml:"cache_dir"`
	Timezone    string `toml:"timezone"`
}

// Path returns the location of the config file.
func Path() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "cev", "config.toml"), nil
}

func Load() (*Config, error) {
	cfgPath, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFile(cfgPath)
}

// LoadFile reads cfgPath over the defaults. A missing file is not an error.
func LoadFile(cfgPath string) (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		ArchiveRoot: filepath.Join(home, "Downloads"),
		DBPath:      filepath.Join(home, ".config", "cev", "cev.db"),
		CacheDir:    filepath.Join(home, ".cache", "cev"),
	}

	if _, err := os.Stat(cfgPath); err == nil {
		if _, err := toml.DecodeFile(cfgPath, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", cfgPath, err)
		}
	}

	if _, err := cfg.Location(); err != nil {
		return nil, err
	}

	// expand ~ in paths
	cfg.ArchiveRoot = expandHome(cfg.ArchiveRoot, home)
	cfg.DBPath = expandHome(cfg.DBPath, home)
	cfg.CacheDir = expandHome(cfg.CacheDir, home)

	return cfg, nil
}

// Location resolves the configured timezone; empty means the local zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func expandHome(path, home string) string {
	if len(path) > 1 && path[0] == '~' && path[1] == '/' {
		return filepath.Join(home, path[2:])
	}
	return path
}
