// Package config handles alertprefs configuration loading and defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Directory and file names inside a project.
const (
	DirName  = ".alertprefs"
	FileName = "config.yaml"
)

// Config represents the contents of .alertprefs/config.yaml.
type Config struct {
	Store       StoreConfig     `yaml:"store"`
	Snapshot    string          `yaml:"snapshot"`
	Broadcast   BroadcastConfig `yaml:"broadcast"`
	LogLevel    string          `yaml:"log_level"`
	StrictLists bool            `yaml:"strict_lists"`
}

// StoreConfig selects the preference backend.
type StoreConfig struct {
	Backend  string `yaml:"backend"`
	Path     string `yaml:"path"`
	RedisURL string `yaml:"redis_url"`
	RedisKey string `yaml:"redis_key"`
	SQLPath  string `yaml:"sql_path"`
}

// BroadcastConfig selects where outbound broadcasts go.
type BroadcastConfig struct {
	Backend  string `yaml:"backend"`
	Channel  string `yaml:"channel"`
	RedisURL string `yaml:"redis_url"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Store: StoreConfig{
			Backend:  "yaml",
			Path:     "preferences.yaml",
			RedisKey: "alertprefs:preferences",
			SQLPath:  "preferences.db",
		},
		Snapshot: "snapshot.yaml",
		Broadcast: BroadcastConfig{
			Backend: "log",
			Channel: "alertprefs:restricted:broadcasts",
		},
		LogLevel: "info",
	}
}

// Load reads config.yaml from path and applies defaults for missing fields.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Write writes the provided configuration to path.
func Write(path string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// WriteDefault writes the default configuration to path.
func WriteDefault(path string) error {
	return Write(path, Default())
}

// Resolve returns cfg with relative file paths made relative to dir.
func (c Config) Resolve(dir string) Config {
	abs := func(p string) string {
		if p == "" || filepath.IsAbs(p) || p == ":memory:" {
			return p
		}
		return filepath.Join(dir, p)
	}
	c.Store.Path = abs(c.Store.Path)
	c.Store.SQLPath = abs(c.Store.SQLPath)
	c.Snapshot = abs(c.Snapshot)
	return c
}
