package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variable names for alertprefs configuration.
const (
	EnvDir      = "ALERTPREFS_DIR"       // Path to .alertprefs directory
	EnvBackend  = "ALERTPREFS_BACKEND"   // Override store.backend
	EnvRedisURL = "ALERTPREFS_REDIS_URL" // Override store.redis_url
	EnvJSON     = "ALERTPREFS_JSON"      // Enable JSON output ("1" or "true")
	EnvLogLevel = "LOG_LEVEL"            // Override log_level
)

// LoadEnv loads variables from .env files without overriding variables
// already set. With no arguments it reads .env in the current directory.
// Missing files are ignored.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

// ApplyEnvOverrides applies the environment overrides to cfg in memory.
// These overrides are not persisted to the config file.
func ApplyEnvOverrides(cfg *Config) {
	if v := os.Getenv(EnvBackend); v != "" {
		cfg.Store.Backend = v
	}
	if v := os.Getenv(EnvRedisURL); v != "" {
		cfg.Store.RedisURL = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}
}

// EnvBool reports whether name is set to "1" or "true".
func EnvBool(name string) bool {
	v := strings.ToLower(os.Getenv(name))
	return v == "1" || v == "true"
}
