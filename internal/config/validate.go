package config

import (
	"fmt"
	"slices"
	"strings"
)

// validValues maps known keys to their allowed values.
// An empty slice means any string is accepted.
var validValues = map[string][]string{
	"store.backend":     {"yaml", "files", "redis", "sql"},
	"broadcast.backend": {"log", "redis"},
	"log_level":         {"debug", "info", "warn", "warning", "error"},
	"store.path":        {},
	"store.redis_url":   {},
	"store.sql_path":    {},
	"broadcast.channel": {},
}

// Validate checks cfg. It returns an error describing every invalid value
// found, or nil if all values are valid.
func Validate(cfg Config) error {
	all := Flatten(cfg)
	var errs []string

	keys := make([]string, 0, len(validValues))
	for k := range validValues {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, key := range keys {
		allowed := validValues[key]
		val := all[key]

		if len(allowed) > 0 {
			if !slices.Contains(allowed, val) {
				errs = append(errs, fmt.Sprintf(
					"%s: invalid value %q (allowed: %s)",
					key, val, strings.Join(allowed, ", ")))
			}
			continue
		}

		// Keys with no enumerated values are required only by some backends.
		switch key {
		case "store.path":
			if val == "" && (cfg.Store.Backend == "yaml" || cfg.Store.Backend == "files") {
				errs = append(errs, fmt.Sprintf("%s: required for the %s backend", key, cfg.Store.Backend))
			}
		case "store.redis_url":
			if val == "" && cfg.Store.Backend == "redis" {
				errs = append(errs, fmt.Sprintf("%s: required for the redis backend", key))
			}
		case "store.sql_path":
			if val == "" && cfg.Store.Backend == "sql" {
				errs = append(errs, fmt.Sprintf("%s: required for the sql backend", key))
			}
		case "broadcast.channel":
			if val == "" && cfg.Broadcast.Backend == "redis" {
				errs = append(errs, fmt.Sprintf("%s: required for the redis broadcaster", key))
			}
		}
	}

	if cfg.Broadcast.Backend == "redis" && cfg.Broadcast.RedisURL == "" && cfg.Store.RedisURL == "" {
		errs = append(errs, "broadcast.redis_url: required for the redis broadcaster")
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("config validation failed:\n  %s", strings.Join(errs, "\n  "))
}
