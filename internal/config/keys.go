package config

import (
	"fmt"
	"strconv"
)

// field binds a flat dotted key to a Config field.
type field struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

func stringField(p func(c *Config) *string) field {
	return field{
		get: func(c *Config) string { return *p(c) },
		set: func(c *Config, v string) error { *p(c) = v; return nil },
	}
}

var fields = map[string]field{
	"store.backend":       stringField(func(c *Config) *string { return &c.Store.Backend }),
	"store.path":          stringField(func(c *Config) *string { return &c.Store.Path }),
	"store.redis_url":     stringField(func(c *Config) *string { return &c.Store.RedisURL }),
	"store.redis_key":     stringField(func(c *Config) *string { return &c.Store.RedisKey }),
	"store.sql_path":      stringField(func(c *Config) *string { return &c.Store.SQLPath }),
	"snapshot":            stringField(func(c *Config) *string { return &c.Snapshot }),
	"broadcast.backend":   stringField(func(c *Config) *string { return &c.Broadcast.Backend }),
	"broadcast.channel":   stringField(func(c *Config) *string { return &c.Broadcast.Channel }),
	"broadcast.redis_url": stringField(func(c *Config) *string { return &c.Broadcast.RedisURL }),
	"log_level":           stringField(func(c *Config) *string { return &c.LogLevel }),
	"strict_lists": {
		get: func(c *Config) string { return strconv.FormatBool(c.StrictLists) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("strict_lists: must be true or false, got %q", v)
			}
			c.StrictLists = b
			return nil
		},
	},
}

// Flatten returns every config value under its dotted key.
func Flatten(c Config) map[string]string {
	out := make(map[string]string, len(fields))
	for k, f := range fields {
		out[k] = f.get(&c)
	}
	return out
}

// Get returns the value of a dotted key.
func Get(c Config, key string) (string, bool) {
	f, ok := fields[key]
	if !ok {
		return "", false
	}
	return f.get(&c), true
}

// Set assigns a dotted key in c.
func Set(c *Config, key, value string) error {
	f, ok := fields[key]
	if !ok {
		return fmt.Errorf("unknown config key %q", key)
	}
	return f.set(c, value)
}
