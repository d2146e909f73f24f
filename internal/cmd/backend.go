package cmd

import (
	"context"
	"fmt"
	"io"

	"alertprefs/internal/config"
	"alertprefs/internal/notifier"
	"alertprefs/internal/prefstore"
	"alertprefs/internal/prefstore/filesystem"
	"alertprefs/internal/prefstore/redisstore"
	"alertprefs/internal/prefstore/sqlstore"
	"alertprefs/internal/prefstore/yamlstore"
)

// openBackend opens the configured preference backend. The closer is nil
// for file-based backends.
func openBackend(ctx context.Context, cfg config.StoreConfig) (prefstore.Backend, io.Closer, error) {
	switch cfg.Backend {
	case "yaml":
		s, err := yamlstore.New(cfg.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("opening yaml store: %w", err)
		}
		return s, nil, nil
	case "files":
		s := filesystem.New(cfg.Path)
		if err := s.Init(); err != nil {
			return nil, nil, fmt.Errorf("opening files store: %w", err)
		}
		return s, nil, nil
	case "redis":
		s, err := redisstore.Open(ctx, cfg.RedisURL, redisstore.WithHashKey(cfg.RedisKey))
		if err != nil {
			return nil, nil, fmt.Errorf("opening redis store: %w", err)
		}
		return s, s, nil
	case "sql":
		s, err := sqlstore.OpenSQLite(cfg.SQLPath)
		if err != nil {
			return nil, nil, fmt.Errorf("opening sql store: %w", err)
		}
		return s, s, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

// openBroadcaster returns the configured broadcaster. A nil broadcaster
// means the notifier default (logging) is used.
func openBroadcaster(ctx context.Context, cfg config.Config) (notifier.Broadcaster, io.Closer, error) {
	switch cfg.Broadcast.Backend {
	case "", "log":
		return nil, nil, nil
	case "redis":
		url := cfg.Broadcast.RedisURL
		if url == "" {
			url = cfg.Store.RedisURL
		}
		b, err := notifier.OpenRedisBroadcaster(ctx, url, cfg.Broadcast.Channel)
		if err != nil {
			return nil, nil, fmt.Errorf("opening redis broadcaster: %w", err)
		}
		return b, b, nil
	default:
		return nil, nil, fmt.Errorf("unknown broadcast backend %q", cfg.Broadcast.Backend)
	}
}
