// Package redisstore implements prefstore.Backend on a single Redis hash.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"alertprefs/internal/prefstore"

	goredis "github.com/redis/go-redis/v9"
)

const (
	// DefaultHashKey is the hash holding every preference.
	DefaultHashKey = "alertprefs:preferences"

	defaultTimeout = 5 * time.Second
)

// Store implements prefstore.Backend with HGET/HSET on one hash.
// HSET is acknowledged by the server before Set returns, so a subsequent
// read through any client observes the write.
type Store struct {
	client  goredis.UniversalClient
	hash    string
	timeout time.Duration
}

// Option configures a Store.
type Option func(*Store)

// WithHashKey overrides DefaultHashKey.
func WithHashKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.hash = key
		}
	}
}

// WithTimeout bounds every Redis round trip.
func WithTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// New wraps an existing client.
func New(client goredis.UniversalClient, opts ...Option) *Store {
	s := &Store{
		client:  client,
		hash:    DefaultHashKey,
		timeout: defaultTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open parses redisURL, pings the server and returns a Store over it.
func Open(ctx context.Context, redisURL string, opts ...Option) (*Store, error) {
	client, err := Dial(ctx, redisURL)
	if err != nil {
		return nil, err
	}
	return New(client, opts...), nil
}

// Dial connects to redisURL and checks the connection with a PING.
func Dial(ctx context.Context, redisURL string) (*goredis.Client, error) {
	if redisURL == "" {
		return nil, fmt.Errorf("redis url is required")
	}
	clientOpts, err := goredis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if clientOpts.DialTimeout == 0 {
		clientOpts.DialTimeout = defaultTimeout
	}

	client := goredis.NewClient(clientOpts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// Close releases the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}

// Get returns the value for key and whether it was found.
func (s *Store) Get(key string) (string, bool, error) {
	ctx, cancel := s.ctx()
	defer cancel()

	v, err := s.client.HGet(ctx, s.hash, key).Result()
	if errors.Is(err, goredis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("hget %s: %w", key, err)
	}
	return v, true, nil
}

// Set stores value under key.
func (s *Store) Set(key, value string) error {
	ctx, cancel := s.ctx()
	defer cancel()

	if err := s.client.HSet(ctx, s.hash, key, value).Err(); err != nil {
		return fmt.Errorf("hset %s: %w", key, err)
	}
	return nil
}

// All returns every stored key-value pair.
func (s *Store) All() (map[string]string, error) {
	ctx, cancel := s.ctx()
	defer cancel()

	all, err := s.client.HGetAll(ctx, s.hash).Result()
	if err != nil {
		return nil, fmt.Errorf("hgetall: %w", err)
	}
	return all, nil
}

func (s *Store) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.timeout)
}

var _ prefstore.Backend = (*Store)(nil)
