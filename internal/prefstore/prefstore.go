// Package prefstore defines the persistence contract used by preference nodes.
//
// Backends store every value as a string under a flat key. Store layers the
// typed boolean/string accessors on top and turns backend write failures into
// *WriteError so callers can never lose a write silently.
package prefstore

import (
	"fmt"
	"strconv"
	"strings"
)

// Backend is a flat string key-value store.
// Set must be durable when it returns nil: a later Get of the same key,
// through any Backend instance, observes the value.
type Backend interface {
	// Get returns the value for key and whether it was found.
	// A missing key is not an error.
	Get(key string) (string, bool, error)

	// Set stores value under key, overwriting any previous value.
	Set(key, value string) error

	// All returns a copy of every stored key-value pair.
	All() (map[string]string, error)
}

// Store provides typed access to a Backend.
type Store struct {
	backend Backend
}

// New wraps b in a typed Store.
func New(b Backend) *Store {
	return &Store{backend: b}
}

// Backend returns the underlying backend.
func (s *Store) Backend() Backend {
	return s.backend
}

// GetBoolean returns the boolean stored under key, or def if the key is
// missing or does not hold a boolean.
func (s *Store) GetBoolean(key string, def bool) (bool, error) {
	raw, ok, err := s.get(key)
	if err != nil || !ok {
		return def, err
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def, nil
	}
	return v, nil
}

// GetString returns the string stored under key, or def if the key is missing.
func (s *Store) GetString(key string, def string) (string, error) {
	raw, ok, err := s.get(key)
	if err != nil || !ok {
		return def, err
	}
	return raw, nil
}

// SetBoolean persists v under key.
func (s *Store) SetBoolean(key string, v bool) error {
	return s.set(key, strconv.FormatBool(v))
}

// SetString persists v under key.
func (s *Store) SetString(key string, v string) error {
	return s.set(key, v)
}

// Contains reports whether key has a stored value.
func (s *Store) Contains(key string) (bool, error) {
	_, ok, err := s.get(key)
	return ok, err
}

func (s *Store) get(key string) (string, bool, error) {
	if err := ValidateKey(key); err != nil {
		return "", false, err
	}
	v, ok, err := s.backend.Get(key)
	if err != nil {
		return "", false, fmt.Errorf("reading preference %q: %w", key, err)
	}
	return v, ok, nil
}

func (s *Store) set(key, value string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	if err := s.backend.Set(key, value); err != nil {
		return &WriteError{Key: key, Value: value, Err: err}
	}
	return nil
}

// ValidateKey checks that a key is non-empty and contains no path
// separators or whitespace, so every backend can use it verbatim.
func ValidateKey(key string) error {
	if key == "" {
		return fmt.Errorf("key cannot be empty: %w", ErrInvalidKey)
	}
	if strings.ContainsAny(key, "/\\ \t\r\n") {
		return fmt.Errorf("key %q contains a separator or whitespace: %w", key, ErrInvalidKey)
	}
	return nil
}
