// Package filesystem implements prefstore.Backend using one file per key.
// Each value is written verbatim to <dir>/<key>.pref, replaced atomically.
package filesystem

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"alertprefs/internal/prefstore"
)

const ext = ".pref"

// Store implements prefstore.Backend using a directory of small files.
type Store struct {
	dir string // absolute path to the preferences directory
}

// New creates a filesystem store rooted at dir. The directory is created
// on the first write.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// Init creates the preferences directory if it doesn't exist.
func (s *Store) Init() error {
	return os.MkdirAll(s.dir, 0755)
}

// Get retrieves the value for the given key.
func (s *Store) Get(key string) (string, bool, error) {
	if err := prefstore.ValidateKey(key); err != nil {
		return "", false, err
	}
	data, err := os.ReadFile(s.keyPath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, err
	}
	return string(data), true, nil
}

// Set stores a value for the given key.
func (s *Store) Set(key, value string) error {
	if err := prefstore.ValidateKey(key); err != nil {
		return err
	}
	if err := s.Init(); err != nil {
		return fmt.Errorf("creating preferences directory: %w", err)
	}
	return atomicWrite(s.keyPath(key), []byte(value))
}

// All returns every stored key-value pair.
func (s *Store) All() (map[string]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, err
	}
	out := make(map[string]string, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ext) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dir, name))
		if err != nil {
			return nil, err
		}
		out[strings.TrimSuffix(name, ext)] = string(data)
	}
	return out, nil
}

// keyPath returns the filesystem path for a key.
func (s *Store) keyPath(key string) string {
	return filepath.Join(s.dir, key+ext)
}

// atomicWrite writes data to a file atomically via a temporary file and rename.
func atomicWrite(path string, data []byte) error {
	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return fmt.Errorf("generating random suffix: %w", err)
	}
	tmp := path + ".tmp." + hex.EncodeToString(randBytes)

	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp) // best effort cleanup
		return err
	}
	return nil
}

var _ prefstore.Backend = (*Store)(nil)
