// Package yamlstore implements prefstore.Backend backed by a flat YAML file.
//
// Keys are literal strings, never nested paths. yaml.Marshal on
// map[string]string sorts keys, so the file stays deterministic and
// diff-friendly. Every write takes an exclusive flock, re-reads the file to
// pick up writes from other processes, and replaces the file atomically.
// Reads take a shared flock and re-read the file, so a Store sees writes
// made through any other Store on the same path.
package yamlstore

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"syscall"

	"alertprefs/internal/prefstore"

	"gopkg.in/yaml.v3"
)

// Store implements prefstore.Backend using a YAML file on disk.
type Store struct {
	path string

	mu   sync.Mutex
	data map[string]string
}

// New creates a Store that reads from and writes to path.
// If the file exists it is loaded; if it does not exist the store
// starts empty and the file is created on the first Set call.
func New(path string) (*Store, error) {
	s := &Store{
		path: path,
		data: make(map[string]string),
	}
	if err := s.readFromDisk(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the file backing the store.
func (s *Store) Path() string {
	return s.path
}

// Get returns the current on-disk value for key and whether it was found.
func (s *Store) Get(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.refresh(); err != nil {
		return "", false, err
	}
	v, ok := s.data[key]
	return v, ok, nil
}

// Set writes key=value and persists to disk before returning.
func (s *Store) Set(key, value string) error {
	return s.withLock(func() {
		s.data[key] = value
	})
}

// All returns a copy of all key-value pairs currently on disk.
func (s *Store) All() (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.refresh(); err != nil {
		return nil, err
	}
	out := make(map[string]string, len(s.data))
	for k, v := range s.data {
		out[k] = v
	}
	return out, nil
}

// Reload re-reads the file, discarding the in-memory view.
func (s *Store) Reload() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refresh()
}

func (s *Store) lockPath() string {
	return s.path + ".lock"
}

// refresh re-reads the file under a shared lock. A missing directory means
// nothing was written yet; reads never create it. Callers hold s.mu.
func (s *Store) refresh() error {
	f, err := os.OpenFile(s.lockPath(), os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.data = make(map[string]string)
			return nil
		}
		return fmt.Errorf("opening preferences lock: %w", err)
	}
	defer f.Close()

	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_SH); err != nil {
		return fmt.Errorf("acquiring preferences lock: %w", err)
	}
	defer syscall.Flock(int(f.Fd()), syscall.LOCK_UN)

	return s.readFromDisk()
}

// withLock acquires an exclusive file lock, re-reads the file from disk,
// calls fn to mutate s.data, then atomically writes s.data back to disk.
// On a failed write the in-memory view is reloaded from disk so it never
// claims a value that was not recorded.
func (s *Store) withLock(fn func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("creating preferences directory: %w", err)
	}

	f, err := os.OpenFile(s.lockPath(), os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return fmt.Errorf("opening preferences lock: %w", err)
	}
	defer f.Close()

	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX); err != nil {
		return fmt.Errorf("acquiring preferences lock: %w", err)
	}
	defer syscall.Flock(int(f.Fd()), syscall.LOCK_UN)

	if err := s.readFromDisk(); err != nil {
		return err
	}

	fn()

	raw, err := yaml.Marshal(s.data)
	if err != nil {
		_ = s.readFromDisk()
		return fmt.Errorf("encoding preferences: %w", err)
	}
	if err := atomicWrite(s.path, raw); err != nil {
		_ = s.readFromDisk()
		return err
	}
	return nil
}

// readFromDisk reloads s.data from the file. Callers hold s.mu.
func (s *Store) readFromDisk() error {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.data = make(map[string]string)
			return nil
		}
		return fmt.Errorf("reading preferences file: %w", err)
	}

	fresh := make(map[string]string)
	if len(raw) > 0 {
		if err := yaml.Unmarshal(raw, &fresh); err != nil {
			return fmt.Errorf("parsing preferences file: %w", err)
		}
		if fresh == nil {
			fresh = make(map[string]string)
		}
	}
	s.data = fresh
	return nil
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
