package prefstore

import (
	"errors"
	"fmt"
)

var (
	// ErrStorageWrite is matched by every *WriteError.
	ErrStorageWrite = errors.New("preference write failed")

	// ErrInvalidKey is returned for keys no backend can store.
	ErrInvalidKey = errors.New("invalid preference key")
)

// WriteError reports a value that could not be durably recorded.
// In-memory state must not be considered persisted when this is returned.
type WriteError struct {
	Key   string
	Value string
	Err   error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("persisting %q = %q: %v", e.Key, e.Value, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrStorageWrite) true for any *WriteError.
func (e *WriteError) Is(target error) bool {
	return target == ErrStorageWrite
}
