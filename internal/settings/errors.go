package settings

import "errors"

var (
	// ErrUnknownKey is returned for keys the model does not own, or owns
	// with a different kind.
	ErrUnknownKey = errors.New("unknown preference key")

	// ErrDuplicateKey is returned when two nodes, or a node and a marker,
	// share a persistence key.
	ErrDuplicateKey = errors.New("duplicate preference key")

	// ErrDisabled is returned for user changes to a disabled node.
	ErrDisabled = errors.New("preference is disabled")
)
