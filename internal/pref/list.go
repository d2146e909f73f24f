package pref

import (
	"fmt"
	"slices"

	"alertprefs/internal/prefstore"
)

// List is an enumerated string preference.
//
// Values outside the legal set are accepted and persisted unless the list
// was built WithStrictValues; the render layer only offers legal choices.
type List struct {
	*node[string]

	values  []string
	entries []string
	strict  bool
}

// ListOption configures a List.
type ListOption func(*List)

// WithStrictValues rejects values outside the legal set with ErrIllegalValue.
// Values already stored under the key are still loaded as-is.
func WithStrictValues() ListOption {
	return func(l *List) {
		l.strict = true
	}
}

// NewList loads key from store, falling back to def. values is the ordered
// legal set and entries the matching display labels; entries may be nil.
func NewList(store *prefstore.Store, key, def string, values, entries []string, opts ...ListOption) (*List, error) {
	if len(entries) > 0 && len(entries) != len(values) {
		return nil, fmt.Errorf("preference %q: %d entries for %d values: %w",
			key, len(entries), len(values), ErrChoicesMismatch)
	}

	n, err := newNode[string](store, stringCodec{}, key, def)
	if err != nil {
		return nil, err
	}
	l := &List{
		node:    n,
		values:  slices.Clone(values),
		entries: slices.Clone(entries),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.strict {
		n.validate = l.checkLegal
	}
	return l, nil
}

// Values returns the legal values in display order.
func (l *List) Values() []string {
	return slices.Clone(l.values)
}

// Entries returns the display labels aligned with Values.
func (l *List) Entries() []string {
	return slices.Clone(l.entries)
}

// Legal reports whether v is one of the legal values. Comparison is exact.
func (l *List) Legal(v string) bool {
	return slices.Contains(l.values, v)
}

func (l *List) checkLegal(v string) error {
	if !l.Legal(v) {
		return fmt.Errorf("preference %q: %q: %w", l.key, v, ErrIllegalValue)
	}
	return nil
}
