package pref

import "alertprefs/internal/prefstore"

// Switch is a boolean preference.
type Switch struct {
	*node[bool]
}

// NewSwitch loads key from store, falling back to def.
func NewSwitch(store *prefstore.Store, key string, def bool) (*Switch, error) {
	n, err := newNode[bool](store, boolCodec{}, key, def)
	if err != nil {
		return nil, err
	}
	return &Switch{node: n}, nil
}

// Checked returns the current value.
func (s *Switch) Checked() bool {
	return s.Value()
}
