// Package pref implements observable preference nodes backed by a
// prefstore.Store.
//
// A node holds one persisted value and a runtime enabled flag. Programmatic
// writes (SetValue) persist on change, and always on the first write of a
// session. User writes (OnUserChange) additionally run the node's rule and
// raise the user signal, but only when the value really changed.
package pref

import (
	"fmt"
	"sync"

	"alertprefs/internal/prefstore"
)

// codec moves a typed value in and out of the store.
type codec[T comparable] interface {
	load(s *prefstore.Store, key string, def T) (T, error)
	persist(s *prefstore.Store, key string, v T) error
}

type boolCodec struct{}

func (boolCodec) load(s *prefstore.Store, key string, def bool) (bool, error) {
	return s.GetBoolean(key, def)
}

func (boolCodec) persist(s *prefstore.Store, key string, v bool) error {
	return s.SetBoolean(key, v)
}

type stringCodec struct{}

func (stringCodec) load(s *prefstore.Store, key string, def string) (string, error) {
	return s.GetString(key, def)
}

func (stringCodec) persist(s *prefstore.Store, key string, v string) error {
	return s.SetString(key, v)
}

// node is the value cell shared by Switch and List.
type node[T comparable] struct {
	key   string
	store *prefstore.Store
	codec codec[T]

	mu        sync.RWMutex
	value     T
	enabled   bool
	persisted bool
	rule      func(T) error
	signal    func(Change)
	validate  func(T) error

	obs observers
}

func newNode[T comparable](store *prefstore.Store, c codec[T], key string, def T) (*node[T], error) {
	v, err := c.load(store, key, def)
	if err != nil {
		return nil, fmt.Errorf("loading preference %q: %w", key, err)
	}
	return &node[T]{
		key:     key,
		store:   store,
		codec:   c,
		value:   v,
		enabled: true,
	}, nil
}

// Key returns the persistence key.
func (n *node[T]) Key() string {
	return n.key
}

// Value returns the current in-memory value.
func (n *node[T]) Value() T {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.value
}

// Enabled reports whether the UI may interact with the node.
func (n *node[T]) Enabled() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.enabled
}

// Persisted reports whether the node has written its key this session.
func (n *node[T]) Persisted() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.persisted
}

// SetValue sets the value and reports whether it differed from the current one.
// The value is persisted when it changed or when the node has not written
// its key yet this session. If persisting fails the node keeps its previous
// value and the *prefstore.WriteError is returned.
func (n *node[T]) SetValue(v T) (bool, error) {
	return n.set(v, SourceProgram)
}

// OnUserChange applies a user edit. Only a real change runs the node's rule
// and raises the user signal. The signal is raised even when the rule fails,
// since the user's own value was already recorded.
func (n *node[T]) OnUserChange(v T) error {
	changed, err := n.set(v, SourceUser)
	if err != nil || !changed {
		return err
	}

	n.mu.RLock()
	rule, signal := n.rule, n.signal
	n.mu.RUnlock()

	var ruleErr error
	if rule != nil {
		if err := rule(v); err != nil {
			ruleErr = fmt.Errorf("applying rule for %q: %w", n.key, err)
		}
	}
	if signal != nil {
		signal(Change{Key: n.key, Field: FieldValue, New: v, Source: SourceUser})
	}
	return ruleErr
}

// SetEnabled overwrites the enabled flag. It never persists and never runs rules.
func (n *node[T]) SetEnabled(v bool) {
	n.mu.Lock()
	old := n.enabled
	n.enabled = v
	n.mu.Unlock()

	if old != v {
		n.obs.notify(Change{Key: n.key, Field: FieldEnabled, Old: old, New: v, Source: SourceProgram})
	}
}

// AttachRule registers the callback run after a real user change.
// A node carries at most one rule.
func (n *node[T]) AttachRule(fn func(T) error) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.rule != nil {
		return fmt.Errorf("preference %q: %w", n.key, ErrRuleAttached)
	}
	n.rule = fn
	return nil
}

// SetUserSignal registers the callback raised once per real user change.
func (n *node[T]) SetUserSignal(fn func(Change)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.signal = fn
}

// Subscribe registers an observer for value and enabled changes.
// Observers run synchronously on the goroutine that made the change.
func (n *node[T]) Subscribe(fn Observer) *Subscription {
	return n.obs.add(fn)
}

func (n *node[T]) set(v T, src Source) (bool, error) {
	if n.validate != nil {
		if err := n.validate(v); err != nil {
			return false, err
		}
	}

	n.mu.Lock()
	old := n.value
	changed := old != v
	if changed || !n.persisted {
		if err := n.codec.persist(n.store, n.key, v); err != nil {
			n.mu.Unlock()
			return false, err
		}
		n.persisted = true
	}
	n.value = v
	n.mu.Unlock()

	if changed {
		n.obs.notify(Change{Key: n.key, Field: FieldValue, Old: old, New: v, Source: src})
	}
	return changed, nil
}
