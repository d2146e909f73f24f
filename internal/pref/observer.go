package pref

import "sync"

// Field identifies which part of a node changed.
type Field int

const (
	// FieldValue is the persisted value (checked state for switches).
	FieldValue Field = iota

	// FieldEnabled is the runtime enabled flag.
	FieldEnabled
)

// String returns the field name.
func (f Field) String() string {
	switch f {
	case FieldValue:
		return "value"
	case FieldEnabled:
		return "enabled"
	default:
		return "unknown"
	}
}

// Source identifies where a change came from.
type Source string

const (
	// SourceUser marks changes made through OnUserChange.
	SourceUser Source = "user"

	// SourceProgram marks changes made through SetValue or SetEnabled,
	// including every rule effect.
	SourceProgram Source = "program"
)

// Change describes one state transition of a node.
type Change struct {
	Key    string
	Field  Field
	Old    any
	New    any
	Source Source
}

// Observer is called after a node's state actually changes.
type Observer func(change Change)

// Subscription represents an active observer registration.
type Subscription struct {
	id   uint64
	list *observers
}

// Unsubscribe removes this subscription. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	if s != nil && s.list != nil {
		s.list.remove(s.id)
	}
}

type entry struct {
	id uint64
	fn Observer
}

// observers is an ordered observer list. Delivery is synchronous and in
// subscription order; it happens outside the owning node's lock.
type observers struct {
	mu      sync.Mutex
	nextID  uint64
	entries []entry
}

func (o *observers) add(fn Observer) *Subscription {
	o.mu.Lock()
	defer o.mu.Unlock()

	id := o.nextID
	o.nextID++
	o.entries = append(o.entries, entry{id: id, fn: fn})
	return &Subscription{id: id, list: o}
}

func (o *observers) remove(id uint64) {
	o.mu.Lock()
	defer o.mu.Unlock()

	for i, e := range o.entries {
		if e.id == id {
			o.entries = append(o.entries[:i:i], o.entries[i+1:]...)
			return
		}
	}
}

func (o *observers) notify(change Change) {
	o.mu.Lock()
	snapshot := make([]entry, len(o.entries))
	copy(snapshot, o.entries)
	o.mu.Unlock()

	for _, e := range snapshot {
		e.fn(change)
	}
}
