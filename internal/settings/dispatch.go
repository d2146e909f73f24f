package settings

import (
	"sync"

	"alertprefs/internal/pref"
)

// Subscription represents an active model observer.
type Subscription struct {
	id uint64
	d  *dispatcher
}

// Unsubscribe removes this subscription. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	if s != nil && s.d != nil {
		s.d.remove(s.id)
	}
}

type observerEntry struct {
	id uint64
	fn pref.Observer
}

// dispatcher queues node changes while a cascade holds the model lock and
// delivers them in order afterwards. Changes made outside a cascade (for
// example straight on a node returned by Model.Switch) are delivered as
// soon as they are queued. Only one goroutine delivers at a time; a flush
// that finds delivery in progress (from another goroutine or from an
// observer that made a change itself) leaves the work to it.
type dispatcher struct {
	mu         sync.Mutex
	nextID     uint64
	observers  []observerEntry
	pending    []pref.Change
	cascade    bool
	delivering bool
}

func (d *dispatcher) add(fn pref.Observer) *Subscription {
	d.mu.Lock()
	defer d.mu.Unlock()

	id := d.nextID
	d.nextID++
	d.observers = append(d.observers, observerEntry{id: id, fn: fn})
	return &Subscription{id: id, d: d}
}

func (d *dispatcher) remove(id uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i, e := range d.observers {
		if e.id == id {
			d.observers = append(d.observers[:i:i], d.observers[i+1:]...)
			return
		}
	}
}

// hold defers delivery until release. Callers hold the model write lock,
// so at most one cascade is open at a time.
func (d *dispatcher) hold() {
	d.mu.Lock()
	d.cascade = true
	d.mu.Unlock()
}

// release ends the cascade opened by hold and delivers what it queued.
func (d *dispatcher) release() {
	d.mu.Lock()
	d.cascade = false
	d.mu.Unlock()
	d.flush()
}

func (d *dispatcher) enqueue(c pref.Change) {
	d.mu.Lock()
	d.pending = append(d.pending, c)
	held := d.cascade
	d.mu.Unlock()

	if !held {
		d.flush()
	}
}

func (d *dispatcher) flush() {
	d.mu.Lock()
	if d.delivering {
		d.mu.Unlock()
		return
	}
	d.delivering = true
	for len(d.pending) > 0 {
		batch := d.pending
		d.pending = nil
		obs := make([]observerEntry, len(d.observers))
		copy(obs, d.observers)
		d.mu.Unlock()

		for _, c := range batch {
			for _, e := range obs {
				e.fn(c)
			}
		}

		d.mu.Lock()
	}
	d.delivering = false
	d.mu.Unlock()
}
