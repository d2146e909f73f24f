// Package notifier consumes the settings model's changed-by-user signal and
// turns it into durable markers, a backup request and outbound broadcasts.
package notifier

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"alertprefs/internal/logging"
	"alertprefs/internal/pref"
	"alertprefs/internal/prefstore"
	"alertprefs/internal/settings"
)

// Backup is told whenever persisted preferences changed.
type Backup interface {
	DataChanged() error
}

// MarkerBackup records a pending backup as a persisted flag.
type MarkerBackup struct {
	Store *prefstore.Store
}

// DataChanged sets the backup marker.
func (b MarkerBackup) DataChanged() error {
	return b.Store.SetBoolean(settings.KeyBackupDataChanged, true)
}

// Option configures a Notifier.
type Option func(*Notifier)

// WithBackup replaces the default MarkerBackup.
func WithBackup(b Backup) Option {
	return func(n *Notifier) {
		n.backup = b
	}
}

// WithBroadcaster replaces the default LogBroadcaster.
func WithBroadcaster(b Broadcaster) Option {
	return func(n *Notifier) {
		n.broadcaster = b
	}
}

// WithMetrics sets the counters to update.
func WithMetrics(m *Metrics) Option {
	return func(n *Notifier) {
		n.metrics = m
	}
}

// WithLogger sets the logger.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(n *Notifier) {
		n.logger = logger
	}
}

// Notifier reacts to user changes in a settings model.
type Notifier struct {
	model       *settings.Model
	store       *prefstore.Store
	backup      Backup
	broadcaster Broadcaster
	metrics     *Metrics
	logger      logrus.FieldLogger
	log         *logrus.Entry
	sub         *settings.Subscription

	mu          sync.Mutex
	markerDue   bool
	areaUpdates []bool
}

// New subscribes to model. Only changes made after New are broadcast.
func New(model *settings.Model, store *prefstore.Store, opts ...Option) (*Notifier, error) {
	n := &Notifier{
		model: model,
		store: store,
	}
	for _, opt := range opts {
		opt(n)
	}
	if n.logger == nil {
		n.logger = logging.Discard()
	}
	n.log = n.logger.WithFields(logrus.Fields{
		"component": "notifier",
		"session":   model.Session(),
	})
	if n.backup == nil {
		n.backup = MarkerBackup{Store: store}
	}
	if n.broadcaster == nil {
		n.broadcaster = LogBroadcaster{Log: n.log}
	}
	if n.metrics == nil {
		m, err := NewMetrics(nil)
		if err != nil {
			return nil, err
		}
		n.metrics = m
	}

	n.sub = model.Subscribe(n.observe)
	return n, nil
}

func (n *Notifier) observe(c pref.Change) {
	if c.Key != settings.KeyAreaUpdateInfo || c.Field != pref.FieldValue {
		return
	}
	v, ok := c.New.(bool)
	if !ok {
		return
	}
	n.mu.Lock()
	n.areaUpdates = append(n.areaUpdates, v)
	n.mu.Unlock()
}

// Pending returns the number of queued broadcasts.
func (n *Notifier) Pending() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.areaUpdates)
}

// Flush drains the model's changed-by-user flag and sends queued broadcasts.
// Work that fails is kept and retried by the next Flush.
func (n *Notifier) Flush(ctx context.Context) error {
	var errs []error

	n.mu.Lock()
	if n.model.DrainChangedByUser() {
		n.markerDue = true
		n.metrics.UserChanges.Inc()
	}
	due := n.markerDue
	n.mu.Unlock()

	if due {
		if err := n.markChanged(); err != nil {
			errs = append(errs, err)
		} else {
			n.mu.Lock()
			n.markerDue = false
			n.mu.Unlock()
		}
	}

	if err := n.sendBroadcasts(ctx); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		n.metrics.FlushErrors.Inc()
		return errors.Join(errs...)
	}
	return nil
}

func (n *Notifier) markChanged() error {
	if err := n.store.SetBoolean(settings.KeyAnyChangedByUser, true); err != nil {
		return fmt.Errorf("recording user change: %w", err)
	}
	if err := n.backup.DataChanged(); err != nil {
		return fmt.Errorf("requesting backup: %w", err)
	}
	n.log.Debug("Recorded user change")
	return nil
}

func (n *Notifier) sendBroadcasts(ctx context.Context) error {
	n.mu.Lock()
	queue := n.areaUpdates
	n.areaUpdates = nil
	n.mu.Unlock()

	for i, v := range queue {
		b := Broadcast{Action: AreaUpdateInfoAction, Enable: v}
		if err := n.broadcaster.Broadcast(ctx, b); err != nil {
			n.mu.Lock()
			n.areaUpdates = append(append([]bool(nil), queue[i:]...), n.areaUpdates...)
			n.mu.Unlock()
			return fmt.Errorf("broadcasting %s: %w", b.Action, err)
		}
		n.metrics.Broadcasts.WithLabelValues(b.Action).Inc()
	}
	return nil
}

// Close stops observing the model.
func (n *Notifier) Close() {
	n.sub.Unsubscribe()
}
