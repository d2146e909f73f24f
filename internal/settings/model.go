// Package settings owns the alert preference nodes, the rules between them,
// and the changed-by-user signal consumed by the notifier.
//
// Every user edit enters through ChangeSwitch or ChangeList. The whole
// cascade (the node write, its rule, and the rule's effects) runs under the
// model's write lock, so Items never observes a half-applied rule. Observers
// registered with Subscribe are called after the lock is released.
package settings

import (
	"fmt"
	"slices"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"alertprefs/internal/logging"
	"alertprefs/internal/pref"
	"alertprefs/internal/prefstore"
	"alertprefs/internal/rules"
	"alertprefs/internal/snapshot"
)

// Option configures a Model.
type Option func(*Model)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(m *Model) {
		m.logger = logger
	}
}

// WithStrictLists makes list nodes reject values outside their legal set.
func WithStrictLists() Option {
	return func(m *Model) {
		m.strictLists = true
	}
}

// Model is the settings aggregate.
type Model struct {
	store   *prefstore.Store
	snap    *snapshot.Snapshot
	logger  logrus.FieldLogger
	log     *logrus.Entry
	session string

	strictLists bool

	// mu serializes user cascades against each other and against Items.
	mu       sync.RWMutex
	switches map[string]*pref.Switch
	lists    map[string]*pref.List
	order    []string
	ruleSet  []rules.Rule

	flagMu        sync.Mutex
	changedByUser bool
	lastChange    pref.Change
	hasLast       bool

	dispatch dispatcher
}

// New builds every node from store, wires the rules and applies the master
// toggle if it is currently off. A nil snap uses snapshot.Default().
func New(store *prefstore.Store, snap *snapshot.Snapshot, opts ...Option) (*Model, error) {
	if snap == nil {
		snap = snapshot.Default()
	}
	m := &Model{
		store:    store,
		snap:     snap,
		switches: make(map[string]*pref.Switch, len(switchCatalog)),
		lists:    make(map[string]*pref.List, 1),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = logging.Discard()
	}
	m.session = uuid.NewString()
	m.log = m.logger.WithFields(logrus.Fields{
		"component": "settings",
		"session":   m.session,
	})

	keys := make([]string, 0, len(switchCatalog)+1)
	for _, spec := range switchCatalog {
		keys = append(keys, spec.key)
	}
	keys = append(keys, KeyReminderInterval)
	if err := checkKeys(keys); err != nil {
		return nil, err
	}

	for _, spec := range switchCatalog {
		sw, err := pref.NewSwitch(store, spec.key, m.switchDefault(spec))
		if err != nil {
			return nil, err
		}
		m.switches[spec.key] = sw
		m.order = append(m.order, spec.key)
	}

	reminder, err := m.newReminderList()
	if err != nil {
		return nil, err
	}
	m.lists[KeyReminderInterval] = reminder
	m.order = append(m.order, KeyReminderInterval)

	master, err := m.wireRules()
	if err != nil {
		return nil, err
	}
	if !m.switches[KeyMasterToggle].Checked() {
		if err := master(false); err != nil {
			return nil, fmt.Errorf("applying master toggle: %w", err)
		}
	}

	// Subscribed after the master pre-application so construction effects
	// are never reported as changes.
	for _, key := range m.order {
		n := m.node(key)
		n.SetUserSignal(m.userChanged)
		n.Subscribe(m.dispatch.enqueue)
	}

	m.log.WithField("master", m.switches[KeyMasterToggle].Checked()).Debug("Settings model ready")
	return m, nil
}

// checkKeys reports an ErrDuplicateKey when node keys repeat or collide
// with a marker key.
func checkKeys(keys []string) error {
	seen := make(map[string]bool, len(keys)+len(markerKeys))
	for _, k := range markerKeys {
		seen[k] = true
	}
	for _, k := range keys {
		if seen[k] {
			return fmt.Errorf("%q: %w", k, ErrDuplicateKey)
		}
		seen[k] = true
	}
	return nil
}

func (m *Model) switchDefault(spec switchSpec) bool {
	raw, ok := m.snap.Default(spec.key)
	if !ok {
		return spec.def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		m.log.WithFields(logrus.Fields{"key": spec.key, "default": raw}).Warn("Ignoring non-boolean default")
		return spec.def
	}
	return v
}

func (m *Model) newReminderList() (*pref.List, error) {
	def := m.snap.ReminderIntervalDefault()
	if def == "" {
		if v, ok := m.snap.Default(KeyReminderInterval); ok {
			def = v
		} else {
			def = defaultReminderInterval
		}
	}

	choices := m.snap.ReminderIntervals()
	values := make([]string, len(choices))
	labels := make([]string, len(choices))
	for i, c := range choices {
		values[i] = c.Value
		labels[i] = c.Label
	}

	var opts []pref.ListOption
	if m.strictLists {
		opts = append(opts, pref.WithStrictValues())
	}
	return pref.NewList(m.store, KeyReminderInterval, def, values, labels, opts...)
}

// wireRules attaches every rule and returns the master rule for the
// construction-time pre-application.
func (m *Model) wireRules() (func(bool) error, error) {
	var subAlerts []rules.Target
	var subKeys []string
	for _, key := range subAlertKeys {
		if key == KeyExtreme && m.snap.ExtremeLockedFromMaster() {
			continue
		}
		subAlerts = append(subAlerts, m.switches[key])
		subKeys = append(subKeys, key)
	}

	master := rules.Master(subAlerts...)
	m.ruleSet = []rules.Rule{
		{Name: "master", Trigger: KeyMasterToggle, Targets: subKeys},
		{Name: "severe_follows_extreme", Trigger: KeyExtreme, Targets: []string{KeySevere}},
		{Name: "vibrate_follows_override_dnd", Trigger: KeyOverrideDnd, Targets: []string{KeyVibrate}},
	}
	if err := rules.Validate(m.ruleSet, m.isNode); err != nil {
		return nil, err
	}

	fns := map[string]func(bool) error{
		KeyMasterToggle: master,
		KeyExtreme:      rules.SevereFollowsExtreme(m.switches[KeySevere], m.snap.SevereDependsOnExtreme()),
		KeyOverrideDnd:  rules.VibrateFollowsOverrideDnd(m.switches[KeyVibrate], m.store, KeyDndSettingsChanged),
	}
	for _, r := range m.ruleSet {
		name, fn := r.Name, fns[r.Trigger]
		err := m.switches[r.Trigger].AttachRule(func(v bool) error {
			m.log.WithFields(logrus.Fields{"rule": name, "value": v}).Debug("Applying rule")
			return fn(v)
		})
		if err != nil {
			return nil, err
		}
	}
	return master, nil
}

func (m *Model) isNode(key string) bool {
	_, sw := m.switches[key]
	_, l := m.lists[key]
	return sw || l
}

type anyNode interface {
	Enabled() bool
	SetUserSignal(fn func(pref.Change))
	Subscribe(fn pref.Observer) *pref.Subscription
}

func (m *Model) node(key string) anyNode {
	if sw, ok := m.switches[key]; ok {
		return sw
	}
	return m.lists[key]
}

func (m *Model) userChanged(c pref.Change) {
	m.flagMu.Lock()
	m.changedByUser = true
	m.lastChange = c
	m.hasLast = true
	m.flagMu.Unlock()

	m.log.WithFields(logrus.Fields{"key": c.Key, "value": c.New}).Info("Preference changed by user")
}

// Session identifies this model instance in logs.
func (m *Model) Session() string {
	return m.session
}

// Snapshot returns the configuration the model was built with.
func (m *Model) Snapshot() *snapshot.Snapshot {
	return m.snap
}

// Keys returns every node key in display order.
func (m *Model) Keys() []string {
	return slices.Clone(m.order)
}

// Rules returns the registered rules.
func (m *Model) Rules() []rules.Rule {
	out := make([]rules.Rule, len(m.ruleSet))
	for i, r := range m.ruleSet {
		r.Targets = slices.Clone(r.Targets)
		out[i] = r
	}
	return out
}

// Switch returns the switch stored under key, for reading. User edits
// should go through ChangeSwitch: it rejects disabled switches and applies
// the whole cascade under the model lock, so Items never sees it half done.
// Changes made on the node directly still reach Subscribe observers.
func (m *Model) Switch(key string) (*pref.Switch, bool) {
	sw, ok := m.switches[key]
	return sw, ok
}

// List returns the list stored under key, for reading. User edits should
// go through ChangeList.
func (m *Model) List(key string) (*pref.List, bool) {
	l, ok := m.lists[key]
	return l, ok
}

// ChangeSwitch applies a user edit to a switch.
func (m *Model) ChangeSwitch(key string, v bool) error {
	sw, ok := m.switches[key]
	if !ok {
		return fmt.Errorf("switch %q: %w", key, ErrUnknownKey)
	}
	return m.change(key, sw, func() error { return sw.OnUserChange(v) })
}

// ChangeList applies a user edit to a list.
func (m *Model) ChangeList(key, v string) error {
	l, ok := m.lists[key]
	if !ok {
		return fmt.Errorf("list %q: %w", key, ErrUnknownKey)
	}
	return m.change(key, l, func() error { return l.OnUserChange(v) })
}

func (m *Model) change(key string, n anyNode, apply func() error) error {
	m.mu.Lock()
	m.dispatch.hold()
	var err error
	if n.Enabled() {
		err = apply()
	} else {
		err = fmt.Errorf("%q: %w", key, ErrDisabled)
	}
	m.mu.Unlock()

	m.dispatch.release()
	return err
}

// ChangedByUser reports whether a user change happened since the last drain.
func (m *Model) ChangedByUser() bool {
	m.flagMu.Lock()
	defer m.flagMu.Unlock()
	return m.changedByUser
}

// DrainChangedByUser returns the changed-by-user flag and clears it.
func (m *Model) DrainChangedByUser() bool {
	m.flagMu.Lock()
	defer m.flagMu.Unlock()
	v := m.changedByUser
	m.changedByUser = false
	return v
}

// LastUserChange returns the most recent user change, if any.
func (m *Model) LastUserChange() (pref.Change, bool) {
	m.flagMu.Lock()
	defer m.flagMu.Unlock()
	return m.lastChange, m.hasLast
}

// Subscribe registers an observer for every node change made through the
// model, including rule effects. Observers run after the cascade that
// produced the change has released the model lock, so they may call Items.
func (m *Model) Subscribe(fn pref.Observer) *Subscription {
	return m.dispatch.add(fn)
}
