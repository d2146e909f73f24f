package pref

import (
	"errors"
	"path/filepath"
	"testing"

	"alertprefs/internal/prefstore"
	"alertprefs/internal/prefstore/yamlstore"
)

// flakyBackend wraps a map and can be told to fail writes.
type flakyBackend struct {
	data   map[string]string
	writes int
	fail   bool
}

func newFlakyBackend() *flakyBackend {
	return &flakyBackend{data: make(map[string]string)}
}

func (b *flakyBackend) Get(key string) (string, bool, error) {
	v, ok := b.data[key]
	return v, ok, nil
}

func (b *flakyBackend) Set(key, value string) error {
	if b.fail {
		return errors.New("injected write failure")
	}
	b.writes++
	b.data[key] = value
	return nil
}

func (b *flakyBackend) All() (map[string]string, error) {
	return b.data, nil
}

func newYAMLStore(t *testing.T) (*prefstore.Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prefs.yaml")
	b, err := yamlstore.New(path)
	if err != nil {
		t.Fatalf("yamlstore.New: %v", err)
	}
	return prefstore.New(b), path
}

func mustSwitch(t *testing.T, store *prefstore.Store, key string, def bool) *Switch {
	t.Helper()
	s, err := NewSwitch(store, key, def)
	if err != nil {
		t.Fatalf("NewSwitch(%s): %v", key, err)
	}
	return s
}

func TestNewSwitch_DefaultWhenMissing(t *testing.T) {
	store, _ := newYAMLStore(t)

	s := mustSwitch(t, store, "enable_test_alerts", false)

	if s.Checked() {
		t.Error("Checked() = true, want default false")
	}
	if !s.Enabled() {
		t.Error("Enabled() = false, want true after construction")
	}
	if s.Persisted() {
		t.Error("Persisted() = true before any write")
	}
}

func TestNewSwitch_ReadsPersistedValue(t *testing.T) {
	store, _ := newYAMLStore(t)
	if err := store.SetBoolean("enable_alert_vibrate", false); err != nil {
		t.Fatal(err)
	}

	s := mustSwitch(t, store, "enable_alert_vibrate", true)

	if s.Checked() {
		t.Error("Checked() = true, want persisted false")
	}
}

func TestSetValue_FirstWriteAlwaysPersists(t *testing.T) {
	store, _ := newYAMLStore(t)
	s := mustSwitch(t, store, "enable_alert_speech", true)

	changed, err := s.SetValue(true)
	if err != nil {
		t.Fatalf("SetValue: %v", err)
	}
	if changed {
		t.Error("SetValue(default) reported a change")
	}

	ok, err := store.Contains("enable_alert_speech")
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Error("first SetValue with the default value did not persist the key")
	}
	if !s.Persisted() {
		t.Error("Persisted() = false after first write")
	}
}

func TestSetValue_NoOpSkipsPersistAfterFirstWrite(t *testing.T) {
	b := newFlakyBackend()
	s := mustSwitch(t, prefstore.New(b), "k", false)

	if _, err := s.SetValue(false); err != nil {
		t.Fatal(err)
	}
	if _, err := s.SetValue(false); err != nil {
		t.Fatal(err)
	}
	if b.writes != 1 {
		t.Errorf("writes = %d, want 1 (first write only)", b.writes)
	}

	changed, err := s.SetValue(true)
	if err != nil {
		t.Fatal(err)
	}
	if !changed {
		t.Error("SetValue(true) should report a change")
	}
	if b.writes != 2 {
		t.Errorf("writes = %d, want 2", b.writes)
	}
}

func TestSetValue_WriteFailureKeepsPreviousValue(t *testing.T) {
	b := newFlakyBackend()
	s := mustSwitch(t, prefstore.New(b), "override_dnd", false)

	var notified int
	s.Subscribe(func(Change) { notified++ })

	b.fail = true
	changed, err := s.SetValue(true)
	if !errors.Is(err, prefstore.ErrStorageWrite) {
		t.Fatalf("SetValue error = %v, want ErrStorageWrite", err)
	}
	if changed {
		t.Error("failed SetValue reported a change")
	}
	if s.Checked() {
		t.Error("Checked() = true after failed write, want previous value")
	}
	if s.Persisted() {
		t.Error("Persisted() = true after failed write")
	}
	if notified != 0 {
		t.Errorf("observers notified %d times for a failed write", notified)
	}

	// The next write retries.
	b.fail = false
	if _, err := s.SetValue(true); err != nil {
		t.Fatalf("retry SetValue: %v", err)
	}
	if b.data["override_dnd"] != "true" {
		t.Errorf("stored = %q, want %q", b.data["override_dnd"], "true")
	}
}

func TestOnUserChange_RunsRuleAndSignalOnChange(t *testing.T) {
	store, _ := newYAMLStore(t)
	s := mustSwitch(t, store, "enable_cmas_extreme_threat_alerts", true)

	var ruleCalls []bool
	var signals []Change
	if err := s.AttachRule(func(v bool) error {
		ruleCalls = append(ruleCalls, v)
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	s.SetUserSignal(func(c Change) { signals = append(signals, c) })

	if err := s.OnUserChange(false); err != nil {
		t.Fatalf("OnUserChange: %v", err)
	}

	if len(ruleCalls) != 1 || ruleCalls[0] != false {
		t.Errorf("rule calls = %v, want [false]", ruleCalls)
	}
	if len(signals) != 1 {
		t.Fatalf("signals = %d, want 1", len(signals))
	}
	if signals[0].Key != s.Key() || signals[0].New != false || signals[0].Source != SourceUser {
		t.Errorf("signal = %+v", signals[0])
	}
}

func TestOnUserChange_NoOpSuppressesSideEffects(t *testing.T) {
	store, _ := newYAMLStore(t)
	s := mustSwitch(t, store, "enable_alert_vibrate", true)

	var fired int
	if err := s.AttachRule(func(bool) error { fired++; return nil }); err != nil {
		t.Fatal(err)
	}
	s.SetUserSignal(func(Change) { fired++ })

	if err := s.OnUserChange(true); err != nil {
		t.Fatalf("OnUserChange: %v", err)
	}
	if fired != 0 {
		t.Errorf("rule/signal fired %d times on a no-op change", fired)
	}
	// The no-op still counts as the session's first write.
	if ok, _ := store.Contains("enable_alert_vibrate"); !ok {
		t.Error("first user write did not persist")
	}
}

func TestOnUserChange_RuleErrorStillSignals(t *testing.T) {
	store, _ := newYAMLStore(t)
	s := mustSwitch(t, store, "override_dnd", false)

	cause := errors.New("target write failed")
	if err := s.AttachRule(func(bool) error { return cause }); err != nil {
		t.Fatal(err)
	}
	var signaled bool
	s.SetUserSignal(func(Change) { signaled = true })

	err := s.OnUserChange(true)
	if !errors.Is(err, cause) {
		t.Fatalf("OnUserChange error = %v, want rule error", err)
	}
	if !signaled {
		t.Error("user signal should fire for a recorded change even if the rule failed")
	}
	if !s.Checked() {
		t.Error("user value should stay applied")
	}
}

func TestOnUserChange_WriteFailureFiresNothing(t *testing.T) {
	b := newFlakyBackend()
	s := mustSwitch(t, prefstore.New(b), "k", false)

	var fired int
	_ = s.AttachRule(func(bool) error { fired++; return nil })
	s.SetUserSignal(func(Change) { fired++ })

	b.fail = true
	if err := s.OnUserChange(true); !errors.Is(err, prefstore.ErrStorageWrite) {
		t.Fatalf("OnUserChange error = %v, want ErrStorageWrite", err)
	}
	if fired != 0 {
		t.Errorf("side effects fired %d times after a failed write", fired)
	}
}

func TestAttachRule_OnlyOnce(t *testing.T) {
	store, _ := newYAMLStore(t)
	s := mustSwitch(t, store, "k", false)

	if err := s.AttachRule(func(bool) error { return nil }); err != nil {
		t.Fatal(err)
	}
	err := s.AttachRule(func(bool) error { return nil })
	if !errors.Is(err, ErrRuleAttached) {
		t.Errorf("second AttachRule error = %v, want ErrRuleAttached", err)
	}
}

func TestSetEnabled_NeverPersists(t *testing.T) {
	b := newFlakyBackend()
	s := mustSwitch(t, prefstore.New(b), "enable_alert_vibrate", true)

	s.SetEnabled(false)
	if s.Enabled() {
		t.Error("Enabled() = true after SetEnabled(false)")
	}
	if b.writes != 0 {
		t.Errorf("SetEnabled wrote %d times", b.writes)
	}
}

func TestSubscribe_ValueAndEnabledChanges(t *testing.T) {
	store, _ := newYAMLStore(t)
	s := mustSwitch(t, store, "enable_alert_vibrate", true)

	var got []Change
	sub := s.Subscribe(func(c Change) { got = append(got, c) })

	if _, err := s.SetValue(true); err != nil { // no change
		t.Fatal(err)
	}
	s.SetEnabled(true) // no change
	if _, err := s.SetValue(false); err != nil {
		t.Fatal(err)
	}
	s.SetEnabled(false)

	if len(got) != 2 {
		t.Fatalf("observer called %d times, want 2: %+v", len(got), got)
	}
	if got[0].Field != FieldValue || got[0].Old != true || got[0].New != false || got[0].Source != SourceProgram {
		t.Errorf("first change = %+v", got[0])
	}
	if got[1].Field != FieldEnabled || got[1].New != false {
		t.Errorf("second change = %+v", got[1])
	}

	sub.Unsubscribe()
	sub.Unsubscribe()
	s.SetEnabled(true)
	if len(got) != 2 {
		t.Errorf("observer called after Unsubscribe")
	}
}

func TestSubscribe_DeliveryOrder(t *testing.T) {
	store, _ := newYAMLStore(t)
	s := mustSwitch(t, store, "k", false)

	var order []int
	for i := 0; i < 3; i++ {
		s.Subscribe(func(Change) { order = append(order, i) })
	}
	s.SetEnabled(false)

	if len(order) != 3 || order[0] != 0 || order[1] != 1 || order[2] != 2 {
		t.Errorf("delivery order = %v, want [0 1 2]", order)
	}
}

func TestField_String(t *testing.T) {
	if FieldValue.String() != "value" || FieldEnabled.String() != "enabled" || Field(9).String() != "unknown" {
		t.Error("unexpected Field.String output")
	}
}

func TestNewSwitch_InvalidKey(t *testing.T) {
	store, _ := newYAMLStore(t)
	if _, err := NewSwitch(store, "bad key", false); !errors.Is(err, prefstore.ErrInvalidKey) {
		t.Errorf("NewSwitch error = %v, want ErrInvalidKey", err)
	}
}
