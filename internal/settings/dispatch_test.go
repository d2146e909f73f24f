package settings

import (
	"testing"

	"alertprefs/internal/pref"
)

func TestSubscribe_DeliversCascadeInOrder(t *testing.T) {
	m := newModel(t, newMemBackend(nil), nil)

	var got []pref.Change
	var severeSeen Item
	m.Subscribe(func(c pref.Change) {
		got = append(got, c)
		// Items must not deadlock inside an observer.
		severeSeen, _ = m.Item(KeySevere)
	})

	if err := m.ChangeSwitch(KeyExtreme, false); err != nil {
		t.Fatalf("ChangeSwitch: %v", err)
	}

	want := []struct {
		key   string
		field pref.Field
		src   pref.Source
	}{
		{KeyExtreme, pref.FieldValue, pref.SourceUser},
		{KeySevere, pref.FieldEnabled, pref.SourceProgram},
		{KeySevere, pref.FieldValue, pref.SourceProgram},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d changes, want %d: %+v", len(got), len(want), got)
	}
	for i, w := range want {
		if got[i].Key != w.key || got[i].Field != w.field || got[i].Source != w.src {
			t.Errorf("change %d = %+v, want %s %s %s", i, got[i], w.key, w.field, w.src)
		}
	}
	if severeSeen.Enabled || severeSeen.Checked() {
		t.Errorf("observer saw half-applied cascade: %+v", severeSeen)
	}
}

func TestSubscribe_Unsubscribe(t *testing.T) {
	m := newModel(t, newMemBackend(nil), nil)

	calls := 0
	sub := m.Subscribe(func(pref.Change) { calls++ })
	sub.Unsubscribe()
	sub.Unsubscribe()

	if err := m.ChangeSwitch(KeySpeech, false); err != nil {
		t.Fatalf("ChangeSwitch: %v", err)
	}
	if calls != 0 {
		t.Errorf("unsubscribed observer called %d times", calls)
	}
}

func TestSubscribe_ObserverMayChange(t *testing.T) {
	m := newModel(t, newMemBackend(nil), nil)

	var keys []string
	m.Subscribe(func(c pref.Change) {
		keys = append(keys, c.Key)
		if c.Key == KeySpeech {
			if err := m.ChangeSwitch(KeySecondLanguage, true); err != nil {
				t.Errorf("nested ChangeSwitch: %v", err)
			}
		}
	})

	if err := m.ChangeSwitch(KeySpeech, false); err != nil {
		t.Fatalf("ChangeSwitch: %v", err)
	}
	if len(keys) != 2 || keys[0] != KeySpeech || keys[1] != KeySecondLanguage {
		t.Errorf("delivered %v, want [%s %s]", keys, KeySpeech, KeySecondLanguage)
	}
}

func TestSubscribe_ConstructionNotReported(t *testing.T) {
	b := newMemBackend(map[string]string{KeyMasterToggle: "false"})
	m := newModel(t, b, nil)

	calls := 0
	m.Subscribe(func(pref.Change) { calls++ })
	if err := m.ChangeSwitch(KeySpeech, false); err != nil {
		t.Fatalf("ChangeSwitch: %v", err)
	}
	if calls != 1 {
		t.Errorf("observer called %d times, want 1", calls)
	}
}

func TestSubscribe_DirectNodeChangeDelivered(t *testing.T) {
	m := newModel(t, newMemBackend(nil), nil)

	var got []pref.Change
	m.Subscribe(func(c pref.Change) { got = append(got, c) })

	if err := mustSwitch(t, m, KeyExtreme).OnUserChange(false); err != nil {
		t.Fatalf("OnUserChange: %v", err)
	}
	if !m.ChangedByUser() {
		t.Error("direct user change did not raise changedByUser")
	}

	want := []struct {
		key   string
		field pref.Field
	}{
		{KeyExtreme, pref.FieldValue},
		{KeySevere, pref.FieldEnabled},
		{KeySevere, pref.FieldValue},
	}
	if len(got) != len(want) {
		t.Fatalf("delivered %d changes, want %d: %+v", len(got), len(want), got)
	}
	for i, w := range want {
		if got[i].Key != w.key || got[i].Field != w.field {
			t.Errorf("change %d = %+v, want %s %s", i, got[i], w.key, w.field)
		}
	}
}

func TestSubscribe_DirectSetValueDelivered(t *testing.T) {
	m := newModel(t, newMemBackend(nil), nil)

	calls := 0
	m.Subscribe(func(pref.Change) { calls++ })

	l, _ := m.List(KeyReminderInterval)
	if _, err := l.SetValue("15"); err != nil {
		t.Fatalf("SetValue: %v", err)
	}
	if calls != 1 {
		t.Errorf("observer called %d times, want 1", calls)
	}
	if m.ChangedByUser() {
		t.Error("programmatic SetValue raised changedByUser")
	}
}
