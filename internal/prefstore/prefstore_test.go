package prefstore

import (
	"errors"
	"testing"
)

// mapBackend is a minimal Backend for exercising Store.
type mapBackend struct {
	data    map[string]string
	failSet error
	failGet error
}

func newMapBackend() *mapBackend {
	return &mapBackend{data: make(map[string]string)}
}

func (b *mapBackend) Get(key string) (string, bool, error) {
	if b.failGet != nil {
		return "", false, b.failGet
	}
	v, ok := b.data[key]
	return v, ok, nil
}

func (b *mapBackend) Set(key, value string) error {
	if b.failSet != nil {
		return b.failSet
	}
	b.data[key] = value
	return nil
}

func (b *mapBackend) All() (map[string]string, error) {
	out := make(map[string]string, len(b.data))
	for k, v := range b.data {
		out[k] = v
	}
	return out, nil
}

func TestGetBoolean_DefaultWhenMissing(t *testing.T) {
	s := New(newMapBackend())

	for _, def := range []bool{true, false} {
		got, err := s.GetBoolean("enable_alert_vibrate", def)
		if err != nil {
			t.Fatalf("GetBoolean: %v", err)
		}
		if got != def {
			t.Errorf("GetBoolean(missing, %v) = %v, want %v", def, got, def)
		}
	}
}

func TestSetBoolean_RoundTrip(t *testing.T) {
	b := newMapBackend()
	s := New(b)

	if err := s.SetBoolean("override_dnd", true); err != nil {
		t.Fatalf("SetBoolean: %v", err)
	}
	if b.data["override_dnd"] != "true" {
		t.Errorf("raw value = %q, want %q", b.data["override_dnd"], "true")
	}

	got, err := s.GetBoolean("override_dnd", false)
	if err != nil {
		t.Fatalf("GetBoolean: %v", err)
	}
	if !got {
		t.Error("GetBoolean = false, want true")
	}
}

func TestGetBoolean_UnparseableFallsBackToDefault(t *testing.T) {
	b := newMapBackend()
	b.data["enable_alert_speech"] = "maybe"
	s := New(b)

	got, err := s.GetBoolean("enable_alert_speech", true)
	if err != nil {
		t.Fatalf("GetBoolean: %v", err)
	}
	if !got {
		t.Error("GetBoolean(unparseable, true) = false, want default true")
	}
}

func TestGetString_RoundTrip(t *testing.T) {
	s := New(newMapBackend())

	got, err := s.GetString("alert_reminder_interval", "0")
	if err != nil {
		t.Fatalf("GetString: %v", err)
	}
	if got != "0" {
		t.Errorf("GetString(missing) = %q, want %q", got, "0")
	}

	if err := s.SetString("alert_reminder_interval", "2"); err != nil {
		t.Fatalf("SetString: %v", err)
	}
	got, err = s.GetString("alert_reminder_interval", "0")
	if err != nil {
		t.Fatalf("GetString: %v", err)
	}
	if got != "2" {
		t.Errorf("GetString = %q, want %q", got, "2")
	}
}

func TestSet_Idempotent(t *testing.T) {
	s := New(newMapBackend())

	for i := 0; i < 2; i++ {
		if err := s.SetString("k", "v"); err != nil {
			t.Fatalf("SetString #%d: %v", i, err)
		}
	}
	got, _ := s.GetString("k", "")
	if got != "v" {
		t.Errorf("GetString = %q, want %q", got, "v")
	}
}

func TestSet_WriteFailureIsSurfaced(t *testing.T) {
	b := newMapBackend()
	cause := errors.New("disk full")
	b.failSet = cause
	s := New(b)

	err := s.SetBoolean("override_dnd", true)
	if err == nil {
		t.Fatal("SetBoolean should fail when the backend fails")
	}
	if !errors.Is(err, ErrStorageWrite) {
		t.Errorf("error = %v, want ErrStorageWrite", err)
	}
	if !errors.Is(err, cause) {
		t.Errorf("error = %v, want wrapped cause", err)
	}
	var we *WriteError
	if !errors.As(err, &we) {
		t.Fatalf("error %T is not *WriteError", err)
	}
	if we.Key != "override_dnd" || we.Value != "true" {
		t.Errorf("WriteError = {%q, %q}, want {override_dnd, true}", we.Key, we.Value)
	}
}

func TestGet_ReadFailureIsReturned(t *testing.T) {
	b := newMapBackend()
	b.failGet = errors.New("connection refused")
	s := New(b)

	got, err := s.GetBoolean("k", true)
	if err == nil {
		t.Fatal("GetBoolean should fail when the backend fails")
	}
	if !got {
		t.Error("GetBoolean should still return the default on failure")
	}
}

func TestContains(t *testing.T) {
	s := New(newMapBackend())

	ok, err := s.Contains("k")
	if err != nil || ok {
		t.Fatalf("Contains(missing) = %v, %v; want false, nil", ok, err)
	}
	if err := s.SetBoolean("k", false); err != nil {
		t.Fatal(err)
	}
	ok, err = s.Contains("k")
	if err != nil || !ok {
		t.Fatalf("Contains(k) = %v, %v; want true, nil", ok, err)
	}
}

func TestValidateKey(t *testing.T) {
	valid := []string{"enable_alert_vibrate", "alert_reminder_interval", "a.b-c"}
	for _, key := range valid {
		if err := ValidateKey(key); err != nil {
			t.Errorf("ValidateKey(%q) unexpected error: %v", key, err)
		}
	}

	invalid := []string{"", "a/b", `a\b`, "a b", "a\nb"}
	for _, key := range invalid {
		err := ValidateKey(key)
		if err == nil {
			t.Errorf("ValidateKey(%q) should fail", key)
			continue
		}
		if !errors.Is(err, ErrInvalidKey) {
			t.Errorf("ValidateKey(%q) error = %v, want ErrInvalidKey", key, err)
		}
	}
}

func TestSet_InvalidKeyNeverReachesBackend(t *testing.T) {
	b := newMapBackend()
	s := New(b)

	if err := s.SetString("bad/key", "v"); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("SetString error = %v, want ErrInvalidKey", err)
	}
	if len(b.data) != 0 {
		t.Errorf("backend was written: %v", b.data)
	}
}
