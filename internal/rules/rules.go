// Package rules holds the cross-preference effects.
//
// Each constructor returns the callback a trigger node runs after a real user
// change. Rules act on targets only through Target, which has no user-change
// entry point: a rule can set values and enabled flags, but it can never make
// another rule fire. Rule chains and cycles are therefore impossible by
// construction and nothing checks for them at runtime.
package rules

import "fmt"

// Target is the part of a switch a rule may touch.
type Target interface {
	Key() string
	Checked() bool
	SetValue(v bool) (bool, error)
	SetEnabled(v bool)
}

// Latch persists a one-way boolean marker.
type Latch interface {
	SetBoolean(key string, v bool) error
}

// Master moves every sub-alert with the master toggle: each target is
// enabled/disabled and then checked/unchecked to the same value.
func Master(subAlerts ...Target) func(bool) error {
	return func(v bool) error {
		for _, t := range subAlerts {
			t.SetEnabled(v)
			if _, err := t.SetValue(v); err != nil {
				return fmt.Errorf("master rule on %q: %w", t.Key(), err)
			}
		}
		return nil
	}
}

// SevereFollowsExtreme disables and unchecks severe when extreme turns off,
// and only re-enables it when extreme turns back on. When dependent is false
// the rule does nothing.
func SevereFollowsExtreme(severe Target, dependent bool) func(bool) error {
	return func(v bool) error {
		if !dependent {
			return nil
		}
		severe.SetEnabled(v)
		if !v {
			if _, err := severe.SetValue(false); err != nil {
				return fmt.Errorf("severe rule on %q: %w", severe.Key(), err)
			}
		}
		return nil
	}
}

// VibrateFollowsOverrideDnd forces vibration on while DND is overridden and
// locks the vibrate switch in that state. Every firing also latches
// markerKey to true; the rule never clears it.
func VibrateFollowsOverrideDnd(vibrate Target, latch Latch, markerKey string) func(bool) error {
	return func(v bool) error {
		if err := latch.SetBoolean(markerKey, true); err != nil {
			return fmt.Errorf("dnd rule marker %q: %w", markerKey, err)
		}
		if v {
			if _, err := vibrate.SetValue(true); err != nil {
				return fmt.Errorf("dnd rule on %q: %w", vibrate.Key(), err)
			}
		}
		vibrate.SetEnabled(!v)
		return nil
	}
}
