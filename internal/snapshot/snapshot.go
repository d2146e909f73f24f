// Package snapshot holds the device configuration the settings model reads
// once at construction: which preference sections are visible, product
// defaults, rule switches and the reminder interval choices.
//
// A Snapshot is immutable. Nothing in the model queries device state after
// construction; everything it needs is captured here.
package snapshot

import (
	"maps"
	"slices"

	"github.com/sirupsen/logrus"

	"alertprefs/internal/logging"
)

// Choice is one legal list value with its display label.
type Choice struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Snapshot is the read-only configuration view.
type Snapshot struct {
	sections                map[string]bool
	defaults                map[string]string
	severeDependsOnExtreme  bool
	extremeLockedFromMaster bool
	intervals               []Choice
	intervalDefault         string
}

// New builds a Snapshot from its file form. Active reminder values without
// a label are kept with an empty label and logged.
func New(f File, logger logrus.FieldLogger) *Snapshot {
	if logger == nil {
		logger = logging.Discard()
	}

	s := &Snapshot{
		sections:                maps.Clone(f.Sections),
		defaults:                maps.Clone(f.Defaults),
		severeDependsOnExtreme:  f.SevereDependsOnExtreme,
		extremeLockedFromMaster: f.ExtremeLockedFromMaster,
		intervalDefault:         f.ReminderInterval.Default,
	}
	if s.sections == nil {
		s.sections = map[string]bool{}
	}
	if s.defaults == nil {
		s.defaults = map[string]string{}
	}

	table := f.ReminderInterval
	for _, v := range table.Active {
		label := ""
		if i := slices.Index(table.Values, v); i >= 0 && i < len(table.Labels) {
			label = table.Labels[i]
		} else {
			logger.WithField("value", v).Error("No label for active reminder interval")
		}
		s.intervals = append(s.intervals, Choice{Value: v, Label: label})
	}
	return s
}

// Visible reports whether a section is shown. Sections the configuration
// does not mention are visible.
func (s *Snapshot) Visible(section string) bool {
	v, ok := s.sections[section]
	return !ok || v
}

// Sections returns a copy of the explicit visibility flags.
func (s *Snapshot) Sections() map[string]bool {
	return maps.Clone(s.sections)
}

// Default returns the product default for key, if configured.
func (s *Snapshot) Default(key string) (string, bool) {
	v, ok := s.defaults[key]
	return v, ok
}

// SevereDependsOnExtreme reports whether turning extreme alerts off also
// disables severe alerts.
func (s *Snapshot) SevereDependsOnExtreme() bool {
	return s.severeDependsOnExtreme
}

// ExtremeLockedFromMaster reports whether the master toggle leaves the
// extreme alert switch alone.
func (s *Snapshot) ExtremeLockedFromMaster() bool {
	return s.extremeLockedFromMaster
}

// ReminderIntervals returns the reminder choices in display order.
func (s *Snapshot) ReminderIntervals() []Choice {
	return slices.Clone(s.intervals)
}

// ReminderIntervalDefault returns the default reminder interval value.
func (s *Snapshot) ReminderIntervalDefault() string {
	return s.intervalDefault
}
