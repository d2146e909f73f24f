package snapshot

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// File is the on-disk form of a Snapshot (YAML or TOML).
type File struct {
	Sections                map[string]bool   `yaml:"sections" toml:"sections"`
	Defaults                map[string]string `yaml:"defaults" toml:"defaults"`
	SevereDependsOnExtreme  bool              `yaml:"severe_depends_on_extreme" toml:"severe_depends_on_extreme"`
	ExtremeLockedFromMaster bool              `yaml:"extreme_locked_from_master" toml:"extreme_locked_from_master"`
	ReminderInterval        IntervalTable     `yaml:"reminder_interval" toml:"reminder_interval"`
}

// IntervalTable lists every known reminder value with its label, and the
// subset active on this device.
type IntervalTable struct {
	Default string   `yaml:"default" toml:"default"`
	Active  []string `yaml:"active" toml:"active"`
	Values  []string `yaml:"values" toml:"values"`
	Labels  []string `yaml:"labels" toml:"labels"`
}

// DefaultFile returns the stock configuration.
func DefaultFile() File {
	return File{
		Sections: map[string]bool{
			"enable_alerts_master_toggle":               true,
			"enable_emergency_alerts":                   true,
			"enable_cmas_amber_alerts":                  true,
			"enable_cmas_extreme_threat_alerts":         true,
			"enable_cmas_severe_threat_alerts":          true,
			"enable_cmas_presidential_alerts":           false,
			"enable_public_safety_messages":             true,
			"enable_public_safety_messages_full_screen": false,
			"enable_test_alerts":                        false,
			"enable_exercise_alerts":                    false,
			"enable_operator_defined_alerts":            false,
			"enable_state_local_test_alerts":            false,
			"enable_alert_vibrate":                      true,
			"receive_cmas_in_second_language":           false,
			"override_dnd":                              false,
		},
		Defaults: map[string]string{
			"enable_alerts_master_toggle":               "true",
			"enable_emergency_alerts":                   "true",
			"enable_cmas_amber_alerts":                  "true",
			"enable_cmas_extreme_threat_alerts":         "true",
			"enable_cmas_severe_threat_alerts":          "true",
			"enable_public_safety_messages":             "true",
			"enable_public_safety_messages_full_screen": "false",
			"enable_exercise_alerts":                    "false",
			"enable_operator_defined_alerts":            "false",
			"enable_state_local_test_alerts":            "false",
			"override_dnd":                              "false",
		},
		SevereDependsOnExtreme: true,
		ReminderInterval: IntervalTable{
			Default: "0",
			Active:  []string{"0", "1", "2", "15"},
			Values:  []string{"0", "1", "2", "5", "15"},
			Labels:  []string{"Off", "Once", "Every 2 minutes", "Every 5 minutes", "Every 15 minutes"},
		},
	}
}

// Default returns the stock Snapshot.
func Default() *Snapshot {
	return New(DefaultFile(), nil)
}

// Load reads a snapshot file over DefaultFile. The format follows the
// extension: .toml is TOML, anything else YAML. A missing file yields the
// stock snapshot.
func Load(path string, logger logrus.FieldLogger) (*Snapshot, error) {
	f, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	return New(f, logger), nil
}

// ReadFile decodes path over DefaultFile without building a Snapshot.
func ReadFile(path string) (File, error) {
	f := DefaultFile()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return f, nil
		}
		return File{}, fmt.Errorf("reading snapshot %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), &f); err != nil {
			return File{}, fmt.Errorf("parsing snapshot %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(data, &f); err != nil {
			return File{}, fmt.Errorf("parsing snapshot %s: %w", path, err)
		}
	}
	return f, nil
}

// Write writes f to path, as TOML for a .toml extension and YAML otherwise.
func Write(path string, f File) error {
	var buf bytes.Buffer
	if strings.ToLower(filepath.Ext(path)) == ".toml" {
		if err := toml.NewEncoder(&buf).Encode(f); err != nil {
			return fmt.Errorf("encoding snapshot: %w", err)
		}
	} else {
		data, err := yaml.Marshal(f)
		if err != nil {
			return fmt.Errorf("encoding snapshot: %w", err)
		}
		buf.Write(data)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating snapshot directory: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	return nil
}
