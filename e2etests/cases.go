package e2etests

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// 01: A fresh sandbox shows the default values and hides the sections the
// default snapshot turns off.
func caseShowDefaults(r *Runner, sandbox string) error {
	var visible []item
	if err := r.RunJSON(sandbox, &visible, "show"); err != nil {
		return err
	}
	for _, it := range visible {
		if it.Key == "enable_cmas_presidential_alerts" {
			return fmt.Errorf("presidential alerts should be hidden by default")
		}
	}

	items, err := showItems(r, sandbox)
	if err != nil {
		return err
	}
	if err := expectSwitch(items, "enable_alerts_master_toggle", true, true); err != nil {
		return err
	}
	if err := expectSwitch(items, "enable_alert_vibrate", true, true); err != nil {
		return err
	}
	if got := items["alert_reminder_interval"].Value; got != "0" {
		return fmt.Errorf("alert_reminder_interval = %q, want \"0\"", got)
	}
	return nil
}

// 02: Turning the master toggle off disables and clears every sub-alert, and
// the state survives into the next process.
func caseMasterCascade(r *Runner, sandbox string) error {
	if _, err := mustRun(r, sandbox, "set", "enable_alerts_master_toggle", "false"); err != nil {
		return err
	}

	items, err := showItems(r, sandbox)
	if err != nil {
		return err
	}
	for _, key := range []string{"enable_emergency_alerts", "enable_cmas_extreme_threat_alerts", "enable_cmas_severe_threat_alerts"} {
		if err := expectSwitch(items, key, false, false); err != nil {
			return err
		}
	}

	result := r.Run(sandbox, "set", "enable_cmas_amber_alerts", "true")
	if result.ExitCode == 0 {
		return fmt.Errorf("changing a disabled switch should fail")
	}

	if _, err := mustRun(r, sandbox, "toggle", "enable_alerts_master_toggle"); err != nil {
		return err
	}
	items, err = showItems(r, sandbox)
	if err != nil {
		return err
	}
	if err := expectSwitch(items, "enable_cmas_extreme_threat_alerts", true, true); err != nil {
		return err
	}
	return expectSwitch(items, "enable_cmas_severe_threat_alerts", true, true)
}

// 03: Overriding DND forces vibration on and locks it.
func caseOverrideDnd(r *Runner, sandbox string) error {
	if _, err := mustRun(r, sandbox, "set", "enable_alert_vibrate", "false"); err != nil {
		return err
	}

	var res struct {
		Changed bool `json:"changed"`
		Effects []struct {
			Key   string `json:"key"`
			Field string `json:"field"`
		} `json:"effects"`
	}
	if err := r.RunJSON(sandbox, &res, "set", "override_dnd", "true"); err != nil {
		return err
	}
	if !res.Changed {
		return fmt.Errorf("override_dnd should report a change")
	}
	if len(res.Effects) == 0 {
		return fmt.Errorf("override_dnd should report effects on enable_alert_vibrate")
	}

	items, err := showItems(r, sandbox)
	if err != nil {
		return err
	}
	if err := expectSwitch(items, "enable_alert_vibrate", true, false); err != nil {
		return err
	}
	return expectStored(sandbox, "override_dnd_settings_changed")
}

// 04: The reminder interval accepts its listed values and persists them.
func caseReminderInterval(r *Runner, sandbox string) error {
	if _, err := mustRun(r, sandbox, "set", "alert_reminder_interval", "15"); err != nil {
		return err
	}
	items, err := showItems(r, sandbox, "alert_reminder_interval")
	if err != nil {
		return err
	}
	if got := items["alert_reminder_interval"].Value; got != "15" {
		return fmt.Errorf("alert_reminder_interval = %q, want \"15\"", got)
	}

	result, err := mustRun(r, sandbox, "show", "alert_reminder_interval")
	if err != nil {
		return err
	}
	if !strings.Contains(result.Stdout, "15") {
		return fmt.Errorf("text show output missing value: %q", result.Stdout)
	}
	return nil
}

// 05: Unknown keys and malformed switch values fail without touching state.
func caseRejectedChanges(r *Runner, sandbox string) error {
	for _, args := range [][]string{
		{"set", "no_such_key", "true"},
		{"set", "enable_alert_speech", "maybe"},
		{"toggle", "alert_reminder_interval"},
	} {
		result := r.Run(sandbox, args...)
		if result.ExitCode == 0 {
			return fmt.Errorf("%v should fail", args)
		}
		if result.Stderr == "" {
			return fmt.Errorf("%v: expected an error message on stderr", args)
		}
	}
	items, err := showItems(r, sandbox, "enable_alert_speech")
	if err != nil {
		return err
	}
	return expectSwitch(items, "enable_alert_speech", true, true)
}

// 06: A user change leaves the changed-by-user and backup markers in the
// preference store.
func caseMarkers(r *Runner, sandbox string) error {
	if _, err := mustRun(r, sandbox, "set", "enable_alert_speech", "false"); err != nil {
		return err
	}
	return expectStored(sandbox, "any_preference_changed_by_user", "backup_data_changed")
}

// expectStored checks that the sandbox's YAML preference store holds keys.
func expectStored(sandbox string, keys ...string) error {
	data, err := os.ReadFile(filepath.Join(sandbox, ".alertprefs", "preferences.yaml"))
	if err != nil {
		return fmt.Errorf("reading preference store: %w", err)
	}
	for _, key := range keys {
		if !strings.Contains(string(data), key+":") {
			return fmt.Errorf("preference store missing %s:\n%s", key, data)
		}
	}
	return nil
}
