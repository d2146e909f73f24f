package e2etests

import (
	"fmt"
	"strconv"
)

// TestCase defines a named e2e test scenario.
type TestCase struct {
	Name string
	Fn   func(r *Runner, sandbox string) error
}

// testCases is the ordered registry of all e2e test cases.
var testCases = []TestCase{
	{"01_show_defaults", caseShowDefaults},
	{"02_master_cascade", caseMasterCascade},
	{"03_override_dnd", caseOverrideDnd},
	{"04_reminder_interval", caseReminderInterval},
	{"05_rejected_changes", caseRejectedChanges},
	{"06_markers", caseMarkers},
}

// item mirrors the JSON form of one preference in show output.
type item struct {
	Key     string `json:"key"`
	Kind    string `json:"kind"`
	Value   string `json:"value"`
	Enabled bool   `json:"enabled"`
	Visible bool   `json:"visible"`
}

// mustRun runs a command and returns the result, failing the case on a
// non-zero exit.
func mustRun(r *Runner, sandbox string, args ...string) (RunResult, error) {
	result := r.Run(sandbox, args...)
	if result.ExitCode != 0 {
		return result, fmt.Errorf("command %v failed (exit %d): %s", args, result.ExitCode, result.Stderr)
	}
	return result, nil
}

// showItems fetches the given preferences as JSON, keyed by preference key.
func showItems(r *Runner, sandbox string, keys ...string) (map[string]item, error) {
	var items []item
	if err := r.RunJSON(sandbox, &items, append([]string{"show", "--all"}, keys...)...); err != nil {
		return nil, err
	}
	byKey := make(map[string]item, len(items))
	for _, it := range items {
		byKey[it.Key] = it
	}
	return byKey, nil
}

// expectSwitch checks a switch's persisted value and enabled state.
func expectSwitch(items map[string]item, key string, value, enabled bool) error {
	it, ok := items[key]
	if !ok {
		return fmt.Errorf("%s missing from show output", key)
	}
	if it.Value != strconv.FormatBool(value) {
		return fmt.Errorf("%s: value = %v, want %v", key, it.Value, value)
	}
	if it.Enabled != enabled {
		return fmt.Errorf("%s: enabled = %v, want %v", key, it.Enabled, enabled)
	}
	return nil
}
