package rules

import (
	"errors"
	"fmt"
	"slices"
)

// ErrInvalidRule is returned by Validate.
var ErrInvalidRule = errors.New("invalid rule set")

// Rule describes one registered rule for introspection and validation.
type Rule struct {
	Name    string   `json:"name"`
	Trigger string   `json:"trigger"`
	Targets []string `json:"targets"`
}

// Validate checks the structural invariants of a rule set: every rule is
// named, a trigger carries at most one rule, a rule never targets its own
// trigger, and every key it mentions is known. A nil known accepts any key.
func Validate(set []Rule, known func(key string) bool) error {
	var errs []error
	triggers := make(map[string]string, len(set))

	for _, r := range set {
		if r.Name == "" {
			errs = append(errs, fmt.Errorf("rule on %q has no name", r.Trigger))
		}
		if prev, ok := triggers[r.Trigger]; ok {
			errs = append(errs, fmt.Errorf("%s: trigger %q already has rule %s", r.Name, r.Trigger, prev))
		}
		triggers[r.Trigger] = r.Name

		if slices.Contains(r.Targets, r.Trigger) {
			errs = append(errs, fmt.Errorf("%s: targets its own trigger %q", r.Name, r.Trigger))
		}
		if known == nil {
			continue
		}
		for _, key := range append([]string{r.Trigger}, r.Targets...) {
			if !known(key) {
				errs = append(errs, fmt.Errorf("%s: unknown key %q", r.Name, key))
			}
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidRule, errors.Join(errs...))
}
