package pref

import "errors"

var (
	// ErrIllegalValue is returned by a strict List for values outside its legal set.
	ErrIllegalValue = errors.New("value not in legal set")

	// ErrRuleAttached is returned when a second rule is attached to a node.
	ErrRuleAttached = errors.New("node already has a rule")

	// ErrChoicesMismatch is returned when a List gets a label table that does
	// not line up with its values.
	ErrChoicesMismatch = errors.New("entries do not match values")
)
