package model

import (
	"fmt"
	"strings"
)

// Effector is a resource unit that can engage targets.
type Effector struct {
	// Capacity is the number of engagements the effector can still perform.
	Capacity int `json:"capacity" yaml:"capacity"`
}

// Target is an objective carrying a reward value.
type Target struct {
	// Value is the reward still obtainable from this target.
	Value float64 `json:"value" yaml:"value"`

	// Selected is the fraction of engagement attempts already spent,
	// in steps of SelectionStep. A target at 1 cannot be engaged again.
	Selected float64 `json:"selected" yaml:"selected"`
}

// Exhausted reports whether the target has used all its engagement attempts.
func (t Target) Exhausted() bool {
	return t.Selected >= 1
}

// Opportunity is a directed (effector, target) engagement option.
type Opportunity struct {
	Selectable bool    `json:"selectable" yaml:"selectable"`
	PSuccess   float64 `json:"p_success" yaml:"p_success"`
}

// SelectionStep is the fraction of a target consumed by one engagement.
// Two engagements exhaust a target.
const SelectionStep = 0.5

// Action pairs an effector with the target it engages.
type Action struct {
	Effector int `json:"effector" yaml:"effector"`
	Target   int `json:"target" yaml:"target"`
}

// String renders the action as "(e, t)".
func (a Action) String() string {
	return fmt.Sprintf("(%d, %d)", a.Effector, a.Target)
}

// FormatActions renders a sequence as "(0, 1),(2, 0)". An empty sequence
// renders as "".
func FormatActions(actions []Action) string {
	parts := make([]string, len(actions))
	for i, a := range actions {
		parts[i] = a.String()
	}
	return strings.Join(parts, ",")
}
