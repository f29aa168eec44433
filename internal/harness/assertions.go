package harness

import (
	"fmt"
	"math"
	"slices"

	"github.com/roach88/jfa/internal/model"
)

// evaluate checks one assertion against every matching outcome and
// returns the failure messages.
func evaluate(a Assertion, r *Result, tol float64) []string {
	var failures []string
	matched := 0
	for _, o := range r.Outcomes {
		if a.Solver != "" && a.Solver != o.Solver {
			continue
		}
		matched++
		if msg := check(a, o, r.Optimum, tol); msg != "" {
			failures = append(failures, fmt.Sprintf("%s: %s", o.Solver, msg))
		}
	}
	if matched == 0 && a.Solver != "" {
		failures = append(failures, fmt.Sprintf("no outcome for solver %q", a.Solver))
	}
	return failures
}

func check(a Assertion, o Outcome, optimum, tol float64) string {
	switch a.Type {
	case AssertOptimal:
		if math.Abs(o.Claimed-optimum) > tol {
			return fmt.Sprintf("claimed %v, optimum %v", o.Claimed, optimum)
		}
	case AssertBounded:
		if o.Claimed > optimum+tol {
			return fmt.Sprintf("claimed %v exceeds optimum %v", o.Claimed, optimum)
		}
	case AssertClaimed:
		if math.Abs(o.Claimed-a.Value) > tol {
			return fmt.Sprintf("claimed %v, expected %v", o.Claimed, a.Value)
		}
	case AssertRemaining:
		if math.Abs(o.Remaining-a.Value) > tol {
			return fmt.Sprintf("remaining %v, expected %v", o.Remaining, a.Value)
		}
	case AssertActions:
		if !actionsMatch(o.Actions, a.Actions, a.Ordered) {
			return fmt.Sprintf("actions %s, expected %s",
				model.FormatActions(o.Actions), model.FormatActions(a.Actions))
		}
	case AssertMaxExpansions:
		if o.Stats == nil {
			return "no search statistics"
		}
		if o.Stats.Expansions > a.Count {
			return fmt.Sprintf("%d expansions, at most %d allowed", o.Stats.Expansions, a.Count)
		}
	}
	return ""
}

// actionsMatch compares sequences in order, or as multisets.
func actionsMatch(got, want []model.Action, ordered bool) bool {
	if len(got) != len(want) {
		return false
	}
	if ordered {
		return slices.Equal(got, want)
	}
	less := func(a, b model.Action) int {
		if a.Effector != b.Effector {
			return a.Effector - b.Effector
		}
		return a.Target - b.Target
	}
	g := slices.SortedFunc(slices.Values(got), less)
	w := slices.SortedFunc(slices.Values(want), less)
	return slices.Equal(g, w)
}
