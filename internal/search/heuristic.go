package search

import "github.com/roach88/jfa/internal/model"

// Heuristic estimates the reward still obtainable from a state.
// It must never underestimate it for A* to stay optimal.
type Heuristic func(model.State) float64

// Optimistic bounds the remaining reward of each target by repeatedly
// engaging it with its single best opportunity.
//
// For every target that is not exhausted, the number of remaining slots is
// min(2·(1-selected), 2·selectable opportunities against it). Each slot
// claims value·p from the running value, where p is the highest success
// probability in the target's column (ties resolve to the lowest effector
// index). Effector capacity is ignored, which makes the bound loose.
func Optimistic(s model.State) float64 {
	remaining := 0.0
	for t, tgt := range s.Targets {
		if tgt.Exhausted() {
			continue
		}
		slots := min(int(2*(1-tgt.Selected)), 2*s.SelectableAgainst(t))
		if slots <= 0 {
			continue
		}
		_, p := bestOpportunity(s, t)
		value := tgt.Value
		for range slots {
			reward := value * p
			remaining += reward
			value -= reward
		}
	}
	return remaining
}

// Zero turns the engine into uniform-cost search.
func Zero(model.State) float64 { return 0 }

// bestOpportunity returns the effector with the highest success probability
// against target t, preferring the lowest index on ties.
func bestOpportunity(s model.State, t int) (effector int, p float64) {
	effector, p = -1, -1
	for e, row := range s.Opportunities {
		if row[t].PSuccess > p {
			effector, p = e, row[t].PSuccess
		}
	}
	if effector < 0 {
		return -1, 0
	}
	return effector, p
}
