package testutil

import (
	"github.com/roach88/jfa/internal/model"
	"github.com/roach88/jfa/internal/sim"
)

// BestReward enumerates every action sequence from s and returns the
// maximum total reward and one sequence achieving it. Only use it on tiny
// instances: the enumeration is exponential.
func BestReward(s model.State) (float64, []model.Action) {
	best := 0.0
	var bestPath []model.Action
	for _, a := range s.SelectableActions() {
		next, reward, _, err := sim.Simulation{}.Apply(a, s)
		if err != nil {
			panic(err)
		}
		sub, path := BestReward(next)
		if total := reward + sub; total > best {
			best = total
			bestPath = append([]model.Action{a}, path...)
		}
	}
	return best, bestPath
}

// Reachable returns every state reachable from s, s included.
// States reached along several paths are returned once per path.
func Reachable(s model.State) []model.State {
	out := []model.State{s}
	for _, a := range s.SelectableActions() {
		next, _, _, err := sim.Simulation{}.Apply(a, s)
		if err != nil {
			panic(err)
		}
		out = append(out, Reachable(next)...)
	}
	return out
}

// MustReset returns the initial state of p or panics.
func MustReset(p *model.Problem) model.State {
	s, err := sim.Simulation{}.Reset(p)
	if err != nil {
		panic(err)
	}
	return s
}
