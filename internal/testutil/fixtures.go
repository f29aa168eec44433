// Package testutil provides fixtures and reference solvers for tests.
package testutil

import (
	"math/rand/v2"

	"github.com/roach88/jfa/internal/model"
)

// SingleEngagement is one effector, one target (value 10) and one
// selectable opportunity with p = 0.9. The optimum claims 9 with (0, 0).
func SingleEngagement() *model.Problem {
	return &model.Problem{
		Name:          "single-engagement",
		Effectors:     []model.Effector{{Capacity: 1}},
		Targets:       []model.Target{{Value: 10}},
		Opportunities: [][]model.Opportunity{{{Selectable: true, PSuccess: 0.9}}},
	}
}

// DisjointPairs is two effectors and two targets (values 10 and 20) with
// one selectable opportunity per target on disjoint pairs, p = 0.8 and 0.5.
// The optimum takes both actions and leaves 12 unclaimed.
func DisjointPairs() *model.Problem {
	return &model.Problem{
		Name:      "disjoint-pairs",
		Effectors: []model.Effector{{Capacity: 1}, {Capacity: 1}},
		Targets:   []model.Target{{Value: 10}, {Value: 20}},
		Opportunities: [][]model.Opportunity{
			{{Selectable: true, PSuccess: 0.8}, {Selectable: false, PSuccess: 0.3}},
			{{Selectable: false, PSuccess: 0.6}, {Selectable: true, PSuccess: 0.5}},
		},
	}
}

// NoOpportunity has targets but nothing selectable.
func NoOpportunity() *model.Problem {
	return &model.Problem{
		Name:      "no-opportunity",
		Effectors: []model.Effector{{Capacity: 1}, {Capacity: 1}},
		Targets:   []model.Target{{Value: 4}, {Value: 6}},
		Opportunities: [][]model.Opportunity{
			{{PSuccess: 0.5}, {PSuccess: 0.5}},
			{{PSuccess: 0.5}, {PSuccess: 0.5}},
		},
	}
}

// Contested is a 2x2 instance where the greedy choice is not optimal:
// effector 0 is the only one able to reach target 1, but it also has the
// best immediate reward on target 0.
func Contested() *model.Problem {
	return &model.Problem{
		Name:      "contested",
		Effectors: []model.Effector{{Capacity: 1}, {Capacity: 1}},
		Targets:   []model.Target{{Value: 10}, {Value: 9}},
		Opportunities: [][]model.Opportunity{
			{{Selectable: true, PSuccess: 0.9}, {Selectable: true, PSuccess: 0.9}},
			{{Selectable: true, PSuccess: 0.8}, {Selectable: false, PSuccess: 0.1}},
		},
	}
}

// Commuting is a 2x2 instance where (0, 0) and (1, 1) do not interact, so
// both orders reach the same state.
func Commuting() *model.Problem {
	return &model.Problem{
		Name:      "commuting",
		Effectors: []model.Effector{{Capacity: 1}, {Capacity: 1}},
		Targets:   []model.Target{{Value: 5}, {Value: 7}},
		Opportunities: [][]model.Opportunity{
			{{Selectable: true, PSuccess: 0.5}, {Selectable: false, PSuccess: 0.5}},
			{{Selectable: false, PSuccess: 0.5}, {Selectable: true, PSuccess: 0.5}},
		},
	}
}

// RandomSmall draws an instance of at most maxE effectors and maxT targets.
// Capacities are 1 or 2 and roughly two thirds of opportunities are
// selectable, which keeps exhaustive enumeration cheap.
func RandomSmall(rng *rand.Rand, maxE, maxT int) *model.Problem {
	ne := 1 + rng.IntN(maxE)
	nt := 1 + rng.IntN(maxT)
	p := &model.Problem{
		Effectors:     make([]model.Effector, ne),
		Targets:       make([]model.Target, nt),
		Opportunities: make([][]model.Opportunity, ne),
	}
	for e := range p.Effectors {
		p.Effectors[e].Capacity = 1 + rng.IntN(2)
	}
	for t := range p.Targets {
		p.Targets[t].Value = float64(1 + rng.IntN(20))
	}
	for e := range p.Opportunities {
		row := make([]model.Opportunity, nt)
		for t := range row {
			row[t] = model.Opportunity{
				Selectable: rng.IntN(3) > 0,
				PSuccess:   float64(1+rng.IntN(19)) / 20,
			}
		}
		p.Opportunities[e] = row
	}
	return p
}
