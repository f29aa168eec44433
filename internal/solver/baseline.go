package solver

import (
	"context"
	"math/rand/v2"

	"github.com/roach88/jfa/internal/model"
)

// Random picks uniformly among the selectable actions at every step.
type Random struct {
	seed uint64
}

// NewRandom returns a Random solver. Each Solve call reseeds, so a given
// seed and problem always produce the same sequence.
func NewRandom(seed uint64) *Random {
	return &Random{seed: seed}
}

func (*Random) Name() string { return "Random Choice" }

func (r *Random) Solve(ctx context.Context, p *model.Problem) (Solution, error) {
	rng := rand.New(rand.NewPCG(r.seed, r.seed^0x9e3779b97f4a7c15))
	return rollout(ctx, p, func(s model.State) model.Action {
		actions := s.SelectableActions()
		return actions[rng.IntN(len(actions))]
	})
}

// Greedy takes the action with the largest immediate expected reward.
// Ties go to the first action in row-major order.
type Greedy struct{}

func NewGreedy() *Greedy { return &Greedy{} }

func (*Greedy) Name() string { return "Greedy" }

func (*Greedy) Solve(ctx context.Context, p *model.Problem) (Solution, error) {
	return rollout(ctx, p, bestImmediate)
}

func bestImmediate(s model.State) model.Action {
	var best model.Action
	bestReward := -1.0
	for _, a := range s.SelectableActions() {
		if r := immediateReward(s, a); r > bestReward {
			best, bestReward = a, r
		}
	}
	return best
}

func immediateReward(s model.State, a model.Action) float64 {
	return s.Targets[a.Target].Value * s.Opportunities[a.Effector][a.Target].PSuccess
}
