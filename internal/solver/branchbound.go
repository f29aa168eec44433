package solver

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/roach88/jfa/internal/model"
	"github.com/roach88/jfa/internal/search"
	"github.com/roach88/jfa/internal/sim"
)

// BranchBound is a depth-first exact solver. A subtree is pruned when its
// remaining value minus the optimistic heuristic cannot beat the best
// terminal found so far. Children are tried in order of immediate reward.
type BranchBound struct {
	heuristic     search.Heuristic
	maxExpansions int
}

func NewBranchBound(cfg Config) *BranchBound {
	return &BranchBound{heuristic: search.Optimistic, maxExpansions: cfg.MaxExpansions}
}

func (*BranchBound) Name() string { return "Branch and Bound" }

type bnbRun struct {
	*BranchBound
	ctx   context.Context
	tr    sim.Simulation
	seen  map[model.StateKey][]model.State
	stats search.Stats
	// branched counts states whose children were generated; only these
	// are charged against maxExpansions.
	branched int

	best        float64
	bestActions []model.Action
	path        []model.Action
}

func (b *BranchBound) Solve(ctx context.Context, p *model.Problem) (Solution, error) {
	r := &bnbRun{
		BranchBound: b,
		ctx:         ctx,
		seen:        make(map[model.StateKey][]model.State),
		best:        math.Inf(1),
	}
	root, err := r.tr.Reset(p)
	if err != nil {
		return Solution{}, err
	}
	if err := r.visit(root); err != nil {
		stats := r.stats
		return Solution{Stats: &stats}, err
	}
	stats := r.stats
	actions := r.bestActions
	if actions == nil {
		actions = []model.Action{}
	}
	return Solution{Remaining: r.best, Actions: actions, Stats: &stats}, nil
}

// visited records s and reports whether an equal state was seen before.
// The remaining value is a function of the state, so a repeated state has
// an identical subtree.
func (r *bnbRun) visited(s model.State) bool {
	key := s.Key()
	for _, o := range r.seen[key] {
		if o.Equal(s) {
			return true
		}
	}
	r.seen[key] = append(r.seen[key], s)
	return false
}

type branch struct {
	action model.Action
	next   model.State
	reward float64
}

func (r *bnbRun) visit(s model.State) error {
	if r.stats.Expansions%cancelCheckEvery == 0 {
		if err := r.ctx.Err(); err != nil {
			return fmt.Errorf("branch and bound cancelled: %w", err)
		}
	}
	r.stats.Expansions++

	remaining := s.TotalValue()
	if !s.HasSelectable() {
		if remaining < r.best {
			r.best = remaining
			r.bestActions = append([]model.Action{}, r.path...)
		}
		return nil
	}
	if remaining-r.heuristic(s) >= r.best {
		return nil
	}

	if r.maxExpansions > 0 && r.branched >= r.maxExpansions {
		return &search.QuotaExceededError{Expansions: r.stats.Expansions, Limit: r.maxExpansions}
	}
	r.branched++

	actions := s.SelectableActions()
	branches := make([]branch, 0, len(actions))
	for _, a := range actions {
		next, reward, _, err := r.tr.Apply(a, s)
		if err != nil {
			return fmt.Errorf("expand %s: %w", a, err)
		}
		if r.visited(next) {
			r.stats.Duplicates++
			continue
		}
		branches = append(branches, branch{action: a, next: next, reward: reward})
	}
	r.stats.BranchFactor += len(branches)
	sort.SliceStable(branches, func(i, j int) bool {
		return branches[i].reward > branches[j].reward
	})

	for _, b := range branches {
		r.path = append(r.path, b.action)
		err := r.visit(b.next)
		r.path = r.path[:len(r.path)-1]
		if err != nil {
			return err
		}
	}
	return nil
}

const cancelCheckEvery = 1024
