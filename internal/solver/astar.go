package solver

import (
	"context"
	"fmt"

	"github.com/roach88/jfa/internal/model"
	"github.com/roach88/jfa/internal/search"
	"github.com/roach88/jfa/internal/sim"
)

// AStar runs the best-first search engine. With the Zero heuristic it is
// uniform-cost search.
type AStar struct {
	name   string
	engine *search.Engine
}

// NewAStar returns the A* solver with the optimistic heuristic.
func NewAStar(cfg Config) *AStar {
	return &AStar{
		name:   "AStar",
		engine: search.New(sim.Simulation{}, cfg.engineOptions(search.Optimistic)...),
	}
}

// NewUCS returns the engine without a heuristic.
func NewUCS(cfg Config) *AStar {
	return &AStar{
		name:   "UCS",
		engine: search.New(sim.Simulation{}, cfg.engineOptions(search.Zero)...),
	}
}

func (a *AStar) Name() string { return a.name }

func (a *AStar) Solve(ctx context.Context, p *model.Problem) (Solution, error) {
	root, err := sim.Simulation{}.Reset(p)
	if err != nil {
		return Solution{}, err
	}
	res, err := a.engine.Search(ctx, root)
	stats := res.Stats
	if err != nil {
		return Solution{Stats: &stats}, fmt.Errorf("%s: %w", a.name, err)
	}
	if !res.Found {
		return Solution{Stats: &stats}, fmt.Errorf("%s on %q: %w", a.name, p.Name, ErrSearchExhausted)
	}
	return Solution{
		Remaining: res.Priority,
		Actions:   res.Actions,
		Stats:     &stats,
	}, nil
}
