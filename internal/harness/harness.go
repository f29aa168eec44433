package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/jfa/internal/solver"
)

// DefaultTolerance bounds float comparisons when a scenario sets none.
const DefaultTolerance = 1e-9

// Run executes a scenario with a background context.
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario)
}

// RunContext solves the scenario problem with every listed solver and
// evaluates the assertions.
//
// The returned error covers harness failures (unknown solver, reference
// solver failure). Solver errors and failed assertions are reported in
// Result.Errors.
func RunContext(ctx context.Context, scenario *Scenario) (*Result, error) {
	cfg := solver.DefaultConfig()
	if scenario.Seed != 0 {
		cfg.Seed = scenario.Seed
	}
	cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))

	names := scenario.Solvers
	if len(names) == 0 {
		names = solver.Names()
	}
	solvers, err := solver.Build(names, cfg)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	p := scenario.Problem
	ref, err := solver.NewBranchBound(cfg).Solve(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: reference solve: %w", scenario.Name, err)
	}

	result := NewResult()
	result.Optimum = ref.Claimed(p)

	for _, s := range solvers {
		sol, err := s.Solve(ctx, p)
		if err != nil {
			result.AddError(fmt.Sprintf("%s: %v", s.Name(), err))
			continue
		}
		result.Outcomes = append(result.Outcomes, Outcome{
			Solver:    s.Name(),
			Claimed:   sol.Claimed(p),
			Remaining: sol.Remaining,
			Actions:   sol.Actions,
			Stats:     sol.Stats,
		})
	}

	tol := scenario.Tolerance
	if tol == 0 {
		tol = DefaultTolerance
	}
	for i, a := range scenario.Assertions {
		for _, msg := range evaluate(a, result, tol) {
			result.AddError(fmt.Sprintf("assertion %d (%s): %s", i, a.Type, msg))
		}
	}

	return result, nil
}
