// Package solver wraps assignment strategies behind a common interface.
//
// The exact strategies (AStar, UCS and Branch and Bound) are built on the
// search package and return the optimum. Random, Greedy and GA are
// baselines for batch comparisons.
package solver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/roach88/jfa/internal/model"
	"github.com/roach88/jfa/internal/search"
	"github.com/roach88/jfa/internal/sim"
)

// ErrSearchExhausted is returned when an exact search drains its frontier
// without confirming a terminal state.
var ErrSearchExhausted = errors.New("search exhausted without a terminal state")

// ErrUnknownSolver is returned by New for an unregistered name.
var ErrUnknownSolver = errors.New("unknown solver")

// Solution is the outcome of one solver run.
type Solution struct {
	// Remaining is the target value left unclaimed after Actions.
	Remaining float64 `json:"remaining"`

	Actions []model.Action `json:"actions"`

	// Stats is nil for solvers that do not search a state graph.
	Stats *search.Stats `json:"stats,omitempty"`
}

// Claimed returns the expected reward of the solution for problem p.
func (s Solution) Claimed(p *model.Problem) float64 {
	return p.TotalValue() - s.Remaining
}

// Solver finds an action sequence for a problem.
type Solver interface {
	// Name is the display name used in reports and CSV headers.
	Name() string
	Solve(ctx context.Context, p *model.Problem) (Solution, error)
}

// Config carries the tuning shared by all solvers.
type Config struct {
	Seed          uint64
	ProgressEvery int
	MaxExpansions int
	GA            GeneticConfig

	// Reporter receives search progress from the exact solvers. Nil means
	// no reporting.
	Reporter search.Reporter
	Logger   *slog.Logger
}

// DefaultConfig returns the configuration used when none is given.
func DefaultConfig() Config {
	return Config{
		Seed:          1,
		ProgressEvery: search.DefaultProgressEvery,
		GA:            DefaultGeneticConfig(),
	}
}

func (c Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

func (c Config) engineOptions(h search.Heuristic) []search.Option {
	opts := []search.Option{
		search.WithHeuristic(h),
		search.WithProgressEvery(c.ProgressEvery),
		search.WithMaxExpansions(c.MaxExpansions),
		search.WithLogger(c.logger()),
	}
	if c.Reporter != nil {
		opts = append(opts, search.WithReporter(c.Reporter))
	}
	return opts
}

var registry = map[string]func(Config) Solver{
	"random": func(c Config) Solver { return NewRandom(c.Seed) },
	"greedy": func(Config) Solver { return NewGreedy() },
	"astar":  func(c Config) Solver { return NewAStar(c) },
	"ucs":    func(c Config) Solver { return NewUCS(c) },
	"bnb":    func(c Config) Solver { return NewBranchBound(c) },
	"ga":     func(c Config) Solver { return NewGenetic(c.Seed, c.GA) },
}

// Names returns the registered solver names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New builds the solver registered under name.
func New(name string, cfg Config) (Solver, error) {
	build, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w %q (known: %s)", ErrUnknownSolver, name, strings.Join(Names(), ", "))
	}
	return build(cfg), nil
}

// Build creates one solver per name, preserving order.
func Build(names []string, cfg Config) ([]Solver, error) {
	solvers := make([]Solver, 0, len(names))
	for _, name := range names {
		s, err := New(name, cfg)
		if err != nil {
			return nil, err
		}
		solvers = append(solvers, s)
	}
	return solvers, nil
}

// policy picks the next action in a non-terminal state.
type policy func(s model.State) model.Action

// rollout applies pick from the problem's initial state until no
// opportunity is selectable.
func rollout(ctx context.Context, p *model.Problem, pick policy) (Solution, error) {
	var tr sim.Simulation
	s, err := tr.Reset(p)
	if err != nil {
		return Solution{}, err
	}
	actions := []model.Action{}
	for s.HasSelectable() {
		if err := ctx.Err(); err != nil {
			return Solution{}, fmt.Errorf("rollout cancelled: %w", err)
		}
		a := pick(s)
		next, _, _, err := tr.Apply(a, s)
		if err != nil {
			return Solution{}, fmt.Errorf("rollout %s: %w", a, err)
		}
		actions = append(actions, a)
		s = next
	}
	return Solution{Remaining: s.TotalValue(), Actions: actions}, nil
}
