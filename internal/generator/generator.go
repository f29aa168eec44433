// Package generator produces random JFA problem instances.
//
// Generation is seeded and deterministic: the same seed and options
// always yield the same sequence of problems.
package generator

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/roach88/jfa/internal/model"
)

// ErrNoSelectable is returned when no instance with a selectable
// opportunity could be drawn within MaxAttempts.
var ErrNoSelectable = errors.New("no instance with a selectable opportunity")

// MaxAttempts bounds the redraws performed by Solvable.
const MaxAttempts = 1000

// Options shapes the distribution of generated instances.
type Options struct {
	MinCapacity    int     `yaml:"min_capacity" validate:"gte=0"`
	MaxCapacity    int     `yaml:"max_capacity" validate:"gtefield=MinCapacity"`
	MinValue       float64 `yaml:"min_value" validate:"gte=0"`
	MaxValue       float64 `yaml:"max_value" validate:"gtefield=MinValue"`
	MinPSuccess    float64 `yaml:"min_p_success" validate:"gte=0,lte=1"`
	MaxPSuccess    float64 `yaml:"max_p_success" validate:"gtefield=MinPSuccess,lte=1"`
	SelectableRate float64 `yaml:"selectable_rate" validate:"gte=0,lte=1"` // chance an opportunity is selectable
}

// DefaultOptions returns the distribution used by the batch tooling.
func DefaultOptions() Options {
	return Options{
		MinCapacity:    1,
		MaxCapacity:    2,
		MinValue:       1,
		MaxValue:       10,
		MinPSuccess:    0.1,
		MaxPSuccess:    0.95,
		SelectableRate: 0.6,
	}
}

// Generator draws problem instances from a seeded source.
// It is not safe for concurrent use.
type Generator struct {
	rng  *rand.Rand
	opts Options
}

// New creates a generator with the given seed.
func New(seed uint64, opts Options) *Generator {
	return &Generator{
		rng:  rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		opts: opts,
	}
}

// Problem draws one instance. It may have no selectable opportunity.
func (g *Generator) Problem(effectors, targets int) (*model.Problem, error) {
	if effectors < 1 || targets < 1 {
		return nil, fmt.Errorf("generate %dx%d: need at least one effector and one target", effectors, targets)
	}
	p := &model.Problem{
		Effectors:     make([]model.Effector, effectors),
		Targets:       make([]model.Target, targets),
		Opportunities: make([][]model.Opportunity, effectors),
	}
	for e := range p.Effectors {
		p.Effectors[e].Capacity = g.intBetween(g.opts.MinCapacity, g.opts.MaxCapacity)
	}
	for t := range p.Targets {
		p.Targets[t].Value = round2(g.floatBetween(g.opts.MinValue, g.opts.MaxValue))
	}
	for e := range p.Opportunities {
		row := make([]model.Opportunity, targets)
		for t := range row {
			row[t] = model.Opportunity{
				Selectable: p.Effectors[e].Capacity > 0 && g.rng.Float64() < g.opts.SelectableRate,
				PSuccess:   round2(g.floatBetween(g.opts.MinPSuccess, g.opts.MaxPSuccess)),
			}
		}
		p.Opportunities[e] = row
	}
	return p, nil
}

// Solvable draws instances until one has at least one selectable
// opportunity.
func (g *Generator) Solvable(effectors, targets int) (*model.Problem, error) {
	for range MaxAttempts {
		p, err := g.Problem(effectors, targets)
		if err != nil {
			return nil, err
		}
		if p.SelectableCount() > 0 {
			return p, nil
		}
	}
	return nil, fmt.Errorf("generate %dx%d after %d attempts: %w", effectors, targets, MaxAttempts, ErrNoSelectable)
}

func (g *Generator) intBetween(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + g.rng.IntN(hi-lo+1)
}

func (g *Generator) floatBetween(lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + g.rng.Float64()*(hi-lo)
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
