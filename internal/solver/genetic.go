package solver

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/roach88/jfa/internal/model"
	"github.com/roach88/jfa/internal/sim"
)

// GeneticConfig tunes the genetic solver.
type GeneticConfig struct {
	PopulationSize int     `yaml:"population_size" validate:"gte=2"`
	Generations    int     `yaml:"generations" validate:"gte=1"`
	MutationRate   float64 `yaml:"mutation_rate" validate:"gte=0,lte=1"`
	Tournament     int     `yaml:"tournament" validate:"gte=1"`
	Elite          int     `yaml:"elite" validate:"gte=0,ltefield=PopulationSize"`
}

// DefaultGeneticConfig returns the standard tuning.
func DefaultGeneticConfig() GeneticConfig {
	return GeneticConfig{
		PopulationSize: 240,
		Generations:    60,
		MutationRate:   0.1,
		Tournament:     3,
		Elite:          2,
	}
}

// Genetic evolves priority orderings over all effector/target pairs. A
// chromosome decodes to an action sequence by repeatedly taking the first
// pair in its order that is selectable.
type Genetic struct {
	seed uint64
	cfg  GeneticConfig
}

func NewGenetic(seed uint64, cfg GeneticConfig) *Genetic {
	return &Genetic{seed: seed, cfg: cfg}
}

func (*Genetic) Name() string { return "GA" }

type chromosome struct {
	genes     []int
	remaining float64
	actions   []model.Action
}

func (g *Genetic) Solve(ctx context.Context, p *model.Problem) (Solution, error) {
	var tr sim.Simulation
	root, err := tr.Reset(p)
	if err != nil {
		return Solution{}, err
	}
	if !root.HasSelectable() {
		return Solution{Remaining: root.TotalValue(), Actions: []model.Action{}}, nil
	}

	rng := rand.New(rand.NewPCG(g.seed, g.seed^0xbf58476d1ce4e5b9))
	nt := root.NumTargets()
	genes := root.NumEffectors() * nt

	decode := func(c *chromosome) error {
		s := root
		c.actions = c.actions[:0]
		for s.HasSelectable() {
			var next model.State
			found := false
			for _, gene := range c.genes {
				a := model.Action{Effector: gene / nt, Target: gene % nt}
				if !s.Selectable(a.Effector, a.Target) {
					continue
				}
				if next, _, _, err = tr.Apply(a, s); err != nil {
					return fmt.Errorf("decode %s: %w", a, err)
				}
				c.actions = append(c.actions, a)
				found = true
				break
			}
			if !found {
				break
			}
			s = next
		}
		c.remaining = s.TotalValue()
		return nil
	}

	pop := make([]*chromosome, max(g.cfg.PopulationSize, 2))
	for i := range pop {
		c := &chromosome{genes: rng.Perm(genes)}
		if err := decode(c); err != nil {
			return Solution{}, err
		}
		pop[i] = c
	}
	best := fittest(pop)

	elite := min(g.cfg.Elite, len(pop))
	for gen := 0; gen < g.cfg.Generations; gen++ {
		if err := ctx.Err(); err != nil {
			return Solution{}, fmt.Errorf("genetic cancelled at generation %d: %w", gen, err)
		}
		slices.SortStableFunc(pop, func(a, b *chromosome) int {
			switch {
			case a.remaining < b.remaining:
				return -1
			case a.remaining > b.remaining:
				return 1
			}
			return 0
		})
		next := make([]*chromosome, 0, len(pop))
		next = append(next, pop[:elite]...)
		for len(next) < len(pop) {
			a := g.tournament(rng, pop)
			b := g.tournament(rng, pop)
			child := &chromosome{genes: orderCrossover(rng, a.genes, b.genes)}
			if rng.Float64() < g.cfg.MutationRate {
				i, j := rng.IntN(genes), rng.IntN(genes)
				child.genes[i], child.genes[j] = child.genes[j], child.genes[i]
			}
			if err := decode(child); err != nil {
				return Solution{}, err
			}
			next = append(next, child)
		}
		pop = next
		if c := fittest(pop); c.remaining < best.remaining {
			best = c
		}
	}

	return Solution{
		Remaining: best.remaining,
		Actions:   append([]model.Action{}, best.actions...),
	}, nil
}

func (g *Genetic) tournament(rng *rand.Rand, pop []*chromosome) *chromosome {
	best := pop[rng.IntN(len(pop))]
	for i := 1; i < g.cfg.Tournament; i++ {
		if c := pop[rng.IntN(len(pop))]; c.remaining < best.remaining {
			best = c
		}
	}
	return best
}

func fittest(pop []*chromosome) *chromosome {
	best := pop[0]
	for _, c := range pop[1:] {
		if c.remaining < best.remaining {
			best = c
		}
	}
	return best
}

// orderCrossover copies a random slice of a and fills the other positions
// with the missing genes in the order they appear in b.
func orderCrossover(rng *rand.Rand, a, b []int) []int {
	n := len(a)
	lo, hi := rng.IntN(n), rng.IntN(n)
	if lo > hi {
		lo, hi = hi, lo
	}
	child := make([]int, n)
	used := make([]bool, n)
	for i := lo; i <= hi; i++ {
		child[i] = a[i]
		used[a[i]] = true
	}
	pos := (hi + 1) % n
	for _, gene := range b {
		if used[gene] {
			continue
		}
		child[pos] = gene
		pos = (pos + 1) % n
	}
	return child
}
