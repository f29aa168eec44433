// Package batch generates, loads and solves numbered problem files.
//
// Each item is handled in its own context. An interrupt cancels only the
// current item and asks the operator to retry it or abort the batch. Rows
// are appended to the result table and store as soon as an item finishes,
// so an aborted batch keeps everything completed before it.
package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/go-playground/validator/v10"

	"github.com/roach88/jfa/internal/dataset"
	"github.com/roach88/jfa/internal/generator"
	"github.com/roach88/jfa/internal/metrics"
	"github.com/roach88/jfa/internal/model"
	"github.com/roach88/jfa/internal/search"
	"github.com/roach88/jfa/internal/solver"
	"github.com/roach88/jfa/internal/store"
)

// ErrAborted is returned when the operator aborts after an interrupt.
var ErrAborted = errors.New("batch aborted")

var errInterrupted = errors.New("item interrupted")

// Options describes the items of a batch.
type Options struct {
	Effectors int `validate:"gte=1"`
	Targets   int `validate:"gte=1"`
	Quantity  int `validate:"gte=0"`
	Offset    int `validate:"gte=0"`

	// Solve runs the solvers on each item; otherwise items are only
	// generated or loaded.
	Solve bool

	// Save writes generated problems to their file.
	Save bool

	Naming dataset.Naming

	// CSVPath is the result table. Empty disables the table.
	CSVPath string
}

// Summary reports what a batch did.
type Summary struct {
	RunID     string `json:"run_id"`
	Items     int    `json:"items"`
	Generated int    `json:"generated"`
	Loaded    int    `json:"loaded"`
	Solved    int    `json:"solved"`
	Retries   int    `json:"retries"`
}

// Runner executes batches.
type Runner struct {
	opts       Options
	solvers    []solver.Solver
	gen        *generator.Generator
	store      *store.Store
	metrics    *metrics.Metrics
	ids        RunIDGenerator
	clock      Clock
	prompter   Prompter
	interrupts <-chan struct{}
	logger     *slog.Logger
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithStore records runs, problems and results in s.
func WithStore(s *store.Store) RunnerOption {
	return func(r *Runner) { r.store = s }
}

// WithMetrics records solver metrics in m.
func WithMetrics(m *metrics.Metrics) RunnerOption {
	return func(r *Runner) { r.metrics = m }
}

// WithRunIDGenerator replaces the UUIDv7 run ID generator.
func WithRunIDGenerator(g RunIDGenerator) RunnerOption {
	return func(r *Runner) { r.ids = g }
}

// WithClock replaces the wall clock used for runtimes.
func WithClock(c Clock) RunnerOption {
	return func(r *Runner) { r.clock = c }
}

// WithInterrupts sets the channel whose receives interrupt the current
// item, and the prompter consulted afterwards.
func WithInterrupts(ch <-chan struct{}, p Prompter) RunnerOption {
	return func(r *Runner) {
		r.interrupts = ch
		r.prompter = p
	}
}

// WithLogger sets the logger for progress messages.
func WithLogger(l *slog.Logger) RunnerOption {
	return func(r *Runner) { r.logger = l }
}

// NewRunner validates opts and creates a Runner. gen draws the problems
// whose files do not exist yet.
func NewRunner(opts Options, solvers []solver.Solver, gen *generator.Generator, ropts ...RunnerOption) (*Runner, error) {
	if err := validator.New().Struct(opts); err != nil {
		return nil, fmt.Errorf("batch options: %w", err)
	}
	if opts.Solve && len(solvers) == 0 {
		return nil, errors.New("batch options: solve requested without solvers")
	}
	r := &Runner{
		opts:     opts,
		solvers:  solvers,
		gen:      gen,
		ids:      UUIDv7Generator{},
		clock:    SystemClock{},
		prompter: &FixedPrompter{},
	}
	for _, opt := range ropts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r, nil
}

// Run processes items Offset through Offset+Quantity-1.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	sum := Summary{RunID: r.ids.Generate()}

	var table *dataset.Table
	if r.opts.Solve && r.opts.CSVPath != "" {
		t, err := dataset.OpenTable(r.opts.CSVPath, r.solverNames())
		if err != nil {
			return sum, err
		}
		r.logger.Debug("result table ready", "path", t.Path())
		table = t
	}

	if r.store != nil {
		seq, err := r.store.WriteRun(ctx, store.Run{
			ID:         sum.RunID,
			Effectors:  r.opts.Effectors,
			Targets:    r.opts.Targets,
			Quantity:   r.opts.Quantity,
			FirstIndex: r.opts.Offset,
			Solvers:    r.solverNames(),
		})
		if err != nil {
			return sum, err
		}
		r.logger.Debug("run recorded", "run_id", sum.RunID, "seq", seq)
	}

	r.logger.Info("batch started",
		"run_id", sum.RunID,
		"effectors", r.opts.Effectors,
		"targets", r.opts.Targets,
		"quantity", r.opts.Quantity,
		"offset", r.opts.Offset)

	last := r.opts.Offset + r.opts.Quantity
	for i := r.opts.Offset; i < last; {
		out, err := r.runItem(ctx, sum.RunID, i, table)
		switch {
		case err == nil:
			sum.Items++
			if out.source == sourceGenerated {
				sum.Generated++
			} else {
				sum.Loaded++
			}
			if out.solved {
				sum.Solved++
			}
			i++
		case errors.Is(err, errInterrupted):
			name := r.opts.Naming.Filename(i)
			d, perr := r.prompt(ctx, name)
			if perr != nil {
				return sum, perr
			}
			r.logger.Info("item interrupted", "item", name, "decision", d)
			if d == Abort {
				return sum, fmt.Errorf("%w at %s", ErrAborted, name)
			}
			sum.Retries++
		default:
			return sum, err
		}
	}

	r.logger.Info("batch finished",
		"run_id", sum.RunID,
		"items", sum.Items,
		"generated", sum.Generated,
		"loaded", sum.Loaded,
		"solved", sum.Solved)
	return sum, nil
}

// prompt asks whether to retry an interrupted item. Interrupts still
// queued from the item are discarded first; one received while waiting
// for the answer aborts.
func (r *Runner) prompt(ctx context.Context, item string) (Decision, error) {
	r.drainInterrupts()
	promptCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var interrupted atomic.Bool
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-r.interrupts:
			interrupted.Store(true)
			cancel()
		case <-done:
		}
	}()

	d, err := r.prompter.RetryOrAbort(promptCtx, item)
	if interrupted.Load() {
		return Abort, nil
	}
	if err == nil && d == Retry {
		r.drainInterrupts()
	}
	return d, err
}

func (r *Runner) drainInterrupts() {
	for {
		select {
		case <-r.interrupts:
		default:
			return
		}
	}
}

func (r *Runner) solverNames() []string {
	names := make([]string, len(r.solvers))
	for i, s := range r.solvers {
		names[i] = s.Name()
	}
	return names
}

const (
	sourceGenerated = "generated"
	sourceLoaded    = "loaded"
)

type itemOutcome struct {
	source string
	solved bool
}

// runItem handles one index. Interrupts cancel only this item.
func (r *Runner) runItem(ctx context.Context, runID string, index int, table *dataset.Table) (itemOutcome, error) {
	itemCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var interrupted atomic.Bool
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-r.interrupts:
			interrupted.Store(true)
			cancel()
		case <-done:
		}
	}()

	out, err := r.processItem(itemCtx, runID, index, table)
	if err != nil && interrupted.Load() {
		return out, errInterrupted
	}
	return out, err
}

func (r *Runner) processItem(ctx context.Context, runID string, index int, table *dataset.Table) (itemOutcome, error) {
	path := r.opts.Naming.Path(index)
	filename := r.opts.Naming.Filename(index)

	p, source, err := r.problem(path)
	if err != nil {
		return itemOutcome{}, err
	}
	out := itemOutcome{source: source}
	if r.metrics != nil {
		r.metrics.ProblemsTotal.WithLabelValues(source).Inc()
	}
	r.logger.Info("problem ready",
		"item", filename,
		"source", source,
		"selectable", p.SelectableCount(),
		"total_value", p.TotalValue())

	if !r.opts.Solve {
		return out, nil
	}

	var problemID string
	if r.store != nil {
		if problemID, err = r.store.WriteProblem(ctx, filename, p); err != nil {
			return out, err
		}
	}

	row := dataset.Row{
		Filename:    filename,
		TotalReward: p.TotalValue(),
		Entries:     make([]dataset.Entry, 0, len(r.solvers)),
	}
	results := make([]store.Result, 0, len(r.solvers))
	for _, s := range r.solvers {
		start := r.clock.Now()
		sol, err := s.Solve(ctx, p)
		elapsed := r.clock.Now().Sub(start)
		if r.metrics != nil {
			r.metrics.ObserveSolve(s.Name(), p, sol, elapsed, err)
		}

		found := err == nil
		if err != nil {
			if ctx.Err() != nil || !unsolved(err) {
				return out, fmt.Errorf("%s with %s: %w", filename, s.Name(), err)
			}
			r.logger.Warn("solver gave up", "item", filename, "solver", s.Name(), "error", err)
			sol = solver.Solution{Remaining: p.TotalValue(), Actions: []model.Action{}, Stats: sol.Stats}
		}

		claimed := sol.Claimed(p)
		r.logger.Info("solved",
			"item", filename,
			"solver", s.Name(),
			"claimed", claimed,
			"runtime", elapsed)

		row.Entries = append(row.Entries, dataset.Entry{Claimed: claimed, Runtime: elapsed})
		row.Solution = sol.Actions

		res := store.Result{
			RunID:     runID,
			ProblemID: problemID,
			Solver:    s.Name(),
			Claimed:   claimed,
			Remaining: sol.Remaining,
			Runtime:   elapsed,
			Actions:   sol.Actions,
			Found:     found,
		}
		if sol.Stats != nil {
			res.Expansions = sol.Stats.Expansions
			res.BranchFactor = sol.Stats.BranchFactor
			res.Duplicates = sol.Stats.Duplicates
		}
		results = append(results, res)
	}

	if table != nil {
		if err := table.Append(row); err != nil {
			return out, err
		}
	}
	if r.store != nil {
		// Results are written with the item's parent context: a finished
		// item is recorded even if an interrupt lands now.
		for _, res := range results {
			if err := r.store.WriteResult(context.WithoutCancel(ctx), res); err != nil {
				return out, err
			}
		}
	}
	out.solved = true
	return out, nil
}

// unsolved reports errors that leave an item without a solution but do
// not stop the batch.
func unsolved(err error) bool {
	return errors.Is(err, solver.ErrSearchExhausted) || search.IsQuotaError(err)
}

// problem loads the file at path or generates a new instance.
func (r *Runner) problem(path string) (*model.Problem, string, error) {
	if dataset.Exists(path) {
		p, err := dataset.Load(path)
		if err != nil {
			return nil, "", err
		}
		if len(p.Effectors) != r.opts.Effectors || len(p.Targets) != r.opts.Targets {
			r.logger.Warn("loaded problem has different dimensions",
				"path", path,
				"effectors", len(p.Effectors),
				"targets", len(p.Targets))
		}
		return p, sourceLoaded, nil
	}

	if r.gen == nil {
		return nil, "", fmt.Errorf("%s does not exist and no generator is configured", path)
	}
	p, err := r.gen.Solvable(r.opts.Effectors, r.opts.Targets)
	if err != nil {
		return nil, "", err
	}
	base := filepath.Base(path)
	p.Name = strings.TrimSuffix(base, filepath.Ext(base))
	if r.opts.Save {
		if err := dataset.Save(path, p); err != nil {
			return nil, "", err
		}
	}
	return p, sourceGenerated, nil
}
