package search

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/jfa/internal/model"
)

// Transition applies one action to a state.
//
// Implementations must be deterministic and must not mutate s. The
// terminal flag must be true iff the returned state has no selectable
// opportunity.
type Transition interface {
	Apply(a model.Action, s model.State) (next model.State, reward float64, terminal bool, err error)
}

// Result is the outcome of a search run.
//
// Found is false when the frontier was exhausted without confirming a
// terminal node. Actions and Priority are meaningless in that case; Stats
// still reports the work done.
type Result struct {
	Found    bool           `json:"found"`
	Actions  []model.Action `json:"actions"`
	Priority float64        `json:"priority"`
	Stats    Stats          `json:"stats"`
}

// DefaultProgressEvery is the default number of expansions between
// Reporter.Progress calls.
const DefaultProgressEvery = 10000

// cancelCheckEvery is the number of pops between context checks.
const cancelCheckEvery = 1024

// Engine runs best-first searches. An Engine holds no per-run state and
// may be reused for several sequential searches.
type Engine struct {
	transition    Transition
	heuristic     Heuristic
	reporter      Reporter
	progressEvery int
	maxExpansions int
	logger        *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithHeuristic replaces the default Optimistic heuristic.
// Use Zero for uniform-cost search.
func WithHeuristic(h Heuristic) Option {
	return func(e *Engine) {
		e.heuristic = h
	}
}

// WithReporter sets the progress reporter.
func WithReporter(r Reporter) Option {
	return func(e *Engine) {
		e.reporter = r
	}
}

// WithProgressEvery sets how many expansions pass between progress reports.
// Values below 1 disable periodic reports; Done is still called.
func WithProgressEvery(n int) Option {
	return func(e *Engine) {
		e.progressEvery = n
	}
}

// WithMaxExpansions limits the number of expansions per search.
//
// Default: 0 (unlimited)
func WithMaxExpansions(n int) Option {
	return func(e *Engine) {
		e.maxExpansions = n
	}
}

// WithLogger sets the logger for search diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// New creates an Engine over the given transition function.
func New(tr Transition, opts ...Option) *Engine {
	e := &Engine{
		transition:    tr,
		heuristic:     Optimistic,
		reporter:      NopReporter{},
		progressEvery: DefaultProgressEvery,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e
}

// run is the per-search state.
type run struct {
	*Engine
	arena    *arena
	frontier *frontier
	tracker  *tracker
	quota    *expansionQuota
	stats    Stats
}

// Search finds the action sequence from root that minimizes the target
// value left unclaimed.
//
// Errors come from the transition function, the context, the expansion
// quota or a failed re-validation. Exhausting the frontier is not an error:
// it yields a Result with Found == false.
func (e *Engine) Search(ctx context.Context, root model.State) (Result, error) {
	r := e.newRun()
	res, err := r.search(ctx, root)
	if err != nil {
		return res, err
	}
	e.reporter.Done(res)
	return res, nil
}

func (e *Engine) newRun() *run {
	a := newArena()
	return &run{
		Engine:   e,
		arena:    a,
		frontier: newFrontier(),
		tracker:  newTracker(a),
		quota:    newExpansionQuota(e.maxExpansions),
	}
}

func (r *run) search(ctx context.Context, root model.State) (Result, error) {
	rootIdx := r.arena.add(node{
		state:    root,
		key:      root.Key(),
		priority: root.TotalValue(),
		parent:   noParent,
		terminal: !root.HasSelectable(),
	})
	r.push(rootIdx)

	pops := 0
	for r.frontier.len() > 0 {
		if pops%cancelCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return r.failed(), fmt.Errorf("search cancelled: %w", err)
			}
		}
		pops++

		idx := r.frontier.pop()
		r.tracker.unmarkOpen(idx)
		n := r.arena.at(idx)
		if r.tracker.isClosed(n.state, n.key) {
			r.stats.StalePops++
			continue
		}

		r.stats.Expansions++
		if r.progressEvery > 0 && r.stats.Expansions%r.progressEvery == 0 {
			r.reporter.Progress(r.stats)
		}

		if n.parent == noParent {
			if n.terminal {
				return r.accept(idx), nil
			}
		} else {
			expected := r.arena.at(n.parent).priority - n.reward
			if n.terminal {
				if expected == n.priority {
					return r.accept(idx), nil
				}
				if n.revalidated {
					return r.failed(), &RevalidationError{
						Stored:   n.priority,
						Expected: expected,
						Depth:    len(r.arena.path(idx)),
					}
				}
				r.logger.Debug("terminal node re-queued",
					"from", n.priority, "to", expected)
				n.priority = expected
				n.revalidated = true
				r.stats.Reinsertions++
				r.push(idx)
				continue
			}
			n.priority = expected
		}

		// Accepted terminals never count against the quota.
		if err := r.quota.check(); err != nil {
			return r.failed(), err
		}
		r.tracker.close(idx)
		if err := r.expand(idx); err != nil {
			return r.failed(), err
		}
	}

	r.logger.Debug("frontier exhausted without a confirmed terminal node",
		"expansions", r.stats.Expansions)
	return r.failed(), nil
}

// expand pushes every child of idx whose state is neither open nor closed.
func (r *run) expand(idx int32) error {
	// Copy out: adding children may move the arena.
	parent := *r.arena.at(idx)

	for _, a := range parent.state.SelectableActions() {
		next, reward, terminal, err := r.transition.Apply(a, parent.state)
		if err != nil {
			return fmt.Errorf("expand %s: %w", a, err)
		}
		key := next.Key()
		if r.tracker.seen(next, key) {
			r.stats.Duplicates++
			continue
		}
		child := r.arena.add(node{
			state:    next,
			key:      key,
			priority: parent.priority - reward - r.heuristic(next),
			action:   a,
			reward:   reward,
			parent:   idx,
			terminal: terminal,
		})
		r.push(child)
		r.stats.BranchFactor++
	}
	return nil
}

func (r *run) push(idx int32) {
	r.frontier.push(idx, r.arena.at(idx).priority)
	r.tracker.markOpen(idx)
}

func (r *run) accept(idx int32) Result {
	n := r.arena.at(idx)
	res := Result{
		Found:    true,
		Actions:  r.arena.path(idx),
		Priority: n.priority,
		Stats:    r.stats,
	}
	r.logger.Debug("terminal node accepted",
		"priority", res.Priority,
		"actions", model.FormatActions(res.Actions),
		"expansions", r.stats.Expansions)
	return res
}

func (r *run) failed() Result {
	return Result{Stats: r.stats}
}
