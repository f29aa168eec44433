package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/roach88/jfa/internal/model"
)

// Run describes one batch invocation.
type Run struct {
	ID string `json:"id"`

	// StartedSeq is assigned by WriteRun and orders runs.
	StartedSeq int64 `json:"started_seq"`

	Effectors  int      `json:"effectors"`
	Targets    int      `json:"targets"`
	Quantity   int      `json:"quantity"`
	FirstIndex int      `json:"first_index"`
	Solvers    []string `json:"solvers"`
}

// Result is one solver outcome on one problem within a run.
type Result struct {
	RunID        string         `json:"run_id"`
	ProblemID    string         `json:"problem_id"`
	Solver       string         `json:"solver"`
	Claimed      float64        `json:"claimed"`
	Remaining    float64        `json:"remaining"`
	Runtime      time.Duration  `json:"runtime_ns"`
	Expansions   int            `json:"expansions"`
	BranchFactor int            `json:"branch_factor"`
	Duplicates   int            `json:"duplicates"`
	Actions      []model.Action `json:"actions"`
	Found        bool           `json:"found"`
}

// WriteRun inserts a run and assigns its StartedSeq.
//
// Writing a run whose ID already exists returns the stored sequence and
// leaves the row untouched.
func (s *Store) WriteRun(ctx context.Context, run Run) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("write run: begin tx: %w", err)
	}
	defer tx.Rollback()

	var seq int64
	err = tx.QueryRowContext(ctx, `SELECT started_seq FROM runs WHERE id = ?`, run.ID).Scan(&seq)
	if err == nil {
		return seq, tx.Commit()
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("write run: lookup: %w", err)
	}

	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(started_seq), 0) + 1 FROM runs`).Scan(&seq); err != nil {
		return 0, fmt.Errorf("write run: next seq: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, started_seq, effectors, targets, quantity, first_index, solvers)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		run.ID,
		seq,
		run.Effectors,
		run.Targets,
		run.Quantity,
		run.FirstIndex,
		strings.Join(run.Solvers, ","),
	)
	if err != nil {
		return 0, fmt.Errorf("write run: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("write run: commit: %w", err)
	}
	return seq, nil
}

// WriteProblem records a problem instance under its content ID.
// Uses ON CONFLICT(id) DO NOTHING: the first filename seen for a given
// content is kept.
func (s *Store) WriteProblem(ctx context.Context, filename string, p *model.Problem) (string, error) {
	id := p.ID()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO problems
		(id, filename, effectors, targets, total_value)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		id,
		filename,
		len(p.Effectors),
		len(p.Targets),
		p.TotalValue(),
	)
	if err != nil {
		return "", fmt.Errorf("write problem: %w", err)
	}
	return id, nil
}

// WriteResult inserts a solver result.
// A second result for the same (run, problem, solver) is silently ignored,
// so retried batch items stay idempotent.
//
// Note: the run and problem must exist (foreign key constraint).
func (s *Store) WriteResult(ctx context.Context, r Result) error {
	actions := r.Actions
	if actions == nil {
		actions = []model.Action{}
	}
	actionsJSON, err := json.Marshal(actions)
	if err != nil {
		return fmt.Errorf("write result: marshal actions: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO results
		(run_id, problem_id, solver, claimed, remaining, runtime_ns,
		 expansions, branch_factor, duplicates, actions, found)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, problem_id, solver) DO NOTHING
	`,
		r.RunID,
		r.ProblemID,
		r.Solver,
		r.Claimed,
		r.Remaining,
		int64(r.Runtime),
		r.Expansions,
		r.BranchFactor,
		r.Duplicates,
		string(actionsJSON),
		r.Found,
	)
	if err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	return nil
}
