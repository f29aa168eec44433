package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ReadRun returns the run with the given ID, or ErrNotFound.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	var (
		run     Run
		solvers string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, started_seq, effectors, targets, quantity, first_index, solvers
		FROM runs
		WHERE id = ?
	`, id).Scan(&run.ID, &run.StartedSeq, &run.Effectors, &run.Targets,
		&run.Quantity, &run.FirstIndex, &solvers)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("run %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return Run{}, fmt.Errorf("read run: %w", err)
	}
	run.Solvers = []string{}
	if solvers != "" {
		run.Solvers = strings.Split(solvers, ",")
	}
	return run, nil
}

// ReadResults returns all results of a run in insertion order.
//
// Returns an empty slice (not nil) if the run has no results.
func (s *Store) ReadResults(ctx context.Context, runID string) ([]Result, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, problem_id, solver, claimed, remaining, runtime_ns,
		       expansions, branch_factor, duplicates, actions, found
		FROM results
		WHERE run_id = ?
		ORDER BY seq ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	results := []Result{}
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate results: %w", err)
	}
	return results, nil
}

func scanResult(rows *sql.Rows) (Result, error) {
	var (
		r           Result
		runtimeNS   int64
		actionsJSON string
	)
	if err := rows.Scan(&r.RunID, &r.ProblemID, &r.Solver, &r.Claimed, &r.Remaining,
		&runtimeNS, &r.Expansions, &r.BranchFactor, &r.Duplicates, &actionsJSON, &r.Found); err != nil {
		return Result{}, fmt.Errorf("scan result: %w", err)
	}
	r.Runtime = time.Duration(runtimeNS)
	if err := json.Unmarshal([]byte(actionsJSON), &r.Actions); err != nil {
		return Result{}, fmt.Errorf("unmarshal actions: %w", err)
	}
	return r, nil
}

// Summary aggregates one solver's results within a run.
type Summary struct {
	Solver       string        `json:"solver"`
	Problems     int           `json:"problems"`
	TotalClaimed float64       `json:"total_claimed"`
	MeanClaimed  float64       `json:"mean_claimed"`
	TotalRuntime time.Duration `json:"total_runtime_ns"`
	Failures     int           `json:"failures"`
}

// Summaries returns per-solver aggregates for a run, ordered by the first
// appearance of each solver.
func (s *Store) Summaries(ctx context.Context, runID string) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT solver,
		       COUNT(*),
		       COALESCE(SUM(claimed), 0),
		       COALESCE(SUM(runtime_ns), 0),
		       COALESCE(SUM(CASE WHEN found = 0 THEN 1 ELSE 0 END), 0)
		FROM results
		WHERE run_id = ?
		GROUP BY solver
		ORDER BY MIN(seq) ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query summaries: %w", err)
	}
	defer rows.Close()

	summaries := []Summary{}
	for rows.Next() {
		var (
			sum       Summary
			runtimeNS int64
		)
		if err := rows.Scan(&sum.Solver, &sum.Problems, &sum.TotalClaimed, &runtimeNS, &sum.Failures); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		sum.TotalRuntime = time.Duration(runtimeNS)
		if sum.Problems > 0 {
			sum.MeanClaimed = sum.TotalClaimed / float64(sum.Problems)
		}
		summaries = append(summaries, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate summaries: %w", err)
	}
	return summaries, nil
}
