package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/jfa/internal/dataset"
	"github.com/roach88/jfa/internal/model"
	"github.com/roach88/jfa/internal/search"
	"github.com/roach88/jfa/internal/solver"
)

// SolveOptions holds flags for the solve command.
type SolveOptions struct {
	*RootOptions
	tuningFlags
}

// SolveReport is the outcome of solving one problem file.
type SolveReport struct {
	File       string        `json:"file"`
	Problem    string        `json:"problem"`
	ProblemID  string        `json:"problem_id"`
	TotalValue float64       `json:"total_value"`
	Results    []SolveResult `json:"results"`
}

// SolveResult is one solver's answer.
type SolveResult struct {
	Solver    string        `json:"solver"`
	Claimed   float64       `json:"claimed"`
	Remaining float64       `json:"remaining"`
	Runtime   float64       `json:"runtime_seconds"`
	Actions   string        `json:"actions"`
	Stats     *search.Stats `json:"stats,omitempty"`
	Error     string        `json:"error,omitempty"`
}

// NewSolveCommand creates the solve command.
func NewSolveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SolveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "solve <problem-file>",
		Short: "Solve one problem file with the selected solvers",
		Long: `Load a JSON or YAML problem file, validate it, and solve it with each
selected solver. Prints the claimed reward, runtime and action sequence.

Example:
  jfa solve 3x9/00000.json --solvers astar,greedy
  jfa solve problem.yaml --format json --max-expansions 100000`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSolve(opts, args[0], cmd)
		},
	}

	opts.register(cmd, true)
	return cmd
}

func runSolve(opts *SolveOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:  opts.Format,
		Writer:  cmd.OutOrStdout(),
		Verbose: opts.Verbose,
	}

	cfg, err := opts.load(cmd)
	if err != nil {
		return err
	}

	p, err := dataset.Load(path)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to load problem", err)
	}

	solvers, err := buildSolvers(cfg, nil)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	report := SolveReport{
		File:       path,
		Problem:    p.Name,
		ProblemID:  p.ID(),
		TotalValue: p.TotalValue(),
		Results:    make([]SolveResult, 0, len(solvers)),
	}
	for _, s := range solvers {
		res, err := solveOne(ctx, s, p)
		if err != nil {
			return WrapExitError(ExitFailure, fmt.Sprintf("%s failed", s.Name()), err)
		}
		report.Results = append(report.Results, res)
	}

	return formatter.Success(report)
}

// solveOne runs s on p. Exhausted searches and expansion limits are part
// of the report; other errors are returned.
func solveOne(ctx context.Context, s solver.Solver, p *model.Problem) (SolveResult, error) {
	start := time.Now()
	sol, err := s.Solve(ctx, p)
	elapsed := time.Since(start)

	res := SolveResult{
		Solver:  s.Name(),
		Runtime: elapsed.Seconds(),
		Stats:   sol.Stats,
	}
	switch {
	case err == nil:
		res.Claimed = sol.Claimed(p)
		res.Remaining = sol.Remaining
		res.Actions = model.FormatActions(sol.Actions)
	case errors.Is(err, solver.ErrSearchExhausted) || search.IsQuotaError(err):
		slog.Warn("solver gave up", "solver", s.Name(), "problem", p.Name, "error", err)
		res.Remaining = p.TotalValue()
		res.Error = err.Error()
	default:
		return res, err
	}
	slog.Debug("solved", "solver", s.Name(), "claimed", res.Claimed, "runtime", elapsed)
	return res, nil
}

// WriteText renders the report as a table.
func (r SolveReport) WriteText(w io.Writer) error {
	fmt.Fprintf(w, "%s (%s): total value %g\n\n", r.File, r.Problem, r.TotalValue)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SOLVER\tCLAIMED\tRUNTIME\tEXPANSIONS\tACTIONS")
	for _, res := range r.Results {
		expansions := "-"
		if res.Stats != nil {
			expansions = fmt.Sprint(res.Stats.Expansions)
		}
		actions := res.Actions
		if res.Error != "" {
			actions = "error: " + res.Error
		}
		fmt.Fprintf(tw, "%s\t%g\t%.6fs\t%s\t%s\n", res.Solver, res.Claimed, res.Runtime, expansions, actions)
	}
	return tw.Flush()
}
