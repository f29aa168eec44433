package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/jfa/internal/batch"
	"github.com/roach88/jfa/internal/dataset"
	"github.com/roach88/jfa/internal/generator"
	"github.com/roach88/jfa/internal/metrics"
	"github.com/roach88/jfa/internal/solver"
	"github.com/roach88/jfa/internal/store"
)

// BatchOptions holds flags for the batch and generate commands.
type BatchOptions struct {
	*RootOptions
	tuningFlags

	Effectors int
	Targets   int
	Quantity  int
	Offset    int
	Solve     bool
	Save      bool

	Dir    string
	Prefix string
	Suffix string
	Digits int
	Ext    string

	CSVPath     string
	Database    string
	MetricsFile string

	// Interrupts overrides the SIGINT bridge (for testing).
	Interrupts <-chan struct{}

	// Prompter overrides the stdin retry prompt (for testing).
	Prompter batch.Prompter

	// RunIDs overrides the UUIDv7 run ID generator (for testing).
	RunIDs batch.RunIDGenerator

	// Clock overrides the wall clock (for testing).
	Clock batch.Clock
}

// BatchReport is the outcome of a batch.
type BatchReport struct {
	batch.Summary
	Solvers []store.Summary `json:"solvers,omitempty"`
	CSV     string          `json:"csv,omitempty"`
}

// NewBatchCommand creates the batch command.
func NewBatchCommand(rootOpts *RootOptions) *cobra.Command {
	return newBatchCommand(&BatchOptions{RootOptions: rootOpts})
}

func newBatchCommand(opts *BatchOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Generate or load numbered problems and solve them",
		Long: `Process problems <offset> to <offset+quantity-1> of one size.

Each problem is loaded from <dir>/<prefix><index><suffix><ext> when the file
exists and generated otherwise (--save writes it). With --solve every
selected solver runs on the problem and one row per problem is appended to
the CSV table (and to the SQLite log with --db).

Ctrl-C interrupts the current problem only and asks whether to attempt it
again or quit. Rows written before the interrupt are kept.

Example:
  jfa batch --effectors 3 --targets 9 --quantity 100 --save
  jfa batch --effectors 4 --targets 8 --solvers bnb,astar,greedy --db runs.db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(opts, cmd)
		},
	}

	registerBatchFlags(cmd, opts)
	cmd.Flags().BoolVar(&opts.Solve, "solve", true, "solve each problem")
	cmd.Flags().BoolVar(&opts.Save, "save", false, "save generated problems")
	cmd.Flags().StringVar(&opts.CSVPath, "csv", "", "result table (default <dir>/solutions_<prefix><suffix>.csv)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "SQLite result log")
	cmd.Flags().StringVar(&opts.MetricsFile, "metrics-file", "", "write Prometheus metrics to this file when done")
	opts.register(cmd, true)

	return cmd
}

// NewGenerateCommand creates the generate command: a batch that only
// writes problem files.
func NewGenerateCommand(rootOpts *RootOptions) *cobra.Command {
	return newGenerateCommand(&BatchOptions{RootOptions: rootOpts})
}

func newGenerateCommand(opts *BatchOptions) *cobra.Command {
	opts.Solve, opts.Save = false, true

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write numbered problem files without solving them",
		Long: `Generate problems <offset> to <offset+quantity-1> of one size and save
them. Existing files are left untouched. Every generated problem has at
least one selectable opportunity.

Example:
  jfa generate --effectors 3 --targets 9 --quantity 1000
  jfa generate --effectors 2 --targets 4 --ext .yaml --dir small`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(opts, cmd)
		},
	}

	registerBatchFlags(cmd, opts)
	opts.register(cmd, false)

	return cmd
}

func registerBatchFlags(cmd *cobra.Command, opts *BatchOptions) {
	cmd.Flags().IntVar(&opts.Effectors, "effectors", 3, "effectors per problem")
	cmd.Flags().IntVar(&opts.Targets, "targets", 9, "targets per problem")
	cmd.Flags().IntVar(&opts.Quantity, "quantity", 1, "number of problems")
	cmd.Flags().IntVar(&opts.Offset, "offset", 0, "index of the first problem")
	cmd.Flags().StringVar(&opts.Dir, "dir", "", "problem directory (default <effectors>x<targets>)")
	cmd.Flags().StringVar(&opts.Prefix, "prefix", "", "file name prefix")
	cmd.Flags().StringVar(&opts.Suffix, "suffix", "", "file name suffix")
	cmd.Flags().IntVar(&opts.Digits, "digits", dataset.DefaultDigits, "zero padding of the index")
	cmd.Flags().StringVar(&opts.Ext, "ext", dataset.ExtJSON, "problem file extension (.json|.yaml|.yml)")
}

func (o *BatchOptions) naming() dataset.Naming {
	dir := o.Dir
	if dir == "" {
		dir = dataset.DefaultDir(o.Effectors, o.Targets)
	}
	return dataset.Naming{
		Dir:    dir,
		Prefix: o.Prefix,
		Suffix: o.Suffix,
		Digits: o.Digits,
		Ext:    o.Ext,
	}
}

func runBatch(opts *BatchOptions, cmd *cobra.Command) (err error) {
	formatter := &OutputFormatter{
		Format:  opts.Format,
		Writer:  cmd.OutOrStdout(),
		Verbose: opts.Verbose,
	}

	cfg, err := opts.load(cmd)
	if err != nil {
		return err
	}

	naming := opts.naming()
	csvPath := ""
	if opts.Solve {
		csvPath = opts.CSVPath
		if csvPath == "" {
			csvPath = naming.DefaultCSVName()
		}
	}

	m := metrics.New()
	var solvers []solver.Solver
	if opts.Solve {
		solvers, err = buildSolvers(cfg, m.Reporter)
		if err != nil {
			return err
		}
	}

	ropts := []batch.RunnerOption{
		batch.WithMetrics(m),
		batch.WithLogger(slog.Default()),
	}

	var st *store.Store
	if opts.Database != "" {
		slog.Info("opening database", "path", opts.Database)
		st, err = store.Open(opts.Database)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				slog.Error("error closing database", "error", closeErr)
			}
		}()
		ropts = append(ropts, batch.WithStore(st))
	}
	if opts.RunIDs != nil {
		ropts = append(ropts, batch.WithRunIDGenerator(opts.RunIDs))
	}
	if opts.Clock != nil {
		ropts = append(ropts, batch.WithClock(opts.Clock))
	}

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	interrupts := opts.Interrupts
	if interrupts == nil {
		interrupts = notifyInterrupts(ctx, cancel)
	}
	prompter := opts.Prompter
	if prompter == nil {
		prompter = &batch.LinePrompter{In: cmd.InOrStdin(), Out: cmd.ErrOrStderr()}
	}
	ropts = append(ropts, batch.WithInterrupts(interrupts, prompter))

	runner, err := batch.NewRunner(batch.Options{
		Effectors: opts.Effectors,
		Targets:   opts.Targets,
		Quantity:  opts.Quantity,
		Offset:    opts.Offset,
		Solve:     opts.Solve,
		Save:      opts.Save,
		Naming:    naming,
		CSVPath:   csvPath,
	}, solvers, generator.New(cfg.Seed, cfg.Generator), ropts...)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid batch", err)
	}

	if opts.MetricsFile != "" {
		defer func() {
			if werr := m.WriteTextfile(opts.MetricsFile); werr != nil {
				slog.Error("failed to write metrics", "path", opts.MetricsFile, "error", werr)
				if err == nil {
					err = WrapExitError(ExitCommandError, "failed to write metrics", werr)
				}
			}
		}()
	}

	sum, runErr := runner.Run(ctx)
	report := BatchReport{Summary: sum, CSV: csvPath}
	if st != nil && sum.RunID != "" {
		// Summaries are read even after an abort so partial progress shows.
		summaries, serr := st.Summaries(context.WithoutCancel(ctx), sum.RunID)
		if serr != nil {
			return WrapExitError(ExitCommandError, "failed to summarize run", serr)
		}
		report.Solvers = summaries
	}

	switch {
	case runErr == nil:
		return formatter.Success(report)
	case errors.Is(runErr, batch.ErrAborted):
		if ferr := formatter.Failure(ErrCodeAborted, runErr.Error(), report); ferr != nil {
			return ferr
		}
		return WrapExitError(ExitFailure, "batch aborted", runErr)
	case errors.Is(runErr, context.Canceled):
		return WrapExitError(ExitFailure, "batch cancelled", runErr)
	default:
		return WrapExitError(ExitCommandError, "batch failed", runErr)
	}
}

// notifyInterrupts turns SIGINT into item interrupts. SIGTERM cancels the
// whole batch.
func notifyInterrupts(ctx context.Context, cancel context.CancelFunc) <-chan struct{} {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	interrupts := make(chan struct{}, 1)

	go func() {
		defer signal.Stop(sigChan)
		for {
			select {
			case sig := <-sigChan:
				if sig == syscall.SIGTERM {
					slog.Info("received signal, shutting down", "signal", sig)
					cancel()
					return
				}
				select {
				case interrupts <- struct{}{}:
				default:
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	return interrupts
}

// WriteText renders the summary and the per-solver totals.
func (r BatchReport) WriteText(w io.Writer) error {
	fmt.Fprintf(w, "Run %s: %d problem(s), %d generated, %d loaded, %d solved, %d retried\n",
		r.RunID, r.Items, r.Generated, r.Loaded, r.Solved, r.Retries)
	if r.CSV != "" {
		fmt.Fprintf(w, "Results: %s\n", r.CSV)
	}
	if len(r.Solvers) == 0 {
		return nil
	}
	fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SOLVER\tPROBLEMS\tMEAN CLAIMED\tTOTAL RUNTIME\tFAILURES")
	for _, s := range r.Solvers {
		fmt.Fprintf(tw, "%s\t%d\t%.4f\t%s\t%d\n", s.Solver, s.Problems, s.MeanClaimed, s.TotalRuntime, s.Failures)
	}
	return tw.Flush()
}
