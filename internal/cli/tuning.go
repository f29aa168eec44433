package cli

import (
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/jfa/internal/config"
	"github.com/roach88/jfa/internal/search"
	"github.com/roach88/jfa/internal/solver"
)

// tuningFlags are shared by commands that generate or solve problems.
// Flags given on the command line override the config file.
type tuningFlags struct {
	ConfigPath    string
	Seed          uint64
	Solvers       []string
	MaxExpansions int
}

func (f *tuningFlags) register(cmd *cobra.Command, withSolvers bool) {
	cmd.Flags().StringVar(&f.ConfigPath, "config", "", "YAML tuning file")
	cmd.Flags().Uint64Var(&f.Seed, "seed", 1, "seed for generation and randomized solvers")
	if withSolvers {
		cmd.Flags().StringSliceVar(&f.Solvers, "solvers", nil,
			"comma separated solvers ("+joinNames()+")")
		cmd.Flags().IntVar(&f.MaxExpansions, "max-expansions", 0, "expansion limit for exact solvers (0 = none)")
	}
}

// load reads the config file and applies explicitly set flags.
func (f *tuningFlags) load(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(f.ConfigPath)
	if err != nil {
		return config.Config{}, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	flags := cmd.Flags()
	if flags.Changed("seed") {
		cfg.Seed = f.Seed
	}
	if flags.Changed("solvers") {
		cfg.Solvers = f.Solvers
	}
	if flags.Changed("max-expansions") {
		cfg.MaxExpansions = f.MaxExpansions
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, WrapExitError(ExitCommandError, "invalid tuning", err)
	}
	return cfg, nil
}

// buildSolvers instantiates cfg.Solvers. Each exact search logs its
// outcome labelled with the solver's display name; newReporter, when set,
// adds a further reporter per solver.
func buildSolvers(cfg config.Config, newReporter func(name string) search.Reporter) ([]solver.Solver, error) {
	base := cfg.SolverConfig(slog.Default())
	solvers := make([]solver.Solver, 0, len(cfg.Solvers))
	for _, name := range cfg.Solvers {
		s, err := solver.New(name, base)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to build solvers", err)
		}
		// Rebuild so the reporters are labelled with the display name.
		reporters := []search.Reporter{search.LogReporter{Logger: slog.Default().With("solver", s.Name())}}
		if newReporter != nil {
			reporters = append(reporters, newReporter(s.Name()))
		}
		sc := base
		sc.Reporter = search.Reporters(reporters...)
		if s, err = solver.New(name, sc); err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to build solvers", err)
		}
		solvers = append(solvers, s)
	}
	return solvers, nil
}

func joinNames() string {
	return strings.Join(solver.Names(), "|")
}
