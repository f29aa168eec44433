package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/jfa/internal/dataset"
)

// FileValidation is the validation outcome of one problem file.
type FileValidation struct {
	File       string  `json:"file"`
	Valid      bool    `json:"valid"`
	Problem    string  `json:"problem,omitempty"`
	ProblemID  string  `json:"problem_id,omitempty"`
	Effectors  int     `json:"effectors,omitempty"`
	Targets    int     `json:"targets,omitempty"`
	Selectable int     `json:"selectable,omitempty"`
	TotalValue float64 `json:"total_value,omitempty"`
	Schema     bool    `json:"schema_error,omitempty"`
	Error      string  `json:"error,omitempty"`
}

// ValidationReport holds validation results.
type ValidationReport struct {
	Valid bool             `json:"valid"`
	Files []FileValidation `json:"files"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <problem-file>...",
		Short: "Check problem files against the schema",
		Long: `Validate JSON or YAML problem files without solving them.

Each file is checked against the embedded CUE schema, decoded strictly
(unknown fields are errors) and checked for consistent dimensions and
value ranges. All files are checked even when an earlier one fails.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, paths []string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:  opts.Format,
		Writer:  cmd.OutOrStdout(),
		Verbose: opts.Verbose,
	}

	report := ValidationReport{Valid: true, Files: make([]FileValidation, 0, len(paths))}
	for _, path := range paths {
		v := FileValidation{File: path}
		p, err := dataset.Load(path)
		if err != nil {
			report.Valid = false
			v.Error = err.Error()
			v.Schema = dataset.IsSchemaError(err)
		} else {
			v.Valid = true
			v.Problem = p.Name
			v.ProblemID = p.ID()
			v.Effectors = len(p.Effectors)
			v.Targets = len(p.Targets)
			v.Selectable = p.SelectableCount()
			v.TotalValue = p.TotalValue()
		}
		report.Files = append(report.Files, v)
	}

	if !report.Valid {
		if err := formatter.Failure(ErrCodeInvalid, "invalid problem file(s)", report); err != nil {
			return err
		}
		return NewExitError(ExitFailure, "validation failed")
	}
	return formatter.Success(report)
}

// WriteText renders one line per file.
func (r ValidationReport) WriteText(w io.Writer) error {
	for _, f := range r.Files {
		if f.Valid {
			fmt.Fprintf(w, "✓ %s: %dx%d, %d selectable, total value %g\n",
				f.File, f.Effectors, f.Targets, f.Selectable, f.TotalValue)
			continue
		}
		kind := "invalid"
		if f.Schema {
			kind = "schema violation"
		}
		fmt.Fprintf(w, "✗ %s: %s\n  %s\n", f.File, kind, f.Error)
	}
	return nil
}
