package dataset

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"github.com/roach88/jfa/internal/model"
)

// ErrHeaderMismatch is returned when an existing result table was written
// for a different solver set.
var ErrHeaderMismatch = errors.New("result table header mismatch")

// Entry is one solver's outcome in a table row.
type Entry struct {
	Claimed float64
	Runtime time.Duration
}

// Row is one problem's line in the result table.
type Row struct {
	Filename    string
	TotalReward float64

	// Entries align with the table's solver columns.
	Entries []Entry

	// Solution is the action sequence of the last solver.
	Solution []model.Action
}

// Table appends rows to a CSV result file. Each Append opens, writes,
// syncs and closes the file, so completed rows survive an interrupted
// batch.
type Table struct {
	path    string
	solvers []string
}

// Header returns the column names for the given solver display names.
func Header(solvers []string) []string {
	header := []string{"filename", "total reward"}
	for _, s := range solvers {
		header = append(header, s, s+" runtime")
	}
	return append(header, "solution")
}

// OpenTable prepares the table at path. A missing or empty file gets a
// header, creating parent directories as needed; an existing one must
// carry the same header and is appended to.
func OpenTable(path string, solvers []string) (*Table, error) {
	t := &Table{path: path, solvers: slices.Clone(solvers)}
	want := Header(solvers)

	f, err := os.Open(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create table dir: %w", err)
		}
		return t, t.writeRecord(want, os.O_CREATE|os.O_TRUNC)
	case err != nil:
		return nil, fmt.Errorf("open table: %w", err)
	}
	defer f.Close()

	got, err := csv.NewReader(bufio.NewReader(f)).Read()
	if err != nil {
		if info, statErr := f.Stat(); statErr == nil && info.Size() == 0 {
			return t, t.writeRecord(want, os.O_TRUNC)
		}
		return nil, fmt.Errorf("read table header %s: %w", path, err)
	}
	if !slices.Equal(got, want) {
		return nil, fmt.Errorf("%w: %s has %q, expected %q", ErrHeaderMismatch, path, got, want)
	}
	return t, nil
}

// Path returns the table file path.
func (t *Table) Path() string { return t.path }

// Append writes one row.
func (t *Table) Append(r Row) error {
	if len(r.Entries) != len(t.solvers) {
		return fmt.Errorf("append %s: %d entries for %d solvers", r.Filename, len(r.Entries), len(t.solvers))
	}
	record := []string{r.Filename, formatFloat(r.TotalReward)}
	for _, e := range r.Entries {
		record = append(record, formatFloat(e.Claimed), formatFloat(e.Runtime.Seconds()))
	}
	record = append(record, model.FormatActions(r.Solution))
	return t.writeRecord(record, os.O_APPEND)
}

func (t *Table) writeRecord(record []string, flag int) error {
	f, err := os.OpenFile(t.path, flag|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("write table: %w", err)
	}
	w := csv.NewWriter(f)
	if err := w.Write(record); err != nil {
		f.Close()
		return fmt.Errorf("write table: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("write table: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("sync table: %w", err)
	}
	return f.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
