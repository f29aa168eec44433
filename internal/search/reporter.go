package search

import "log/slog"

// Stats counts the work done by one search run.
type Stats struct {
	// Expansions counts popped nodes that were not stale duplicates.
	Expansions int `json:"expansions"`

	// BranchFactor counts children inserted into the frontier.
	BranchFactor int `json:"branch_factor"`

	// Duplicates counts children discarded because their state was open or closed.
	Duplicates int `json:"duplicates"`

	// Reinsertions counts terminal nodes pushed back after a priority correction.
	Reinsertions int `json:"reinsertions"`

	// StalePops counts popped nodes whose state was already closed.
	StalePops int `json:"stale_pops"`
}

// Reporter receives progress from a running search.
// Calls happen on the search goroutine; implementations must return quickly.
type Reporter interface {
	// Progress is called every N expansions (see WithProgressEvery).
	Progress(Stats)

	// Done is called once when the search stops without an error.
	Done(Result)
}

// NopReporter discards all progress.
type NopReporter struct{}

func (NopReporter) Progress(Stats) {}
func (NopReporter) Done(Result)    {}

// LogReporter writes progress to a structured logger at debug level.
type LogReporter struct {
	Logger *slog.Logger
}

// Progress implements Reporter.
func (r LogReporter) Progress(s Stats) {
	r.logger().Debug("search progress",
		"expansions", s.Expansions,
		"branch_factor", s.BranchFactor,
		"duplicates", s.Duplicates)
}

// Done implements Reporter.
func (r LogReporter) Done(res Result) {
	r.logger().Info("search finished",
		"found", res.Found,
		"priority", res.Priority,
		"actions", len(res.Actions),
		"expansions", res.Stats.Expansions,
		"branch_factor", res.Stats.BranchFactor,
		"duplicates", res.Stats.Duplicates)
}

func (r LogReporter) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

// multiReporter fans out to several reporters in order.
type multiReporter []Reporter

func (m multiReporter) Progress(s Stats) {
	for _, r := range m {
		r.Progress(s)
	}
}

func (m multiReporter) Done(res Result) {
	for _, r := range m {
		r.Done(res)
	}
}

// Reporters combines reporters into one.
func Reporters(rs ...Reporter) Reporter {
	switch len(rs) {
	case 0:
		return NopReporter{}
	case 1:
		return rs[0]
	}
	return multiReporter(rs)
}
