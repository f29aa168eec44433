// Package metrics exposes solver and search counters through a Prometheus
// registry.
//
// Batch runs are short-lived, so nothing is served over HTTP. The registry
// is written to a node-exporter textfile with WriteTextfile when the batch
// ends.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/roach88/jfa/internal/model"
	"github.com/roach88/jfa/internal/search"
	"github.com/roach88/jfa/internal/solver"
)

const namespace = "jfa"

// Metrics holds the collectors of one batch run.
type Metrics struct {
	registry *prometheus.Registry

	// SolvesTotal counts solver runs.
	// Labels: solver, status (ok, exhausted, error)
	SolvesTotal *prometheus.CounterVec

	// SolveDurationSeconds measures wall time per solver run.
	// Labels: solver
	SolveDurationSeconds *prometheus.HistogramVec

	// ClaimedReward is the expected reward claimed per solver run.
	// Labels: solver
	ClaimedReward *prometheus.HistogramVec

	// ExpansionsTotal, DuplicatesTotal and ReinsertionsTotal accumulate
	// search statistics of the exact solvers.
	// Labels: solver
	ExpansionsTotal   *prometheus.CounterVec
	DuplicatesTotal   *prometheus.CounterVec
	ReinsertionsTotal *prometheus.CounterVec

	// SearchExpansions is the expansion count of the search in progress.
	// Labels: solver
	SearchExpansions *prometheus.GaugeVec

	// ProblemsTotal counts batch items by source (generated, loaded).
	ProblemsTotal *prometheus.CounterVec
}

// New creates the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		SolvesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "solves_total",
			Help:      "Solver runs by solver and status",
		}, []string{"solver", "status"}),
		SolveDurationSeconds: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "solve_duration_seconds",
			Help:      "Wall time of one solver run",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{"solver"}),
		ClaimedReward: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "claimed_reward",
			Help:      "Expected reward claimed by one solver run",
			Buckets:   prometheus.LinearBuckets(0, 10, 10),
		}, []string{"solver"}),
		ExpansionsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "expansions_total",
			Help:      "Nodes expanded by exact solvers",
		}, []string{"solver"}),
		DuplicatesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "duplicates_total",
			Help:      "Children rejected as already seen",
		}, []string{"solver"}),
		ReinsertionsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "reinsertions_total",
			Help:      "Terminal nodes re-queued after re-validation",
		}, []string{"solver"}),
		SearchExpansions: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "expansions_current",
			Help:      "Expansions of the search in progress",
		}, []string{"solver"}),
		ProblemsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "problems_total",
			Help:      "Batch items by problem source",
		}, []string{"source"}),
	}
}

// ObserveSolve records one solver run on a problem.
func (m *Metrics) ObserveSolve(name string, p *model.Problem, sol solver.Solution, elapsed time.Duration, err error) {
	m.SolvesTotal.WithLabelValues(name, status(err)).Inc()
	m.SolveDurationSeconds.WithLabelValues(name).Observe(elapsed.Seconds())
	if err == nil {
		m.ClaimedReward.WithLabelValues(name).Observe(sol.Claimed(p))
	}
	if sol.Stats != nil {
		m.ExpansionsTotal.WithLabelValues(name).Add(float64(sol.Stats.Expansions))
		m.DuplicatesTotal.WithLabelValues(name).Add(float64(sol.Stats.Duplicates))
		m.ReinsertionsTotal.WithLabelValues(name).Add(float64(sol.Stats.Reinsertions))
	}
}

func status(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, solver.ErrSearchExhausted):
		return "exhausted"
	default:
		return "error"
	}
}

// Reporter returns a search.Reporter that tracks the live expansion count
// of one solver.
func (m *Metrics) Reporter(solver string) search.Reporter {
	return gaugeReporter{g: m.SearchExpansions.WithLabelValues(solver)}
}

type gaugeReporter struct {
	g prometheus.Gauge
}

func (r gaugeReporter) Progress(s search.Stats) { r.g.Set(float64(s.Expansions)) }
func (r gaugeReporter) Done(res search.Result)  { r.g.Set(float64(res.Stats.Expansions)) }

// WriteTextfile writes the registry in the Prometheus text format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
