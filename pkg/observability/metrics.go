package observability

import (
	"context"

	"github.com/aretw0/stepper/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors fed by the sequencer hooks.
type Metrics struct {
	Navigations  *prometheus.CounterVec
	Commits      *prometheus.CounterVec
	SkippedRows  *prometheus.CounterVec
	RowsPerTable prometheus.Histogram
}

// NewMetrics creates the collectors and registers them on reg.
// Pass prometheus.DefaultRegisterer to expose them on the default /metrics handler.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Navigations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stepper_navigations_total",
				Help: "Cursor moves, by action.",
			},
			[]string{"sequence", "action"},
		),
		Commits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stepper_commits_total",
				Help: "Table commits, by outcome.",
			},
			[]string{"sequence", "outcome"},
		),
		SkippedRows: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stepper_skipped_commit_rows_total",
				Help: "Rows of tables whose commit was skipped, by reason.",
			},
			[]string{"sequence", "reason"},
		),
		RowsPerTable: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "stepper_committed_rows",
				Help:    "Rows added by each committed table.",
				Buckets: prometheus.ExponentialBuckets(1, 4, 7),
			},
		),
	}
	reg.MustRegister(m.Navigations, m.Commits, m.SkippedRows, m.RowsPerTable)
	return m
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNavigate: func(_ context.Context, e *domain.NavigationEvent) {
			m.Navigations.WithLabelValues(e.Sequence, e.Action).Inc()
		},
		OnCommit: func(_ context.Context, e *domain.CommitEvent) {
			m.Commits.WithLabelValues(e.Sequence, "committed").Inc()
			m.RowsPerTable.Observe(float64(e.Rows))
		},
		OnCommitSkip: func(_ context.Context, e *domain.CommitEvent) {
			m.Commits.WithLabelValues(e.Sequence, "skipped").Inc()
			m.SkippedRows.WithLabelValues(e.Sequence, e.Reason).Add(float64(e.Rows))
		},
	}
}
