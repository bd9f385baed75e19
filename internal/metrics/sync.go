// Package metrics provides Prometheus metrics for the sync client and the rows server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Sync states exported by the state gauge.
const (
	StateIdle    = "idle"
	StateSyncing = "syncing"
	StateError   = "error"
)

// SyncMetrics holds the sync engine metrics.
type SyncMetrics struct {
	Runs              *prometheus.CounterVec
	Duration          *prometheus.HistogramVec
	RowsPushed        *prometheus.CounterVec
	RowsPulled        *prometheus.CounterVec
	OrphansSkipped    *prometheus.CounterVec
	DependencyGaps    *prometheus.CounterVec
	InvalidTimestamps *prometheus.CounterVec
	DeleteFailures    *prometheus.CounterVec
	Reconciliations   *prometheus.CounterVec
	ReconciledDeletes *prometheus.CounterVec
	Passes            *prometheus.CounterVec
	State             *prometheus.GaugeVec
}

// NewSyncMetrics creates the sync metrics and registers them with reg.
func NewSyncMetrics(reg prometheus.Registerer) *SyncMetrics {
	factory := promauto.With(reg)

	return &SyncMetrics{
		Runs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rentkeeper_sync_runs_total",
				Help: "Entity sync cycles by result",
			},
			[]string{"entity", "result"},
		),
		Duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rentkeeper_sync_duration_seconds",
				Help:    "Duration of one entity sync cycle",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"entity"},
		),
		RowsPushed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rentkeeper_sync_rows_pushed_total",
				Help: "Rows accepted by the remote store",
			},
			[]string{"entity", "op"},
		),
		RowsPulled: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rentkeeper_sync_rows_pulled_total",
				Help: "Pulled rows written to the local store",
			},
			[]string{"entity"},
		),
		OrphansSkipped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rentkeeper_sync_orphans_skipped_total",
				Help: "Dirty rows not pushed because a parent could not be resolved",
			},
			[]string{"entity"},
		),
		DependencyGaps: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rentkeeper_sync_dependency_gaps_total",
				Help: "Pulled pages truncated at a row whose parent is not yet local",
			},
			[]string{"entity"},
		),
		InvalidTimestamps: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rentkeeper_sync_invalid_timestamps_total",
				Help: "Pulled rows whose updated_at could not be parsed",
			},
			[]string{"entity"},
		),
		DeleteFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rentkeeper_sync_delete_failures_total",
				Help: "Remote deletes rejected, tombstones kept for retry",
			},
			[]string{"entity"},
		),
		Reconciliations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rentkeeper_sync_reconciliations_total",
				Help: "Full deletion reconciliations by result",
			},
			[]string{"entity", "result"},
		),
		ReconciledDeletes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rentkeeper_sync_reconciled_deletes_total",
				Help: "Local rows removed because they no longer exist remotely",
			},
			[]string{"entity"},
		),
		Passes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rentkeeper_sync_passes_total",
				Help: "Orchestrator passes by result",
			},
			[]string{"result"},
		),
		State: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "rentkeeper_sync_state",
				Help: "Current orchestrator state, 1 for the active one",
			},
			[]string{"state"},
		),
	}
}

// SetState marks state as the only active one.
func (m *SyncMetrics) SetState(state string) {
	for _, s := range []string{StateIdle, StateSyncing, StateError} {
		v := 0.0
		if s == state {
			v = 1
		}
		m.State.WithLabelValues(s).Set(v)
	}
}
