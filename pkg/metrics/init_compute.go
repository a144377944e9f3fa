package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initComputeMetrics() {
	r.ComputeRuns = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "centrality_compute_runs_total",
			Help: "Total number of betweenness computations",
		},
		[]string{"mode", "status"},
	)

	r.ComputeDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "centrality_compute_duration_seconds",
			Help:    "Betweenness computation duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300, 600, 1800},
		},
		[]string{"mode"},
	)
}
