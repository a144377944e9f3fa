package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initClusterMetrics() {
	r.ClusterWorkers = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "centrality_cluster_workers",
			Help: "Number of workers in the local cluster",
		},
	)

	r.ReplicationBytes = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "centrality_replication_bytes",
			Help: "Size of the compressed graph snapshot replicated to workers",
		},
	)

	r.ReplicationDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "centrality_replication_duration_seconds",
			Help:    "Graph replication duration in seconds",
			Buckets: []float64{0.01, 0.1, 0.5, 1, 5, 10, 60},
		},
	)

	r.PartialsReceived = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "centrality_partials_received_total",
			Help: "Total number of worker partial results folded in",
		},
	)

	r.VerificationPass = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "centrality_verification_pass",
			Help: "1 when the last local/distributed comparison passed",
		},
	)

	r.VerificationMaxDiff = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "centrality_verification_max_abs_diff",
			Help: "Largest element-wise difference in the last comparison",
		},
	)
}
