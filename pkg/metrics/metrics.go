package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds every benchmark metric behind one Prometheus registry
type Registry struct {
	registry *prometheus.Registry

	// Compute metrics
	ComputeRuns     *prometheus.CounterVec
	ComputeDuration *prometheus.HistogramVec

	// Dataset metrics
	DatasetDownloadsTotal prometheus.Counter
	DatasetCacheHitsTotal prometheus.Counter
	DatasetEdgesLoaded    prometheus.Gauge

	// Cluster metrics
	ClusterWorkers      prometheus.Gauge
	ReplicationBytes    prometheus.Gauge
	ReplicationDuration prometheus.Histogram
	PartialsReceived    prometheus.Counter
	VerificationPass    prometheus.Gauge
	VerificationMaxDiff prometheus.Gauge
}

// NewRegistry creates a registry with all metric families registered
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
	}
	r.initComputeMetrics()
	r.initDatasetMetrics()
	r.initClusterMetrics()
	return r
}

// Handler exposes the registry for scraping
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// RecordCompute records one centrality computation with its duration
func (r *Registry) RecordCompute(mode, status string, duration time.Duration) {
	r.ComputeRuns.WithLabelValues(mode, status).Inc()
	r.ComputeDuration.WithLabelValues(mode).Observe(duration.Seconds())
}

// RecordReplication records the one-time graph replication step
func (r *Registry) RecordReplication(bytes int, duration time.Duration) {
	r.ReplicationBytes.Set(float64(bytes))
	r.ReplicationDuration.Observe(duration.Seconds())
}

// RecordVerification records the comparison outcome
func (r *Registry) RecordVerification(pass bool, maxAbsDiff float64) {
	if pass {
		r.VerificationPass.Set(1)
	} else {
		r.VerificationPass.Set(0)
	}
	r.VerificationMaxDiff.Set(maxAbsDiff)
}
