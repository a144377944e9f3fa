package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initDatasetMetrics() {
	r.DatasetDownloadsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "centrality_dataset_downloads_total",
			Help: "Total number of dataset downloads performed",
		},
	)

	r.DatasetCacheHitsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "centrality_dataset_cache_hits_total",
			Help: "Total number of runs that reused the cached dataset",
		},
	)

	r.DatasetEdgesLoaded = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "centrality_dataset_edges_loaded",
			Help: "Number of edges parsed from the dataset",
		},
	)
}
