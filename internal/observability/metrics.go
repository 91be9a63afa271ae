package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// flowmap ETL pipeline.
type Metrics struct {
	DatasetsConsumed prometheus.Counter
	BundlesProduced  prometheus.Counter
	TransformErrors  prometheus.Counter
	PipelineRunning  prometheus.Gauge

	// Batch processing metrics.
	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram

	// Per-dataset extraction metrics.
	CountiesPerDataset prometheus.Histogram
	ArcsPerDataset     prometheus.Histogram
	SourcesPerDataset  prometheus.Histogram

	// Dataset fetch metrics.
	FetchRequests *prometheus.CounterVec // labels: outcome={success,error}
	FetchCache    *prometheus.CounterVec // labels: result={hit,miss}
	FetchDuration prometheus.Histogram
	FetchEnabled  prometheus.Gauge
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		DatasetsConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "flowmap_etl",
			Name:      "datasets_consumed_total",
			Help:      "Total dataset messages read from the source topic.",
		}),
		BundlesProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "flowmap_etl",
			Name:      "bundles_produced_total",
			Help:      "Total layer bundles written to the sink topic.",
		}),
		TransformErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "flowmap_etl",
			Name:      "transform_errors_total",
			Help:      "Total transformation failures.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "flowmap_etl",
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "flowmap_etl",
			Name:      "batch_size",
			Help:      "Number of messages per batch extracted from Kafka.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "flowmap_etl",
			Name:      "batch_processing_duration_seconds",
			Help:      "Duration of a complete batch extract-transform-load cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		CountiesPerDataset: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "flowmap_etl",
			Name:      "counties_per_dataset",
			Help:      "Number of counties per transformed dataset.",
			Buckets:   []float64{1, 10, 50, 100, 500, 1000, 3500},
		}),
		ArcsPerDataset: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "flowmap_etl",
			Name:      "arcs_per_dataset",
			Help:      "Number of deduplicated arcs emitted per dataset.",
			Buckets:   []float64{1, 10, 50, 100, 500, 1000, 5000, 10000},
		}),
		SourcesPerDataset: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "flowmap_etl",
			Name:      "source_markers_per_dataset",
			Help:      "Number of source markers emitted per dataset.",
			Buckets:   []float64{1, 10, 50, 100, 500, 1000, 5000, 10000},
		}),
		FetchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flowmap_etl",
			Name:      "dataset_fetch_requests_total",
			Help:      "Dataset fetch requests by outcome.",
		}, []string{"outcome"}),
		FetchCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flowmap_etl",
			Name:      "dataset_fetch_cache_total",
			Help:      "Dataset cache lookups by result.",
		}, []string{"result"}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "flowmap_etl",
			Name:      "dataset_fetch_duration_seconds",
			Help:      "Dataset fetch request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		FetchEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "flowmap_etl",
			Name:      "dataset_fetch_enabled",
			Help:      "1 when by-URL dataset fetching is enabled, 0 otherwise.",
		}),
	}

	prometheus.MustRegister(
		m.DatasetsConsumed,
		m.BundlesProduced,
		m.TransformErrors,
		m.PipelineRunning,
		m.BatchSize,
		m.BatchProcessingDuration,
		m.CountiesPerDataset,
		m.ArcsPerDataset,
		m.SourcesPerDataset,
		m.FetchRequests,
		m.FetchCache,
		m.FetchDuration,
		m.FetchEnabled,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		DatasetsConsumed:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: "flowmap_etl", Name: "datasets_consumed_total"}),
		BundlesProduced:         prometheus.NewCounter(prometheus.CounterOpts{Namespace: "flowmap_etl", Name: "bundles_produced_total"}),
		TransformErrors:         prometheus.NewCounter(prometheus.CounterOpts{Namespace: "flowmap_etl", Name: "transform_errors_total"}),
		PipelineRunning:         prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "flowmap_etl", Name: "pipeline_running"}),
		BatchSize:               prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "flowmap_etl", Name: "batch_size"}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "flowmap_etl", Name: "batch_processing_duration_seconds"}),
		CountiesPerDataset:      prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "flowmap_etl", Name: "counties_per_dataset"}),
		ArcsPerDataset:          prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "flowmap_etl", Name: "arcs_per_dataset"}),
		SourcesPerDataset:       prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "flowmap_etl", Name: "source_markers_per_dataset"}),
		FetchRequests:           prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "flowmap_etl", Name: "dataset_fetch_requests_total"}, []string{"outcome"}),
		FetchCache:              prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "flowmap_etl", Name: "dataset_fetch_cache_total"}, []string{"result"}),
		FetchDuration:           prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "flowmap_etl", Name: "dataset_fetch_duration_seconds"}),
		FetchEnabled:            prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "flowmap_etl", Name: "dataset_fetch_enabled"}),
	}
}
