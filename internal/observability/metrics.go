package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// collector pipeline.
type Metrics struct {
	TargetsScraped *prometheus.CounterVec // labels: outcome={success,failed}
	FetchErrors    prometheus.Counter
	AppendErrors   prometheus.Counter
	PublishErrors  prometheus.Counter
	FieldsMissing  prometheus.Counter

	ObservationsAppended  prometheus.Counter
	ObservationsPublished prometheus.Counter

	BatchTargets  prometheus.Histogram
	BatchDuration prometheus.Histogram

	CollectorRunning prometheus.Gauge
}

// NewMetrics creates and registers all collector metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.TargetsScraped,
		m.FetchErrors,
		m.AppendErrors,
		m.PublishErrors,
		m.FieldsMissing,
		m.ObservationsAppended,
		m.ObservationsPublished,
		m.BatchTargets,
		m.BatchDuration,
		m.CollectorRunning,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		TargetsScraped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "birdcast",
			Name:      "targets_scraped_total",
			Help:      "Targets processed, by outcome.",
		}, []string{"outcome"}),
		FetchErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "birdcast",
			Name:      "fetch_errors_total",
			Help:      "Terminal fetch failures after exhausting retries.",
		}),
		AppendErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "birdcast",
			Name:      "append_errors_total",
			Help:      "Failures persisting an observation to the history files.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "birdcast",
			Name:      "publish_errors_total",
			Help:      "Failures publishing an observation to Kafka.",
		}),
		FieldsMissing: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "birdcast",
			Name:      "fields_missing_total",
			Help:      "Dashboard fields that could not be located, across all targets.",
		}),
		ObservationsAppended: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "birdcast",
			Name:      "observations_appended_total",
			Help:      "Observations durably appended to both history files.",
		}),
		ObservationsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "birdcast",
			Name:      "observations_published_total",
			Help:      "Observations published to the Kafka topic.",
		}),
		BatchTargets: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "birdcast",
			Name:      "batch_targets",
			Help:      "Number of targets per batch invocation.",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500},
		}),
		BatchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "birdcast",
			Name:      "batch_duration_seconds",
			Help:      "Wall-clock duration of a complete batch invocation.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
		}),
		CollectorRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "birdcast",
			Name:      "collector_running",
			Help:      "1 while a batch is in flight, 0 otherwise.",
		}),
	}
}
