package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "metar_archive"

// Metrics holds the Prometheus counters, histograms, and gauges for the archive ETL.
type Metrics struct {
	FetchAttempts    *prometheus.CounterVec // labels: report_type, outcome
	UnitsResolved    *prometheus.CounterVec // labels: report_type, outcome
	ReportsExtracted *prometheus.CounterVec // labels: report_type
	BackoffWaits     *prometheus.CounterVec // labels: reason (outcome of the failed attempt)
	FetchDuration    prometheus.Histogram
	LoadErrors       prometheus.Counter

	// Batch and scheduler metrics.
	BatchDuration    prometheus.Histogram
	SchedulerRunning prometheus.Gauge
	QueueDepth       prometheus.Gauge

	// Archive cache metrics.
	ArchiveCache *prometheus.CounterVec // labels: result={hit,miss,bypass}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.FetchAttempts,
		m.UnitsResolved,
		m.ReportsExtracted,
		m.BackoffWaits,
		m.FetchDuration,
		m.LoadErrors,
		m.BatchDuration,
		m.SchedulerRunning,
		m.QueueDepth,
		m.ArchiveCache,
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
		FetchAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_attempts_total",
			Help:      "Archive fetch attempts by report type and attempt outcome.",
		}, []string{"report_type", "outcome"}),
		UnitsResolved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "units_resolved_total",
			Help:      "Station-months resolved after retries, by report type and terminal outcome.",
		}, []string{"report_type", "outcome"}),
		ReportsExtracted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_extracted_total",
			Help:      "Normalized reports extracted from successful fetches.",
		}, []string{"report_type"}),
		BackoffWaits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backoff_waits_total",
			Help:      "Retry waits by the failure class that triggered them.",
		}, []string{"reason"}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Duration of a single archive fetch attempt.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		LoadErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "load_errors_total",
			Help:      "Failures writing extracted reports to a sink.",
		}),
		BatchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_duration_seconds",
			Help:      "Duration of a complete twelve-month batch including pacing delays.",
			Buckets:   []float64{10, 30, 60, 120, 300, 600, 1200},
		}),
		SchedulerRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "scheduler_running",
			Help:      "1 when the job scheduler is active, 0 when shut down.",
		}),
		QueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "queue_depth",
			Help:      "Jobs waiting for the scheduler.",
		}),
		ArchiveCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "archive_cache_total",
			Help:      "Archive response cache lookups by result.",
		}, []string{"result"}),
	}
}
