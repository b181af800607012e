package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "snowtam_watch"

// Metrics holds the Prometheus counters, histograms, and gauges for one run of the job.
type Metrics struct {
	SitesProcessed prometheus.Counter
	FetchErrors    prometheus.Counter
	ChangedRecords prometheus.Counter
	SinkErrors     *prometheus.CounterVec // labels: sink={json,kafka,postgres,redis}

	// Severity breakdown of the latest run.
	SitesBySeverity *prometheus.GaugeVec // labels: severity={ok,yellow,orange,red,unknown}

	// HTTP fetch metrics.
	FetchAttempts *prometheus.CounterVec // labels: outcome={success,retry,error}
	FetchDuration prometheus.Histogram

	RunDuration prometheus.Gauge
	LastSuccess prometheus.Gauge

	registry *prometheus.Registry
}

// NewMetrics creates and registers all job metrics with a dedicated registry
// that is handed to the Pushgateway at the end of the run.
func NewMetrics() *Metrics {
	m := newMetrics()
	m.registry = prometheus.NewRegistry()
	m.registry.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates unregistered Metrics so tests can build as
// many instances as they need.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

// Registry returns the registry holding the job metrics, or nil for test metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func newMetrics() *Metrics {
	return &Metrics{
		SitesProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sites_processed_total",
			Help:      "Total sites for which a status record was produced.",
		}),
		FetchErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_errors_total",
			Help:      "Total sites whose portal page could not be fetched.",
		}),
		ChangedRecords: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "changed_records_total",
			Help:      "Total records whose content hash differs from the previous run.",
		}),
		SinkErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sink_errors_total",
			Help:      "Sink write failures by sink.",
		}, []string{"sink"}),
		SitesBySeverity: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sites_by_severity",
			Help:      "Number of sites per severity tier in the latest run.",
		}, []string{"severity"}),
		FetchAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_attempts_total",
			Help:      "HTTP fetch attempts by outcome.",
		}, []string{"outcome"}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Duration of a single HTTP fetch attempt in seconds.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 35},
		}),
		RunDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall-clock duration of the latest run.",
		}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the latest run that wrote its output files.",
		}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.SitesProcessed,
		m.FetchErrors,
		m.ChangedRecords,
		m.SinkErrors,
		m.SitesBySeverity,
		m.FetchAttempts,
		m.FetchDuration,
		m.RunDuration,
		m.LastSuccess,
	}
}
