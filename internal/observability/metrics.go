package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// triage pipeline.
type Metrics struct {
	ReportsConsumed   prometheus.Counter
	IncidentsTriaged  prometheus.Counter
	ParseErrors       prometheus.Counter
	DuplicatesFlagged prometheus.Counter
	PipelineRunning   prometheus.Gauge

	// Batch processing metrics.
	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram

	// Score distribution across triaged incidents.
	PriorityScore prometheus.Histogram

	// Region resolution metrics.
	RegionRequests    *prometheus.CounterVec // labels: outcome={success,error,empty}
	RegionCache       *prometheus.CounterVec // labels: result={hit,miss}
	RegionAPIDuration prometheus.Histogram
	RegionEnabled     prometheus.Gauge
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		ReportsConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "incident_triage",
			Name:      "reports_consumed_total",
			Help:      "Total report messages read from the source topic.",
		}),
		IncidentsTriaged: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "incident_triage",
			Name:      "incidents_triaged_total",
			Help:      "Total triaged incidents written to the sink topic.",
		}),
		ParseErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "incident_triage",
			Name:      "parse_errors_total",
			Help:      "Total report messages skipped as unparseable.",
		}),
		DuplicatesFlagged: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "incident_triage",
			Name:      "duplicates_flagged_total",
			Help:      "Total incidents flagged as likely re-reports.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "incident_triage",
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "incident_triage",
			Name:      "batch_size",
			Help:      "Number of messages per batch extracted from Kafka.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "incident_triage",
			Name:      "batch_processing_duration_seconds",
			Help:      "Duration of a complete batch extract-triage-load cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		PriorityScore: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "incident_triage",
			Name:      "priority_score",
			Help:      "Distribution of computed priority scores.",
			Buckets:   []float64{50, 100, 150, 200, 250, 300, 400, 500, 750, 1000},
		}),
		RegionRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "incident_triage",
			Name:      "region_requests_total",
			Help:      "Region resolver API requests by outcome.",
		}, []string{"outcome"}),
		RegionCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "incident_triage",
			Name:      "region_cache_total",
			Help:      "Region resolver cache lookups by result.",
		}, []string{"result"}),
		RegionAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "incident_triage",
			Name:      "region_api_duration_seconds",
			Help:      "Region resolver API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		RegionEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "incident_triage",
			Name:      "region_resolver_enabled",
			Help:      "1 when external region resolution is enabled, 0 otherwise.",
		}),
	}

	prometheus.MustRegister(
		m.ReportsConsumed,
		m.IncidentsTriaged,
		m.ParseErrors,
		m.DuplicatesFlagged,
		m.PipelineRunning,
		m.BatchSize,
		m.BatchProcessingDuration,
		m.PriorityScore,
		m.RegionRequests,
		m.RegionCache,
		m.RegionAPIDuration,
		m.RegionEnabled,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		ReportsConsumed:         prometheus.NewCounter(prometheus.CounterOpts{Namespace: "incident_triage", Name: "reports_consumed_total"}),
		IncidentsTriaged:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: "incident_triage", Name: "incidents_triaged_total"}),
		ParseErrors:             prometheus.NewCounter(prometheus.CounterOpts{Namespace: "incident_triage", Name: "parse_errors_total"}),
		DuplicatesFlagged:       prometheus.NewCounter(prometheus.CounterOpts{Namespace: "incident_triage", Name: "duplicates_flagged_total"}),
		PipelineRunning:         prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "incident_triage", Name: "pipeline_running"}),
		BatchSize:               prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "incident_triage", Name: "batch_size"}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "incident_triage", Name: "batch_processing_duration_seconds"}),
		PriorityScore:           prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "incident_triage", Name: "priority_score"}),
		RegionRequests:          prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "incident_triage", Name: "region_requests_total"}, []string{"outcome"}),
		RegionCache:             prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "incident_triage", Name: "region_cache_total"}, []string{"result"}),
		RegionAPIDuration:       prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "incident_triage", Name: "region_api_duration_seconds"}),
		RegionEnabled:           prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "incident_triage", Name: "region_resolver_enabled"}),
	}
}
