package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the hub's Prometheus collectors. All collectors live on
// a private registry owned by the hub instance.
type Metrics struct {
	registry *prometheus.Registry

	FingerprintsIngested prometheus.Counter
	SubmissionsRejected  prometheus.Counter
	CorrelationsDetected prometheus.Counter
	AlertsEscalated      prometheus.Counter
	AdvisoriesGenerated  *prometheus.CounterVec
	IngestLatency        prometheus.Histogram
	GraphPatterns        prometheus.Gauge
	GraphObservations    prometheus.Gauge
}

// New creates and registers the hub collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		FingerprintsIngested: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hub", Name: "fingerprints_ingested_total",
			Help: "Total accepted fingerprint submissions.",
		}),
		SubmissionsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hub", Name: "submissions_rejected_total",
			Help: "Total submissions rejected by validation.",
		}),
		CorrelationsDetected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hub", Name: "correlations_detected_total",
			Help: "Total cross-entity correlations detected.",
		}),
		AlertsEscalated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hub", Name: "alerts_escalated_total",
			Help: "Total correlations escalated to intent alerts.",
		}),
		AdvisoriesGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hub", Name: "advisories_generated_total",
			Help: "Total advisories generated, by severity tier.",
		}, []string{"severity"}),
		IngestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "hub", Name: "ingest_duration_seconds",
			Help:    "Submission processing latency.",
			Buckets: prometheus.DefBuckets,
		}),
		GraphPatterns: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "hub", Name: "graph_patterns",
			Help: "Unique pattern fingerprints currently in the graph.",
		}),
		GraphObservations: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "hub", Name: "graph_observations",
			Help: "Observation edges currently in the graph.",
		}),
	}

	m.registry.MustRegister(
		m.FingerprintsIngested,
		m.SubmissionsRejected,
		m.CorrelationsDetected,
		m.AlertsEscalated,
		m.AdvisoriesGenerated,
		m.IngestLatency,
		m.GraphPatterns,
		m.GraphObservations,
	)
	return m
}

// Handler exposes the registry in Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
