package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// claim assessment service.
type Metrics struct {
	AssessmentsTotal   *prometheus.CounterVec // labels: decision={APPROVE,MANUAL_REVIEW,REJECT}
	AssessmentDuration prometheus.Histogram
	AssessmentErrors   prometheus.Counter
	AssessorReady      prometheus.Gauge

	// Weather resolution metrics.
	WeatherRequests    *prometheus.CounterVec // labels: outcome={success,error}
	WeatherCache       *prometheus.CounterVec // labels: result={hit,miss}
	WeatherAPIDuration prometheus.Histogram
	MockFallbacks      prometheus.Counter
	ProviderEnabled    prometheus.Gauge

	// Downstream delivery metrics.
	AssessmentsPublished prometheus.Counter
	AuditRecordsWritten  prometheus.Counter
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		AssessmentsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "claim_assess",
			Name:      "assessments_total",
			Help:      "Completed claim assessments by decision.",
		}, []string{"decision"}),
		AssessmentDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "claim_assess",
			Name:      "assessment_duration_seconds",
			Help:      "Duration of a complete claim assessment.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		AssessmentErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "claim_assess",
			Name:      "assessment_errors_total",
			Help:      "Claim assessments that failed outright.",
		}),
		AssessorReady: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "claim_assess",
			Name:      "assessor_ready",
			Help:      "1 when the assessor is ready to take claims, 0 otherwise.",
		}),
		WeatherRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "claim_assess",
			Name:      "weather_requests_total",
			Help:      "OpenWeatherMap API requests by outcome.",
		}, []string{"outcome"}),
		WeatherCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "claim_assess",
			Name:      "weather_cache_total",
			Help:      "Weather snapshot cache lookups by result.",
		}, []string{"result"}),
		WeatherAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "claim_assess",
			Name:      "weather_api_duration_seconds",
			Help:      "OpenWeatherMap API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		MockFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "claim_assess",
			Name:      "weather_mock_fallbacks_total",
			Help:      "Weather lookups served by deterministic mock data.",
		}),
		ProviderEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "claim_assess",
			Name:      "weather_provider_enabled",
			Help:      "1 when the live weather provider is configured, 0 otherwise.",
		}),
		AssessmentsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "claim_assess",
			Name:      "assessments_published_total",
			Help:      "Finished assessments published to the Kafka topic.",
		}),
		AuditRecordsWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "claim_assess",
			Name:      "audit_records_written_total",
			Help:      "Assessment records written to the audit store.",
		}),
	}

	prometheus.MustRegister(
		m.AssessmentsTotal,
		m.AssessmentDuration,
		m.AssessmentErrors,
		m.AssessorReady,
		m.WeatherRequests,
		m.WeatherCache,
		m.WeatherAPIDuration,
		m.MockFallbacks,
		m.ProviderEnabled,
		m.AssessmentsPublished,
		m.AuditRecordsWritten,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		AssessmentsTotal:     prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "claim_assess", Name: "assessments_total"}, []string{"decision"}),
		AssessmentDuration:   prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "claim_assess", Name: "assessment_duration_seconds"}),
		AssessmentErrors:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: "claim_assess", Name: "assessment_errors_total"}),
		AssessorReady:        prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "claim_assess", Name: "assessor_ready"}),
		WeatherRequests:      prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "claim_assess", Name: "weather_requests_total"}, []string{"outcome"}),
		WeatherCache:         prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "claim_assess", Name: "weather_cache_total"}, []string{"result"}),
		WeatherAPIDuration:   prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "claim_assess", Name: "weather_api_duration_seconds"}),
		MockFallbacks:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: "claim_assess", Name: "weather_mock_fallbacks_total"}),
		ProviderEnabled:      prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "claim_assess", Name: "weather_provider_enabled"}),
		AssessmentsPublished: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "claim_assess", Name: "assessments_published_total"}),
		AuditRecordsWritten:  prometheus.NewCounter(prometheus.CounterOpts{Namespace: "claim_assess", Name: "audit_records_written_total"}),
	}
}
