package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type EngineMetrics struct {
	registry *prometheus.Registry

	retrievalTotal    *prometheus.CounterVec
	retrievalDuration *prometheus.HistogramVec
	retrievalChunks   *prometheus.HistogramVec
	retrievalDegraded *prometheus.CounterVec

	validationTotal    *prometheus.CounterVec
	validationDuration *prometheus.HistogramVec
	needsReviewTotal   *prometheus.CounterVec

	citationTotal    *prometheus.CounterVec
	invalidCitations *prometheus.CounterVec
}

func NewEngineMetrics(service string) *EngineMetrics {
	registry := prometheus.NewRegistry()

	retrievalTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rag",
			Subsystem: "retrieval",
			Name:      "requests_total",
			Help:      "Total retrieval requests by status.",
		},
		[]string{"service", "status"},
	)
	retrievalDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "rag",
			Subsystem: "retrieval",
			Name:      "duration_seconds",
			Help:      "Retrieval duration in seconds by status.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "status"},
	)
	retrievalChunks := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "rag",
			Subsystem: "retrieval",
			Name:      "result_chunks",
			Help:      "Distribution of chunks returned per successful retrieval.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21},
		},
		[]string{"service"},
	)
	retrievalDegraded := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rag",
			Subsystem: "retrieval",
			Name:      "degraded_total",
			Help:      "Total retrievals served from a single search path.",
		},
		[]string{"service"},
	)
	validationTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rag",
			Subsystem: "validation",
			Name:      "requests_total",
			Help:      "Total validation requests by status.",
		},
		[]string{"service", "status"},
	)
	validationDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "rag",
			Subsystem: "validation",
			Name:      "duration_seconds",
			Help:      "Validation duration in seconds by status.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "status"},
	)
	needsReviewTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rag",
			Subsystem: "validation",
			Name:      "needs_review_total",
			Help:      "Total validated answers flagged for human review.",
		},
		[]string{"service"},
	)
	citationTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rag",
			Subsystem: "citation",
			Name:      "requests_total",
			Help:      "Total citation processing requests by style and status.",
		},
		[]string{"service", "style", "status"},
	)
	invalidCitations := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rag",
			Subsystem: "citation",
			Name:      "invalid_markers_total",
			Help:      "Total citation markers pointing outside the source list.",
		},
		[]string{"service"},
	)

	registry.MustRegister(
		retrievalTotal,
		retrievalDuration,
		retrievalChunks,
		retrievalDegraded,
		validationTotal,
		validationDuration,
		needsReviewTotal,
		citationTotal,
		invalidCitations,
	)

	return &EngineMetrics{
		registry:           registry,
		retrievalTotal:     retrievalTotal,
		retrievalDuration:  retrievalDuration,
		retrievalChunks:    retrievalChunks,
		retrievalDegraded:  retrievalDegraded,
		validationTotal:    validationTotal,
		validationDuration: validationDuration,
		needsReviewTotal:   needsReviewTotal,
		citationTotal:      citationTotal,
		invalidCitations:   invalidCitations,
	}
}

func (m *EngineMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *EngineMetrics) RecordRetrieval(service string, resultCount int, degraded bool, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.retrievalTotal.WithLabelValues(service, status).Inc()
	m.retrievalDuration.WithLabelValues(service, status).Observe(duration.Seconds())
	if err != nil {
		return
	}
	m.retrievalChunks.WithLabelValues(service).Observe(float64(resultCount))
	if degraded {
		m.retrievalDegraded.WithLabelValues(service).Inc()
	}
}

func (m *EngineMetrics) RecordValidation(service string, needsReview bool, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.validationTotal.WithLabelValues(service, status).Inc()
	m.validationDuration.WithLabelValues(service, status).Observe(duration.Seconds())
	if err == nil && needsReview {
		m.needsReviewTotal.WithLabelValues(service).Inc()
	}
}

func (m *EngineMetrics) RecordCitations(service, style string, invalidCount int, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	if style == "" {
		style = "unknown"
	}
	m.citationTotal.WithLabelValues(service, style, status).Inc()
	if err == nil && invalidCount > 0 {
		m.invalidCitations.WithLabelValues(service).Add(float64(invalidCount))
	}
}
