// Package metrics provides Prometheus observability for the pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the pipeline.
type Metrics struct {
	// Pipeline executions by canonical role and status
	Queries *prometheus.CounterVec

	// Per-document authorization denials by domain
	DocumentsDenied *prometheus.CounterVec

	// Accepted documents that had at least one label masked
	DocumentsMasked prometheus.Counter

	// Full pipeline latency
	PipelineLatency prometheus.Histogram

	// Retrieval latency by mode ("hybrid", "lexical_only")
	RetrievalLatency *prometheus.HistogramVec

	// Times the semantic pass was unavailable and retrieval degraded
	SemanticFallbacks prometheus.Counter

	// Query-result cache hits and misses
	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter
}

// New creates and registers all pipeline metrics on the given registerer.
// A nil registerer uses the default registry.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		Queries: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "veridoc_queries_total",
			Help: "Total pipeline executions by canonical role and status",
		}, []string{"role", "status"}), // status: "ok", "empty"

		DocumentsDenied: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "veridoc_documents_denied_total",
			Help: "Documents denied by the access validator, by domain",
		}, []string{"domain"}),

		DocumentsMasked: factory.NewCounter(prometheus.CounterOpts{
			Name: "veridoc_documents_masked_total",
			Help: "Accepted documents with at least one masked label",
		}),

		PipelineLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "veridoc_pipeline_duration_seconds",
			Help:    "Duration of full retrieve-and-validate executions",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),

		RetrievalLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "veridoc_retrieval_duration_seconds",
			Help:    "Duration of the retrieval stage by mode",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"mode"}), // mode: "hybrid", "lexical_only"

		SemanticFallbacks: factory.NewCounter(prometheus.CounterOpts{
			Name: "veridoc_semantic_fallbacks_total",
			Help: "Retrievals that degraded to lexical-only scoring",
		}),

		CacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "veridoc_cache_hits_total",
			Help: "Query-result cache hits",
		}),

		CacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "veridoc_cache_misses_total",
			Help: "Query-result cache misses",
		}),
	}
}

// RecordQuery records one pipeline execution.
func (m *Metrics) RecordQuery(role string, accepted int, d time.Duration) {
	if m == nil {
		return
	}
	status := "ok"
	if accepted == 0 {
		status = "empty"
	}
	m.Queries.WithLabelValues(role, status).Inc()
	m.PipelineLatency.Observe(d.Seconds())
}

// RecordDenial records one denied document.
func (m *Metrics) RecordDenial(domain string) {
	if m != nil {
		m.DocumentsDenied.WithLabelValues(domain).Inc()
	}
}

// RecordMasked records an accepted document that had content masked.
func (m *Metrics) RecordMasked() {
	if m != nil {
		m.DocumentsMasked.Inc()
	}
}

// ObserveRetrieval records the retrieval stage duration. degraded selects the
// lexical-only mode label and bumps the fallback counter.
func (m *Metrics) ObserveRetrieval(d time.Duration, degraded bool) {
	if m == nil {
		return
	}
	mode := "hybrid"
	if degraded {
		mode = "lexical_only"
		m.SemanticFallbacks.Inc()
	}
	m.RetrievalLatency.WithLabelValues(mode).Observe(d.Seconds())
}

// RecordCache records a cache lookup outcome.
func (m *Metrics) RecordCache(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.CacheHits.Inc()
	} else {
		m.CacheMisses.Inc()
	}
}
