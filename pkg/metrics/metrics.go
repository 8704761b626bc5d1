package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// Latency of the hybrid ranking HTTP handler
	RecommendLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "ranking_recommend_latency_seconds",
		Help:    "Latency of the hybrid ranking handler",
		Buckets: prometheus.DefBuckets,
	})

	// Total ranked lists served, by mode (personalized vs fallback)
	RecommendTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ranking_recommend_total",
		Help: "Total ranked lists served by ranking mode",
	}, []string{"mode"})

	IngestRejectedBatches = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "events_ingest_rejected_batches_total",
		Help: "Batches rejected by the shape check",
	})

	PersistFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "events_persist_failures_total",
		Help: "Accepted records that failed to store durably",
	})

	AttributionHits = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "attribution_lookup_hits_total",
		Help: "Funnel events tagged from a live attribution entry",
	})

	AttributionMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "attribution_lookup_misses_total",
		Help: "Funnel events left untagged (missing or expired entry)",
	})
)

// NewRecommendTimer starts a latency observation against RecommendLatency.
func NewRecommendTimer() *prometheus.Timer {
	return prometheus.NewTimer(RecommendLatency)
}

func Init() {
	prometheus.MustRegister(
		RecommendLatency,
		RecommendTotal,
		IngestRejectedBatches,
		PersistFailures,
		AttributionHits,
		AttributionMisses,
	)
}
