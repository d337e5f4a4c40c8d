// Package metrics registers the Prometheus collectors exported by the matcher.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resume_matcher_matches_total",
			Help: "Total number of match analyses by outcome",
		},
		[]string{"outcome"},
	)

	MatchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "resume_matcher_match_duration_seconds",
			Help:    "Duration of a single match analysis in seconds",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		},
		[]string{"mode"},
	)

	EmbeddingCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resume_matcher_embedding_cache_lookups_total",
			Help: "Embedding cache lookups by tier and result",
		},
		[]string{"tier", "result"},
	)

	EmbeddingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "resume_matcher_embedding_duration_seconds",
			Help:    "Duration of embedding model calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	ExtractorFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resume_matcher_extractor_failures_total",
			Help: "Feature extraction calls that failed after retries",
		},
		[]string{"extractor"},
	)

	BatchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "resume_matcher_batch_size",
			Help:    "Number of pairs per batch request",
			Buckets: []float64{1, 2, 5, 10, 20, 50, 100},
		},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resume_matcher_http_requests_total",
			Help: "HTTP requests by route and status code",
		},
		[]string{"route", "code"},
	)
)

// Outcome labels for MatchesTotal.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)
