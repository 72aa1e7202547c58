// Package metrics provides centralized Prometheus metrics for the application.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Pipeline metrics track feed collection and deduplication
var (
	// ArticlesFetchedTotal counts articles fetched from each source
	ArticlesFetchedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "articles_fetched_total",
			Help: "Total number of articles fetched from sources",
		},
		[]string{"region", "source"},
	)

	// ArticlesDeduplicatedTotal counts articles removed by deduplication
	ArticlesDeduplicatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "articles_deduplicated_total",
			Help: "Total number of duplicate articles removed",
		},
		[]string{"region"},
	)

	// ArticlesStoredTotal counts articles persisted per region
	ArticlesStoredTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "articles_stored_total",
			Help: "Total number of articles persisted",
		},
		[]string{"region"},
	)

	// FeedCrawlDuration measures time to crawl a feed source
	FeedCrawlDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "feed_crawl_duration_seconds",
			Help:    "Time taken to crawl a feed source",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		},
		[]string{"source"},
	)

	// FeedCrawlErrors counts errors during feed crawling
	FeedCrawlErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_crawl_errors_total",
			Help: "Total number of feed crawl errors",
		},
		[]string{"source", "error_type"},
	)
)

// LLM metrics track summarization and translation calls
var (
	// SummarizationsTotal counts summarization calls by status
	SummarizationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "summarizations_total",
			Help: "Total number of digest summarization calls",
		},
		[]string{"status"},
	)

	// SummarizationDuration measures time to summarize a region's articles
	SummarizationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "summarization_duration_seconds",
			Help:    "Time taken to summarize a batch of articles",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		},
	)

	// TranslationsTotal counts translation calls by status
	TranslationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "translations_total",
			Help: "Total number of translation calls",
		},
		[]string{"status"},
	)

	// TranslationDuration measures time to translate a digest
	TranslationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "translation_duration_seconds",
			Help:    "Time taken to translate a digest",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		},
	)

	// LLMFallbacksTotal counts times the fallback model was used
	LLMFallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_fallbacks_total",
			Help: "Total number of requests retried on the fallback model",
		},
		[]string{"operation"},
	)
)

// Content fetch metrics track full-text extraction
var (
	// ContentFetchAttemptsTotal counts content fetch attempts by result
	ContentFetchAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "content_fetch_attempts_total",
			Help: "Total number of content fetch attempts",
		},
		[]string{"result"}, // result: success, failure, skipped
	)

	// ContentFetchDuration measures time to fetch article content
	ContentFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "content_fetch_duration_seconds",
			Help:    "Time taken to fetch article content",
			Buckets: []float64{0.1, 0.2, 0.4, 0.8, 1.6, 3.2, 6.4, 12.8},
		},
	)

	// ContentFetchSize measures fetched content size in bytes
	ContentFetchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "content_fetch_size_bytes",
			Help: "Fetched article content size in bytes",
			Buckets: []float64{
				100, 200, 400, 800, 1600, 3200, 6400, 12800,
				25600, 51200, 102400, 204800, 409600, 819200,
				1638400, 3276800, 6553600, 10485760, // up to 10MB
			},
		},
	)
)

// Digest and delivery metrics
var (
	// DigestsBuiltTotal counts digests built per region and status
	DigestsBuiltTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "digests_built_total",
			Help: "Total number of digests built",
		},
		[]string{"region", "status"},
	)

	// DigestsSentTotal counts digests delivered per channel and status
	DigestsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "digests_sent_total",
			Help: "Total number of digests delivered",
		},
		[]string{"channel", "status"},
	)

	// ArticlesTotal tracks total number of articles in the database
	ArticlesTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "articles_total",
			Help: "Total number of articles in the database",
		},
	)

	// DigestsTotal tracks total number of digests in the database
	DigestsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "digests_total",
			Help: "Total number of digests in the database",
		},
	)
)

// Database metrics track database performance
var (
	// DBQueryDuration measures database query duration
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 10),
		},
		[]string{"operation"},
	)

	// DBConnectionsActive tracks active database connections
	DBConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_active",
			Help: "Number of active database connections",
		},
	)

	// DBConnectionsIdle tracks idle database connections
	DBConnectionsIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_idle",
			Help: "Number of idle database connections",
		},
	)
)

// RecordOperationDuration records the duration of a named operation
func RecordOperationDuration(operation string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}
