// Package metrics provides Prometheus metrics registry and recording utilities.
//
// This package centralizes all application metrics including:
//   - Pipeline metrics (articles fetched, deduplicated, stored)
//   - LLM metrics (summarization, translation, fallbacks)
//   - Delivery metrics (digests built and sent)
//   - Database query metrics
//
// All metrics are automatically registered with the Prometheus default registry
// and exposed via the /metrics endpoint.
//
// Example usage:
//
//	import "world-digest/internal/observability/metrics"
//
//	func crawl(region, source string) {
//	    start := time.Now()
//	    // ... fetch feed items ...
//	    metrics.RecordFeedCrawl(source, time.Since(start))
//	    metrics.RecordArticlesFetched(region, source, count)
//	}
package metrics
