package metrics

import (
	"time"
)

// RecordArticlesFetched records the number of articles fetched from a source.
// This metric helps track feed crawling performance and source activity.
func RecordArticlesFetched(region, sourceName string, count int) {
	ArticlesFetchedTotal.WithLabelValues(region, sourceName).Add(float64(count))
}

// RecordArticlesDeduplicated records the number of duplicates removed for a region.
func RecordArticlesDeduplicated(region string, count int) {
	if count > 0 {
		ArticlesDeduplicatedTotal.WithLabelValues(region).Add(float64(count))
	}
}

// RecordArticlesStored records the number of articles persisted for a region.
func RecordArticlesStored(region string, count int) {
	if count > 0 {
		ArticlesStoredTotal.WithLabelValues(region).Add(float64(count))
	}
}

// RecordFeedCrawl records metrics for a feed crawl operation.
func RecordFeedCrawl(sourceName string, duration time.Duration) {
	FeedCrawlDuration.WithLabelValues(sourceName).Observe(duration.Seconds())
}

// RecordFeedCrawlError records an error during feed crawling.
func RecordFeedCrawlError(sourceName, errorType string) {
	FeedCrawlErrors.WithLabelValues(sourceName, errorType).Inc()
}

// RecordSummarization records the result of a digest summarization call.
func RecordSummarization(success bool, duration time.Duration) {
	status := "success"
	if !success {
		status = "failure"
	}
	SummarizationsTotal.WithLabelValues(status).Inc()
	SummarizationDuration.Observe(duration.Seconds())
}

// RecordTranslation records the result of a translation call.
func RecordTranslation(success bool, duration time.Duration) {
	status := "success"
	if !success {
		status = "failure"
	}
	TranslationsTotal.WithLabelValues(status).Inc()
	TranslationDuration.Observe(duration.Seconds())
}

// RecordLLMFallback records a request that was retried on the fallback model.
// Operation should be "summarize" or "translate".
func RecordLLMFallback(operation string) {
	LLMFallbacksTotal.WithLabelValues(operation).Inc()
}

// RecordContentFetchSuccess records a successful content fetch operation.
// This tracks both the duration and size of fetched content.
func RecordContentFetchSuccess(duration time.Duration, size int) {
	ContentFetchAttemptsTotal.WithLabelValues("success").Inc()
	ContentFetchDuration.Observe(duration.Seconds())
	ContentFetchSize.Observe(float64(size))
}

// RecordContentFetchFailed records a failed content fetch operation.
func RecordContentFetchFailed(duration time.Duration) {
	ContentFetchAttemptsTotal.WithLabelValues("failure").Inc()
	ContentFetchDuration.Observe(duration.Seconds())
}

// RecordContentFetchSkipped records a skipped content fetch operation.
// This occurs when the RSS description is already long enough to summarize.
func RecordContentFetchSkipped() {
	ContentFetchAttemptsTotal.WithLabelValues("skipped").Inc()
}

// RecordDigestBuilt records the result of building a digest for a region.
func RecordDigestBuilt(region string, success bool) {
	status := "success"
	if !success {
		status = "failure"
	}
	DigestsBuiltTotal.WithLabelValues(region, status).Inc()
}

// RecordDigestSent records the result of delivering a digest on a channel.
func RecordDigestSent(channel string, success bool) {
	status := "success"
	if !success {
		status = "failure"
	}
	DigestsSentTotal.WithLabelValues(channel, status).Inc()
}

// UpdateArticlesTotal updates the total count of articles in the database.
// This gauge should be updated periodically to reflect the current state.
func UpdateArticlesTotal(count int) {
	ArticlesTotal.Set(float64(count))
}

// UpdateDigestsTotal updates the total count of digests in the database.
func UpdateDigestsTotal(count int) {
	DigestsTotal.Set(float64(count))
}

// RecordDBQuery records the duration of a database query operation.
// Operation should describe the query type (e.g., "select_articles", "insert_article").
func RecordDBQuery(operation string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// UpdateDBConnectionStats updates database connection pool statistics.
func UpdateDBConnectionStats(active, idle int) {
	DBConnectionsActive.Set(float64(active))
	DBConnectionsIdle.Set(float64(idle))
}
