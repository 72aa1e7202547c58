// Package repository defines persistence interfaces for the digest pipeline.
package repository

import (
	"context"
	"time"

	"world-digest/internal/domain/entity"
)

// ArticleListFilters contains optional filters for listing articles.
type ArticleListFilters struct {
	// Since restricts results to articles fetched at or after this time.
	Since *time.Time
	// UnprocessedOnly restricts results to articles not yet used in a digest.
	UnprocessedOnly bool
}

// ArticleRepository persists raw articles collected from regional feeds.
type ArticleRepository interface {
	// Create inserts a single article.
	Create(ctx context.Context, article *entity.Article) error
	// CreateBatch inserts articles that are not already stored, keyed by URL.
	// Returns the number of newly inserted articles.
	CreateBatch(ctx context.Context, articles []*entity.Article) (int, error)
	// ListForRegion retrieves a region's articles matching the filters,
	// ordered by published_at descending.
	ListForRegion(ctx context.Context, region string, filters ArticleListFilters) ([]*entity.Article, error)
	// MarkProcessed marks the given article IDs as used in a digest.
	MarkProcessed(ctx context.Context, ids []string) error
	// ExistsByURL reports whether an article with the exact URL is stored.
	ExistsByURL(ctx context.Context, url string) (bool, error)
	// ExistsByURLBatch checks URL existence in one round trip to avoid N+1 queries.
	ExistsByURLBatch(ctx context.Context, urls []string) (map[string]bool, error)
	// DeleteOlderThan removes articles fetched before the cutoff.
	// Returns the number of deleted rows.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
	// CountArticles returns the total number of stored articles.
	CountArticles(ctx context.Context) (int64, error)
}
