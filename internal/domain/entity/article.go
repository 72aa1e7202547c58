// Package entity defines the core domain entities for the digest pipeline.
// It contains the fundamental business objects such as Article and Digest,
// along with their validation rules and domain-specific errors.
package entity

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Domain validation errors.
var (
	ErrEmptyTitle  = errors.New("article title is required")
	ErrEmptyURL    = errors.New("article url is required")
	ErrEmptyRegion = errors.New("article region is required")
)

// Article represents a raw news item ingested from a regional feed.
// Articles are immutable value objects once ingested: the pipeline selects
// and orders them but never rewrites their fields.
type Article struct {
	ID          string
	Region      string
	SourceName  string
	SourceURL   string
	Title       string
	Description string
	Content     string
	URL         string
	PublishedAt *time.Time
	Language    string
	Categories  []string
	FetchedAt   time.Time
	Processed   bool
}

// NewArticle creates an Article with a fresh UUID and the ingestion
// timestamp stamped to now.
func NewArticle(region, sourceName, title, url string) *Article {
	return &Article{
		ID:         uuid.New().String(),
		Region:     region,
		SourceName: sourceName,
		Title:      title,
		URL:        url,
		Language:   "en",
		FetchedAt:  time.Now().UTC(),
	}
}

// EffectiveTime returns the timestamp used for recency decisions and
// ordering: PublishedAt when the feed provided one, FetchedAt otherwise.
func (a *Article) EffectiveTime() time.Time {
	if a.PublishedAt != nil {
		return *a.PublishedAt
	}
	return a.FetchedAt
}

// Validate checks that the fields required for storage are present.
// Articles with missing optional fields (description, published time) are
// accepted; upstream parsing is responsible for anything stricter.
func (a *Article) Validate() error {
	if a.Title == "" {
		return ErrEmptyTitle
	}
	if a.URL == "" {
		return ErrEmptyURL
	}
	if a.Region == "" {
		return ErrEmptyRegion
	}
	return nil
}
