// Package scraper fetches and parses RSS/Atom feeds into domain articles.
// It uses the gofeed library with retry and circuit breaker protection.
package scraper

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/sony/gobreaker"

	"world-digest/internal/config"
	"world-digest/internal/domain/entity"
	"world-digest/internal/resilience/circuitbreaker"
	"world-digest/internal/resilience/retry"
	"world-digest/internal/utils/text"
)

const (
	userAgent = "WorldDigestBot/1.0 (+https://github.com/world-digest)"

	maxDescriptionRunes = 1000
	maxCategories       = 5
)

// RSSFetcher retrieves feed entries and maps them into raw articles.
type RSSFetcher struct {
	client         *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
	logger         *slog.Logger
}

// NewRSSFetcher creates an RSSFetcher with the given HTTP client.
// Circuit breaker and retry policies are configured for feed endpoints.
func NewRSSFetcher(client *http.Client, logger *slog.Logger) *RSSFetcher {
	return &RSSFetcher{
		client:         client,
		circuitBreaker: circuitbreaker.New(circuitbreaker.FeedFetchConfig()),
		retryConfig:    retry.FeedFetchConfig(),
		logger:         logger,
	}
}

// Fetch retrieves one feed and returns its entries as articles for the
// region. Entries without a title or link are skipped.
func (f *RSSFetcher) Fetch(ctx context.Context, region string, feed config.Feed) ([]*entity.Article, error) {
	var articles []*entity.Article

	retryErr := retry.WithBackoff(ctx, f.retryConfig, func() error {
		cbResult, err := f.circuitBreaker.Execute(func() (interface{}, error) {
			return f.doFetch(ctx, region, feed)
		})

		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				f.logger.Warn("feed fetch circuit breaker open, request rejected",
					slog.String("service", "feed-fetch"),
					slog.String("url", feed.URL),
					slog.String("state", f.circuitBreaker.State().String()))
				return err
			}
			return err
		}

		articles = cbResult.([]*entity.Article)
		return nil
	})

	if retryErr != nil {
		return nil, retryErr
	}

	return articles, nil
}

// doFetch performs the actual feed fetch without retry or circuit breaker.
func (f *RSSFetcher) doFetch(ctx context.Context, region string, feed config.Feed) ([]*entity.Article, error) {
	fp := gofeed.NewParser()
	fp.UserAgent = userAgent
	fp.Client = f.client

	parsed, err := fp.ParseURLWithContext(feed.URL, ctx)
	if err != nil {
		return nil, err
	}

	language := feed.Language
	if language == "" {
		language = "en"
	}

	articles := make([]*entity.Article, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		article := mapItem(item, region, feed.Name, feed.URL, language)
		if article == nil {
			continue
		}
		articles = append(articles, article)
	}

	return articles, nil
}

// mapItem converts a single feed entry into an Article.
// Returns nil when the entry lacks a title or link.
func mapItem(item *gofeed.Item, region, sourceName, sourceURL, language string) *entity.Article {
	title := CollapseWhitespace(item.Title)
	link := CollapseWhitespace(item.Link)
	if title == "" || link == "" {
		return nil
	}

	article := entity.NewArticle(region, sourceName, title, link)
	article.SourceURL = sourceURL
	article.Language = language
	article.Description = text.TruncateRunes(StripHTML(item.Description), maxDescriptionRunes, "")
	article.Content = StripHTML(item.Content)
	article.PublishedAt = publishedTime(item)

	if len(item.Categories) > 0 {
		categories := make([]string, 0, maxCategories)
		for _, c := range item.Categories {
			if c == "" {
				continue
			}
			categories = append(categories, c)
			if len(categories) == maxCategories {
				break
			}
		}
		article.Categories = categories
	}

	return article
}

// publishedTime picks the entry's publication time, preferring the
// published date over the updated date. Nil when the feed provides neither.
func publishedTime(item *gofeed.Item) *time.Time {
	if item.PublishedParsed != nil {
		t := item.PublishedParsed.UTC()
		return &t
	}
	if item.UpdatedParsed != nil {
		t := item.UpdatedParsed.UTC()
		return &t
	}
	return nil
}
