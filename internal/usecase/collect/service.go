package collect

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"world-digest/internal/config"
	"world-digest/internal/domain/entity"
	"world-digest/internal/observability/logging"
	"world-digest/internal/observability/metrics"
	"world-digest/internal/repository"
	"world-digest/internal/usecase/dedup"
)

const (
	// feedParallelism caps concurrent feed fetches within one region.
	feedParallelism = 5

	// regionParallelism caps concurrently collected regions.
	regionParallelism = 4
)

// FeedFetcher fetches the entries of one RSS/Atom feed mapped to articles.
type FeedFetcher interface {
	Fetch(ctx context.Context, region string, feed config.Feed) ([]*entity.Article, error)
}

// Service crawls configured regions and stores new, unique articles.
type Service struct {
	cfg          *config.Config
	fetcher      FeedFetcher
	articleRepo  repository.ArticleRepository
	deduplicator *dedup.Deduplicator
	logger       *slog.Logger
}

// NewService creates a collection service.
func NewService(
	cfg *config.Config,
	fetcher FeedFetcher,
	articleRepo repository.ArticleRepository,
	deduplicator *dedup.Deduplicator,
	logger *slog.Logger,
) *Service {
	return &Service{
		cfg:          cfg,
		fetcher:      fetcher,
		articleRepo:  articleRepo,
		deduplicator: deduplicator,
		logger:       logger,
	}
}

// Stats describes the outcome of collecting one region.
type Stats struct {
	Region     string
	Feeds      int
	FeedErrors int
	Fetched    int
	Duplicates int
	Stored     int
	Duration   time.Duration
}

// CollectRegion crawls every feed of one region, deduplicates the batch,
// filters out articles whose URLs are already stored, and inserts the rest.
// Individual feed failures are logged and counted, never fatal.
func (s *Service) CollectRegion(ctx context.Context, region string) (*Stats, error) {
	info, ok := s.cfg.RegionInfo[region]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRegion, region)
	}
	if len(info.Feeds) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoFeeds, region)
	}

	logger := logging.WithRegion(s.logger, region)
	start := time.Now()
	stats := &Stats{Region: region, Feeds: len(info.Feeds)}

	articles := s.fetchFeeds(ctx, logger, region, info.Feeds, stats)
	stats.Fetched = len(articles)

	unique := s.deduplicator.Deduplicate(articles)
	stats.Duplicates = stats.Fetched - len(unique)
	metrics.RecordArticlesDeduplicated(region, stats.Duplicates)

	stored, err := s.storeNew(ctx, region, unique)
	if err != nil {
		return stats, err
	}
	stats.Stored = stored
	stats.Duration = time.Since(start)

	metrics.RecordArticlesStored(region, stored)

	logger.Info("region collection completed",
		slog.Int("feeds", stats.Feeds),
		slog.Int("feed_errors", stats.FeedErrors),
		slog.Int("fetched", stats.Fetched),
		slog.Int("duplicates", stats.Duplicates),
		slog.Int("stored", stats.Stored),
		slog.Duration("duration", stats.Duration))

	return stats, nil
}

// CollectAll crawls all configured regions concurrently. Per-region errors
// are logged and reflected in the returned stats map; the first error is
// also returned so callers can surface partial failure.
func (s *Service) CollectAll(ctx context.Context) (map[string]*Stats, error) {
	var mu sync.Mutex
	results := make(map[string]*Stats, len(s.cfg.Regions))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(regionParallelism)

	var firstErr error
	for _, region := range s.cfg.Regions {
		region := region
		eg.Go(func() error {
			stats, err := s.CollectRegion(egCtx, region)
			mu.Lock()
			defer mu.Unlock()
			if stats != nil {
				results[region] = stats
			}
			if err != nil {
				s.logger.Error("region collection failed",
					slog.String("region", region),
					slog.Any("error", err))
				if firstErr == nil {
					firstErr = fmt.Errorf("collect %s: %w", region, err)
				}
			}
			// Region failures must not cancel the sibling regions.
			return nil
		})
	}

	_ = eg.Wait()
	return results, firstErr
}

// fetchFeeds crawls the region's feeds with bounded parallelism and returns
// the flattened article batch.
func (s *Service) fetchFeeds(ctx context.Context, logger *slog.Logger, region string, feeds []config.Feed, stats *Stats) []*entity.Article {
	var mu sync.Mutex
	var articles []*entity.Article

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(feedParallelism)

	for _, feed := range feeds {
		feed := feed
		eg.Go(func() error {
			feedStart := time.Now()
			items, err := s.fetcher.Fetch(egCtx, region, feed)
			if err != nil {
				logger.Warn("failed to fetch feed",
					slog.String("source", feed.Name),
					slog.String("url", feed.URL),
					slog.Any("error", err))
				metrics.RecordFeedCrawlError(feed.Name, "fetch_failed")
				mu.Lock()
				stats.FeedErrors++
				mu.Unlock()
				return nil
			}

			metrics.RecordFeedCrawl(feed.Name, time.Since(feedStart))
			metrics.RecordArticlesFetched(region, feed.Name, len(items))

			mu.Lock()
			articles = append(articles, items...)
			mu.Unlock()
			return nil
		})
	}

	_ = eg.Wait()
	return articles
}

// storeNew filters the unique batch against stored URLs and inserts the
// remainder in one transaction.
func (s *Service) storeNew(ctx context.Context, region string, unique []*entity.Article) (int, error) {
	if len(unique) == 0 {
		return 0, nil
	}

	urls := make([]string, 0, len(unique))
	for _, article := range unique {
		urls = append(urls, article.URL)
	}

	existsMap, err := s.articleRepo.ExistsByURLBatch(ctx, urls)
	if err != nil {
		return 0, fmt.Errorf("batch check URLs for %s: %w", region, err)
	}

	fresh := make([]*entity.Article, 0, len(unique))
	for _, article := range unique {
		if existsMap[article.URL] {
			continue
		}
		fresh = append(fresh, article)
	}
	if len(fresh) == 0 {
		return 0, nil
	}

	inserted, err := s.articleRepo.CreateBatch(ctx, fresh)
	if err != nil {
		return 0, fmt.Errorf("store articles for %s: %w", region, err)
	}

	return inserted, nil
}
