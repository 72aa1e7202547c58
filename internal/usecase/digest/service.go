// Package digest turns a window of collected articles into summarized,
// translated digests ready for delivery.
package digest

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"world-digest/internal/config"
	"world-digest/internal/domain/entity"
	"world-digest/internal/observability/logging"
	"world-digest/internal/observability/metrics"
	"world-digest/internal/repository"
	"world-digest/internal/usecase/dedup"
	"world-digest/internal/utils/text"
	"world-digest/internal/utils/timeperiod"
)

const (
	// llmArticleLimit caps how many articles go into one summarization prompt.
	llmArticleLimit = 30
	// llmDescriptionRunes caps per-article description length in the prompt.
	llmDescriptionRunes = 500
)

// ContentFetchConfig controls full-content enhancement before summarization.
type ContentFetchConfig struct {
	Parallelism int // maximum concurrent content fetches
	Threshold   int // minimum description length (runes) before fetching
}

// Service runs the digest pipeline for one region or for all regions plus
// the cross-region global digest.
type Service struct {
	cfg            *config.Config
	articles       repository.ArticleRepository
	digests        repository.DigestRepository
	deduplicator   *dedup.Deduplicator
	summarizer     Summarizer
	translator     Translator
	global         GlobalSummarizer
	contentFetcher ContentFetcher // nil disables content enhancement
	contentConfig  ContentFetchConfig
	logger         *slog.Logger
}

// NewService creates a digest Service. contentFetcher may be nil to disable
// full-content enhancement; global may be nil when only regional digests are
// needed.
func NewService(
	cfg *config.Config,
	articles repository.ArticleRepository,
	digests repository.DigestRepository,
	deduplicator *dedup.Deduplicator,
	summarizer Summarizer,
	translator Translator,
	global GlobalSummarizer,
	contentFetcher ContentFetcher,
	contentConfig ContentFetchConfig,
	logger *slog.Logger,
) *Service {
	if contentConfig.Parallelism <= 0 {
		contentConfig.Parallelism = 10
	}
	return &Service{
		cfg:            cfg,
		articles:       articles,
		digests:        digests,
		deduplicator:   deduplicator,
		summarizer:     summarizer,
		translator:     translator,
		global:         global,
		contentFetcher: contentFetcher,
		contentConfig:  contentConfig,
		logger:         logger,
	}
}

// ProcessRegion builds, persists, and returns a digest for one region from
// the articles collected inside the scheduler window.
func (s *Service) ProcessRegion(ctx context.Context, region string) (*entity.Digest, error) {
	articles, err := s.loadWindow(ctx, region)
	if err != nil {
		return nil, err
	}
	return s.processArticles(ctx, region, articles)
}

// ProcessAllWithGlobal loads every region's article window once, builds the
// global digest from the combined batches, then builds regional digests from
// the same batches. A failing region is logged and skipped; the global digest
// failing is also non-fatal as long as at least one digest was produced.
func (s *Service) ProcessAllWithGlobal(ctx context.Context) (*entity.Digest, map[string]*entity.Digest, error) {
	batches := make(map[string][]*entity.Article, len(s.cfg.Regions))
	for _, region := range s.cfg.Regions {
		articles, err := s.loadWindow(ctx, region)
		if err != nil {
			s.logger.Warn("loading region window failed",
				slog.String("region", region),
				slog.Any("error", err))
			continue
		}
		batches[region] = articles
	}

	total := 0
	for _, articles := range batches {
		total += len(articles)
	}
	if total == 0 {
		return nil, nil, fmt.Errorf("all regions: %w", ErrNoArticles)
	}
	s.logger.Info("processing full cycle",
		slog.Int("regions", len(batches)),
		slog.Int("articles", total))

	var globalDigest *entity.Digest
	if s.global != nil {
		var err error
		globalDigest, err = s.buildGlobalDigest(ctx, batches)
		if err != nil {
			s.logger.Error("global digest failed", slog.Any("error", err))
		}
	}

	regional := make(map[string]*entity.Digest, len(batches))
	for _, region := range s.cfg.Regions {
		articles, ok := batches[region]
		if !ok || len(articles) == 0 {
			continue
		}
		d, err := s.processArticles(ctx, region, articles)
		if err != nil {
			if ctx.Err() != nil {
				return globalDigest, regional, ctx.Err()
			}
			s.logger.Error("regional digest failed",
				slog.String("region", region),
				slog.Any("error", err))
			continue
		}
		regional[region] = d
	}

	if globalDigest == nil && len(regional) == 0 {
		return nil, nil, fmt.Errorf("no digests produced")
	}
	return globalDigest, regional, nil
}

// loadWindow retrieves a region's unprocessed articles from the collection
// window, newest first.
func (s *Service) loadWindow(ctx context.Context, region string) ([]*entity.Article, error) {
	if _, ok := s.cfg.Region(region); !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRegion, region)
	}

	since := time.Now().UTC().Add(-s.cfg.Scheduler.Window())
	articles, err := s.articles.ListForRegion(ctx, region, repository.ArticleListFilters{
		Since:           &since,
		UnprocessedOnly: true,
	})
	if err != nil {
		return nil, fmt.Errorf("list articles for %s: %w", region, err)
	}
	return articles, nil
}

// processArticles runs dedup → enhance → summarize → translate → persist for
// one region's batch.
func (s *Service) processArticles(ctx context.Context, region string, articles []*entity.Article) (*entity.Digest, error) {
	info, ok := s.cfg.Region(region)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRegion, region)
	}
	logger := logging.WithRegion(s.logger, region)

	if len(articles) == 0 {
		return nil, fmt.Errorf("region %s: %w", region, ErrNoArticles)
	}

	unique := s.deduplicator.Deduplicate(articles)
	metrics.RecordArticlesDeduplicated(region, len(articles)-len(unique))
	if len(unique) == 0 {
		return nil, fmt.Errorf("region %s: %w", region, ErrNoArticles)
	}
	if max := s.cfg.Digest.MaxArticlesPerRegion; max > 0 && len(unique) > max {
		unique = unique[:max]
	}
	logger.Info("digest input ready",
		slog.Int("articles", len(articles)),
		slog.Int("unique", len(unique)))

	s.enhanceContent(ctx, unique)

	language := info.PrimaryLanguage
	if language == "" {
		language = "en"
	}

	summary, err := s.summarizer.Summarize(ctx, formatArticlesForLLM(unique), info.NameEN, language)
	if err != nil {
		metrics.RecordDigestBuilt(region, false)
		return nil, fmt.Errorf("summarize %s: %w", region, err)
	}

	target := s.cfg.Digest.TargetLanguage
	if language != target {
		summary, err = s.translateSummary(ctx, summary, language, target)
		if err != nil {
			metrics.RecordDigestBuilt(region, false)
			return nil, fmt.Errorf("translate %s: %w", region, err)
		}
	}

	d := entity.NewDigest(region, s.cfg.RegionNameRU(region), FormatStoriesHTML(summary.Stories))
	d.KeyTopics = summary.KeyTopics
	d.ArticleCount = len(unique)
	d.SourcesUsed = sourceNames(unique)
	d.ArticleIDs = articleIDs(unique)
	d.TimePeriod = timeperiod.In(regionLocation(info.Timezone), time.Now())

	if err := s.digests.Create(ctx, d); err != nil {
		metrics.RecordDigestBuilt(region, false)
		return nil, fmt.Errorf("save digest for %s: %w", region, err)
	}
	if err := s.articles.MarkProcessed(ctx, d.ArticleIDs); err != nil {
		return nil, fmt.Errorf("mark articles processed for %s: %w", region, err)
	}

	metrics.RecordDigestBuilt(region, true)
	logger.Info("digest built",
		slog.String("digest_id", d.ID),
		slog.Int("stories", len(summary.Stories)),
		slog.String("time_period", d.TimePeriod))
	return d, nil
}

// enhanceContent fetches full article text for entries whose description is
// below the threshold. Fetch failures fall back to the RSS description.
func (s *Service) enhanceContent(ctx context.Context, articles []*entity.Article) {
	if s.contentFetcher == nil {
		return
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(s.contentConfig.Parallelism)

	for _, article := range articles {
		a := article
		if text.CountRunes(a.Description) >= s.contentConfig.Threshold {
			metrics.RecordContentFetchSkipped()
			continue
		}

		eg.Go(func() error {
			content, err := s.contentFetcher.FetchContent(egCtx, a.URL)
			if err != nil {
				s.logger.Warn("content fetch failed, using feed description",
					slog.String("url", a.URL),
					slog.Any("error", err))
				return nil
			}
			if text.CountRunes(content) > text.CountRunes(a.Description) {
				a.Content = content
			}
			return nil
		})
	}

	_ = eg.Wait()
}

// translateSummary translates every story and key topic of a summary.
func (s *Service) translateSummary(ctx context.Context, summary *entity.Summary, source, target string) (*entity.Summary, error) {
	translated := &entity.Summary{
		KeyTopics: make([]string, 0, len(summary.KeyTopics)),
		Stories:   make([]entity.Story, 0, len(summary.Stories)),
	}

	for _, story := range summary.Stories {
		headline, err := s.translator.Translate(ctx, story.Headline, source, target)
		if err != nil {
			return nil, fmt.Errorf("translate headline: %w", err)
		}
		body, err := s.translator.Translate(ctx, story.Summary, source, target)
		if err != nil {
			return nil, fmt.Errorf("translate story: %w", err)
		}
		translated.Stories = append(translated.Stories, entity.Story{
			Headline: strings.TrimSpace(headline),
			Summary:  strings.TrimSpace(body),
		})
	}

	for _, topic := range summary.KeyTopics {
		t, err := s.translator.Translate(ctx, topic, source, target)
		if err != nil {
			return nil, fmt.Errorf("translate topic: %w", err)
		}
		translated.KeyTopics = append(translated.KeyTopics, strings.TrimSpace(t))
	}

	return translated, nil
}

// formatArticlesForLLM renders an article batch as numbered plain-text blocks
// for the summarization prompt. Articles beyond llmArticleLimit are dropped;
// enhanced content is preferred over the feed description when present.
func formatArticlesForLLM(articles []*entity.Article) string {
	var b strings.Builder

	for i, a := range articles {
		if i >= llmArticleLimit {
			break
		}

		body := a.Description
		if a.Content != "" {
			body = a.Content
		}
		body = text.TruncateRunes(body, llmDescriptionRunes, "")

		date := ""
		if a.PublishedAt != nil {
			date = a.PublishedAt.Format("2006-01-02 15:04")
		}

		fmt.Fprintf(&b, "\n---\nArticle %d\nSource: %s\nDate: %s\nTitle: %s\nSummary: %s\n---",
			i+1, a.SourceName, date, a.Title, body)
	}

	return b.String()
}

// sourceNames returns the distinct source names of a batch, sorted.
func sourceNames(articles []*entity.Article) []string {
	seen := make(map[string]struct{}, len(articles))
	names := make([]string, 0, len(articles))
	for _, a := range articles {
		if _, ok := seen[a.SourceName]; ok {
			continue
		}
		seen[a.SourceName] = struct{}{}
		names = append(names, a.SourceName)
	}
	sort.Strings(names)
	return names
}

func articleIDs(articles []*entity.Article) []string {
	ids := make([]string, len(articles))
	for i, a := range articles {
		ids[i] = a.ID
	}
	return ids
}

// regionLocation loads a region's timezone, falling back to UTC on error.
func regionLocation(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}
