package digest

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"world-digest/internal/domain/entity"
	"world-digest/internal/observability/metrics"
	"world-digest/internal/utils/text"
	"world-digest/internal/utils/timeperiod"
)

const (
	// globalArticlesPerRegion caps how many articles per region feed the
	// global prompt.
	globalArticlesPerRegion = 15
	// globalTitleRunes and globalDescRunes cap per-article text in the prompt.
	globalTitleRunes = 200
	globalDescRunes  = 300
	// globalSourcesLimit caps the sources recorded on the global digest.
	globalSourcesLimit = 10
	// globalArticleIDsLimit caps the article ids recorded on the global digest.
	globalArticleIDsLimit = 50
)

// globalDigestNameRU is the display title of the cross-region digest.
const globalDigestNameRU = "Мировой дайджест"

// buildGlobalDigest condenses every region's batch into one digest of
// worldwide significance and persists it.
func (s *Service) buildGlobalDigest(ctx context.Context, batches map[string][]*entity.Article) (*entity.Digest, error) {
	total := 0
	flat := make([]*entity.Article, 0)
	regions := make([]string, 0, len(batches))
	for region, articles := range batches {
		total += len(articles)
		flat = append(flat, articles...)
		regions = append(regions, region)
	}
	if total == 0 {
		return nil, fmt.Errorf("global: %w", ErrNoArticles)
	}
	sort.Strings(regions)

	unique := s.deduplicator.Deduplicate(flat)
	s.logger.Info("global digest input ready",
		slog.Int("articles", total),
		slog.Int("unique", len(unique)),
		slog.Int("regions", len(regions)))

	articlesText := s.formatGlobalArticles(groupByRegion(unique))

	summary, err := s.global.SummarizeGlobal(ctx, articlesText, regions)
	if err != nil {
		metrics.RecordDigestBuilt(entity.GlobalRegion, false)
		return nil, fmt.Errorf("summarize global: %w", err)
	}

	d := entity.NewDigest(entity.GlobalRegion, globalDigestNameRU, s.formatGlobalSummaryHTML(summary))
	d.KeyTopics = summary.KeyTopics
	d.ArticleCount = total
	d.SourcesUsed = capStrings(sourceNames(flat), globalSourcesLimit)
	d.ArticleIDs = capStrings(articleIDs(unique), globalArticleIDsLimit)
	d.TimePeriod = timeperiod.In(regionLocation(s.cfg.Scheduler.Timezone), time.Now())

	if err := s.digests.Create(ctx, d); err != nil {
		metrics.RecordDigestBuilt(entity.GlobalRegion, false)
		return nil, fmt.Errorf("save global digest: %w", err)
	}

	metrics.RecordDigestBuilt(entity.GlobalRegion, true)
	s.logger.Info("global digest built",
		slog.String("digest_id", d.ID),
		slog.Int("events", len(summary.Events)))
	return d, nil
}

// formatGlobalArticles renders per-region article sections for the global
// prompt, capped per region to keep the prompt bounded.
func (s *Service) formatGlobalArticles(grouped map[string][]*entity.Article) string {
	regions := make([]string, 0, len(grouped))
	for region := range grouped {
		regions = append(regions, region)
	}
	sort.Strings(regions)

	var b strings.Builder
	for _, region := range regions {
		b.WriteString("\n=== " + s.regionDisplayName(region) + " ===")

		articles := grouped[region]
		if len(articles) > globalArticlesPerRegion {
			articles = articles[:globalArticlesPerRegion]
		}
		for _, a := range articles {
			title := text.TruncateRunes(a.Title, globalTitleRunes, "")
			source := a.SourceName
			if source == "" {
				source = "Unknown"
			}
			fmt.Fprintf(&b, "\n[%s] %s", source, title)
			if a.Description != "" {
				b.WriteString("\n   " + text.TruncateRunes(a.Description, globalDescRunes, ""))
			}
		}
	}
	return b.String()
}

// formatGlobalSummaryHTML renders global events as the digest body, with the
// affected regions translated to their Russian display names.
func (s *Service) formatGlobalSummaryHTML(summary *entity.GlobalSummary) string {
	parts := make([]string, 0, len(summary.Events)*4)

	for i, event := range summary.Events {
		parts = append(parts, fmt.Sprintf("<b>%d. %s</b>", i+1, event.Headline))
		parts = append(parts, event.Summary)
		if len(event.Regions) > 0 {
			names := make([]string, len(event.Regions))
			for j, r := range event.Regions {
				names[j] = s.regionNameRU(r)
			}
			parts = append(parts, fmt.Sprintf("<i>Регионы: %s</i>", strings.Join(names, ", ")))
		}
		parts = append(parts, "")
	}

	return strings.Join(parts, "\n")
}

// regionDisplayName returns the configured English name of a region, or the
// slug uppercased when unconfigured.
func (s *Service) regionDisplayName(region string) string {
	if info, ok := s.cfg.Region(region); ok && info.NameEN != "" {
		return info.NameEN
	}
	return strings.ToUpper(region)
}

func (s *Service) regionNameRU(region string) string {
	if region == entity.GlobalRegion {
		return "Глобально"
	}
	return s.cfg.RegionNameRU(region)
}

func groupByRegion(articles []*entity.Article) map[string][]*entity.Article {
	grouped := make(map[string][]*entity.Article)
	for _, a := range articles {
		grouped[a.Region] = append(grouped[a.Region], a)
	}
	return grouped
}

func capStrings(values []string, limit int) []string {
	if len(values) <= limit {
		return values
	}
	return values[:limit]
}
