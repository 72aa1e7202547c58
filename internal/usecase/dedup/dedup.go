// Package dedup reduces a batch of articles to one representative per story.
// It combines exact URL matching with fuzzy title-similarity matching and
// keeps the most recent instance of each repeated story.
package dedup

import (
	"log/slog"
	"sort"
	"strings"

	"world-digest/internal/domain/entity"
)

// DefaultSimilarityThreshold is the minimum similarity ratio for two titles
// to be considered the same story.
const DefaultSimilarityThreshold = 0.85

// Deduplicator removes duplicate articles from a batch.
//
// The threshold is read-only after construction, so a single Deduplicator
// is safe to share across concurrent pipeline runs; all other state is
// local to one Deduplicate call.
type Deduplicator struct {
	threshold float64
}

// New creates a Deduplicator with the given similarity threshold in [0, 1].
func New(threshold float64) *Deduplicator {
	return &Deduplicator{threshold: threshold}
}

// NewDefault creates a Deduplicator with DefaultSimilarityThreshold.
func NewDefault() *Deduplicator {
	return New(DefaultSimilarityThreshold)
}

// Threshold returns the configured similarity threshold.
func (d *Deduplicator) Threshold() float64 {
	return d.threshold
}

// Deduplicate returns the subset of articles with duplicates removed,
// ordered by effective timestamp descending.
//
// Articles are first sorted most-recent-first (PublishedAt, falling back to
// FetchedAt), so the newest instance of a repeated story wins. A single pass
// then discards any article whose URL was already seen (exact,
// case-sensitive) or whose title is at least threshold-similar to a
// previously kept title. Input articles are never mutated.
//
// The seen-title scan is quadratic in the number of kept articles; at the
// expected batch sizes (tens to low hundreds per cycle) this is cheaper
// than maintaining an index.
func (d *Deduplicator) Deduplicate(articles []*entity.Article) []*entity.Article {
	if len(articles) == 0 {
		return []*entity.Article{}
	}

	sorted := make([]*entity.Article, len(articles))
	copy(sorted, articles)
	// Stable sort keeps input order for equal timestamps, making the
	// result deterministic for a fixed input sequence.
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].EffectiveTime().After(sorted[j].EffectiveTime())
	})

	seenURLs := make(map[string]struct{}, len(sorted))
	seenTitles := make([]string, 0, len(sorted))
	unique := make([]*entity.Article, 0, len(sorted))

	for _, article := range sorted {
		if _, dup := seenURLs[article.URL]; dup {
			continue
		}

		title := normalizeForComparison(article.Title)
		if d.hasSimilarTitle(title, seenTitles) {
			continue
		}

		seenURLs[article.URL] = struct{}{}
		seenTitles = append(seenTitles, title)
		unique = append(unique, article)
	}

	if removed := len(articles) - len(unique); removed > 0 {
		slog.Debug("removed duplicate articles",
			slog.Int("removed", removed),
			slog.Int("kept", len(unique)))
	}

	return unique
}

// hasSimilarTitle compares a normalized title against every previously
// seen title. No early-exit pre-filter: every pair that reaches this point
// gets the full similarity ratio.
func (d *Deduplicator) hasSimilarTitle(title string, seen []string) bool {
	for _, s := range seen {
		if Ratio(title, s) >= d.threshold {
			return true
		}
	}
	return false
}

// normalizeForComparison is the normalization applied in the comparison
// path: lower-case and trim only. Punctuation and internal whitespace are
// deliberately left intact; see text.NormalizeTitle for the stricter
// variant that is not used here.
func normalizeForComparison(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}
