package digest

import (
	"context"

	"world-digest/internal/domain/entity"
)

// Summarizer produces a structured regional summary from prepared article
// text. regionName is the human-readable region title used in the prompt and
// language selects the output language of the summary.
type Summarizer interface {
	Summarize(ctx context.Context, articlesText, regionName, language string) (*entity.Summary, error)
}

// Translator translates already-summarized text between languages.
// Implementations return the translated text only, with no commentary.
type Translator interface {
	Translate(ctx context.Context, text, sourceLanguage, targetLanguage string) (string, error)
}

// GlobalSummarizer condenses articles from every region into the handful of
// events that matter worldwide. regions lists the region slugs covered by
// articlesText.
type GlobalSummarizer interface {
	SummarizeGlobal(ctx context.Context, articlesText string, regions []string) (*entity.GlobalSummary, error)
}
