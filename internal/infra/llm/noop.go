package llm

import (
	"context"

	"world-digest/internal/domain/entity"
	"world-digest/internal/utils/text"
)

// NoOp is an LLM backend that passes text through unchanged. Useful for
// development and for running the pipeline without API credentials.
type NoOp struct{}

// NewNoOp creates a NoOp backend.
func NewNoOp() *NoOp {
	return &NoOp{}
}

// Summarize returns a single story wrapping the truncated input text.
func (n *NoOp) Summarize(_ context.Context, articlesText, _, _ string) (*entity.Summary, error) {
	return &entity.Summary{
		KeyTopics: []string{},
		Stories: []entity.Story{{
			Headline: "News Summary",
			Summary:  text.TruncateRunes(articlesText, fallbackSummaryLimit, "..."),
		}},
	}, nil
}

// Translate returns the text unchanged.
func (n *NoOp) Translate(_ context.Context, input, _, _ string) (string, error) {
	return input, nil
}

// SummarizeGlobal returns a single event wrapping the truncated input text.
func (n *NoOp) SummarizeGlobal(_ context.Context, articlesText string, _ []string) (*entity.GlobalSummary, error) {
	return &entity.GlobalSummary{
		KeyTopics: []string{"World Events"},
		Events: []entity.GlobalEvent{{
			Headline:   "Global News Summary",
			Summary:    text.TruncateRunes(articlesText, fallbackSummaryLimit, "..."),
			Regions:    []string{entity.GlobalRegion},
			Importance: "high",
		}},
	}, nil
}
