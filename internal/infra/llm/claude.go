package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/sony/gobreaker"

	"world-digest/internal/config"
	"world-digest/internal/domain/entity"
	"world-digest/internal/observability/metrics"
	"world-digest/internal/resilience/circuitbreaker"
	"world-digest/internal/resilience/retry"
)

// defaultClaudeModel is used when the config does not name a model. The
// Claude API has no JSON response mode, so structured outputs rely on the
// fence-stripping parser.
const defaultClaudeModel = string(anthropic.ModelClaudeSonnet4_5_20250929)

// Claude implements Summarizer, Translator, and GlobalSummarizer against the
// Anthropic API. Selected with LLM_PROVIDER=claude.
type Claude struct {
	client         anthropic.Client
	model          string
	cfg            config.LLMConfig
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
	logger         *slog.Logger
}

// NewClaude creates a Claude client. cfg.DefaultModel overrides the model
// when set; BaseURL and FallbackModel are ignored since Anthropic serves a
// single endpoint and model routing happens on their side.
func NewClaude(apiKey string, cfg config.LLMConfig, logger *slog.Logger) *Claude {
	model := cfg.DefaultModel
	if model == "" {
		model = defaultClaudeModel
	}

	logger.Info("initialized claude client", slog.String("model", model))

	return &Claude{
		client:         anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:          model,
		cfg:            cfg,
		circuitBreaker: circuitbreaker.New(circuitbreaker.LLMAPIConfig()),
		retryConfig:    retry.LLMAPIConfig(),
		logger:         logger,
	}
}

// Summarize generates a structured regional summary.
func (c *Claude) Summarize(ctx context.Context, articlesText, regionName, language string) (*entity.Summary, error) {
	start := time.Now()

	prompt := SummarizationPrompt(truncateForPrompt(articlesText), regionName, language, defaultMaxWords)
	response, err := c.complete(ctx, summarySystemPrompt, prompt, c.cfg.MaxTokensSummary)

	metrics.RecordSummarization(err == nil, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("summarize %s: %w", regionName, err)
	}

	return ParseSummary(response), nil
}

// Translate translates text between languages.
func (c *Claude) Translate(ctx context.Context, text, sourceLanguage, targetLanguage string) (string, error) {
	start := time.Now()

	prompt := TranslationPrompt(text, sourceLanguage, targetLanguage)
	response, err := c.complete(ctx, translationSystemPrompt, prompt, c.cfg.MaxTokensTranslation)

	metrics.RecordTranslation(err == nil, time.Since(start))
	if err != nil {
		return "", fmt.Errorf("translate %s->%s: %w", sourceLanguage, targetLanguage, err)
	}

	return response, nil
}

// SummarizeGlobal generates the cross-region digest summary.
func (c *Claude) SummarizeGlobal(ctx context.Context, articlesText string, regions []string) (*entity.GlobalSummary, error) {
	start := time.Now()

	prompt := GlobalDigestPrompt(truncateForPrompt(articlesText), regions)
	response, err := c.complete(ctx, globalSystemPrompt, prompt, c.cfg.MaxTokensSummary)

	metrics.RecordSummarization(err == nil, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("summarize global: %w", err)
	}

	return ParseGlobalSummary(response), nil
}

func (c *Claude) complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	var result string

	retryErr := retry.WithBackoff(ctx, c.retryConfig, func() error {
		cbResult, err := c.circuitBreaker.Execute(func() (interface{}, error) {
			return c.doComplete(ctx, systemPrompt, userPrompt, maxTokens)
		})

		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				c.logger.Warn("llm api circuit breaker open, request rejected",
					slog.String("state", c.circuitBreaker.State().String()))
				return fmt.Errorf("llm api unavailable: circuit breaker open")
			}
			return err
		}

		result = cbResult.(string)
		return nil
	})

	if retryErr != nil {
		return "", fmt.Errorf("model %s failed: %w", c.model, retryErr)
	}

	return result, nil
}

func (c *Claude) doComplete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int) (string, error) {
	start := time.Now()

	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: int64(maxTokens),
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewTextBlock(userPrompt),
			),
		},
	})
	if err != nil {
		c.logger.Error("llm completion failed",
			slog.String("model", c.model),
			slog.Duration("duration", time.Since(start)),
			slog.Any("error", err))
		return "", fmt.Errorf("claude api error: %w", err)
	}

	if len(message.Content) == 0 {
		return "", fmt.Errorf("claude api returned empty response")
	}

	textBlock, ok := message.Content[0].AsAny().(anthropic.TextBlock)
	if !ok {
		return "", fmt.Errorf("claude api returned unexpected response type")
	}

	c.logger.Debug("llm completion succeeded",
		slog.String("model", c.model),
		slog.Duration("duration", time.Since(start)),
		slog.Int("response_length", len(textBlock.Text)))

	return textBlock.Text, nil
}
