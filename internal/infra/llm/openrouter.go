// Package llm provides LLM-backed summarization and translation for the
// digest pipeline. It includes an OpenRouter adapter (OpenAI-compatible API)
// and an Anthropic Claude adapter, both with retry and circuit breaker
// protection, plus fenced-JSON response parsing with graceful fallbacks.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"

	"world-digest/internal/config"
	"world-digest/internal/domain/entity"
	"world-digest/internal/observability/metrics"
	"world-digest/internal/resilience/circuitbreaker"
	"world-digest/internal/resilience/retry"
)

// requestTimeout bounds a single summarize/translate operation including
// retries of the individual API calls.
const requestTimeout = 120 * time.Second

// maxPromptChars caps the article text embedded in a prompt. Callers already
// cap per-article text, this is the backstop against token-limit errors.
const maxPromptChars = 10000

// OpenRouter implements Summarizer, Translator, and GlobalSummarizer against
// the OpenRouter API using the OpenAI-compatible chat completions endpoint.
// On primary model failure it retries once with the configured fallback
// model.
type OpenRouter struct {
	client         *openai.Client
	cfg            config.LLMConfig
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
	logger         *slog.Logger
}

// NewOpenRouter creates an OpenRouter client. cfg.BaseURL selects the API
// endpoint (https://openrouter.ai/api/v1 in production configs); an empty
// BaseURL leaves the OpenAI default, which the tests use with httptest.
func NewOpenRouter(apiKey string, cfg config.LLMConfig, logger *slog.Logger) *OpenRouter {
	clientCfg := openai.DefaultConfig(apiKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	logger.Info("initialized openrouter client",
		slog.String("base_url", cfg.BaseURL),
		slog.String("default_model", cfg.DefaultModel),
		slog.String("fallback_model", cfg.FallbackModel))

	return &OpenRouter{
		client:         openai.NewClientWithConfig(clientCfg),
		cfg:            cfg,
		circuitBreaker: circuitbreaker.New(circuitbreaker.LLMAPIConfig()),
		retryConfig:    retry.LLMAPIConfig(),
		logger:         logger,
	}
}

// Summarize generates a structured regional summary. Malformed JSON from the
// model degrades to a single raw-text story rather than failing the run.
func (o *OpenRouter) Summarize(ctx context.Context, articlesText, regionName, language string) (*entity.Summary, error) {
	start := time.Now()

	prompt := SummarizationPrompt(truncateForPrompt(articlesText), regionName, language, defaultMaxWords)
	response, err := o.complete(ctx, "summarize", summarySystemPrompt, prompt, o.cfg.MaxTokensSummary, true)

	metrics.RecordSummarization(err == nil, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("summarize %s: %w", regionName, err)
	}

	return ParseSummary(response), nil
}

// Translate translates text between languages and returns the bare
// translation.
func (o *OpenRouter) Translate(ctx context.Context, text, sourceLanguage, targetLanguage string) (string, error) {
	start := time.Now()

	prompt := TranslationPrompt(text, sourceLanguage, targetLanguage)
	response, err := o.complete(ctx, "translate", translationSystemPrompt, prompt, o.cfg.MaxTokensTranslation, false)

	metrics.RecordTranslation(err == nil, time.Since(start))
	if err != nil {
		return "", fmt.Errorf("translate %s->%s: %w", sourceLanguage, targetLanguage, err)
	}

	return response, nil
}

// SummarizeGlobal generates the cross-region digest summary.
func (o *OpenRouter) SummarizeGlobal(ctx context.Context, articlesText string, regions []string) (*entity.GlobalSummary, error) {
	start := time.Now()

	prompt := GlobalDigestPrompt(truncateForPrompt(articlesText), regions)
	response, err := o.complete(ctx, "global", globalSystemPrompt, prompt, o.cfg.MaxTokensSummary, true)

	metrics.RecordSummarization(err == nil, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("summarize global: %w", err)
	}

	return ParseGlobalSummary(response), nil
}

// complete runs a chat completion on the default model and falls back to the
// configured fallback model when the primary fails.
func (o *OpenRouter) complete(ctx context.Context, operation, systemPrompt, userPrompt string, maxTokens int, jsonMode bool) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	response, err := o.completeWithModel(ctx, o.cfg.DefaultModel, systemPrompt, userPrompt, maxTokens, jsonMode)
	if err == nil {
		return response, nil
	}

	if o.cfg.FallbackModel == "" || o.cfg.FallbackModel == o.cfg.DefaultModel {
		return "", err
	}

	o.logger.Warn("primary model failed, trying fallback",
		slog.String("operation", operation),
		slog.String("primary", o.cfg.DefaultModel),
		slog.String("fallback", o.cfg.FallbackModel),
		slog.Any("error", err))
	metrics.RecordLLMFallback(operation)

	return o.completeWithModel(ctx, o.cfg.FallbackModel, systemPrompt, userPrompt, maxTokens, jsonMode)
}

// completeWithModel performs a single-model completion wrapped with retry
// and the circuit breaker.
func (o *OpenRouter) completeWithModel(ctx context.Context, model, systemPrompt, userPrompt string, maxTokens int, jsonMode bool) (string, error) {
	var result string

	retryErr := retry.WithBackoff(ctx, o.retryConfig, func() error {
		cbResult, err := o.circuitBreaker.Execute(func() (interface{}, error) {
			return o.doComplete(ctx, model, systemPrompt, userPrompt, maxTokens, jsonMode)
		})

		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				o.logger.Warn("llm api circuit breaker open, request rejected",
					slog.String("state", o.circuitBreaker.State().String()))
				return fmt.Errorf("llm api unavailable: circuit breaker open")
			}
			return err
		}

		result = cbResult.(string)
		return nil
	})

	if retryErr != nil {
		return "", fmt.Errorf("model %s failed: %w", model, retryErr)
	}

	return result, nil
}

func (o *OpenRouter) doComplete(ctx context.Context, model, systemPrompt, userPrompt string, maxTokens int, jsonMode bool) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		Temperature: o.cfg.Temperature,
		MaxTokens:   maxTokens,
	}
	if jsonMode {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	start := time.Now()
	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		o.logger.Error("llm completion failed",
			slog.String("model", model),
			slog.Duration("duration", time.Since(start)),
			slog.Any("error", err))
		return "", fmt.Errorf("openrouter api error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openrouter api returned empty response")
	}

	o.logger.Debug("llm completion succeeded",
		slog.String("model", model),
		slog.Duration("duration", time.Since(start)),
		slog.Int("response_length", len(resp.Choices[0].Message.Content)))

	return resp.Choices[0].Message.Content, nil
}

// truncateForPrompt trims oversized article text before it is embedded in a
// prompt.
func truncateForPrompt(s string) string {
	if len(s) <= maxPromptChars {
		return s
	}
	return s[:maxPromptChars] + "...\n(text truncated)"
}
