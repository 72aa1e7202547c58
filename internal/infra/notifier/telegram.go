// Package notifier provides delivery clients for sending digests to
// messaging services. The Telegram implementation handles rate limiting,
// retry with retry_after honoring, and multi-chat fan-out internally.
package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"world-digest/internal/utils/text"
)

// defaultAPIBaseURL is the production Telegram Bot API endpoint.
const defaultAPIBaseURL = "https://api.telegram.org"

// maxMessageLength is Telegram's hard limit for a single message.
const maxMessageLength = 4096

// TelegramConfig contains configuration for the Telegram notifier.
type TelegramConfig struct {
	// Enabled indicates whether Telegram delivery is enabled.
	Enabled bool

	// BotToken is the bot token issued by BotFather. It is part of the
	// request URL and must never appear in logs or error messages.
	BotToken string

	// ChatIDs lists the chats the digest is fanned out to.
	ChatIDs []string

	// Timeout is the HTTP request timeout for Bot API calls.
	Timeout time.Duration

	// APIBaseURL overrides the Bot API endpoint. Empty means production.
	APIBaseURL string

	// RetryAttempts is the total number of attempts per chat, including
	// the first.
	RetryAttempts int

	// RetryDelay is the base delay between retries; it grows linearly
	// with the attempt number.
	RetryDelay time.Duration
}

// TelegramNotifier sends digest messages through the Telegram Bot API.
type TelegramNotifier struct {
	config      TelegramConfig
	httpClient  *http.Client
	rateLimiter *RateLimiter
	logger      *slog.Logger
}

// NewTelegramNotifier creates a Telegram notifier. Zero-value retry and
// timeout settings fall back to 3 attempts, 5s delay, and a 30s HTTP timeout.
func NewTelegramNotifier(config TelegramConfig, logger *slog.Logger) *TelegramNotifier {
	if config.APIBaseURL == "" {
		config.APIBaseURL = defaultAPIBaseURL
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	if config.RetryAttempts <= 0 {
		config.RetryAttempts = 3
	}
	if config.RetryDelay <= 0 {
		config.RetryDelay = 5 * time.Second
	}

	return &TelegramNotifier{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		rateLimiter: NewRateLimiter(0.5, 3),
		logger:      logger,
	}
}

// sendMessageRequest is the JSON body for the sendMessage method.
type sendMessageRequest struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

// apiResponse is the envelope every Bot API method returns.
type apiResponse struct {
	OK          bool            `json:"ok"`
	ErrorCode   int             `json:"error_code"`
	Description string          `json:"description"`
	Parameters  *responseParams `json:"parameters"`
	Result      json.RawMessage `json:"result"`
}

type responseParams struct {
	RetryAfter int `json:"retry_after"`
}

// Broadcast sends text to every configured chat. Per-chat failures are
// collected: delivery to the remaining chats continues, and the first error
// is returned at the end.
func (t *TelegramNotifier) Broadcast(ctx context.Context, message string) error {
	if !t.config.Enabled {
		return nil
	}
	if len(t.config.ChatIDs) == 0 {
		return fmt.Errorf("no telegram chat ids configured")
	}

	requestID := uuid.New().String()
	ctx = context.WithValue(ctx, requestIDKey, requestID)

	var firstErr error
	for _, chatID := range t.config.ChatIDs {
		if err := t.sendWithRetry(ctx, chatID, message); err != nil {
			t.logger.Error("telegram delivery failed for chat",
				slog.String("request_id", requestID),
				slog.String("chat_id", chatID),
				slog.Any("error", err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	return firstErr
}

// SendMessage sends text to a single chat with rate limiting and retry.
func (t *TelegramNotifier) SendMessage(ctx context.Context, chatID, message string) error {
	requestID := uuid.New().String()
	ctx = context.WithValue(ctx, requestIDKey, requestID)

	return t.sendWithRetry(ctx, chatID, message)
}

// CheckAuth calls getMe and returns the bot username. Used by startup and
// health checks to verify the token.
func (t *TelegramNotifier) CheckAuth(ctx context.Context) (string, error) {
	url := fmt.Sprintf("%s/bot%s/getMe", t.config.APIBaseURL, t.config.BotToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("create getMe request: %w", err)
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("execute getMe request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(resp.Body)

	var apiResp apiResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return "", fmt.Errorf("decode getMe response: %w", err)
	}
	if !apiResp.OK {
		return "", fmt.Errorf("getMe failed: %s (code %d)", apiResp.Description, apiResp.ErrorCode)
	}

	var me struct {
		Username string `json:"username"`
	}
	if err := json.Unmarshal(apiResp.Result, &me); err != nil {
		return "", fmt.Errorf("decode getMe result: %w", err)
	}

	return me.Username, nil
}

// sendWithRetry applies rate limiting and the retry policy: 429 sleeps for
// retry_after, 5xx and network errors back off linearly, other 4xx fail fast.
func (t *TelegramNotifier) sendWithRetry(ctx context.Context, chatID, message string) error {
	requestID, _ := ctx.Value(requestIDKey).(string)

	if err := t.rateLimiter.Allow(ctx); err != nil {
		return fmt.Errorf("rate limiter error: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= t.config.RetryAttempts; attempt++ {
		err := t.sendMessage(ctx, chatID, message)
		if err == nil {
			t.logger.Info("telegram message sent",
				slog.String("request_id", requestID),
				slog.String("chat_id", chatID),
				slog.Int("attempt", attempt))
			return nil
		}

		lastErr = err

		if rateLimitErr, ok := is429Error(err); ok {
			t.logger.Warn("telegram rate limit hit, backing off",
				slog.String("request_id", requestID),
				slog.String("chat_id", chatID),
				slog.Duration("retry_after", rateLimitErr.RetryAfter),
				slog.Int("attempt", attempt))

			select {
			case <-time.After(rateLimitErr.RetryAfter):
				continue
			case <-ctx.Done():
				return fmt.Errorf("context canceled during rate limit backoff: %w", ctx.Err())
			}
		}

		if !isRetryableError(err) {
			t.logger.Error("telegram message failed with non-retryable error",
				slog.String("request_id", requestID),
				slog.String("chat_id", chatID),
				slog.Any("error", err),
				slog.Int("attempt", attempt))
			return err
		}

		if attempt < t.config.RetryAttempts {
			delay := t.config.RetryDelay * time.Duration(attempt)
			t.logger.Warn("telegram request failed, retrying",
				slog.String("request_id", requestID),
				slog.String("chat_id", chatID),
				slog.Any("error", err),
				slog.Int("attempt", attempt),
				slog.Duration("delay", delay))

			select {
			case <-time.After(delay):
				continue
			case <-ctx.Done():
				return fmt.Errorf("context canceled during retry backoff: %w", ctx.Err())
			}
		}
	}

	return fmt.Errorf("telegram delivery failed after %d attempts: %w", t.config.RetryAttempts, lastErr)
}

// sendMessage performs one sendMessage call. The message is truncated to
// Telegram's 4096-character limit as a last line of defense; the formatter
// upstream already fits digests under the limit.
func (t *TelegramNotifier) sendMessage(ctx context.Context, chatID, message string) error {
	payload := sendMessageRequest{
		ChatID:                chatID,
		Text:                  text.TruncateRunes(message, maxMessageLength, "..."),
		ParseMode:             "HTML",
		DisableWebPagePreview: true,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal sendMessage payload: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", t.config.APIBaseURL, t.config.BotToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("create http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute http request to telegram api: %w", sanitizeURLError(err))
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		var apiResp apiResponse
		if err := json.Unmarshal(body, &apiResp); err == nil && !apiResp.OK {
			return &ClientError{
				StatusCode: resp.StatusCode,
				Message:    fmt.Sprintf("telegram api error: %s (code %d)", apiResp.Description, apiResp.ErrorCode),
			}
		}
		return nil
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return &RateLimitError{
			Message:    "telegram rate limit exceeded",
			RetryAfter: extractRetryAfter(resp, body),
		}
	}

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return &ClientError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("telegram api client error: %s", apiErrorDescription(body, resp.StatusCode)),
		}
	}

	if resp.StatusCode >= 500 {
		return &ServerError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("telegram api server error: status %d", resp.StatusCode),
		}
	}

	return fmt.Errorf("unexpected status code %d", resp.StatusCode)
}

// extractRetryAfter reads retry_after from the error body, falling back to
// the Retry-After header, then to 5 seconds.
func extractRetryAfter(resp *http.Response, body []byte) time.Duration {
	var apiResp apiResponse
	if err := json.Unmarshal(body, &apiResp); err == nil &&
		apiResp.Parameters != nil && apiResp.Parameters.RetryAfter > 0 {
		return time.Duration(apiResp.Parameters.RetryAfter) * time.Second
	}

	if retryAfterHeader := resp.Header.Get("Retry-After"); retryAfterHeader != "" {
		if seconds, err := strconv.Atoi(retryAfterHeader); err == nil && seconds > 0 {
			return time.Duration(seconds) * time.Second
		}
	}

	return 5 * time.Second
}

// apiErrorDescription extracts the description field from a Bot API error
// body without leaking the raw body into logs.
func apiErrorDescription(body []byte, statusCode int) string {
	var apiResp apiResponse
	if err := json.Unmarshal(body, &apiResp); err == nil && apiResp.Description != "" {
		return apiResp.Description
	}
	return fmt.Sprintf("status %d", statusCode)
}

// sanitizeURLError strips the request URL from transport errors so the bot
// token, which is part of the URL path, never reaches logs.
func sanitizeURLError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%s request failed: %w", urlErr.Op, urlErr.Err)
	}
	return err
}
