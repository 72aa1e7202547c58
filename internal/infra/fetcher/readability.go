package fetcher

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	readability "github.com/go-shiori/go-readability"

	"world-digest/internal/observability/metrics"
	"world-digest/internal/resilience/circuitbreaker"
	"world-digest/internal/usecase/digest"
)

const fetchUserAgent = "WorldDigestBot/1.0 (+https://github.com/world-digest)"

// ReadabilityFetcher implements digest.ContentFetcher using the Mozilla
// Readability algorithm via go-shiori/go-readability. It fetches the article
// page over HTTP and extracts the main text, with SSRF validation, a body
// size limit, redirect validation, and a circuit breaker around the fetch.
//
// Safe for concurrent use.
type ReadabilityFetcher struct {
	client         *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	config         ContentFetchConfig
	logger         *slog.Logger
}

// NewReadabilityFetcher creates a content fetcher with the given
// configuration. The HTTP client enforces TLS 1.2+, the configured redirect
// limit, and re-validates every redirect target against the private-IP
// policy.
func NewReadabilityFetcher(config ContentFetchConfig, logger *slog.Logger) *ReadabilityFetcher {
	f := &ReadabilityFetcher{
		circuitBreaker: circuitbreaker.New(circuitbreaker.ContentFetchConfig()),
		config:         config,
		logger:         logger,
	}

	f.client = &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= f.config.MaxRedirects {
				return fmt.Errorf("%w: %d redirects", digest.ErrTooManyRedirects, len(via))
			}
			if err := validateURL(req.URL.String(), f.config.DenyPrivateIPs); err != nil {
				return fmt.Errorf("redirect target validation failed: %w", err)
			}
			return nil
		},
	}

	return f
}

// FetchContent fetches the article page at urlStr and returns the extracted
// plain text. The URL is validated first, and the fetch itself runs through
// the circuit breaker.
func (f *ReadabilityFetcher) FetchContent(ctx context.Context, urlStr string) (string, error) {
	start := time.Now()

	if err := validateURL(urlStr, f.config.DenyPrivateIPs); err != nil {
		metrics.RecordContentFetchFailed(time.Since(start))
		return "", err
	}

	result, err := f.circuitBreaker.Execute(func() (interface{}, error) {
		return f.doFetch(ctx, urlStr)
	})
	if err != nil {
		metrics.RecordContentFetchFailed(time.Since(start))
		return "", err
	}

	content := result.(string)
	metrics.RecordContentFetchSuccess(time.Since(start), len(content))
	return content, nil
}

func (f *ReadabilityFetcher) doFetch(ctx context.Context, urlStr string) (interface{}, error) {
	reqCtx, cancel := context.WithTimeout(ctx, f.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, urlStr, nil)
	if err != nil {
		return "", fmt.Errorf("%w: failed to create request: %v", digest.ErrInvalidURL, err)
	}
	req.Header.Set("User-Agent", fetchUserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		if reqCtx.Err() == context.DeadlineExceeded {
			return "", fmt.Errorf("%w: request exceeded %v", digest.ErrContentTimeout, f.config.Timeout)
		}
		// Surface redirect validation errors without the url.Error wrapper
		// so errors.Is keeps working on the sentinels.
		if urlErr, ok := err.(*url.Error); ok && urlErr.Err != nil {
			return "", urlErr.Err
		}
		return "", fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	// Read one byte past the limit to distinguish "at limit" from "over".
	limitedReader := io.LimitReader(resp.Body, f.config.MaxBodySize+1)
	htmlBytes, err := io.ReadAll(limitedReader)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	if int64(len(htmlBytes)) > f.config.MaxBodySize {
		return "", fmt.Errorf("%w: response size %d bytes exceeds limit %d bytes",
			digest.ErrBodyTooLarge, len(htmlBytes), f.config.MaxBodySize)
	}

	// Prefer the final URL after redirects for relative link resolution.
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		parsedURL = nil
	}
	if resp.Request != nil && resp.Request.URL != nil {
		parsedURL = resp.Request.URL
	}

	article, err := readability.FromReader(bytes.NewReader(htmlBytes), parsedURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", digest.ErrExtractionFailed, err)
	}

	if article.TextContent == "" {
		if article.Content == "" {
			return "", fmt.Errorf("%w: no readable content found", digest.ErrExtractionFailed)
		}
		f.logger.Debug("using raw content instead of extracted text",
			slog.String("url", urlStr),
			slog.Int("content_length", len(article.Content)))
		return article.Content, nil
	}

	return article.TextContent, nil
}
