package fetcher

import (
	"fmt"
	"os"
	"strconv"
	"time"

	pkgconfig "world-digest/internal/pkg/config"
)

// ContentFetchConfig controls the full-text extraction step that runs before
// summarization. RSS descriptions are often a sentence or two; when the
// description is shorter than Threshold, the article URL is fetched and the
// readable text extracted instead.
type ContentFetchConfig struct {
	// Enabled toggles the whole feature. When false the pipeline
	// summarizes RSS descriptions as-is.
	Enabled bool

	// Threshold is the minimum RSS description length (in runes) that
	// counts as sufficient. Shorter descriptions trigger a full fetch.
	Threshold int

	// Timeout bounds a single HTTP request.
	Timeout time.Duration

	// Parallelism caps concurrent fetches across a digest run.
	Parallelism int

	// MaxBodySize rejects oversized responses, enforced while reading
	// the body rather than trusting Content-Length.
	MaxBodySize int64

	// MaxRedirects bounds the redirect chain. Each hop is re-validated
	// against the private-IP policy.
	MaxRedirects int

	// DenyPrivateIPs rejects URLs resolving to loopback, private, or
	// link-local addresses. Keep true outside of tests.
	DenyPrivateIPs bool
}

// DefaultConfig returns production defaults for content fetching.
func DefaultConfig() ContentFetchConfig {
	return ContentFetchConfig{
		Enabled:        true,
		Threshold:      500,
		Timeout:        10 * time.Second,
		Parallelism:    10,
		MaxBodySize:    10 * 1024 * 1024,
		MaxRedirects:   5,
		DenyPrivateIPs: true,
	}
}

// Validate checks the configuration for values that would be unsafe or
// obviously misconfigured.
func (c *ContentFetchConfig) Validate() error {
	if c.Threshold < 0 {
		return fmt.Errorf("threshold must be non-negative, got %d", c.Threshold)
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}

	if c.Parallelism < 1 || c.Parallelism > 50 {
		return fmt.Errorf("parallelism must be between 1 and 50, got %d", c.Parallelism)
	}

	minBodySize := int64(1024)
	maxBodySize := int64(100 * 1024 * 1024)
	if c.MaxBodySize < minBodySize || c.MaxBodySize > maxBodySize {
		return fmt.Errorf("max body size must be between %d and %d bytes, got %d", minBodySize, maxBodySize, c.MaxBodySize)
	}

	if c.MaxRedirects < 0 || c.MaxRedirects > 10 {
		return fmt.Errorf("max redirects must be between 0 and 10, got %d", c.MaxRedirects)
	}

	return nil
}

// LoadConfigFromEnv loads content fetch configuration from environment
// variables, falling back to defaults for unset values. The result is
// validated before being returned.
//
// Environment variables:
//   - CONTENT_FETCH_ENABLED: "true" or "false" (default: true)
//   - CONTENT_FETCH_THRESHOLD: integer runes (default: 500)
//   - CONTENT_FETCH_TIMEOUT: duration string, e.g. "10s" (default: 10s)
//   - CONTENT_FETCH_PARALLELISM: integer (default: 10)
//   - CONTENT_FETCH_MAX_BODY_SIZE: integer bytes (default: 10485760)
//   - CONTENT_FETCH_MAX_REDIRECTS: integer (default: 5)
//   - CONTENT_FETCH_DENY_PRIVATE_IPS: "true" or "false" (default: true)
func LoadConfigFromEnv() (ContentFetchConfig, error) {
	cfg := DefaultConfig()

	cfg.Enabled = pkgconfig.LoadEnvBool("CONTENT_FETCH_ENABLED", cfg.Enabled).Value.(bool)

	if val := os.Getenv("CONTENT_FETCH_THRESHOLD"); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			return cfg, fmt.Errorf("invalid CONTENT_FETCH_THRESHOLD: %v", err)
		}
		cfg.Threshold = parsed
	}

	if val := os.Getenv("CONTENT_FETCH_TIMEOUT"); val != "" {
		parsed, err := time.ParseDuration(val)
		if err != nil {
			return cfg, fmt.Errorf("invalid CONTENT_FETCH_TIMEOUT: %v (expected format: '10s', '1m')", err)
		}
		cfg.Timeout = parsed
	}

	if val := os.Getenv("CONTENT_FETCH_PARALLELISM"); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			return cfg, fmt.Errorf("invalid CONTENT_FETCH_PARALLELISM: %v", err)
		}
		cfg.Parallelism = parsed
	}

	if val := os.Getenv("CONTENT_FETCH_MAX_BODY_SIZE"); val != "" {
		parsed, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return cfg, fmt.Errorf("invalid CONTENT_FETCH_MAX_BODY_SIZE: %v", err)
		}
		cfg.MaxBodySize = parsed
	}

	if val := os.Getenv("CONTENT_FETCH_MAX_REDIRECTS"); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			return cfg, fmt.Errorf("invalid CONTENT_FETCH_MAX_REDIRECTS: %v", err)
		}
		cfg.MaxRedirects = parsed
	}

	cfg.DenyPrivateIPs = pkgconfig.LoadEnvBool("CONTENT_FETCH_DENY_PRIVATE_IPS", cfg.DenyPrivateIPs).Value.(bool)

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}
