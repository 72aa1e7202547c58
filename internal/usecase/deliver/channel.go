// Package deliver dispatches formatted digests to delivery channels.
package deliver

import "context"

// Channel is a digest delivery destination. Each implementation handles its
// own rate limiting and retries.
//
// Retry policy contract:
//   - Rate limits (429): sleep for retry_after, then retry
//   - Transient failures (5xx, network errors): retry with backoff
//   - Other client errors (4xx): no retry
//   - Context cancellation: no retry
//
// All methods must be safe for concurrent use.
type Channel interface {
	// Name returns the channel identifier used for logging and metrics
	// labels (lowercase, alphanumeric).
	Name() string

	// IsEnabled reports whether the channel is enabled via configuration.
	// Disabled channels are skipped during delivery.
	IsEnabled() bool

	// Send delivers one formatted message. Implementations must respect
	// context cancellation and sanitize credentials in error messages.
	Send(ctx context.Context, message string) error
}
