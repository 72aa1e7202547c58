package notifier

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimiter wraps a token bucket used to keep the digest fan-out within the
// messaging API's limits.
type RateLimiter struct {
	rate    rate.Limit
	burst   int
	limiter *rate.Limiter
}

// NewRateLimiter creates a RateLimiter allowing requestsPerSecond sustained
// with the given burst. Telegram allows roughly 30 messages per second
// globally but only about one per second per chat, so the Telegram notifier
// uses a conservative 0.5 req/s with burst 3.
func NewRateLimiter(requestsPerSecond float64, burst int) *RateLimiter {
	r := rate.Limit(requestsPerSecond)

	return &RateLimiter{
		rate:    r,
		burst:   burst,
		limiter: rate.NewLimiter(r, burst),
	}
}

// Allow blocks until a token is available or the context is canceled.
func (r *RateLimiter) Allow(ctx context.Context) error {
	return r.limiter.Wait(ctx)
}
