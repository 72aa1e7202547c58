package digest

import (
	"context"
	"errors"
)

// ContentFetcher fetches the full text of an article from its source URL.
// Implementations extract clean article text from web pages so that the
// summarizer sees more than the truncated RSS description.
//
// Implementations MUST prevent SSRF (validate URLs and redirect targets),
// enforce a response size limit, and respect the context deadline. Callers
// treat every error as soft and fall back to the RSS description.
type ContentFetcher interface {
	// FetchContent fetches and extracts article content from the given URL.
	// It returns the extracted plain text, or an error the caller should
	// respond to by keeping the RSS-provided content.
	FetchContent(ctx context.Context, url string) (string, error)
}

// Sentinel errors for content fetching. They let callers distinguish
// security rejections from transient fetch failures.
var (
	// ErrInvalidURL indicates the URL is malformed or uses a scheme other
	// than http/https.
	ErrInvalidURL = errors.New("invalid URL or unsupported scheme")

	// ErrPrivateIP indicates the URL resolves to a loopback, private, or
	// link-local address and was rejected to prevent SSRF.
	ErrPrivateIP = errors.New("private IP access denied")

	// ErrTooManyRedirects indicates the redirect chain exceeded the
	// configured maximum.
	ErrTooManyRedirects = errors.New("too many redirects")

	// ErrBodyTooLarge indicates the response body exceeded the size limit.
	ErrBodyTooLarge = errors.New("response body too large")

	// ErrContentTimeout indicates the request exceeded the per-request timeout.
	ErrContentTimeout = errors.New("content fetch timeout")

	// ErrExtractionFailed indicates readability extraction produced no text.
	ErrExtractionFailed = errors.New("content extraction failed")
)
