// Package collect provides the feed collection use case: crawling every
// configured region's RSS/Atom feeds, deduplicating the results, and storing
// new articles for the digest pipeline.
package collect

import "errors"

// Sentinel errors for collection operations.
var (
	// ErrUnknownRegion indicates a region slug that is not present in the
	// configuration.
	ErrUnknownRegion = errors.New("unknown region")

	// ErrNoFeeds indicates a region with no configured feed sources.
	ErrNoFeeds = errors.New("region has no configured feeds")
)
