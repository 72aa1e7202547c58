package digest

import "errors"

var (
	// ErrUnknownRegion is returned for regions missing from configuration.
	ErrUnknownRegion = errors.New("unknown region")
	// ErrNoArticles is returned when the collection window holds nothing to
	// summarize.
	ErrNoArticles = errors.New("no articles to process")
)
