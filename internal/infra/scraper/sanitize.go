package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// StripHTML removes markup from feed-provided text, returning plain text
// with whitespace collapsed. Malformed markup falls back to the raw input.
func StripHTML(s string) string {
	if s == "" {
		return ""
	}
	if !strings.ContainsAny(s, "<&") {
		return CollapseWhitespace(s)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return CollapseWhitespace(s)
	}

	return CollapseWhitespace(doc.Text())
}

// CollapseWhitespace trims the string and collapses internal whitespace
// runs (including newlines from stripped block elements) to single spaces.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
