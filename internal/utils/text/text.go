// Package text provides small reusable helpers for text processing shared
// by the LLM clients and message formatting.
package text

import (
	"strings"
	"unicode"
)

// CountRunes counts Unicode characters in the given text. Counting runes
// instead of bytes keeps character limits correct for Cyrillic, CJK and
// emoji content.
func CountRunes(text string) int {
	return len([]rune(text))
}

// TruncateRunes shortens text to at most limit runes, appending suffix when
// truncation happened. The suffix length counts against the limit.
func TruncateRunes(text string, limit int, suffix string) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}

	cut := limit - len([]rune(suffix))
	if cut < 0 {
		cut = 0
	}
	return string(runes[:cut]) + suffix
}

// NormalizeTitle lower-cases a title, strips punctuation and collapses
// internal whitespace.
//
// Note: title deduplication intentionally compares with lower-case+trim
// only; this stricter form is not part of that comparison path.
func NormalizeTitle(title string) string {
	var b strings.Builder
	b.Grow(len(title))

	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}
