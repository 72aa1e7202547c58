package dedup_test

import (
	"math"
	"testing"

	"world-digest/internal/usecase/dedup"
)

func TestRatio(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want float64
	}{
		{name: "identical", a: "market rally continues", b: "market rally continues", want: 1.0},
		{name: "both empty", a: "", b: "", want: 1.0},
		{name: "one empty", a: "", b: "headline", want: 0.0},
		{name: "disjoint", a: "aaaa", b: "bbbb", want: 0.0},
		// Longest block "abcd" (4) plus nothing else matching on the remainders.
		{name: "partial overlap", a: "abcd", b: "xabcdy", want: 2.0 * 4 / 10},
		// Classic difflib example.
		{name: "single char diff", a: "abcd", b: "bcde", want: 2.0 * 3 / 8},
		{name: "unicode", a: "мировые новости", b: "мировые новости", want: 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := dedup.Ratio(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Fatalf("Ratio(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestRatioSymmetric(t *testing.T) {
	pairs := [][2]string{
		{"market rally continues", "market rally continues."},
		{"election results announced", "market rally continues"},
		{"short", "a much longer headline about something else"},
		{"", "nonempty"},
	}

	for _, p := range pairs {
		ab := dedup.Ratio(p[0], p[1])
		ba := dedup.Ratio(p[1], p[0])
		if math.Abs(ab-ba) > 1e-9 {
			t.Fatalf("Ratio not symmetric for %q / %q: %v vs %v", p[0], p[1], ab, ba)
		}
	}
}

func TestRatioBounds(t *testing.T) {
	pairs := [][2]string{
		{"breaking: markets crash", "markets crash"},
		{"a", "b"},
		{"same", "same"},
		{"префикс и суффикс", "суффикс и префикс"},
	}

	for _, p := range pairs {
		r := dedup.Ratio(p[0], p[1])
		if r < 0.0 || r > 1.0 {
			t.Fatalf("Ratio(%q, %q) = %v out of [0, 1]", p[0], p[1], r)
		}
	}
}

// Trailing punctuation on an otherwise identical title must stay well above
// the default threshold; the dedup pass relies on this.
func TestRatioNearDuplicate(t *testing.T) {
	r := dedup.Ratio("market rally continues", "market rally continues.")
	if r < dedup.DefaultSimilarityThreshold {
		t.Fatalf("near-duplicate ratio %v below default threshold %v", r, dedup.DefaultSimilarityThreshold)
	}
}
