package dedup

// Ratio computes a character-level sequence similarity between two strings
// in [0, 1], defined as 2*M/T where M is the number of matching characters
// found by recursively locating the longest common contiguous block
// (Ratcliff/Obershelp) and T is the combined length of both strings.
//
// The ratio is symmetric, yields 1.0 for identical strings and 0.0 for
// disjoint ones. Comparison happens on runes so multi-byte titles
// (Cyrillic, CJK) score the same as ASCII.
func Ratio(a, b string) float64 {
	ra := []rune(a)
	rb := []rune(b)

	total := len(ra) + len(rb)
	if total == 0 {
		// Two empty strings are identical by definition.
		return 1.0
	}

	matched := matchingRunes(ra, rb)
	return 2.0 * float64(matched) / float64(total)
}

// matchingRunes counts matching characters by finding the longest common
// contiguous block and recursing into the unmatched pieces on both sides.
func matchingRunes(a, b []rune) int {
	ai, bi, size := longestCommonBlock(a, b)
	if size == 0 {
		return 0
	}

	matched := size
	matched += matchingRunes(a[:ai], b[:bi])
	matched += matchingRunes(a[ai+size:], b[bi+size:])
	return matched
}

// longestCommonBlock finds the longest contiguous run of runes present in
// both slices. Ties resolve to the earliest block in a, then the earliest
// in b, which keeps the overall match count deterministic.
//
// Runs in O(len(a)*len(b)) time and O(len(b)) space.
func longestCommonBlock(a, b []rune) (ai, bi, size int) {
	if len(a) == 0 || len(b) == 0 {
		return 0, 0, 0
	}

	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)

	for i := 0; i < len(a); i++ {
		for j := 0; j < len(b); j++ {
			if a[i] != b[j] {
				cur[j+1] = 0
				continue
			}
			run := prev[j] + 1
			cur[j+1] = run
			if run > size {
				size = run
				ai = i - run + 1
				bi = j - run + 1
			}
		}
		prev, cur = cur, prev
		for j := range cur {
			cur[j] = 0
		}
	}

	return ai, bi, size
}
