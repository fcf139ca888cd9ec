// Package dedup detects near-duplicate catalog entries by identifier equality
// and fuzzy title similarity, and collapses them into clusters.
package dedup

import (
	"strings"
	"unicode"
)

// Normalize lowercases a title, strips everything but letters, digits, and
// spaces, and collapses runs of whitespace. Two titles that normalize equal
// are always duplicates.
func Normalize(title string) string {
	var b strings.Builder

	b.Grow(len(title))

	lastSpace := true

	for _, r := range strings.ToLower(title) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)

			lastSpace = false
		case unicode.IsSpace(r):
			if !lastSpace {
				b.WriteByte(' ')
			}

			lastSpace = true
		}
	}

	return strings.TrimRight(b.String(), " ")
}

// Ratio computes a character-level sequence similarity in [0,1]:
// 2·LCS(a,b) / (len(a)+len(b)). Equal strings score 1.0. The measure must
// stay stable across releases: persisted collections are re-clustered against
// new batches, and a drifting metric would re-open settled duplicates.
func Ratio(a, b string) float64 {
	if a == b {
		return 1.0
	}

	ra := []rune(a)
	rb := []rune(b)

	if len(ra) == 0 || len(rb) == 0 {
		return 0.0
	}

	// Two-row LCS dynamic program; titles are short so O(n·m) is fine.
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)

	for i := 1; i <= len(ra); i++ {
		for j := 1; j <= len(rb); j++ {
			if ra[i-1] == rb[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}

		prev, curr = curr, prev
	}

	lcs := prev[len(rb)]

	return 2.0 * float64(lcs) / float64(len(ra)+len(rb))
}
