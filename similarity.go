package main

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// normalizeAnswer lowercases and strips everything that isn't a letter or
// digit, so "The Moon!" and "themoon" compare equal.
func normalizeAnswer(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// tooSimilar reports whether a submitted lie is unacceptably close to the
// truth or any accepted alternate spelling of it. A candidate is rejected if,
// against any target after normalization: it is exactly equal, either string
// contains the other, or (both longer than 2 runes) the edit distance is
// within max(1, 30% of the target's rune count).
func tooSimilar(candidate, truth string, alternates []string) bool {
	normalized := normalizeAnswer(candidate)

	targets := make([]string, 0, len(alternates)+1)
	targets = append(targets, truth)
	targets = append(targets, alternates...)

	for _, target := range targets {
		t := normalizeAnswer(target)

		if normalized == t {
			return true
		}
		if normalized != "" && t != "" &&
			(strings.Contains(normalized, t) || strings.Contains(t, normalized)) {
			return true
		}
		// Lengths are counted in runes, matching editDistance, so a
		// multibyte target doesn't get an inflated budget.
		if utf8.RuneCountInString(normalized) > 2 && utf8.RuneCountInString(t) > 2 {
			limit := max(1, (3*utf8.RuneCountInString(t))/10)
			if editDistance(normalized, t) <= limit {
				return true
			}
		}
	}

	return false
}

// editDistance is plain Levenshtein over runes, two-row DP.
func editDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(rb)]
}
