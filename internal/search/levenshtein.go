package search

import (
	"sort"
	"strings"
)

// levenshtein computes edit distance with the standard O(n*m) matrix over
// runes, so multi-byte labels measure by character rather than byte.
func levenshtein(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)

	prev := make([]int, len(ra)+1)
	cur := make([]int, len(ra)+1)
	for j := 0; j <= len(ra); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(rb); i++ {
		cur[0] = i
		for j := 1; j <= len(ra); j++ {
			if rb[i-1] == ra[j-1] {
				cur[j] = prev[j-1]
			} else {
				cur[j] = min3(prev[j-1]+1, cur[j-1]+1, prev[j]+1)
			}
		}
		prev, cur = cur, prev
	}
	return prev[len(ra)]
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

// fuzzyMatch returns the candidates within maxDistance edits of the query,
// closest first. The sort is stable: ties keep their input order.
func fuzzyMatch(query string, candidates []string, maxDistance int) []string {
	q := strings.ToLower(query)

	type scored struct {
		value    string
		distance int
	}
	kept := make([]scored, 0, len(candidates))
	for _, candidate := range candidates {
		d := levenshtein(q, strings.ToLower(candidate))
		if d <= maxDistance {
			kept = append(kept, scored{value: candidate, distance: d})
		}
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].distance < kept[j].distance
	})

	out := make([]string, len(kept))
	for i, s := range kept {
		out[i] = s.value
	}
	return out
}
