package search

import (
	"regexp"
	"sort"
	"strings"

	"bukustok/backend/internal/domain"
)

const smartResultLimit = 10

// fillerWords strips connective and filler tokens, in both Hinglish and
// English, before keyword scoring.
var fillerWords = regexp.MustCompile(`\b(check|search|find|dhundo|dekho|batao|kya|hai|available|stock|mein|ka|ki|ke|se|aur|or|the|is|a|an|for|in|of)\b`)

type ScoredEntry struct {
	domain.Entry
	Score    int    `json:"score"`
	PageName string `json:"page_name"`
}

type SmartResult struct {
	Match         bool          `json:"match"`
	Items         []ScoredEntry `json:"items"`
	InterpretedAs string        `json:"interpreted_as"`
	Keywords      []string      `json:"keywords,omitempty"`
}

// Smart ranks inventory entries against a free-text or voice query.
// Scoring is keyword-additive: +10 for a substring hit on the combined
// label+page text, and under fuzzy matching +5 for an all-but-last-character
// prefix hit (words longer than 3 chars) or +2 for a word starting with the
// keyword's first character. Ties keep their original order.
func Smart(rawText string, entries []domain.Entry, pages []domain.Page, useFuzzy bool) SmartResult {
	processed := Normalize(rawText)

	keywords := make([]string, 0, 8)
	for _, token := range strings.Fields(fillerWords.ReplaceAllString(processed, "")) {
		if len([]rune(token)) > 1 {
			keywords = append(keywords, token)
		}
	}

	if len(keywords) == 0 {
		return SmartResult{Match: false, Items: []ScoredEntry{}, InterpretedAs: processed}
	}

	pageNames := make(map[string]string, len(pages))
	for _, page := range pages {
		pageNames[page.ID] = strings.ToLower(page.ItemName)
	}

	scored := make([]ScoredEntry, 0, len(entries))
	for _, entry := range entries {
		pageName := pageNames[entry.PageID]
		combined := strings.ToLower(entry.Car) + " " + pageName

		score := 0
		for _, word := range keywords {
			if strings.Contains(combined, word) {
				score += 10
				continue
			}
			if !useFuzzy {
				continue
			}
			runes := []rune(word)
			if len(runes) > 3 {
				if strings.Contains(combined, string(runes[:len(runes)-1])) {
					score += 5
				}
			} else if wordStartsWith(combined, runes[0]) {
				score += 2
			}
		}

		if score > 0 {
			scored = append(scored, ScoredEntry{Entry: entry, Score: score, PageName: pageName})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if len(scored) > smartResultLimit {
		scored = scored[:smartResultLimit]
	}

	return SmartResult{
		Match:         len(scored) > 0,
		Items:         scored,
		InterpretedAs: processed,
		Keywords:      keywords,
	}
}

func wordStartsWith(text string, first rune) bool {
	for _, word := range strings.Split(text, " ") {
		runes := []rune(word)
		if len(runes) > 0 && runes[0] == first {
			return true
		}
	}
	return false
}
