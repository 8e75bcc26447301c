package search

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"bukustok/backend/internal/cache"
	"bukustok/backend/internal/domain"
)

const (
	fuzzyMaxDistance = 2
	triePrefixLimit  = 50
	suggestionLimit  = 5
)

// Engine owns the trie and bloom filter for the current entry set. The trie
// is not incrementally updated; Rebuild replaces it wholesale whenever the
// entry set changes. Results are memoized through the cache keyed by a
// generation counter, so a rebuild implicitly invalidates prior results.
type Engine struct {
	mu    sync.RWMutex
	trie  *trie
	bloom *bloomFilter
	gen   uint64

	cache    cache.SearchCache
	cacheTTL time.Duration
}

func NewEngine(searchCache cache.SearchCache, cacheTTL time.Duration) *Engine {
	if searchCache == nil {
		searchCache = cache.NoopSearchCache{}
	}
	if cacheTTL <= 0 {
		cacheTTL = 30 * time.Second
	}
	return &Engine{
		trie:     newTrie(),
		bloom:    newBloomFilter(10000, 5),
		cache:    searchCache,
		cacheTTL: cacheTTL,
	}
}

// Rebuild indexes the given entries from scratch.
func (e *Engine) Rebuild(entries []domain.Entry) {
	t := newTrie()
	b := newBloomFilter(10000, 5)
	for _, entry := range entries {
		if entry.Car == "" {
			continue
		}
		t.insert(entry.Car, entry.ID)
		b.add(strings.ToLower(entry.Car))
	}

	e.mu.Lock()
	e.trie = t
	e.bloom = b
	e.gen++
	e.mu.Unlock()
}

// MightContain reports whether a label could already be indexed. False is
// definitive; true may be a false positive and needs a real scan.
func (e *Engine) MightContain(label string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.bloom.mightContain(strings.ToLower(strings.TrimSpace(label)))
}

// Search runs the strict fallback chain: trie prefix matches, else (if fuzzy
// is enabled) edit-distance matches, else plain substring matches. An empty
// query passes the full entry set through untouched.
func (e *Engine) Search(ctx context.Context, query string, entries []domain.Entry, useFuzzy bool) []domain.Entry {
	if strings.TrimSpace(query) == "" {
		return entries
	}

	queryLower := strings.ToLower(query)

	e.mu.RLock()
	t := e.trie
	gen := e.gen
	e.mu.RUnlock()

	cacheKey := fmt.Sprintf("search:%d:%t:%s", gen, useFuzzy, queryLower)
	if ids, ok, err := e.cache.Get(ctx, cacheKey); err == nil && ok {
		return entriesByID(ids, entries)
	}

	var matched []domain.Entry

	trieResults := t.searchPrefix(queryLower, triePrefixLimit)
	switch {
	case len(trieResults) > 0:
		trieIDs := make(map[string]bool, len(trieResults))
		for _, r := range trieResults {
			trieIDs[r.id] = true
		}
		for _, entry := range entries {
			if trieIDs[entry.ID] || strings.Contains(strings.ToLower(entry.Car), queryLower) {
				matched = append(matched, entry)
			}
		}
	case useFuzzy:
		names := make([]string, len(entries))
		for i, entry := range entries {
			names[i] = entry.Car
		}
		fuzzySet := make(map[string]bool)
		for _, name := range fuzzyMatch(query, names, fuzzyMaxDistance) {
			fuzzySet[strings.ToLower(name)] = true
		}
		for _, entry := range entries {
			if fuzzySet[strings.ToLower(entry.Car)] {
				matched = append(matched, entry)
			}
		}
	default:
		for _, entry := range entries {
			if strings.Contains(strings.ToLower(entry.Car), queryLower) {
				matched = append(matched, entry)
			}
		}
	}

	ids := make([]string, len(matched))
	for i, entry := range matched {
		ids[i] = entry.ID
	}
	// Memoization is best effort; a cache outage must not fail a search.
	if err := e.cache.Set(ctx, cacheKey, ids, e.cacheTTL); err != nil {
		log.Printf("[search] WARN: cache write failed: %v", err)
	}

	return matched
}

// Suggest returns up to limit indexed labels starting with the query,
// for autocomplete consumers.
func (e *Engine) Suggest(query string, limit int) []string {
	if strings.TrimSpace(query) == "" {
		return nil
	}
	if limit < 1 {
		limit = suggestionLimit
	}

	e.mu.RLock()
	t := e.trie
	e.mu.RUnlock()

	results := t.searchPrefix(strings.ToLower(query), limit)
	words := make([]string, len(results))
	for i, r := range results {
		words[i] = r.word
	}
	return words
}

func entriesByID(ids []string, entries []domain.Entry) []domain.Entry {
	byID := make(map[string]domain.Entry, len(entries))
	for _, entry := range entries {
		byID[entry.ID] = entry
	}
	out := make([]domain.Entry, 0, len(ids))
	for _, id := range ids {
		if entry, ok := byID[id]; ok {
			out = append(out, entry)
		}
	}
	return out
}
