package cache

import (
	"context"
	"time"
)

// SearchCache memoizes search results as ordered entry-id lists. The engine
// keys values by query plus a generation counter, so stale generations simply
// stop being read and expire by TTL.
type SearchCache interface {
	Get(ctx context.Context, key string) ([]string, bool, error)
	Set(ctx context.Context, key string, ids []string, ttl time.Duration) error
}

type NoopSearchCache struct{}

func (NoopSearchCache) Get(_ context.Context, _ string) ([]string, bool, error) {
	return nil, false, nil
}

func (NoopSearchCache) Set(_ context.Context, _ string, _ []string, _ time.Duration) error {
	return nil
}
