package source

import (
	"context"
	"time"

	"github.com/matzehuels/visast/pkg/cache"
)

// DefaultSourceTTL is how long a fetched source stays cached.
const DefaultSourceTTL = time.Hour

// CachingFetcher wraps next so successful downloads are stored in c and
// served from it until ttl passes. Cache failures fall through to next.
func CachingFetcher(c cache.Cache, ttl time.Duration, next Fetcher) Fetcher {
	if next == nil {
		next = DefaultFetcher
	}
	return func(ctx context.Context, url string) ([]byte, error) {
		key := cache.Key(cache.NamespaceSource, url)
		if data, ok, err := c.Get(ctx, key); err == nil && ok {
			return data, nil
		}
		data, err := next(ctx, url)
		if err != nil {
			return nil, err
		}
		_ = c.Set(ctx, key, data, ttl)
		return data, nil
	}
}

// NewCached returns a loader whose URL fetches go through c.
func NewCached(c cache.Cache, ttl time.Duration) *Loader {
	return &Loader{Fetch: CachingFetcher(c, ttl, DefaultFetcher)}
}
