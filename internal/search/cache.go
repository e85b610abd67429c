package search

import (
	"context"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
)

// Cached memoizes successful searches by normalized query.
type Cached struct {
	next  Client
	cache *cache.Cache
}

func NewCached(next Client, ttl time.Duration) *Cached {
	return &Cached{next: next, cache: cache.New(ttl, 2*ttl)}
}

func (c *Cached) Search(ctx context.Context, query string) ([]Result, error) {
	key := strings.ToLower(strings.TrimSpace(query))
	if v, found := c.cache.Get(key); found {
		return copyResults(v.([]Result)), nil
	}
	results, err := c.next.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	c.cache.Set(key, copyResults(results), cache.DefaultExpiration)
	return results, nil
}

func copyResults(in []Result) []Result {
	out := make([]Result, len(in))
	copy(out, in)
	return out
}
