package catalog

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
)

// CacheTTL is how long a genre lookup is reused.
const CacheTTL = 30 * time.Minute

// Cached wraps a Source and keeps successful lookups in memory for a TTL.
// Failed lookups are not cached.
type Cached struct {
	source Source
	cache  *cache.Cache
}

// NewCached creates a cached source. A non-positive ttl uses CacheTTL.
func NewCached(source Source, ttl time.Duration) *Cached {
	if ttl <= 0 {
		ttl = CacheTTL
	}
	return &Cached{
		source: source,
		cache:  cache.New(ttl, 2*ttl),
	}
}

// TracksForGenre returns cached tracks for genre, fetching them on a miss.
func (c *Cached) TracksForGenre(ctx context.Context, genre string, limit int) ([]Track, error) {
	key := cacheKey(genre, limit)

	if v, found := c.cache.Get(key); found {
		return slices.Clone(v.([]Track)), nil
	}

	tracks, err := c.source.TracksForGenre(ctx, genre, limit)
	if err != nil {
		return nil, err
	}

	c.cache.SetDefault(key, slices.Clone(tracks))
	return tracks, nil
}

// Len returns the number of cached lookups, including expired ones not yet evicted.
func (c *Cached) Len() int {
	return c.cache.ItemCount()
}

// Flush drops every cached lookup.
func (c *Cached) Flush() {
	c.cache.Flush()
}

func cacheKey(genre string, limit int) string {
	return fmt.Sprintf("%s|%d", strings.ToLower(genre), limit)
}

var _ Source = (*Cached)(nil)
