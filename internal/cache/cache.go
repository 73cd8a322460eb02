// Package cache is a read-through byte cache for encoded tiles,
// adapted from tobilg-duckdb-tileserver's internal/cache/lru.go. It
// sits in front of the TileIndex and never replaces it: the index
// stays the only authoritative, never-evicted store for a build
// (spec.md §5); this cache only memoizes the already-encoded bytes
// GetTile has produced, so a repeated request for a hot tile skips
// re-encoding.
package cache

import (
	"fmt"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	log "github.com/sirupsen/logrus"
)

// TileCache caches encoded tile bytes keyed by "z/x/y".
type TileCache struct {
	cache   *lru.Cache[string, []byte]
	enabled bool

	hits   atomic.Int64
	misses atomic.Int64
}

// Stats summarizes cache activity.
type Stats struct {
	Hits    int64
	Misses  int64
	Size    int
	HitRate float64
}

// New returns a TileCache bounded at maxItems encoded tiles.
func New(maxItems int) (*TileCache, error) {
	if maxItems <= 0 {
		return nil, fmt.Errorf("maxItems must be positive, got %d", maxItems)
	}
	c, err := lru.New[string, []byte](maxItems)
	if err != nil {
		return nil, err
	}
	log.WithField("max_items", maxItems).Debug("tile cache initialized")
	return &TileCache{cache: c, enabled: true}, nil
}

// Disabled returns a cache that always misses, for callers that want
// the read-through code path without the memory cost.
func Disabled() *TileCache {
	return &TileCache{enabled: false}
}

// Key builds the cache key for a tile coordinate.
func Key(z, x, y uint32) string {
	return fmt.Sprintf("%d/%d/%d", z, x, y)
}

func (tc *TileCache) Get(key string) ([]byte, bool) {
	if !tc.enabled {
		return nil, false
	}
	v, ok := tc.cache.Get(key)
	if ok {
		tc.hits.Add(1)
	} else {
		tc.misses.Add(1)
	}
	return v, ok
}

func (tc *TileCache) Set(key string, data []byte) {
	if !tc.enabled || len(data) == 0 {
		return
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	tc.cache.Add(key, cp)
}

func (tc *TileCache) Stats() Stats {
	if !tc.enabled {
		return Stats{}
	}
	hits, misses := tc.hits.Load(), tc.misses.Load()
	total := hits + misses
	rate := 0.0
	if total > 0 {
		rate = float64(hits) / float64(total) * 100
	}
	return Stats{Hits: hits, Misses: misses, Size: tc.cache.Len(), HitRate: rate}
}
