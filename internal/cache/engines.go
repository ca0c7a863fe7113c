// Package cache keeps compiled validation engines around between runs.
package cache

import (
	"crypto/sha256"
	"encoding/hex"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/usestring/yamlcheck/internal/schema"
	"github.com/usestring/yamlcheck/internal/validate"
)

// EngineCache provides thread-safe LRU caching of engines keyed by the
// digest of the schema text they were built from.
type EngineCache struct {
	cache  *lru.Cache[string, *validate.Engine]
	builds singleflight.Group
}

// NewEngineCache creates a new LRU cache with the specified maximum number of items.
func NewEngineCache(maxItems int) (*EngineCache, error) {
	c, err := lru.New[string, *validate.Engine](maxItems)
	if err != nil {
		return nil, err
	}
	return &EngineCache{cache: c}, nil
}

// Key returns the cache key for s.
func Key(s *schema.Schema) string {
	sum := sha256.Sum256(s.Raw)
	return hex.EncodeToString(sum[:])
}

// Get retrieves the engine for s, if one is cached.
func (c *EngineCache) Get(s *schema.Schema) (*validate.Engine, bool) {
	return c.cache.Get(Key(s))
}

// GetOrCreate returns the cached engine for s, building one with newEngine
// on a miss. Concurrent misses for the same schema share one build.
// Engines whose schema failed to compile are not cached.
func (c *EngineCache) GetOrCreate(s *schema.Schema, newEngine func(*schema.Schema) *validate.Engine) (*validate.Engine, error) {
	key := Key(s)
	if e, ok := c.cache.Get(key); ok {
		return e, nil
	}

	v, err, _ := c.builds.Do(key, func() (any, error) {
		if e, ok := c.cache.Get(key); ok {
			return e, nil
		}
		e := newEngine(s)
		if err := e.Compile(); err != nil {
			return nil, err
		}
		c.cache.Add(key, e)
		return e, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*validate.Engine), nil
}

// Len returns the current number of items in the cache.
func (c *EngineCache) Len() int {
	return c.cache.Len()
}
