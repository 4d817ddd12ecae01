package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache is the hot layer: embeddings and search responses for
// transcripts currently moving through the pipeline.
type MemoryCache struct {
	store      *gocache.Cache
	defaultTTL time.Duration
}

// NewMemoryCache creates an in-process cache. Expired entries are
// swept at half the default TTL.
func NewMemoryCache(defaultTTL time.Duration) *MemoryCache {
	sweep := defaultTTL / 2
	if sweep < time.Minute {
		sweep = time.Minute
	}
	return &MemoryCache{
		store:      gocache.New(defaultTTL, sweep),
		defaultTTL: defaultTTL,
	}
}

func (c *MemoryCache) Get(key string) ([]byte, bool) {
	val, found := c.store.Get(key)
	if !found {
		return nil, false
	}
	data, ok := val.([]byte)
	return data, ok
}

func (c *MemoryCache) Set(key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	c.store.Set(key, value, ttl)
	return nil
}

func (c *MemoryCache) Delete(key string) error {
	c.store.Delete(key)
	return nil
}

func (c *MemoryCache) Clear() error {
	c.store.Flush()
	return nil
}
