package embedding

import (
	"crypto/sha256"
	"encoding/hex"
	"slices"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Cache defaults.
const (
	DefaultCacheTTL      = time.Hour
	DefaultCacheCapacity = 1000
	DefaultEvictFraction = 0.2
)

// CacheConfig configures an embedding cache.
type CacheConfig struct {
	TTL           time.Duration
	Capacity      int     // maximum entries; zero or negative disables caching
	EvictFraction float64 // share of entries removed, oldest first, when full
}

// DefaultCacheConfig returns the standard cache settings: one hour TTL,
// 1000 entries, evicting the oldest 20% when full.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		TTL:           DefaultCacheTTL,
		Capacity:      DefaultCacheCapacity,
		EvictFraction: DefaultEvictFraction,
	}
}

type cacheEntry struct {
	vector     []float32
	insertedAt time.Time
}

// Cache is an in-process, content-addressed embedding cache with a TTL and a
// capacity bound. Keys are derived from normalized text, so concurrent writers
// of the same key always store identical vectors.
type Cache struct {
	mu            sync.RWMutex
	entries       map[string]cacheEntry
	ttl           time.Duration
	capacity      int
	evictFraction float64
	now           func() time.Time

	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
}

// CacheStats is a snapshot of cache state and counters.
type CacheStats struct {
	Size      int     `json:"size"`
	Capacity  int     `json:"capacity"`
	TTL       string  `json:"ttl"`
	Hits      int64   `json:"hits"`
	Misses    int64   `json:"misses"`
	Evictions int64   `json:"evictions"`
	HitRate   float64 `json:"hit_rate"`
}

// NewCache creates a cache. A zero TTL uses the default; a zero or negative
// capacity yields a cache that never stores anything.
func NewCache(cfg CacheConfig) *Cache {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultCacheTTL
	}
	if cfg.EvictFraction <= 0 || cfg.EvictFraction > 1 {
		cfg.EvictFraction = DefaultEvictFraction
	}
	return &Cache{
		entries:       make(map[string]cacheEntry),
		ttl:           cfg.TTL,
		capacity:      cfg.Capacity,
		evictFraction: cfg.EvictFraction,
		now:           time.Now,
	}
}

// Key returns the content address of normalized text.
func Key(normalized string) string {
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

// Get returns a copy of the cached vector for key if present and younger than the TTL.
func (c *Cache) Get(key string) ([]float32, bool) {
	if c.capacity <= 0 {
		c.misses.Add(1)
		return nil, false
	}

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || c.now().Sub(entry.insertedAt) >= c.ttl {
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return slices.Clone(entry.vector), true
}

// Set stores a vector, evicting old entries first when the cache is full.
func (c *Cache) Set(key string, vector []float32) {
	if c.capacity <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.capacity {
		c.evictLocked()
	}
	c.entries[key] = cacheEntry{vector: slices.Clone(vector), insertedAt: c.now()}
}

// evictLocked drops expired entries, then the oldest share of the rest if the
// cache is still full. Callers must hold the write lock.
func (c *Cache) evictLocked() {
	now := c.now()
	for key, entry := range c.entries {
		if now.Sub(entry.insertedAt) >= c.ttl {
			delete(c.entries, key)
			c.evictions.Add(1)
		}
	}
	if len(c.entries) < c.capacity {
		return
	}

	type aged struct {
		key string
		at  time.Time
	}
	all := make([]aged, 0, len(c.entries))
	for key, entry := range c.entries {
		all = append(all, aged{key: key, at: entry.insertedAt})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].at.Before(all[j].at) })

	n := int(float64(c.capacity)*c.evictFraction + 0.5)
	if n < 1 {
		n = 1
	}
	if n > len(all) {
		n = len(all)
	}
	for _, e := range all[:n] {
		delete(c.entries, e.key)
	}
	c.evictions.Add(int64(n))
}

// Clear removes every entry. Counters are kept.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]cacheEntry)
	c.mu.Unlock()
}

// Len returns the number of stored entries, including expired ones not yet evicted.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats returns a snapshot of the cache counters.
func (c *Cache) Stats() CacheStats {
	hits, misses := c.hits.Load(), c.misses.Load()
	var rate float64
	if total := hits + misses; total > 0 {
		rate = float64(hits) / float64(total)
	}
	capacity := c.capacity
	if capacity < 0 {
		capacity = 0
	}
	return CacheStats{
		Size:      c.Len(),
		Capacity:  capacity,
		TTL:       c.ttl.String(),
		Hits:      hits,
		Misses:    misses,
		Evictions: c.evictions.Load(),
		HitRate:   rate,
	}
}
