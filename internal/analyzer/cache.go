package analyzer

import (
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/golang/groupcache/lru"
)

// Cache holds finished results keyed by request. Each entry remembers the
// hash of the content it was computed from; a lookup with different
// content evicts the entry, so a stale result is never returned.
type Cache struct {
	mu     sync.Mutex
	lru    *lru.Cache
	byPath map[string]map[string]struct{}
	hits   uint64
	misses uint64
}

type cacheEntry struct {
	path   string
	hash   uint64
	result any
}

// CacheStats reports cache effectiveness.
type CacheStats struct {
	Entries int    `json:"entries"`
	Hits    uint64 `json:"hits"`
	Misses  uint64 `json:"misses"`
}

func NewCache(size int) *Cache {
	c := &Cache{
		lru:    lru.New(size),
		byPath: make(map[string]map[string]struct{}),
	}
	c.lru.OnEvicted = func(key lru.Key, value interface{}) {
		entry := value.(cacheEntry)
		if keys := c.byPath[entry.path]; keys != nil {
			delete(keys, key.(string))
			if len(keys) == 0 {
				delete(c.byPath, entry.path)
			}
		}
	}
	return c
}

// ContentHash is the fingerprint stored with every entry.
func ContentHash(content []byte) uint64 {
	return xxhash.Sum64(content)
}

func (c *Cache) Get(key string, hash uint64) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.lru.Get(key)
	if !ok {
		c.misses++
		return nil, false
	}
	entry := v.(cacheEntry)
	if entry.hash != hash {
		c.lru.Remove(key)
		c.misses++
		return nil, false
	}
	c.hits++
	return entry.result, true
}

func (c *Cache) Put(path, key string, hash uint64, result any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lru.Add(key, cacheEntry{path: path, hash: hash, result: result})
	keys := c.byPath[path]
	if keys == nil {
		keys = make(map[string]struct{})
		c.byPath[path] = keys
	}
	keys[key] = struct{}{}
}

// Invalidate drops every entry computed for path.
func (c *Cache) Invalidate(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.byPath[path] {
		c.lru.Remove(key)
	}
}

func (c *Cache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CacheStats{Entries: c.lru.Len(), Hits: c.hits, Misses: c.misses}
}
