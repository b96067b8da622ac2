package texture

import (
	"log/slog"
	"sync"

	lru "github.com/hashicorp/golang-lru"
)

// DefaultCacheSize is the number of maps a Cache keeps open.
const DefaultCacheSize = 32

// Cache loads each texture path once. Evicted maps stay open for the
// objects still holding them until Purge, which closes every map the cache
// ever handed out.
type Cache struct {
	mu      sync.Mutex
	cache   *lru.Cache // path -> *Map
	evicted []*Map
	load    func(string) (*Map, error)
}

func NewCache(size int) (*Cache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	c := &Cache{load: Load}
	cache, err := lru.NewWithEvict(size, func(key, val interface{}) {
		slog.Debug("texture evicted from cache", "path", key)
		c.evicted = append(c.evicted, val.(*Map))
	})
	if err != nil {
		return nil, err
	}
	c.cache = cache
	return c, nil
}

// Get returns the map for path, loading it on first use.
func (c *Cache) Get(path string) (*Map, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if val, ok := c.cache.Get(path); ok {
		return val.(*Map), nil
	}
	m, err := c.load(path)
	if err != nil {
		return nil, err
	}
	c.cache.Add(path, m)
	return m, nil
}

func (c *Cache) Len() int {
	return c.cache.Len()
}

// Purge closes every map loaded through the cache, evicted ones included,
// and empties it.
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range c.cache.Keys() {
		if val, ok := c.cache.Peek(key); ok {
			val.(*Map).Close()
		}
	}
	for _, m := range c.evicted {
		m.Close()
	}
	// lru reports purged entries through the eviction callback too.
	c.cache.Purge()
	c.evicted = nil
}
