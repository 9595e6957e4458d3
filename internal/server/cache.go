package server

import (
	"sync"

	"golang.org/x/sync/singleflight"
)

// pngCache holds up to size encoded PNGs, evicting the oldest insert first.
// Concurrent misses for the same key share one render.
type pngCache struct {
	mu    sync.Mutex
	size  int
	items map[string][]byte
	order []string

	group singleflight.Group
}

func newPNGCache(size int) *pngCache {
	return &pngCache{
		size:  max(size, 0),
		items: make(map[string][]byte, max(size, 0)),
	}
}

// get returns the cached value for key, rendering and storing it on a miss.
// hit reports whether the value came from the cache.
func (c *pngCache) get(key string, render func() ([]byte, error)) (data []byte, hit bool, err error) {
	if b, ok := c.lookup(key); ok {
		return b, true, nil
	}
	v, err, _ := c.group.Do(key, func() (any, error) {
		b, err := render()
		if err != nil {
			return nil, err
		}
		c.store(key, b)
		return b, nil
	})
	if err != nil {
		return nil, false, err
	}
	return v.([]byte), false, nil
}

func (c *pngCache) lookup(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.items[key]
	return b, ok
}

func (c *pngCache) store(key string, b []byte) {
	if c.size == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.items[key]; ok {
		return
	}
	for len(c.order) >= c.size {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.items, oldest)
	}
	c.items[key] = b
	c.order = append(c.order, key)
}

// len returns the number of cached entries.
func (c *pngCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}
