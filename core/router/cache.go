package router

import (
	"container/list"
	"sync"

	"github.com/relaykit/relay/core/handler"
)

// DefaultRouteCacheSize is the default capacity of the per-router route
// resolution cache.
const DefaultRouteCacheSize = 100

// cacheEntry memoizes the outcome of one (method, path) resolution. A nil
// route is an explicit no-match tombstone, distinct from "never queried", so
// repeated lookups of unknown paths skip the tree walk too.
type cacheEntry[C handler.Context] struct {
	route  *route[C]
	params map[string]string
}

type cacheItem[C handler.Context] struct {
	key   string
	entry cacheEntry[C]
}

// routeCache is a bounded LRU memoizing (method, path) resolutions.
//
// The routing tree is read-only while serving, so a cache race can only cost
// a duplicate tree walk or a slightly early eviction, never a wrong result.
// The mutex exists because Go maps are not safe for concurrent mutation.
type routeCache[C handler.Context] struct {
	mu       sync.Mutex
	capacity int
	items    map[string]*list.Element
	order    *list.List // front is most recently used
}

func newRouteCache[C handler.Context](capacity int) *routeCache[C] {
	if capacity <= 0 {
		capacity = DefaultRouteCacheSize
	}
	return &routeCache[C]{
		capacity: capacity,
		items:    make(map[string]*list.Element, capacity),
		order:    list.New(),
	}
}

// lookup returns the memoized entry for key and refreshes its recency.
func (c *routeCache[C]) lookup(key string) (cacheEntry[C], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return cacheEntry[C]{}, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*cacheItem[C]).entry, true
}

// store memoizes an entry for key, evicting the least recently used entry
// when the cache is full. Concurrent stores for the same key are benign:
// the last writer wins.
func (c *routeCache[C]) store(key string, entry cacheEntry[C]) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		el.Value.(*cacheItem[C]).entry = entry
		c.order.MoveToFront(el)
		return
	}

	c.items[key] = c.order.PushFront(&cacheItem[C]{key: key, entry: entry})

	if c.order.Len() > c.capacity {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.items, oldest.Value.(*cacheItem[C]).key)
	}
}

// len reports the current number of cached entries.
func (c *routeCache[C]) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
