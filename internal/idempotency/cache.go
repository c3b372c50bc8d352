// Package idempotency replays tool responses for repeated requests.
package idempotency

import (
	"container/list"
	"sync"
	"time"
)

// Cache is a TTL bounded LRU of responses keyed by request key.
type Cache[V any] struct {
	mu         sync.Mutex
	items      map[string]*list.Element
	order      *list.List
	inflight   map[string]*call[V]
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
}

type cacheEntry[V any] struct {
	key       string
	value     V
	expiresAt time.Time
}

type call[V any] struct {
	done  chan struct{}
	value V
	keep  bool
}

// NewCache creates a cache with the given ttl and max entries.
func NewCache[V any](ttl time.Duration, maxEntries int) *Cache[V] {
	if ttl <= 0 {
		ttl = time.Hour
	}
	if maxEntries <= 0 {
		maxEntries = 1000
	}
	return &Cache[V]{
		items:      make(map[string]*list.Element),
		order:      list.New(),
		inflight:   make(map[string]*call[V]),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// Do returns the cached value for key or computes it with fn. Concurrent
// callers with the same key wait for the first computation. fn reports
// whether its value may be cached; hit is true when fn did not run.
func (c *Cache[V]) Do(key string, fn func() (V, bool)) (value V, hit bool) {
	if c == nil || key == "" {
		value, _ = fn()
		return value, false
	}

	c.mu.Lock()
	if cached, ok := c.lookup(key); ok {
		c.mu.Unlock()
		return cached, true
	}
	if running, ok := c.inflight[key]; ok {
		c.mu.Unlock()
		<-running.done
		if running.keep {
			return running.value, true
		}
		return c.Do(key, fn)
	}
	current := &call[V]{done: make(chan struct{})}
	c.inflight[key] = current
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.inflight, key)
		if current.keep {
			c.store(key, current.value)
		}
		c.mu.Unlock()
		close(current.done)
	}()
	current.value, current.keep = fn()
	return current.value, false
}

func (c *Cache[V]) lookup(key string) (V, bool) {
	var zero V
	elem, ok := c.items[key]
	if !ok {
		return zero, false
	}
	entry := elem.Value.(*cacheEntry[V])
	if c.now().After(entry.expiresAt) {
		c.order.Remove(elem)
		delete(c.items, key)
		return zero, false
	}
	c.order.MoveToFront(elem)
	return entry.value, true
}

func (c *Cache[V]) store(key string, value V) {
	expiresAt := c.now().Add(c.ttl)
	if elem, ok := c.items[key]; ok {
		entry := elem.Value.(*cacheEntry[V])
		entry.value = value
		entry.expiresAt = expiresAt
		c.order.MoveToFront(elem)
		return
	}
	c.items[key] = c.order.PushFront(&cacheEntry[V]{key: key, value: value, expiresAt: expiresAt})
	for len(c.items) > c.maxEntries {
		oldest := c.order.Back()
		if oldest == nil {
			return
		}
		delete(c.items, oldest.Value.(*cacheEntry[V]).key)
		c.order.Remove(oldest)
	}
}
