// Package lru provides a generic thread-safe LRU cache bounded by entry count,
// total byte size, or both.
package lru

import (
	"container/list"
	"sync"
)

type entry[K comparable, V any] struct {
	key   K
	value V
	size  int64
}

// Cache is a thread-safe generic LRU cache.
type Cache[K comparable, V any] struct {
	mu       sync.Mutex
	entries  map[K]*list.Element
	order    *list.List // Front is most recently used.
	sizeFunc func(V) int64

	maxEntries int
	maxSize    int64
	curSize    int64

	hits      int64
	misses    int64
	evictions int64
}

// Option configures a Cache.
type Option[K comparable, V any] func(*Cache[K, V])

// WithMaxEntries bounds the number of entries.
func WithMaxEntries[K comparable, V any](n int) Option[K, V] {
	return func(c *Cache[K, V]) {
		c.maxEntries = n
	}
}

// WithMaxBytes bounds the summed sizeFunc of all entries.
func WithMaxBytes[K comparable, V any](maxBytes int64, sizeFunc func(V) int64) Option[K, V] {
	return func(c *Cache[K, V]) {
		c.maxSize = maxBytes
		c.sizeFunc = sizeFunc
	}
}

// New creates a cache. At least one of WithMaxEntries or WithMaxBytes must be
// given; otherwise New panics.
func New[K comparable, V any](opts ...Option[K, V]) *Cache[K, V] {
	c := &Cache[K, V]{
		entries: make(map[K]*list.Element),
		order:   list.New(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.maxEntries <= 0 && c.maxSize <= 0 {
		panic("lru: at least one capacity limit (WithMaxEntries or WithMaxBytes) is required")
	}

	return c
}

// Get returns the value stored under key and marks it most recently used.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		c.misses++

		var zero V

		return zero, false
	}

	c.hits++
	c.order.MoveToFront(elem)

	return elem.Value.(*entry[K, V]).value, true
}

// Put stores value under key, evicting least recently used entries until it
// fits. A value larger than the whole byte budget is not stored.
func (c *Cache[K, V]) Put(key K, value V) {
	size := c.valueSize(value)
	if c.maxSize > 0 && size > c.maxSize {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		c.remove(elem)
	}

	for c.overflows(size) {
		c.remove(c.order.Back())
		c.evictions++
	}

	c.entries[key] = c.order.PushFront(&entry[K, V]{key: key, value: value, size: size})
	c.curSize += size
}

// Len returns the number of entries.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

// Clear removes every entry. Counters are kept.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[K]*list.Element)
	c.order.Init()
	c.curSize = 0
}

func (c *Cache[K, V]) overflows(size int64) bool {
	if c.order.Len() == 0 {
		return false
	}

	if c.maxEntries > 0 && c.order.Len() >= c.maxEntries {
		return true
	}

	return c.maxSize > 0 && c.curSize+size > c.maxSize
}

func (c *Cache[K, V]) remove(elem *list.Element) {
	ent := c.order.Remove(elem).(*entry[K, V])
	delete(c.entries, ent.key)
	c.curSize -= ent.size
}

func (c *Cache[K, V]) valueSize(value V) int64 {
	if c.sizeFunc != nil {
		return c.sizeFunc(value)
	}

	return 1
}
