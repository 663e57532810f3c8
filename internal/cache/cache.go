// Package cache is a small process-local TTL cache with a size bound.
//
// Eviction is by insertion order, not recency: Get never refreshes an entry's
// position, and re-setting an existing key keeps its original slot. Expired
// entries are removed lazily when read.
package cache

import (
	"container/list"
	"strings"
	"sync"
	"time"
)

const (
	DefaultTTL     = 5 * time.Minute
	DefaultMaxSize = 100
)

type entry[V any] struct {
	key       string
	value     V
	timestamp int64 // epoch ms at Set
	ttl       time.Duration
}

type Cache[V any] struct {
	mu      sync.Mutex
	ttl     time.Duration
	maxSize int
	now     func() time.Time
	items   map[string]*list.Element
	order   *list.List // front is the oldest insertion
}

type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// New creates a cache. Non-positive arguments fall back to the defaults.
func New[V any](ttl time.Duration, maxSize int, opts ...Option) *Cache[V] {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &Cache[V]{
		ttl:     ttl,
		maxSize: maxSize,
		now:     o.now,
		items:   make(map[string]*list.Element),
		order:   list.New(),
	}
}

// Get returns the value stored under key if present and not expired.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	el, ok := c.items[key]
	if !ok {
		return zero, false
	}
	e := el.Value.(*entry[V])
	if c.expired(e) {
		c.removeElement(el)
		return zero, false
	}
	return e.value, true
}

// Set stores value with the cache's default TTL.
func (c *Cache[V]) Set(key string, value V) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores value with an explicit TTL. A full cache evicts its
// oldest inserted entry before a new key is added.
func (c *Cache[V]) SetWithTTL(key string, value V, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.ttl
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	ts := c.now().UnixMilli()
	if el, ok := c.items[key]; ok {
		e := el.Value.(*entry[V])
		e.value, e.timestamp, e.ttl = value, ts, ttl
		return
	}
	if c.order.Len() >= c.maxSize {
		if oldest := c.order.Front(); oldest != nil {
			c.removeElement(oldest)
		}
	}
	c.items[key] = c.order.PushBack(&entry[V]{key: key, value: value, timestamp: ts, ttl: ttl})
}

// Delete removes key if present.
func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[key]; ok {
		c.removeElement(el)
	}
}

// Len counts stored entries, including expired ones not yet read.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]*list.Element)
	c.order.Init()
}

func (c *Cache[V]) expired(e *entry[V]) bool {
	return c.now().UnixMilli()-e.timestamp > e.ttl.Milliseconds()
}

func (c *Cache[V]) removeElement(el *list.Element) {
	e := el.Value.(*entry[V])
	delete(c.items, e.key)
	c.order.Remove(el)
}

// GenerateKey builds a deterministic key from parts: each part is trimmed,
// lowercased and has inner whitespace collapsed, then parts are joined by "|".
func GenerateKey(parts ...string) string {
	normalized := make([]string, len(parts))
	for i, p := range parts {
		normalized[i] = strings.ToLower(strings.Join(strings.Fields(p), " "))
	}
	return strings.Join(normalized, "|")
}
