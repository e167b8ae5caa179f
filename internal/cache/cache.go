// Package cache holds a small thread-safe LRU with TTL for aggregated
// result sets. Entries are immutable once written and simply expire; course
// catalogs change slowly enough that no invalidation protocol is needed.
package cache

import (
	"sync"
	"time"

	"course-discovery/internal/domain"
)

type entry struct {
	key       string
	courses   []domain.Course
	prev      *entry
	next      *entry
	expiresAt time.Time
}

// ResultCache is an LRU cache keyed by (operation, canonicalized params)
// storing ranked course lists. Get/Add are O(1); expiry is lazy.
type ResultCache struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	items    map[string]*entry

	// head.next is most recently used, tail.prev least recently used.
	head *entry
	tail *entry

	now func() time.Time // injectable for tests
}

// New creates a ResultCache. Non-positive capacity/ttl fall back to
// 256 entries / 5 minutes.
func New(capacity int, ttl time.Duration) *ResultCache {
	if capacity <= 0 {
		capacity = 256
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	c := &ResultCache{
		capacity: capacity,
		ttl:      ttl,
		items:    make(map[string]*entry, capacity),
		head:     &entry{},
		tail:     &entry{},
		now:      time.Now,
	}
	c.head.next = c.tail
	c.tail.prev = c.head
	return c
}

// Get returns a copy of the cached result set, or false when absent or
// expired. Copying keeps cached entries immutable even if the caller
// mutates what it got back.
func (c *ResultCache) Get(key string) ([]domain.Course, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[key]
	if !ok {
		return nil, false
	}
	if c.now().After(e.expiresAt) {
		c.remove(e)
		return nil, false
	}
	c.moveToFront(e)

	out := make([]domain.Course, len(e.courses))
	copy(out, e.courses)
	return out, true
}

// Add stores a result set, evicting the least recently used entry at
// capacity. The stored slice is copied for the same immutability reason.
func (c *ResultCache) Add(key string, courses []domain.Course) {
	c.mu.Lock()
	defer c.mu.Unlock()

	stored := make([]domain.Course, len(courses))
	copy(stored, courses)

	if e, ok := c.items[key]; ok {
		e.courses = stored
		e.expiresAt = c.now().Add(c.ttl)
		c.moveToFront(e)
		return
	}

	if len(c.items) >= c.capacity {
		if lru := c.tail.prev; lru != c.head {
			c.remove(lru)
		}
	}

	e := &entry{key: key, courses: stored, expiresAt: c.now().Add(c.ttl)}
	c.items[key] = e
	c.insertFront(e)
}

// Len reports the number of entries, expired ones included until touched.
func (c *ResultCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *ResultCache) remove(e *entry) {
	e.prev.next = e.next
	e.next.prev = e.prev
	delete(c.items, e.key)
}

func (c *ResultCache) moveToFront(e *entry) {
	e.prev.next = e.next
	e.next.prev = e.prev
	c.insertFront(e)
}

func (c *ResultCache) insertFront(e *entry) {
	e.next = c.head.next
	e.prev = c.head
	c.head.next.prev = e
	c.head.next = e
}
