// Package cache provides a bounded in-memory store for program
// classifications with TTL expiry, LRU eviction and hit/miss metrics.
package cache

import (
	"container/list"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/lukas/foerder-scout/internal/types"
)

// Cache is a bounded key -> classification store. Entries expire after
// their TTL regardless of capacity pressure; when capacity is exceeded the
// least-recently-used entry is evicted first, ties broken by oldest
// creation time. All operations are safe for concurrent use and mutations
// appear atomic to concurrent readers.
type Cache struct {
	mu sync.Mutex

	capacity   int
	defaultTTL time.Duration

	entries map[string]*list.Element
	order   *list.List // front = most recently used

	hits      uint64
	misses    uint64
	evictions uint64

	// now is swappable for tests.
	now func() time.Time
}

type entry struct {
	key          string
	value        types.ClassifiedProgram
	createdAt    time.Time
	expiresAt    time.Time
	lastAccessAt time.Time
	accessCount  uint64
}

// Stats is a snapshot of cache health counters.
type Stats struct {
	Size        int     `json:"size"`
	Capacity    int     `json:"capacity"`
	TotalHits   uint64  `json:"total_hits"`
	TotalMisses uint64  `json:"total_misses"`
	Evictions   uint64  `json:"evictions"`
	HitRate     float64 `json:"hit_rate"`
}

// Lookups returns the total number of reads recorded in the snapshot.
func (s Stats) Lookups() uint64 {
	return s.TotalHits + s.TotalMisses
}

// New creates a cache with the given capacity and default TTL. Both are
// required configuration inputs; there are no implicit defaults.
func New(capacity int, defaultTTL time.Duration) (*Cache, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("cache capacity must be positive, got %d", capacity)
	}
	if defaultTTL <= 0 {
		return nil, fmt.Errorf("cache default TTL must be positive, got %v", defaultTTL)
	}
	return &Cache{
		capacity:   capacity,
		defaultTTL: defaultTTL,
		entries:    make(map[string]*list.Element),
		order:      list.New(),
		now:        time.Now,
	}, nil
}

// Get returns the cached classification for key. A read of an expired
// entry removes it and counts as a miss. Every read updates the entry's
// access count and the hit/miss counters.
func (c *Cache) Get(key string) (types.ClassifiedProgram, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		c.misses++
		return types.ClassifiedProgram{}, false
	}

	ent := elem.Value.(*entry)
	if c.now().After(ent.expiresAt) {
		c.removeLocked(elem)
		c.misses++
		return types.ClassifiedProgram{}, false
	}

	ent.accessCount++
	ent.lastAccessAt = c.now()
	c.order.MoveToFront(elem)
	c.hits++
	return ent.value, true
}

// Set stores value under key with the default TTL.
func (c *Cache) Set(key string, value types.ClassifiedProgram) {
	c.SetWithTTL(key, value, c.defaultTTL)
}

// SetWithTTL stores value under key with an explicit TTL. An existing
// entry is overwritten in place and becomes most recently used.
func (c *Cache) SetWithTTL(key string, value types.ClassifiedProgram, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if elem, ok := c.entries[key]; ok {
		ent := elem.Value.(*entry)
		ent.value = value
		ent.createdAt = now
		ent.expiresAt = now.Add(ttl)
		ent.lastAccessAt = now
		c.order.MoveToFront(elem)
		return
	}

	elem := c.order.PushFront(&entry{
		key:          key,
		value:        value,
		createdAt:    now,
		expiresAt:    now.Add(ttl),
		lastAccessAt: now,
	})
	c.entries[key] = elem

	for len(c.entries) > c.capacity {
		c.evictLocked()
	}
}

// Invalidate removes the entry for key. Returns true if an entry was removed.
func (c *Cache) Invalidate(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		return false
	}
	c.removeLocked(elem)
	return true
}

// InvalidatePrefix removes every entry whose key starts with prefix and
// returns the number of entries removed. Useful for dropping a whole rule
// version at once.
func (c *Cache) InvalidatePrefix(prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, elem := range c.entries {
		if strings.HasPrefix(key, prefix) {
			c.removeLocked(elem)
			removed++
		}
	}
	return removed
}

// CleanExpired removes all entries past their expiry and returns the count.
func (c *Cache) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for _, elem := range c.entries {
		if now.After(elem.Value.(*entry).expiresAt) {
			c.removeLocked(elem)
			removed++
		}
	}
	return removed
}

// Compact reallocates the internal index to release memory retained by
// deleted map slots. Intended for maintenance runs after heavy churn.
func (c *Cache) Compact() {
	c.mu.Lock()
	defer c.mu.Unlock()

	rebuilt := make(map[string]*list.Element, len(c.entries))
	for key, elem := range c.entries {
		rebuilt[key] = elem
	}
	c.entries = rebuilt
}

// Len returns the number of live entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// AccessCount returns the access count recorded for key, without counting
// as a read itself. Returns 0 when the key is absent.
func (c *Cache) AccessCount(key string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		return elem.Value.(*entry).accessCount
	}
	return 0
}

// Stats returns a snapshot of the cache counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := Stats{
		Size:        len(c.entries),
		Capacity:    c.capacity,
		TotalHits:   c.hits,
		TotalMisses: c.misses,
		Evictions:   c.evictions,
	}
	if lookups := c.hits + c.misses; lookups > 0 {
		stats.HitRate = float64(c.hits) / float64(lookups)
	}
	return stats
}

// evictLocked removes the least-recently-used entry. Entries sharing the
// back entry's last-access time are recency ties; among those the one
// created earliest is evicted.
func (c *Cache) evictLocked() {
	back := c.order.Back()
	if back == nil {
		return
	}

	victim := back
	tied := back.Value.(*entry).lastAccessAt
	for prev := back.Prev(); prev != nil; prev = prev.Prev() {
		p := prev.Value.(*entry)
		if !p.lastAccessAt.Equal(tied) {
			break
		}
		if p.createdAt.Before(victim.Value.(*entry).createdAt) {
			victim = prev
		}
	}

	c.removeLocked(victim)
	c.evictions++
}

func (c *Cache) removeLocked(elem *list.Element) {
	ent := elem.Value.(*entry)
	delete(c.entries, ent.key)
	c.order.Remove(elem)
}
