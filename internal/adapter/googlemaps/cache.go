package googlemaps

import (
	"context"
	"sync"

	"github.com/pinemarten/campus-alert-service/internal/domain"
)

// CachedGeocoder wraps a Geocoder with an in-memory LRU cache keyed by
// address. Campus alerts cluster on a handful of intersections, so the hit
// rate is high.
type CachedGeocoder struct {
	inner domain.Geocoder
	cache *lruCache
}

// NewCachedGeocoder creates a cache decorator around a geocoder.
func NewCachedGeocoder(inner domain.Geocoder, maxEntries int) *CachedGeocoder {
	return &CachedGeocoder{
		inner: inner,
		cache: newLRUCache(maxEntries),
	}
}

func (c *CachedGeocoder) Geocode(ctx context.Context, address string) ([]domain.GeocodeCandidate, error) {
	if candidates, ok := c.cache.get(address); ok {
		return candidates, nil
	}
	candidates, err := c.inner.Geocode(ctx, address)
	if err != nil {
		return candidates, err
	}
	// Only cache non-empty results so transient "not found" responses can be retried.
	if len(candidates) > 0 {
		c.cache.put(address, candidates)
	}
	return candidates, nil
}

// lruCache is a simple thread-safe LRU cache for geocode candidate lists.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key   string
	value []domain.GeocodeCandidate
	prev  *entry
	next  *entry
}

func newLRUCache(maxEntries int) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
	}
}

func (c *lruCache) get(key string) ([]domain.GeocodeCandidate, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) put(key string, value []domain.GeocodeCandidate) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *lruCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
