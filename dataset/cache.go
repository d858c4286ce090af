package dataset

import "sync"

// Cache is the explicit one-slot dataset cache used to avoid re-crawling.
// It is owned by the caller and invalidated explicitly, never implicitly.
type Cache struct {
	mu sync.RWMutex
	ds *Dataset
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{}
}

// Get returns the cached dataset, if any.
func (c *Cache) Get() (*Dataset, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ds, c.ds != nil
}

// Put replaces the cached dataset.
func (c *Cache) Put(ds *Dataset) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ds = ds
}

// Invalidate clears the cache so the next read rebuilds the dataset.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ds = nil
}
