package loader

import (
	"fmt"
	"sync"

	"github.com/richard-senior/refstats/internal/logger"
	"github.com/richard-senior/refstats/pkg/refstats"
)

// Cache is a read-through cache of loaded tables keyed by source identity.
// Entries are only dropped by Reload or Invalidate. Tables are immutable so
// the same *Table may be handed to any number of concurrent callers.
type Cache struct {
	mu      sync.Mutex
	entries map[Identity]*refstats.Table
	hits    int
	misses  int
}

func NewCache() *Cache {
	return &Cache{entries: make(map[Identity]*refstats.Table)}
}

// Get returns the table for src, loading it on a miss.
// A source whose identity changed (e.g. a newer file) is a miss.
func (c *Cache) Get(src Source) (*refstats.Table, error) {
	id, err := src.Identity()
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if t, ok := c.entries[id]; ok {
		c.hits++
		return t, nil
	}
	c.misses++
	logger.Info("Loading source", id.String())
	t, err := src.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", id.Location, err)
	}
	c.entries[id] = t
	return t, nil
}

// Reload drops every cached version of src's location and loads it again
func (c *Cache) Reload(src Source) (*refstats.Table, error) {
	if err := c.Invalidate(src); err != nil {
		return nil, err
	}
	return c.Get(src)
}

// Invalidate drops every cached version of src's location
func (c *Cache) Invalidate(src Source) error {
	id, err := src.Identity()
	if err != nil {
		// a deleted file still has stale entries to drop
		id = Identity{Location: locationOf(src)}
		if id.Location == "" {
			return err
		}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if k.Location == id.Location {
			delete(c.entries, k)
		}
	}
	return nil
}

// Len returns the number of cached tables
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns hit and miss counts
func (c *Cache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

func locationOf(src Source) string {
	switch s := src.(type) {
	case *FileSource:
		return s.Path
	case *StoreSource:
		return s.Path
	case *URLSource:
		return s.URL
	}
	return ""
}
