package table

import "sync"

// Cache is a read-through cache of loaded tables keyed by file path.
//
// It replaces process-wide table globals: a Cache is created by the caller and
// passed into the pipeline explicitly. Only successfully loaded tables are
// cached, so a table that was missing is looked up again on the next Load and
// is picked up as soon as its generator has run.
//
// Cache is safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	entries map[string]Loaded
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]Loaded)}
}

// Load returns the cached table for path, reading it on a miss.
func (c *Cache) Load(path string, schema Schema) Loaded {
	c.mu.Lock()
	defer c.mu.Unlock()

	if l, ok := c.entries[path]; ok {
		return l
	}
	l := LoadOrDefault(path, schema)
	if !l.Defaulted {
		c.entries[path] = l
	}
	return l
}

// Reload drops any cached entry for path and reads it again.
func (c *Cache) Reload(path string, schema Schema) Loaded {
	c.Invalidate(path)
	return c.Load(path, schema)
}

// Put stores a table that the caller has just produced (and usually written
// to path), so subsequent reads observe it without touching disk.
func (c *Cache) Put(path string, t *Table) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[path] = Loaded{Path: path, Table: t}
}

// Invalidate drops the cached entry for path.
func (c *Cache) Invalidate(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, path)
}

// InvalidateAll drops every cached entry.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]Loaded)
}

// Len returns the number of cached tables.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
