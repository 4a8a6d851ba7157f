package styling

import "sync"

// CacheEntry records the slot and definition that first materialized a class name
type CacheEntry struct {
	Slot       string
	Definition Definition

	// Rule is the text resolved for the class name when it was recorded
	Rule string
}

// RuleCache maps class names to the entry that inserted their rule.
// Entries are never rewritten or evicted. A cache can be shared by every
// caller in a process or scoped to one rendering root.
type RuleCache struct {
	mu         sync.Mutex
	entries    map[string]CacheEntry
	order      []string
	maxEntries int
}

// NewRuleCache creates an unbounded cache
func NewRuleCache() *RuleCache {
	return NewBoundedRuleCache(0)
}

// NewBoundedRuleCache creates a cache that refuses new class names once it
// holds max entries. max <= 0 means unbounded.
func NewBoundedRuleCache(max int) *RuleCache {
	return &RuleCache{
		entries:    make(map[string]CacheEntry),
		maxEntries: max,
	}
}

// Get returns the entry for a class name
func (c *RuleCache) Get(className string) (CacheEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[className]
	return e, ok
}

// Has reports whether a class name is cached
func (c *RuleCache) Has(className string) bool {
	_, ok := c.Get(className)
	return ok
}

// Len returns the number of cached class names
func (c *RuleCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Keys returns cached class names in the order they were first recorded
func (c *RuleCache) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// full and put must be called with mu held

func (c *RuleCache) full() bool {
	return c.maxEntries > 0 && len(c.entries) >= c.maxEntries
}

func (c *RuleCache) put(className string, e CacheEntry) {
	if c.entries == nil {
		c.entries = make(map[string]CacheEntry)
	}
	c.entries[className] = e
	c.order = append(c.order, className)
}
