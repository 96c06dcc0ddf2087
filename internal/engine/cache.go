// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package engine

import (
	"strings"
	"sync"

	"github.com/golazo-dev/golazo/pkg/types"
)

// Cache memoizes pipeline results keyed by normalized question text. It
// holds at most capacity entries; inserting past capacity evicts the
// entry inserted longest ago (FIFO by insertion order, independent of
// access recency). Entries never expire by time and the cache lives only
// for the process lifetime.
type Cache struct {
	mu       sync.Mutex
	capacity int
	entries  map[string]types.Result
	order    []string
}

// NewCache returns a Cache bounded to capacity entries.
func NewCache(capacity int) *Cache {
	if capacity <= 0 {
		capacity = types.DefaultCacheSize
	}
	return &Cache{
		capacity: capacity,
		entries:  make(map[string]types.Result, capacity),
	}
}

// NormalizeKey lower-cases and trims the question. Lookup is exact match
// on the normalized form; there is no fuzzy matching at this layer.
func NormalizeKey(question string) string {
	return strings.ToLower(strings.TrimSpace(question))
}

// Get returns the cached result for question, if present.
func (c *Cache) Get(question string) (types.Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.entries[NormalizeKey(question)]
	return r, ok
}

// Put stores result under the normalized question key, evicting the
// oldest-inserted entry first when at capacity. Re-putting an existing
// key overwrites its value without changing its insertion position.
func (c *Cache) Put(question string, result types.Result) {
	key := NormalizeKey(question)

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; ok {
		c.entries[key] = result
		return
	}

	if len(c.entries) >= c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}

	c.entries[key] = result
	c.order = append(c.order, key)
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
