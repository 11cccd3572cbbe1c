// Package memory provides an in-process driven.EmbeddingCache.
package memory

import (
	"container/list"
	"context"
	"sync"

	"github.com/custodia-labs/ragent/internal/core/ports/driven"
)

// Ensure Cache implements the interface.
var _ driven.EmbeddingCache = (*Cache)(nil)

// DefaultCapacity bounds the number of cached vectors.
const DefaultCapacity = 10000

// Cache is a least-recently-used embedding cache.
type Cache struct {
	mu       sync.Mutex
	capacity int
	order    *list.List
	entries  map[string]*list.Element
}

type entry struct {
	key    string
	vector []float32
}

// NewCache creates a cache holding at most capacity vectors.
// A non-positive capacity uses DefaultCapacity.
func NewCache(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Cache{
		capacity: capacity,
		order:    list.New(),
		entries:  make(map[string]*list.Element),
	}
}

// Get returns a copy of the cached vector.
func (c *Cache) Get(_ context.Context, key string) ([]float32, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	c.order.MoveToFront(el)
	return append([]float32(nil), el.Value.(*entry).vector...), true, nil
}

// Set stores a copy of vector, evicting the least recently used entry when full.
func (c *Cache) Set(_ context.Context, key string, vector []float32) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	stored := append([]float32(nil), vector...)
	if el, ok := c.entries[key]; ok {
		el.Value.(*entry).vector = stored
		c.order.MoveToFront(el)
		return nil
	}

	c.entries[key] = c.order.PushFront(&entry{key: key, vector: stored})
	for c.order.Len() > c.capacity {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*entry).key)
	}
	return nil
}

// Len returns the number of cached vectors.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Close is a no-op.
func (c *Cache) Close() error {
	return nil
}
