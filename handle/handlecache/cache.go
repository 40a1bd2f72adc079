// Package handlecache provides an LRU cache of remote object payloads so
// repeated opens of the same object skip the network.
package handlecache

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// Cache is a bounded LRU of object payloads keyed by "bucket/key".
// It is safe for concurrent use.
type Cache struct {
	lru *lru.Cache[string, []byte]
}

// New creates a cache holding at most capacity payloads.
func New(capacity int) (*Cache, error) {
	c, err := lru.New[string, []byte](capacity)
	if err != nil {
		return nil, err
	}
	return &Cache{lru: c}, nil
}

// Get returns the cached payload for key, if present.
func (c *Cache) Get(key string) ([]byte, bool) {
	return c.lru.Get(key)
}

// Add stores a copy of data under key, evicting the least recently used
// entry when the cache is full.
func (c *Cache) Add(key string, data []byte) {
	copied := make([]byte, len(data))
	copy(copied, data)
	c.lru.Add(key, copied)
}

// Len returns the number of cached payloads.
func (c *Cache) Len() int {
	return c.lru.Len()
}
