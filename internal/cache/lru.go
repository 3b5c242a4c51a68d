package cache

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/objones25/kmeans/internal/clustering"
)

const defaultLRUSize = 128

// LRUCache keeps recent results in process memory
type LRUCache struct {
	entries *lru.Cache[string, *clustering.Result]
}

// NewLRUCache creates an in-memory cache holding up to size results
func NewLRUCache(size int) (*LRUCache, error) {
	if size <= 0 {
		size = defaultLRUSize
	}

	entries, err := lru.New[string, *clustering.Result](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create LRU cache: %w", err)
	}

	return &LRUCache{entries: entries}, nil
}

// Get implements Cache
func (c *LRUCache) Get(ctx context.Context, key string) (*clustering.Result, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}
	res, ok := c.entries.Get(key)
	if !ok {
		return nil, nil
	}
	return clone(res), nil
}

// Set implements Cache
func (c *LRUCache) Set(ctx context.Context, key string, result *clustering.Result) error {
	if key == "" {
		return ErrEmptyKey
	}
	if result == nil {
		return ErrNilResult
	}
	c.entries.Add(key, clone(result))
	return nil
}

// Len returns the number of cached results
func (c *LRUCache) Len() int {
	return c.entries.Len()
}

// Close implements Cache
func (c *LRUCache) Close() error {
	c.entries.Purge()
	return nil
}
