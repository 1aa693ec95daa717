package cache

import (
	"context"
	"encoding/json"
	"time"
)

// Typed wraps a Cache with JSON serialization for one value type.
type Typed[T any] struct {
	cache      Cache
	defaultTTL time.Duration
}

// NewTyped creates a typed view over the given backend.
func NewTyped[T any](c Cache, defaultTTL time.Duration) *Typed[T] {
	return &Typed[T]{cache: c, defaultTTL: defaultTTL}
}

// Get returns the cached value and true on a hit. Decoding failures count as
// misses.
func (c *Typed[T]) Get(ctx context.Context, key string) (T, bool) {
	var v T
	data, err := c.cache.Get(ctx, key)
	if err != nil {
		return v, false
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, false
	}
	return v, true
}

// Set stores the value with the default TTL.
func (c *Typed[T]) Set(ctx context.Context, key string, value T) error {
	return c.SetWithTTL(ctx, key, value, c.defaultTTL)
}

// SetWithTTL stores the value with a custom TTL.
func (c *Typed[T]) SetWithTTL(ctx context.Context, key string, value T, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.cache.Set(ctx, key, data, ttl)
}

// Delete removes the key.
func (c *Typed[T]) Delete(ctx context.Context, key string) error {
	return c.cache.Delete(ctx, key)
}
