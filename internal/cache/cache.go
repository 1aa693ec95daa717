// Package cache provides the caching infrastructure for PageCraft: an
// in-memory TTL cache for single-process deployments and a Redis backend for
// multi-instance ones, plus a generic JSON-typed wrapper.
package cache

import (
	"context"
	"time"
)

// Cache is the byte-oriented store shared by both backends. Implementations
// must be safe for concurrent use.
type Cache interface {
	// Get returns the value for key, or ErrMiss when absent or expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key. A zero ttl uses the backend default.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Error is a sentinel cache error.
type Error string

func (e Error) Error() string { return string(e) }

const (
	// ErrMiss indicates the key was not found or has expired.
	ErrMiss Error = "cache miss"

	// ErrClosed indicates the cache has been closed.
	ErrClosed Error = "cache closed"
)

// Stats reports hit/miss counters for a backend.
type Stats struct {
	Hits   int64
	Misses int64
	Sets   int64
	Items  int
}
