// Copyright (c) 2025-2026 PageCraft Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"time"
)

// Options selects and configures a backend.
type Options struct {
	// RedisURL selects the Redis backend when non-empty.
	RedisURL string
	// Prefix is prepended to Redis keys.
	Prefix string
	// DefaultTTL applies when Set is called with a zero ttl.
	DefaultTTL time.Duration
	// CleanupInterval is the memory backend's expired-entry sweep interval.
	CleanupInterval time.Duration
}

// New creates the configured cache backend: Redis when a URL is set, the
// in-process memory cache otherwise.
func New(ctx context.Context, opts Options) (Cache, error) {
	if opts.DefaultTTL == 0 {
		opts.DefaultTTL = time.Hour
	}
	if opts.RedisURL != "" {
		return NewRedis(ctx, opts.RedisURL, opts.Prefix, opts.DefaultTTL)
	}
	interval := opts.CleanupInterval
	if interval == 0 {
		interval = time.Minute
	}
	return NewMemory(MemoryOptions{DefaultTTL: opts.DefaultTTL, CleanupInterval: interval}), nil
}
