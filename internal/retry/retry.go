// Copyright (c) 2025-2026 PageCraft Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package retry wraps unreliable external calls in exponential backoff with
// jitter. It is the single degrade policy for every outbound call: Do rethrows
// the last error after exhaustion, DoOr degrades to an explicit fallback.
package retry

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"
)

// Config bounds one retried call.
type Config struct {
	// MaxRetries is the number of additional attempts after the first.
	MaxRetries int
	// InitialDelay is the delay before the first retry; it doubles on every
	// subsequent attempt.
	InitialDelay time.Duration
	// MaxJitter is the upper bound of the uniform jitter added to each delay,
	// as a fraction of the current delay. Zero means DefaultMaxJitter.
	MaxJitter float64
}

// DefaultMaxJitter adds up to 30% of the current delay.
const DefaultMaxJitter = 0.3

// DefaultConfig matches the analytics call sites: two retries starting at
// 300ms, so a failing call costs at most ~1.2s of backoff.
func DefaultConfig() Config {
	return Config{MaxRetries: 2, InitialDelay: 300 * time.Millisecond}
}

// Do runs op, retrying on any error. The delay before retry n (0-based) is
// InitialDelay*2^n plus uniform jitter in [0, MaxJitter*delay); no delay
// precedes the first attempt. After MaxRetries failed retries the last error
// is returned. Errors are never swallowed here - callers decide whether an
// exhausted call is fatal or should degrade.
func Do[T any](ctx context.Context, cfg Config, op func(ctx context.Context) (T, error)) (T, error) {
	jitter := cfg.MaxJitter
	if jitter <= 0 {
		jitter = DefaultMaxJitter
	}

	var zero T
	var lastErr error
	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := cfg.InitialDelay << (attempt - 1)
			delay += time.Duration(rand.Float64() * jitter * float64(delay))
			if err := sleep(ctx, delay); err != nil {
				return zero, err
			}
		}

		v, err := op(ctx)
		if err == nil {
			return v, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return zero, lastErr
		}
	}
	return zero, lastErr
}

// DoOr runs op under the same policy as Do but degrades to fallback when all
// attempts fail, logging the exhausted error at warn level.
func DoOr[T any](ctx context.Context, cfg Config, log *slog.Logger, what string, fallback T, op func(ctx context.Context) (T, error)) T {
	v, err := Do(ctx, cfg, op)
	if err != nil {
		if log != nil {
			log.Warn("retries exhausted, using fallback", "op", what, "error", err)
		}
		return fallback
	}
	return v
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
