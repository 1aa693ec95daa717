// Copyright (c) 2025-2026 PageCraft Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestDo_SucceedsWithoutDelay(t *testing.T) {
	cfg := Config{MaxRetries: 2, InitialDelay: time.Second}

	start := time.Now()
	v, err := Do(context.Background(), cfg, func(context.Context) (string, error) {
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	if v != "ok" {
		t.Errorf("expected ok, got %q", v)
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("no delay should precede the first attempt, took %v", elapsed)
	}
}

func TestDo_AttemptCountAndBackoffBounds(t *testing.T) {
	cfg := Config{MaxRetries: 2, InitialDelay: 300 * time.Millisecond}
	boom := errors.New("boom")

	attempts := 0
	start := time.Now()
	_, err := Do(context.Background(), cfg, func(context.Context) (int, error) {
		attempts++
		return 0, boom
	})
	elapsed := time.Since(start)

	if !errors.Is(err, boom) {
		t.Fatalf("expected last error to be rethrown, got %v", err)
	}
	if attempts != 3 {
		t.Errorf("expected 3 total attempts, got %d", attempts)
	}
	// Delays are 300ms and 600ms plus at most 30% jitter each.
	if elapsed < 900*time.Millisecond {
		t.Errorf("total backoff below lower bound: %v", elapsed)
	}
	if elapsed > 1170*time.Millisecond+200*time.Millisecond {
		t.Errorf("total backoff above jitter ceiling: %v", elapsed)
	}
}

func TestDo_RecoversAfterTransientFailure(t *testing.T) {
	cfg := Config{MaxRetries: 3, InitialDelay: time.Millisecond}

	attempts := 0
	v, err := Do(context.Background(), cfg, func(context.Context) (int, error) {
		attempts++
		if attempts < 3 {
			return 0, errors.New("transient")
		}
		return 42, nil
	})
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	if v != 42 || attempts != 3 {
		t.Errorf("expected 42 after 3 attempts, got %d after %d", v, attempts)
	}
}

func TestDo_ContextCancelStopsRetrying(t *testing.T) {
	cfg := Config{MaxRetries: 5, InitialDelay: time.Hour}

	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	done := make(chan error, 1)
	go func() {
		_, err := Do(ctx, cfg, func(context.Context) (int, error) {
			attempts++
			return 0, errors.New("always")
		})
		done <- err
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err == nil {
			t.Error("expected an error after cancellation")
		}
		if attempts != 1 {
			t.Errorf("expected no further attempts after cancel, got %d", attempts)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Do did not return after context cancellation")
	}
}

func TestDoOr_FallsBack(t *testing.T) {
	cfg := Config{MaxRetries: 1, InitialDelay: time.Millisecond}

	v := DoOr(context.Background(), cfg, nil, "test op", []string{"fallback"}, func(context.Context) ([]string, error) {
		return nil, errors.New("down")
	})
	if len(v) != 1 || v[0] != "fallback" {
		t.Errorf("expected fallback value, got %v", v)
	}

	v = DoOr(context.Background(), cfg, nil, "test op", nil, func(context.Context) ([]string, error) {
		return []string{"real"}, nil
	})
	if len(v) != 1 || v[0] != "real" {
		t.Errorf("expected real value, got %v", v)
	}
}
