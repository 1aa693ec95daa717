package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemory_BasicOperations(t *testing.T) {
	c := NewMemory(MemoryOptions{DefaultTTL: time.Hour})
	defer func() { _ = c.Close() }()
	ctx := context.Background()

	if err := c.Set(ctx, "key1", []byte("value1"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	val, err := c.Get(ctx, "key1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(val) != "value1" {
		t.Errorf("expected value1, got %s", val)
	}

	if err := c.Delete(ctx, "key1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := c.Get(ctx, "key1"); !errors.Is(err, ErrMiss) {
		t.Errorf("expected ErrMiss after delete, got %v", err)
	}
}

func TestMemory_TTLWindow(t *testing.T) {
	c := NewMemory(MemoryOptions{DefaultTTL: 15 * time.Minute})
	defer func() { _ = c.Close() }()
	ctx := context.Background()

	t0 := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	now := t0
	c.SetClock(func() time.Time { return now })

	if err := c.Set(ctx, "site-1", []byte(`{"pageviews":10}`), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	// Still a hit just inside the window.
	now = t0.Add(14 * time.Minute)
	if _, err := c.Get(ctx, "site-1"); err != nil {
		t.Errorf("expected hit at t0+14m, got %v", err)
	}

	// A miss just past it.
	now = t0.Add(16 * time.Minute)
	if _, err := c.Get(ctx, "site-1"); !errors.Is(err, ErrMiss) {
		t.Errorf("expected miss at t0+16m, got %v", err)
	}
}

func TestMemory_ValueIsolation(t *testing.T) {
	c := NewMemory(MemoryOptions{DefaultTTL: time.Hour})
	defer func() { _ = c.Close() }()
	ctx := context.Background()

	in := []byte("original")
	if err := c.Set(ctx, "k", in, 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	in[0] = 'X'

	out, err := c.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(out) != "original" {
		t.Errorf("cached value shares memory with caller: %s", out)
	}
	out[0] = 'Y'

	out2, _ := c.Get(ctx, "k")
	if string(out2) != "original" {
		t.Errorf("returned value shares memory with cache: %s", out2)
	}
}

func TestMemory_Closed(t *testing.T) {
	c := NewMemory(MemoryOptions{DefaultTTL: time.Hour})
	_ = c.Close()

	if err := c.Set(context.Background(), "k", nil, 0); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
	if _, err := c.Get(context.Background(), "k"); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}

func TestMemory_Stats(t *testing.T) {
	c := NewMemory(MemoryOptions{DefaultTTL: time.Hour})
	defer func() { _ = c.Close() }()
	ctx := context.Background()

	_ = c.Set(ctx, "a", []byte("1"), 0)
	_, _ = c.Get(ctx, "a")
	_, _ = c.Get(ctx, "missing")

	s := c.Stats()
	if s.Hits != 1 || s.Misses != 1 || s.Sets != 1 || s.Items != 1 {
		t.Errorf("unexpected stats: %+v", s)
	}
}
