package cache

import (
	"context"
	"testing"
	"time"
)

type sampleResult struct {
	WebsiteID string `json:"website_id"`
	Pageviews int    `json:"pageviews"`
}

func TestTyped_RoundTrip(t *testing.T) {
	mem := NewMemory(MemoryOptions{DefaultTTL: time.Hour})
	defer func() { _ = mem.Close() }()
	c := NewTyped[sampleResult](mem, time.Hour)
	ctx := context.Background()

	if _, ok := c.Get(ctx, "w1"); ok {
		t.Error("expected miss on empty cache")
	}

	if err := c.Set(ctx, "w1", sampleResult{WebsiteID: "w1", Pageviews: 42}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	v, ok := c.Get(ctx, "w1")
	if !ok {
		t.Fatal("expected hit")
	}
	if v.WebsiteID != "w1" || v.Pageviews != 42 {
		t.Errorf("unexpected value: %+v", v)
	}
}

func TestTyped_CorruptEntryIsAMiss(t *testing.T) {
	mem := NewMemory(MemoryOptions{DefaultTTL: time.Hour})
	defer func() { _ = mem.Close() }()
	ctx := context.Background()

	_ = mem.Set(ctx, "w1", []byte("{not json"), 0)

	c := NewTyped[sampleResult](mem, time.Hour)
	if _, ok := c.Get(ctx, "w1"); ok {
		t.Error("corrupt entry should read as a miss")
	}
}
