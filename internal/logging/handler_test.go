// Copyright (c) 2025-2026 PageCraft Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package logging

import (
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/pagecraft/pagecraft/internal/model"
	"github.com/pagecraft/pagecraft/internal/store"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := store.NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := store.Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return db
}

func countEvents(t *testing.T, db *sql.DB) int {
	t.Helper()
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM events`).Scan(&n); err != nil {
		t.Fatalf("counting events: %v", err)
	}
	return n
}

func lastEvent(t *testing.T, db *sql.DB) model.Event {
	t.Helper()
	var e model.Event
	err := db.QueryRow(`SELECT level, category, message, metadata FROM events ORDER BY id DESC LIMIT 1`).
		Scan(&e.Level, &e.Category, &e.Message, &e.Metadata)
	if err != nil {
		t.Fatalf("reading event: %v", err)
	}
	return e
}

func testLogger(db *sql.DB) *slog.Logger {
	inner := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug})
	return slog.New(NewEventLogHandler(inner, db))
}

func TestHandlerMirrorsWarnAndAbove(t *testing.T) {
	db := testDB(t)
	log := testLogger(db)

	log.Info("routine info")
	if n := countEvents(t, db); n != 0 {
		t.Fatalf("info mirrored to event log: %d events", n)
	}

	log.Warn("analytics stats fetch failed", "analytics_id", "web-1")
	if n := countEvents(t, db); n != 1 {
		t.Fatalf("warn not mirrored: %d events", n)
	}

	e := lastEvent(t, db)
	if e.Level != model.EventLevelWarning {
		t.Errorf("level = %q", e.Level)
	}
	if e.Category != model.EventCategoryAnalytics {
		t.Errorf("category = %q, want inferred analytics", e.Category)
	}

	var meta map[string]string
	if err := json.Unmarshal([]byte(e.Metadata), &meta); err != nil {
		t.Fatalf("metadata not JSON: %q", e.Metadata)
	}
	if meta["analytics_id"] != "web-1" {
		t.Errorf("metadata = %v", meta)
	}
}

func TestHandlerExplicitCategory(t *testing.T) {
	db := testDB(t)
	log := testLogger(db)

	log.Error("something broke", "category", model.EventCategoryAuth)

	e := lastEvent(t, db)
	if e.Level != model.EventLevelError {
		t.Errorf("level = %q", e.Level)
	}
	if e.Category != model.EventCategoryAuth {
		t.Errorf("category = %q", e.Category)
	}
	// The category attribute is not duplicated into metadata.
	var meta map[string]string
	if err := json.Unmarshal([]byte(e.Metadata), &meta); err != nil {
		t.Fatalf("metadata not JSON: %q", e.Metadata)
	}
	if _, ok := meta["category"]; ok {
		t.Errorf("metadata contains category: %v", meta)
	}
}

func TestHandlerCategoryInference(t *testing.T) {
	db := testDB(t)
	log := testLogger(db)

	tests := []struct {
		message string
		want    string
	}{
		{"login rejected", model.EventCategoryAuth},
		{"site created", model.EventCategorySite},
		{"domain record missing", model.EventCategorySite},
		{"cache backend unreachable", model.EventCategorySystem},
	}
	for _, tt := range tests {
		log.Warn(tt.message)
		if e := lastEvent(t, db); e.Category != tt.want {
			t.Errorf("category for %q = %q, want %q", tt.message, e.Category, tt.want)
		}
	}
}
