// Copyright (c) 2025-2026 PageCraft Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package analytics

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient(ClientOptions{
		BaseURL:           srv.URL,
		Username:          "admin",
		Password:          "secret",
		RequestsPerSecond: 1000,
		HTTPClient:        srv.Client(),
	})
	return srv, c
}

func writeToken(w http.ResponseWriter, token string) {
	_ = json.NewEncoder(w).Encode(map[string]string{"token": token})
}

func TestClientStats(t *testing.T) {
	var logins atomic.Int64
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/login":
			logins.Add(1)
			var creds map[string]string
			if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
				t.Errorf("decoding credentials: %v", err)
			}
			if creds["username"] != "admin" || creds["password"] != "secret" {
				t.Errorf("unexpected credentials: %v", creds)
			}
			writeToken(w, "tok-1")
		case "/api/websites/web-1/stats":
			if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
				t.Errorf("Authorization = %q", got)
			}
			if r.URL.Query().Get("startAt") == "" || r.URL.Query().Get("endAt") == "" {
				t.Error("missing window parameters")
			}
			_, _ = w.Write([]byte(`{"pageviews":{"value":123},"visitors":{"value":45},"avgDuration":67.5}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	})

	end := time.Now()
	stats, err := c.Stats(context.Background(), "web-1", end.Add(-Window), end)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Pageviews != 123 || stats.Visitors != 45 || stats.AvgDuration != 67.5 {
		t.Errorf("Stats = %+v", stats)
	}

	// Second call reuses the cached token.
	if _, err := c.Stats(context.Background(), "web-1", end.Add(-Window), end); err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if n := logins.Load(); n != 1 {
		t.Errorf("logins = %d, want 1", n)
	}
}

func TestClientRefreshesTokenOnce(t *testing.T) {
	var logins atomic.Int64
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/login":
			n := logins.Add(1)
			writeToken(w, map[int64]string{1: "stale", 2: "fresh"}[n])
		case "/api/websites/web-1/metrics":
			if r.Header.Get("Authorization") == "Bearer stale" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			_, _ = w.Write([]byte(`[{"x":"Mobile","y":7},{"x":"Desktop","y":3}]`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	end := time.Now()
	rows, err := c.Metrics(context.Background(), "web-1", DimensionDevice, end.Add(-Window), end)
	if err != nil {
		t.Fatalf("Metrics: %v", err)
	}
	if len(rows) != 2 || rows[0] != (MetricRow{Name: "Mobile", Value: 7}) {
		t.Errorf("Metrics = %+v", rows)
	}
	if n := logins.Load(); n != 2 {
		t.Errorf("logins = %d, want 2 (initial + refresh)", n)
	}
}

func TestClientWebsiteLifecycle(t *testing.T) {
	var deleted atomic.Bool
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/api/auth/login":
			writeToken(w, "tok")
		case r.Method == http.MethodPost && r.URL.Path == "/api/websites":
			var body map[string]string
			_ = json.NewDecoder(r.Body).Decode(&body)
			if body["name"] != "Acme" || body["domain"] != "acme.pagecraft.site" {
				t.Errorf("create body = %v", body)
			}
			_, _ = w.Write([]byte(`{"id":"web-new"}`))
		case r.Method == http.MethodDelete && r.URL.Path == "/api/websites/web-new":
			deleted.Store(true)
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	id, err := c.CreateWebsite(context.Background(), "Acme", "acme.pagecraft.site")
	if err != nil {
		t.Fatalf("CreateWebsite: %v", err)
	}
	if id != "web-new" {
		t.Errorf("id = %q", id)
	}

	if err := c.DeleteWebsite(context.Background(), id); err != nil {
		t.Fatalf("DeleteWebsite: %v", err)
	}
	if !deleted.Load() {
		t.Error("delete never reached the server")
	}
}

func TestClientSurfacesServerErrors(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/auth/login" {
			writeToken(w, "tok")
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	})

	end := time.Now()
	if _, err := c.Stats(context.Background(), "web-1", end.Add(-Window), end); err == nil {
		t.Fatal("expected error on 500")
	}
}
