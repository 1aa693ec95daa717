// Copyright (c) 2025-2026 PageCraft Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pagecraft/pagecraft/internal/analytics"
	"github.com/pagecraft/pagecraft/internal/cache"
	"github.com/pagecraft/pagecraft/internal/middleware"
	"github.com/pagecraft/pagecraft/internal/session"
	"github.com/pagecraft/pagecraft/internal/site"
	"github.com/pagecraft/pagecraft/internal/store"
)

// fakeProvider answers instantly so handler tests never wait out retry
// backoff.
type fakeProvider struct {
	nextID atomic.Int64
}

func (p *fakeProvider) Stats(context.Context, string, time.Time, time.Time) (analytics.Stats, error) {
	return analytics.Stats{}, nil
}

func (p *fakeProvider) Metrics(context.Context, string, string, time.Time, time.Time) ([]analytics.MetricRow, error) {
	return nil, nil
}

func (p *fakeProvider) CreateWebsite(context.Context, string, string) (string, error) {
	return fmt.Sprintf("web-%d", p.nextID.Add(1)), nil
}

func (p *fakeProvider) DeleteWebsite(context.Context, string) error { return nil }

// newTestServer wires the full router the way cmd/pagecraft does and returns
// a client with a cookie jar so sessions stick across requests.
func newTestServer(t *testing.T) (*httptest.Server, *http.Client) {
	t.Helper()

	db, err := store.NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := store.Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sm := session.New(db, true)
	provider := &fakeProvider{}

	queries := store.New(db)
	aggregator := analytics.NewAggregator(provider, cache.NewMemory(cache.MemoryOptions{}), logger)
	reports := analytics.NewReportBuilder(queries, aggregator, logger)
	svc := site.NewService(db, provider, "pagecraft.site", logger)

	authHandler := NewAuthHandler(db, sm, logger)
	siteHandler := NewSiteHandler(svc, "pagecraft.site", logger)
	dashboardHandler := NewDashboardHandler(reports, logger)
	editorHandler := NewEditorHandler(svc, sm, logger)
	publicHandler := NewPublicHandler(svc, logger)

	r := chi.NewRouter()
	r.Use(sm.LoadAndSave)
	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/logout", authHandler.Logout)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(sm))

			r.Get("/sites", siteHandler.List)
			r.Post("/sites", siteHandler.Create)
			r.Get("/sites/{id}", siteHandler.Get)
			r.Put("/sites/{id}", siteHandler.Update)
			r.Delete("/sites/{id}", siteHandler.Delete)
			r.Post("/sites/{id}/publish", siteHandler.Publish)
			r.Post("/sites/{id}/unpublish", siteHandler.Unpublish)

			r.Get("/dashboard", dashboardHandler.Get)

			r.Get("/editor", editorHandler.State)
			r.Post("/editor/actions", editorHandler.Dispatch)
			r.Post("/editor/save", editorHandler.Save)
		})
	})
	r.Get("/s/{slug}", publicHandler.Site)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return srv, newClient(t)
}

// newClient returns an http client with its own cookie jar, i.e. its own
// session.
func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar: %v", err)
	}
	return &http.Client{Jar: jar}
}

func doJSON(t *testing.T, client *http.Client, method, url string, body any) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshaling request: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	var decoded map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil && err != io.EOF {
		t.Fatalf("decoding response: %v", err)
	}
	return resp.StatusCode, decoded
}

func register(t *testing.T, client *http.Client, baseURL, email string) {
	t.Helper()
	code, _ := doJSON(t, client, http.MethodPost, baseURL+"/api/auth/register", map[string]any{
		"email":    email,
		"name":     "Test Owner",
		"password": "correct horse battery",
	})
	if code != http.StatusOK {
		t.Fatalf("register: status %d", code)
	}
}

func createSite(t *testing.T, client *http.Client, baseURL, name string) (int64, string) {
	t.Helper()
	code, body := doJSON(t, client, http.MethodPost, baseURL+"/api/sites", map[string]any{
		"name": name,
	})
	if code != http.StatusCreated {
		t.Fatalf("create site: status %d body %v", code, body)
	}
	s := body["site"].(map[string]any)
	return int64(s["id"].(float64)), body["slug"].(string)
}
