// Copyright (c) 2025-2026 PageCraft Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alexedwards/scs/v2"
)

func TestRequireAuthRejectsAnonymous(t *testing.T) {
	sm := scs.New()

	var called bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	req := httptest.NewRequest(http.MethodGet, "/api/sites", nil)
	rec := httptest.NewRecorder()
	sm.LoadAndSave(RequireAuth(sm)(next)).ServeHTTP(rec, req)

	if called {
		t.Error("handler ran without a session")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestRequireAuthPassesOwnerID(t *testing.T) {
	sm := scs.New()

	var gotOwner int64
	app := sm.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sm.Put(r.Context(), SessionKeyOwnerID, int64(42))
		RequireAuth(sm)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotOwner = OwnerID(r.Context())
		})).ServeHTTP(w, r)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/sites", nil)
	app.ServeHTTP(httptest.NewRecorder(), req)

	if gotOwner != 42 {
		t.Errorf("OwnerID = %d, want 42", gotOwner)
	}
}

func TestSecurityHeaders(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	rec := httptest.NewRecorder()
	SecurityHeaders(false)(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("missing nosniff header")
	}
	if rec.Header().Get("Strict-Transport-Security") == "" {
		t.Error("missing HSTS header in production mode")
	}

	rec = httptest.NewRecorder()
	SecurityHeaders(true)(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Header().Get("Strict-Transport-Security") != "" {
		t.Error("HSTS set in dev mode")
	}
}
