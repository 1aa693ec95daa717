// Copyright (c) 2025-2026 PageCraft Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for authentication and
// request hardening.
package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/alexedwards/scs/v2"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// ContextKeyOwnerID carries the authenticated owner's id.
const ContextKeyOwnerID ContextKey = "owner_id"

// SessionKeyOwnerID is the session key holding the signed-in owner's id.
const SessionKeyOwnerID = "owner_id"

// RequireAuth rejects requests without a signed-in owner. The owner id is
// copied from the session into the request context for handlers.
func RequireAuth(sm *scs.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ownerID := sm.GetInt64(r.Context(), SessionKeyOwnerID)
			if ownerID == 0 {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": "authentication required"})
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyOwnerID, ownerID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OwnerID returns the authenticated owner's id from the request context, or
// 0 when the request did not pass through RequireAuth.
func OwnerID(ctx context.Context) int64 {
	id, _ := ctx.Value(ContextKeyOwnerID).(int64)
	return id
}
