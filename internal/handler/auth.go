// Copyright (c) 2025-2026 PageCraft Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/alexedwards/scs/v2"

	"github.com/pagecraft/pagecraft/internal/auth"
	"github.com/pagecraft/pagecraft/internal/middleware"
	"github.com/pagecraft/pagecraft/internal/store"
)

// AuthHandler handles account registration and session login.
type AuthHandler struct {
	queries  *store.Queries
	sessions *scs.SessionManager
	log      *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(db *sql.DB, sm *scs.SessionManager, log *slog.Logger) *AuthHandler {
	return &AuthHandler{
		queries:  store.New(db),
		sessions: sm,
		log:      log,
	}
}

type registerRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// Register creates an owner account and signs it in.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		writeJSONError(w, http.StatusBadRequest, "valid email is required")
		return
	}
	if len(req.Password) < 8 {
		writeJSONError(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.log.Error("hashing password", "error", err, "category", "auth")
		writeJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}

	id, err := h.queries.CreateUser(r.Context(), req.Email, req.Name, hash)
	if err != nil {
		// The email column is unique; anything else is unexpected.
		if strings.Contains(err.Error(), "UNIQUE") {
			writeJSONError(w, http.StatusConflict, "email already registered")
			return
		}
		h.log.Error("creating user", "error", err, "category", "auth")
		writeJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if err := h.sessions.RenewToken(r.Context()); err != nil {
		h.log.Error("renewing session token", "error", err, "category", "auth")
		writeJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}
	h.sessions.Put(r.Context(), middleware.SessionKeyOwnerID, id)

	h.log.Info("owner registered", "user_id", id, "category", "auth")
	writeJSONSuccess(w, map[string]any{"id": id, "email": req.Email})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login verifies credentials and establishes a session. Unknown email and
// wrong password answer identically.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.queries.GetUserByEmail(r.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			h.log.Error("loading user", "error", err, "category", "auth")
		}
		writeJSONError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	ok, err := auth.CheckPassword(req.Password, user.PasswordHash)
	if err != nil || !ok {
		h.log.Warn("login rejected", "user_id", user.ID, "category", "auth")
		writeJSONError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	// Rotate the session token on privilege change.
	if err := h.sessions.RenewToken(r.Context()); err != nil {
		h.log.Error("renewing session token", "error", err, "category", "auth")
		writeJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}
	h.sessions.Put(r.Context(), middleware.SessionKeyOwnerID, user.ID)

	h.log.Info("owner logged in", "user_id", user.ID, "category", "auth")
	writeJSONSuccess(w, map[string]any{"id": user.ID, "email": user.Email, "name": user.Name})
}

// Logout destroys the current session.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Destroy(r.Context()); err != nil {
		h.log.Error("destroying session", "error", err, "category", "auth")
		writeJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSONSuccess(w, nil)
}
