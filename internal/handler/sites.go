// Copyright (c) 2025-2026 PageCraft Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pagecraft/pagecraft/internal/middleware"
	"github.com/pagecraft/pagecraft/internal/site"
	"github.com/pagecraft/pagecraft/internal/template"
)

// SiteHandler handles site CRUD and publication.
type SiteHandler struct {
	svc        *site.Service
	baseDomain string
	log        *slog.Logger
}

// NewSiteHandler creates a new SiteHandler.
func NewSiteHandler(svc *site.Service, baseDomain string, log *slog.Logger) *SiteHandler {
	return &SiteHandler{svc: svc, baseDomain: baseDomain, log: log}
}

type createSiteRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Slug        string `json:"slug"`
	Family      string `json:"family"`
}

// Create provisions a new site for the signed-in owner.
func (h *SiteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createSiteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s, domain, err := h.svc.Create(r.Context(), middleware.OwnerID(r.Context()), site.CreateParams{
		Name:        req.Name,
		Description: req.Description,
		Slug:        req.Slug,
		Family:      req.Family,
	})
	if err != nil {
		writeSiteError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"site":    s,
		"slug":    domain.Subdomain,
		"url":     fmt.Sprintf("https://%s.%s", domain.Subdomain, h.baseDomain),
	})
}

// List returns the owner's sites, newest first.
func (h *SiteHandler) List(w http.ResponseWriter, r *http.Request) {
	sites, err := h.svc.ListByOwner(r.Context(), middleware.OwnerID(r.Context()))
	if err != nil {
		writeSiteError(w, err)
		return
	}
	writeJSONSuccess(w, map[string]any{"sites": sites})
}

// Get returns one owned site together with its template document.
func (h *SiteHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := siteID(w, r)
	if !ok {
		return
	}

	s, err := h.svc.GetForOwner(r.Context(), id, middleware.OwnerID(r.Context()))
	if err != nil {
		writeSiteError(w, err)
		return
	}

	doc, err := template.WithDefaults(template.FromColumns(s), template.Family(s.Family))
	if err != nil {
		h.log.Error("assembling document", "error", err, "site_id", s.ID)
		writeJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSONSuccess(w, map[string]any{"site": s, "document": json.RawMessage(doc)})
}

// Update applies a partial template document to an owned site.
func (h *SiteHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := siteID(w, r)
	if !ok {
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyLen))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "reading request body")
		return
	}
	if !json.Valid(body) {
		writeJSONError(w, http.StatusBadRequest, "body must be a JSON document")
		return
	}

	s, err := h.svc.Update(r.Context(), id, middleware.OwnerID(r.Context()), template.Document(body))
	if err != nil {
		writeSiteError(w, err)
		return
	}
	writeJSONSuccess(w, map[string]any{"site": s})
}

// Publish makes an owned site publicly visible.
func (h *SiteHandler) Publish(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, h.svc.Publish)
}

// Unpublish returns an owned site to draft.
func (h *SiteHandler) Unpublish(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, h.svc.Unpublish)
}

func (h *SiteHandler) setStatus(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, id, ownerID int64) error) {
	id, ok := siteID(w, r)
	if !ok {
		return
	}
	if err := op(r.Context(), id, middleware.OwnerID(r.Context())); err != nil {
		writeSiteError(w, err)
		return
	}
	writeJSONSuccess(w, nil)
}

// Delete removes an owned site and everything hanging off it.
func (h *SiteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := siteID(w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), id, middleware.OwnerID(r.Context())); err != nil {
		writeSiteError(w, err)
		return
	}
	writeJSONSuccess(w, nil)
}

// siteID parses the {id} route parameter, answering 400 itself on garbage.
func siteID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeJSONError(w, http.StatusBadRequest, "invalid site id")
		return 0, false
	}
	return id, true
}
