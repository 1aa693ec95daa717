// Copyright (c) 2025-2026 PageCraft Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pagecraft/pagecraft/internal/render"
	"github.com/pagecraft/pagecraft/internal/site"
	"github.com/pagecraft/pagecraft/internal/template"
)

// Paths whose markdown gets a rendered HTML sibling on the public surface.
var markdownPaths = []string{"hero.description", "about.description"}

// PublicHandler serves published site documents to visitors.
type PublicHandler struct {
	svc *site.Service
	log *slog.Logger
}

// NewPublicHandler creates a new PublicHandler.
func NewPublicHandler(svc *site.Service, log *slog.Logger) *PublicHandler {
	return &PublicHandler{svc: svc, log: log}
}

// Site serves a published site's document by subdomain slug. Drafts, inactive
// domains and unknown slugs all answer 404.
func (h *PublicHandler) Site(w http.ResponseWriter, r *http.Request) {
	s, err := h.svc.Get(r.Context(), chi.URLParam(r, "slug"), true)
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
	doc = h.renderMarkdown(doc, s.ID)

	writeJSONSuccess(w, map[string]any{
		"family":   s.Family,
		"document": json.RawMessage(doc),
	})
}

// renderMarkdown adds a rendered HTML sibling next to each markdown-capable
// field, e.g. hero.descriptionHtml. Render failures keep the raw field only.
func (h *PublicHandler) renderMarkdown(doc template.Document, siteID int64) template.Document {
	for _, path := range markdownPaths {
		raw := doc.Get(path).String()
		if raw == "" {
			continue
		}
		html, err := render.Markdown(raw)
		if err != nil {
			h.log.Warn("rendering markdown", "error", err, "site_id", siteID, "path", path)
			continue
		}
		next, err := doc.Set(path+"Html", html)
		if err != nil {
			h.log.Warn("setting rendered field", "error", err, "site_id", siteID, "path", path)
			continue
		}
		doc = next
	}
	return doc
}
