// Copyright (c) 2025-2026 PageCraft Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/alexedwards/scs/v2"

	"github.com/pagecraft/pagecraft/internal/editor"
	"github.com/pagecraft/pagecraft/internal/middleware"
	"github.com/pagecraft/pagecraft/internal/site"
	"github.com/pagecraft/pagecraft/internal/template"
)

// sessionKeyEditorSite tracks which site the session's editor slices belong
// to. Switching sites drops the stale slices.
const sessionKeyEditorSite = "editor_site"

// EditorHandler serves the template editor's state and dispatches actions
// against it.
type EditorHandler struct {
	svc      *site.Service
	sessions *scs.SessionManager
	log      *slog.Logger
}

// NewEditorHandler creates a new EditorHandler.
func NewEditorHandler(svc *site.Service, sm *scs.SessionManager, log *slog.Logger) *EditorHandler {
	return &EditorHandler{svc: svc, sessions: sm, log: log}
}

// State returns the editor state for ?site={id}: the stored document with
// defaults merged, overlaid with any unsaved slices from the session.
func (h *EditorHandler) State(w http.ResponseWriter, r *http.Request) {
	state, ok := h.loadState(w, r)
	if !ok {
		return
	}
	writeJSONSuccess(w, map[string]any{"state": state})
}

type actionRequest struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Dispatch applies one editor action and returns the new state. A failed
// reduction keeps the current state and reports the error; a failed session
// write is logged but never fails the dispatch.
func (h *EditorHandler) Dispatch(w http.ResponseWriter, r *http.Request) {
	state, ok := h.loadState(w, r)
	if !ok {
		return
	}

	var req actionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	action, err := decodeAction(req)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	ed := editor.New(state, editor.NewSessionPersister(h.sessions), h.log)
	next, err := ed.Dispatch(r.Context(), action)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"success": false,
			"error":   err.Error(),
			"state":   next,
		})
		return
	}
	writeJSONSuccess(w, map[string]any{"state": next})
}

// Save persists the session's edited document to the site's columns and
// clears the unsaved slices.
func (h *EditorHandler) Save(w http.ResponseWriter, r *http.Request) {
	id, ok := editorSiteID(w, r)
	if !ok {
		return
	}

	state, ok := h.loadState(w, r)
	if !ok {
		return
	}

	s, err := h.svc.Update(r.Context(), id, middleware.OwnerID(r.Context()), state.Template)
	if err != nil {
		writeSiteError(w, err)
		return
	}

	h.clearSlices(r)
	writeJSONSuccess(w, map[string]any{"site": s})
}

// loadState resolves the target site, resets stale session slices when the
// session was editing a different site, and hydrates the base state.
func (h *EditorHandler) loadState(w http.ResponseWriter, r *http.Request) (template.State, bool) {
	id, ok := editorSiteID(w, r)
	if !ok {
		return template.State{}, false
	}

	s, err := h.svc.GetForOwner(r.Context(), id, middleware.OwnerID(r.Context()))
	if err != nil {
		writeSiteError(w, err)
		return template.State{}, false
	}

	if h.sessions.GetInt64(r.Context(), sessionKeyEditorSite) != id {
		h.clearSlices(r)
		h.sessions.Put(r.Context(), sessionKeyEditorSite, id)
	}

	doc, err := template.WithDefaults(template.FromColumns(s), template.Family(s.Family))
	if err != nil {
		h.log.Error("assembling document", "error", err, "site_id", s.ID)
		writeJSONError(w, http.StatusInternalServerError, "internal error")
		return template.State{}, false
	}

	base := template.State{Template: doc}
	return editor.LoadState(r.Context(), h.sessions, base), true
}

func (h *EditorHandler) clearSlices(r *http.Request) {
	for _, slice := range []string{
		template.SliceTemplate, template.SliceSEO, template.SliceDomain, template.SliceLanguage,
	} {
		h.sessions.Remove(r.Context(), slice)
	}
}

// decodeAction maps a typed request onto a reducer action.
func decodeAction(req actionRequest) (template.Action, error) {
	var (
		action template.Action
		err    error
	)
	switch req.Type {
	case "update_field":
		var a template.UpdateField
		err = json.Unmarshal(req.Payload, &a)
		action = a
	case "update_theme":
		var a template.UpdateTheme
		err = json.Unmarshal(req.Payload, &a)
		action = a
	case "update_seo":
		var a template.UpdateSEO
		err = json.Unmarshal(req.Payload, &a)
		action = a
	case "update_domain":
		var a template.UpdateDomain
		err = json.Unmarshal(req.Payload, &a)
		action = a
	case "update_language":
		var a template.UpdateLanguage
		err = json.Unmarshal(req.Payload, &a)
		action = a
	case "load_data":
		var a template.LoadData
		err = json.Unmarshal(req.Payload, &a)
		action = a
	default:
		return nil, errUnknownAction(req.Type)
	}
	if err != nil {
		return nil, err
	}
	return action, nil
}

type errUnknownAction string

func (e errUnknownAction) Error() string {
	return "unknown action type " + strconv.Quote(string(e))
}

// editorSiteID parses the ?site= query parameter.
func editorSiteID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.URL.Query().Get("site"), 10, 64)
	if err != nil || id <= 0 {
		writeJSONError(w, http.StatusBadRequest, "site query parameter is required")
		return 0, false
	}
	return id, true
}
