// Copyright (c) 2025-2026 PageCraft Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler exposes the JSON API over the site, editor and analytics
// services.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pagecraft/pagecraft/internal/site"
)

// maxBodyLen caps request bodies; template documents stay well under this.
const maxBodyLen = 1 << 20

// writeJSON writes a JSON response with the given status.
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}

// writeJSONError writes a JSON error response.
func writeJSONError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]any{
		"success": false,
		"error":   message,
	})
}

// writeJSONSuccess writes a JSON success response.
func writeJSONSuccess(w http.ResponseWriter, data map[string]any) {
	if data == nil {
		data = make(map[string]any)
	}
	data["success"] = true
	writeJSON(w, http.StatusOK, data)
}

// decodeJSON decodes a request body into v, rejecting oversized bodies and
// unknown fields.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyLen))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// writeSiteError maps site service errors to HTTP statuses.
func writeSiteError(w http.ResponseWriter, err error) {
	var ve *site.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"error":   ve.Error(),
			"fields":  ve.Fields,
		})
	case errors.Is(err, site.ErrDuplicateSlug):
		writeJSONError(w, http.StatusConflict, "slug already taken")
	case errors.Is(err, site.ErrNotFound):
		writeJSONError(w, http.StatusNotFound, "site not found")
	default:
		writeJSONError(w, http.StatusInternalServerError, "internal error")
	}
}
