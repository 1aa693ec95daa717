// Copyright (c) 2025-2026 PageCraft Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/pagecraft/pagecraft/internal/analytics"
	"github.com/pagecraft/pagecraft/internal/middleware"
)

// DashboardHandler serves the owner's analytics report.
type DashboardHandler struct {
	reports *analytics.ReportBuilder
	log     *slog.Logger
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(reports *analytics.ReportBuilder, log *slog.Logger) *DashboardHandler {
	return &DashboardHandler{reports: reports, log: log}
}

// Get builds the dashboard report. An optional ?site={id} focuses analytics
// on one site; the report itself never fails, partial data comes back as
// zeroes.
func (h *DashboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	var focusSiteID int64
	if raw := r.URL.Query().Get("site"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			writeJSONError(w, http.StatusBadRequest, "invalid site id")
			return
		}
		focusSiteID = id
	}

	report := h.reports.Build(r.Context(), middleware.OwnerID(r.Context()), focusSiteID)
	writeJSONSuccess(w, map[string]any{"report": report})
}
