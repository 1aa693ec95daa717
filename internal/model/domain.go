// Copyright (c) 2025-2026 PageCraft Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"time"
)

// Domain links a site to the address it is served on. A site counts as
// published only while an active domain record exists for it.
type Domain struct {
	ID              int64          `json:"id"`
	SiteID          int64          `json:"site_id"`
	Subdomain       string         `json:"subdomain"`
	CustomDomain    sql.NullString `json:"custom_domain,omitempty"`
	AnalyticsSiteID sql.NullString `json:"analytics_site_id,omitempty"`
	IsActive        bool           `json:"is_active"`
	CreatedAt       time.Time      `json:"created_at"`
}
