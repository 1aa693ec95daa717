// Copyright (c) 2025-2026 PageCraft Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/pagecraft/pagecraft/internal/model"
)

const domainColumns = `id, site_id, subdomain, custom_domain, analytics_site_id, is_active, created_at`

func scanDomain(r rowScanner) (model.Domain, error) {
	var d model.Domain
	err := r.Scan(&d.ID, &d.SiteID, &d.Subdomain, &d.CustomDomain,
		&d.AnalyticsSiteID, &d.IsActive, &d.CreatedAt)
	return d, err
}

// CreateDomainParams holds the insertable domain fields.
type CreateDomainParams struct {
	SiteID          int64
	Subdomain       string
	AnalyticsSiteID string
	IsActive        bool
}

// CreateDomain inserts a domain record for a site.
func (q *Queries) CreateDomain(ctx context.Context, p CreateDomainParams) (int64, error) {
	var analyticsID any
	if p.AnalyticsSiteID != "" {
		analyticsID = p.AnalyticsSiteID
	}
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO domains (site_id, subdomain, analytics_site_id, is_active)
		VALUES (?, ?, ?, ?)`,
		p.SiteID, p.Subdomain, analyticsID, p.IsActive)
	if err != nil {
		return 0, fmt.Errorf("inserting domain: %w", err)
	}
	return res.LastInsertId()
}

// GetDomainBySiteID returns the domain record for a site.
func (q *Queries) GetDomainBySiteID(ctx context.Context, siteID int64) (model.Domain, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+domainColumns+` FROM domains WHERE site_id = ?`, siteID)
	return scanDomain(row)
}

// GetActiveDomainBySubdomain resolves a subdomain to its active domain
// record.
func (q *Queries) GetActiveDomainBySubdomain(ctx context.Context, subdomain string) (model.Domain, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+domainColumns+` FROM domains WHERE subdomain = ? AND is_active = 1`, subdomain)
	return scanDomain(row)
}

// ListDomainsBySiteIDs batch-loads domain records for a set of sites in one
// round trip.
func (q *Queries) ListDomainsBySiteIDs(ctx context.Context, siteIDs []int64) ([]model.Domain, error) {
	if len(siteIDs) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(siteIDs))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(siteIDs))
	for i, id := range siteIDs {
		args[i] = id
	}

	rows, err := q.db.QueryContext(ctx,
		`SELECT `+domainColumns+` FROM domains WHERE site_id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("listing domains: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var domains []model.Domain
	for rows.Next() {
		d, err := scanDomain(rows)
		if err != nil {
			return nil, err
		}
		domains = append(domains, d)
	}
	return domains, rows.Err()
}

// ListActiveAnalyticsSiteIDs returns the analytics website ids of every
// active domain that has one.
func (q *Queries) ListActiveAnalyticsSiteIDs(ctx context.Context) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT analytics_site_id FROM domains
		WHERE is_active = 1 AND analytics_site_id IS NOT NULL`)
	if err != nil {
		return nil, fmt.Errorf("listing analytics ids: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// CountDomainsBySubdomain reports whether a subdomain is taken.
func (q *Queries) CountDomainsBySubdomain(ctx context.Context, subdomain string) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM domains WHERE subdomain = ?`, subdomain).Scan(&n)
	return n, err
}

// DeleteDomainBySiteID removes a site's domain record.
func (q *Queries) DeleteDomainBySiteID(ctx context.Context, siteID int64) error {
	if _, err := q.db.ExecContext(ctx, `DELETE FROM domains WHERE site_id = ?`, siteID); err != nil {
		return fmt.Errorf("deleting domain: %w", err)
	}
	return nil
}

// SetDomainActive toggles a domain's active flag.
func (q *Queries) SetDomainActive(ctx context.Context, siteID int64, active bool) error {
	if _, err := q.db.ExecContext(ctx,
		`UPDATE domains SET is_active = ? WHERE site_id = ?`, active, siteID); err != nil {
		return fmt.Errorf("updating domain: %w", err)
	}
	return nil
}
