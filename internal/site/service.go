// Copyright (c) 2025-2026 PageCraft Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package site implements the site lifecycle: creation with a provisioned
// domain and analytics website, ownership-checked reads and writes, and
// cascading deletion. Every operation that acts on behalf of a user is scoped
// to that user; cross-owner access fails closed as not-found.
package site

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/pagecraft/pagecraft/internal/analytics"
	"github.com/pagecraft/pagecraft/internal/model"
	"github.com/pagecraft/pagecraft/internal/retry"
	"github.com/pagecraft/pagecraft/internal/store"
	"github.com/pagecraft/pagecraft/internal/template"
	"github.com/pagecraft/pagecraft/internal/util"
)

// Service owns site lifecycle operations.
type Service struct {
	queries    *store.Queries
	provider   analytics.Provider
	log        *slog.Logger
	baseDomain string
	retryCfg   retry.Config
}

// NewService creates a site service. baseDomain is the apex under which
// subdomains are served, e.g. "pagecraft.site".
func NewService(db *sql.DB, provider analytics.Provider, baseDomain string, log *slog.Logger) *Service {
	return &Service{
		queries:    store.New(db),
		provider:   provider,
		log:        log,
		baseDomain: baseDomain,
		retryCfg:   retry.DefaultConfig(),
	}
}

// CreateParams is a site creation request.
type CreateParams struct {
	Name        string
	Description string
	Slug        string // derived from Name when empty
	Family      string // defaults to modern
}

// Create provisions a site: the row, its domain record and (best-effort) an
// analytics website. The site row and domain record form a logical unit; if
// the domain insert fails the site row is compensatingly deleted, and any
// provisioned analytics website is best-effort removed.
func (s *Service) Create(ctx context.Context, ownerID int64, p CreateParams) (*model.Site, *model.Domain, error) {
	family, slug, err := s.validateCreate(p)
	if err != nil {
		return nil, nil, err
	}

	taken, err := s.queries.CountDomainsBySubdomain(ctx, slug)
	if err != nil {
		return nil, nil, fmt.Errorf("checking subdomain: %w", err)
	}
	if taken > 0 {
		return nil, nil, ErrDuplicateSlug
	}

	doc, err := s.initialDocument(family, p)
	if err != nil {
		return nil, nil, err
	}
	cols, err := template.ToColumns(doc)
	if err != nil {
		return nil, nil, fmt.Errorf("flattening document: %w", err)
	}

	site := &model.Site{
		OwnerID: ownerID,
		Family:  string(family),
		Name:    p.Name,
		Status:  model.SiteStatusDraft,
	}
	template.ApplyColumns(site, cols)

	siteID, err := s.queries.CreateSite(ctx, site)
	if err != nil {
		return nil, nil, fmt.Errorf("creating site: %w", err)
	}
	site.ID = siteID

	// Analytics provisioning is best-effort: a site without analytics still
	// works, its dashboard just shows zeros.
	analyticsID := retry.DoOr(ctx, s.retryCfg, s.log, "analytics website create", "",
		func(ctx context.Context) (string, error) {
			return s.provider.CreateWebsite(ctx, p.Name, slug+"."+s.baseDomain)
		})

	domainID, err := s.queries.CreateDomain(ctx, store.CreateDomainParams{
		SiteID:          siteID,
		Subdomain:       slug,
		AnalyticsSiteID: analyticsID,
		IsActive:        true,
	})
	if err != nil {
		s.compensateCreate(ctx, siteID, ownerID, analyticsID)
		if isUniqueViolation(err) {
			return nil, nil, ErrDuplicateSlug
		}
		return nil, nil, fmt.Errorf("creating domain: %w", err)
	}

	s.log.Info("site created",
		"site_id", siteID, "owner_id", ownerID, "subdomain", slug, "analytics_id", analyticsID)

	domain := &model.Domain{
		ID:              domainID,
		SiteID:          siteID,
		Subdomain:       slug,
		AnalyticsSiteID: sql.NullString{String: analyticsID, Valid: analyticsID != ""},
		IsActive:        true,
	}
	return site, domain, nil
}

// Get resolves a site by numeric id or subdomain slug. With mustBePublished
// the site must be published and its domain active; anything else is
// ErrNotFound.
func (s *Service) Get(ctx context.Context, key string, mustBePublished bool) (*model.Site, error) {
	if id, err := strconv.ParseInt(key, 10, 64); err == nil {
		return s.getByID(ctx, id, mustBePublished)
	}
	return s.getBySlug(ctx, key, mustBePublished)
}

func (s *Service) getByID(ctx context.Context, id int64, mustBePublished bool) (*model.Site, error) {
	site, err := s.queries.GetSiteByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading site: %w", err)
	}

	if mustBePublished {
		if !site.IsPublished() {
			return nil, ErrNotFound
		}
		domain, err := s.queries.GetDomainBySiteID(ctx, id)
		if err != nil || !domain.IsActive {
			return nil, ErrNotFound
		}
	}
	return &site, nil
}

func (s *Service) getBySlug(ctx context.Context, slug string, mustBePublished bool) (*model.Site, error) {
	if mustBePublished {
		site, err := s.queries.GetPublishedSiteBySlug(ctx, slug)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("loading site: %w", err)
		}
		return &site, nil
	}

	domain, err := s.queries.GetActiveDomainBySubdomain(ctx, slug)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("resolving slug: %w", err)
	}
	return s.getByID(ctx, domain.SiteID, false)
}

// Update applies a partial document to an owned site. Only the sections
// present in doc touch their columns; everything else is left as stored.
// Zero rows affected means not found or not owned, reported uniformly.
func (s *Service) Update(ctx context.Context, id, ownerID int64, doc template.Document) (*model.Site, error) {
	doc, err := template.Sanitize(doc)
	if err != nil {
		return nil, fmt.Errorf("sanitizing document: %w", err)
	}

	cols, err := template.ToColumns(doc)
	if err != nil {
		return nil, fmt.Errorf("flattening document: %w", err)
	}
	if len(cols) == 0 {
		return nil, &ValidationError{Fields: []string{"document"}}
	}

	n, err := s.queries.UpdateSiteColumns(ctx, id, ownerID, cols)
	if err != nil {
		return nil, fmt.Errorf("updating site: %w", err)
	}
	if n == 0 {
		return nil, ErrNotFound
	}

	site, err := s.queries.GetSiteForOwner(ctx, id, ownerID)
	if err != nil {
		return nil, fmt.Errorf("reloading site: %w", err)
	}
	return &site, nil
}

// GetForOwner loads a site the owner holds. Foreign and missing sites are
// both ErrNotFound.
func (s *Service) GetForOwner(ctx context.Context, id, ownerID int64) (*model.Site, error) {
	site, err := s.queries.GetSiteForOwner(ctx, id, ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading site: %w", err)
	}
	return &site, nil
}

// Publish marks an owned site as published.
func (s *Service) Publish(ctx context.Context, id, ownerID int64) error {
	return s.setStatus(ctx, id, ownerID, model.SiteStatusPublished)
}

// Unpublish returns an owned site to draft.
func (s *Service) Unpublish(ctx context.Context, id, ownerID int64) error {
	return s.setStatus(ctx, id, ownerID, model.SiteStatusDraft)
}

func (s *Service) setStatus(ctx context.Context, id, ownerID int64, status string) error {
	n, err := s.queries.UpdateSiteColumns(ctx, id, ownerID, map[string]any{"status": status})
	if err != nil {
		return fmt.Errorf("updating status: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	s.log.Info("site status changed", "site_id", id, "status", status)
	return nil
}

// Delete removes an owned site. The domain record and orders go with it; the
// analytics website is best-effort deleted — a provider failure is logged and
// never surfaces to the caller.
func (s *Service) Delete(ctx context.Context, id, ownerID int64) error {
	if _, err := s.queries.GetSiteForOwner(ctx, id, ownerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("loading site: %w", err)
	}

	// Capture the analytics id before the cascade takes the domain record.
	var analyticsID string
	if domain, err := s.queries.GetDomainBySiteID(ctx, id); err == nil {
		analyticsID = domain.AnalyticsSiteID.String
	}

	n, err := s.queries.DeleteSiteForOwner(ctx, id, ownerID)
	if err != nil {
		return fmt.Errorf("deleting site: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}

	if analyticsID != "" {
		if _, err := retry.Do(ctx, s.retryCfg, func(ctx context.Context) (struct{}, error) {
			return struct{}{}, s.provider.DeleteWebsite(ctx, analyticsID)
		}); err != nil {
			s.log.Warn("analytics website delete failed",
				"site_id", id, "analytics_id", analyticsID, "error", err)
		}
	}

	s.log.Info("site deleted", "site_id", id, "owner_id", ownerID)
	return nil
}

// ListByOwner returns the owner's sites, newest first.
func (s *Service) ListByOwner(ctx context.Context, ownerID int64) ([]model.Site, error) {
	sites, err := s.queries.ListSitesByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing sites: %w", err)
	}
	return sites, nil
}

// ResolveAnalyticsID maps an active subdomain to its analytics website id.
// An empty id with nil error means the domain exists but analytics was never
// provisioned.
func (s *Service) ResolveAnalyticsID(ctx context.Context, slug string) (string, error) {
	domain, err := s.queries.GetActiveDomainBySubdomain(ctx, slug)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("resolving slug: %w", err)
	}
	return domain.AnalyticsSiteID.String, nil
}

func (s *Service) validateCreate(p CreateParams) (template.Family, string, error) {
	var fields []string
	if strings.TrimSpace(p.Name) == "" {
		fields = append(fields, "name")
	}

	family, err := template.ParseFamily(p.Family)
	if err != nil {
		fields = append(fields, "family")
	}

	slug := p.Slug
	if slug == "" {
		slug = util.Slugify(p.Name)
	}
	if !util.IsValidSlug(slug) {
		fields = append(fields, "slug")
	}

	if len(fields) > 0 {
		return "", "", &ValidationError{Fields: fields}
	}
	return family, slug, nil
}

// initialDocument builds the starting document: the family default with the
// user's name and description merged in, sanitized.
func (s *Service) initialDocument(family template.Family, p CreateParams) (template.Document, error) {
	doc := template.Default(family)

	for path, value := range map[string]string{
		"hero.title":       p.Name,
		"hero.description": p.Description,
		"navbar.title":     p.Name,
		"brand.name":       p.Name,
	} {
		if value == "" {
			continue
		}
		var err error
		if doc, err = doc.Set(path, value); err != nil {
			return nil, fmt.Errorf("setting %s: %w", path, err)
		}
	}

	return template.Sanitize(doc)
}

// compensateCreate rolls back a half-created site after a domain insert
// failure: the site row goes away, and any provisioned analytics website is
// best-effort removed.
func (s *Service) compensateCreate(ctx context.Context, siteID, ownerID int64, analyticsID string) {
	if _, err := s.queries.DeleteSiteForOwner(ctx, siteID, ownerID); err != nil {
		s.log.Error("compensating site delete failed", "site_id", siteID, "error", err)
	}
	if analyticsID != "" {
		if err := s.provider.DeleteWebsite(ctx, analyticsID); err != nil {
			s.log.Warn("compensating analytics delete failed",
				"analytics_id", analyticsID, "error", err)
		}
	}
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE")
}
