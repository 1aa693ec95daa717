// Copyright (c) 2025-2026 PageCraft Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/pagecraft/pagecraft/internal/model"
)

// siteColumns is the full column list, in scanSite order.
const siteColumns = `id, owner_id, family, name, status,
	navbar_title, navbar_logo, navbar_links, navbar_sticky, navbar_transparent,
	hero_title, hero_tagline, hero_description, hero_cta_text, hero_cta_url,
	hero_image, hero_price, hero_original_price,
	about_title, about_description, about_image, about_features,
	why_title, why_subtitle, why_benefits,
	benefits_title, benefits_subtitle, benefits_items,
	features_title, features_subtitle, features_items,
	pricing_title, pricing_subtitle, pricing_currency, pricing_plans,
	pricing_price, pricing_period, pricing_features,
	faq_title, faq_subtitle, faq_items,
	testimonials, brand_name, brand_logo,
	theme_primary, theme_secondary, seo,
	created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSite(r rowScanner) (model.Site, error) {
	var s model.Site
	err := r.Scan(
		&s.ID, &s.OwnerID, &s.Family, &s.Name, &s.Status,
		&s.NavbarTitle, &s.NavbarLogo, &s.NavbarLinks, &s.NavbarSticky, &s.NavbarTransparent,
		&s.HeroTitle, &s.HeroTagline, &s.HeroDescription, &s.HeroCTAText, &s.HeroCTAURL,
		&s.HeroImage, &s.HeroPrice, &s.HeroOriginalPrice,
		&s.AboutTitle, &s.AboutDescription, &s.AboutImage, &s.AboutFeatures,
		&s.WhyTitle, &s.WhySubtitle, &s.WhyBenefits,
		&s.BenefitsTitle, &s.BenefitsSubtitle, &s.BenefitsItems,
		&s.FeaturesTitle, &s.FeaturesSubtitle, &s.FeaturesItems,
		&s.PricingTitle, &s.PricingSubtitle, &s.PricingCurrency, &s.PricingPlans,
		&s.PricingPrice, &s.PricingPeriod, &s.PricingFeatures,
		&s.FAQTitle, &s.FAQSubtitle, &s.FAQItems,
		&s.Testimonials, &s.BrandName, &s.BrandLogo,
		&s.ThemePrimary, &s.ThemeSecondary, &s.SEO,
		&s.CreatedAt, &s.UpdatedAt,
	)
	return s, err
}

// CreateSite inserts a full site row and returns its id.
func (q *Queries) CreateSite(ctx context.Context, s *model.Site) (int64, error) {
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO sites (
			owner_id, family, name, status,
			navbar_title, navbar_logo, navbar_links, navbar_sticky, navbar_transparent,
			hero_title, hero_tagline, hero_description, hero_cta_text, hero_cta_url,
			hero_image, hero_price, hero_original_price,
			about_title, about_description, about_image, about_features,
			why_title, why_subtitle, why_benefits,
			benefits_title, benefits_subtitle, benefits_items,
			features_title, features_subtitle, features_items,
			pricing_title, pricing_subtitle, pricing_currency, pricing_plans,
			pricing_price, pricing_period, pricing_features,
			faq_title, faq_subtitle, faq_items,
			testimonials, brand_name, brand_logo,
			theme_primary, theme_secondary, seo
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		s.OwnerID, s.Family, s.Name, s.Status,
		s.NavbarTitle, s.NavbarLogo, jsonOr(s.NavbarLinks, "[]"), s.NavbarSticky, s.NavbarTransparent,
		s.HeroTitle, s.HeroTagline, s.HeroDescription, s.HeroCTAText, s.HeroCTAURL,
		s.HeroImage, s.HeroPrice, s.HeroOriginalPrice,
		s.AboutTitle, s.AboutDescription, s.AboutImage, jsonOr(s.AboutFeatures, "[]"),
		s.WhyTitle, s.WhySubtitle, jsonOr(s.WhyBenefits, "[]"),
		s.BenefitsTitle, s.BenefitsSubtitle, jsonOr(s.BenefitsItems, "[]"),
		s.FeaturesTitle, s.FeaturesSubtitle, jsonOr(s.FeaturesItems, "[]"),
		s.PricingTitle, s.PricingSubtitle, s.PricingCurrency, jsonOr(s.PricingPlans, "[]"),
		s.PricingPrice, s.PricingPeriod, jsonOr(s.PricingFeatures, "[]"),
		s.FAQTitle, s.FAQSubtitle, jsonOr(s.FAQItems, "[]"),
		jsonOr(s.Testimonials, "[]"), s.BrandName, s.BrandLogo,
		s.ThemePrimary, s.ThemeSecondary, jsonOr(s.SEO, "{}"),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting site: %w", err)
	}
	return res.LastInsertId()
}

// GetSiteByID returns a site by id regardless of owner. Callers that act on
// behalf of a user must use GetSiteForOwner instead.
func (q *Queries) GetSiteByID(ctx context.Context, id int64) (model.Site, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+siteColumns+` FROM sites WHERE id = ?`, id)
	return scanSite(row)
}

// GetSiteForOwner returns a site only when it belongs to ownerID.
func (q *Queries) GetSiteForOwner(ctx context.Context, id, ownerID int64) (model.Site, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+siteColumns+` FROM sites WHERE id = ? AND owner_id = ?`, id, ownerID)
	return scanSite(row)
}

// GetPublishedSiteBySlug resolves a published site through its active domain
// record.
func (q *Queries) GetPublishedSiteBySlug(ctx context.Context, slug string) (model.Site, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT `+prefixedSiteColumns()+`
		FROM sites s
		JOIN domains d ON d.site_id = s.id
		WHERE d.subdomain = ? AND d.is_active = 1 AND s.status = ?`,
		slug, model.SiteStatusPublished)
	return scanSite(row)
}

// ListSitesByOwner returns the owner's sites, newest first.
func (q *Queries) ListSitesByOwner(ctx context.Context, ownerID int64) ([]model.Site, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+siteColumns+` FROM sites WHERE owner_id = ? ORDER BY created_at DESC, id DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing sites: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var sites []model.Site
	for rows.Next() {
		s, err := scanSite(rows)
		if err != nil {
			return nil, err
		}
		sites = append(sites, s)
	}
	return sites, rows.Err()
}

// updatableSiteColumns is the allowlist for dynamic partial updates.
var updatableSiteColumns = map[string]bool{
	"family": true, "name": true, "status": true,
	"navbar_title": true, "navbar_logo": true, "navbar_links": true,
	"navbar_sticky": true, "navbar_transparent": true,
	"hero_title": true, "hero_tagline": true, "hero_description": true,
	"hero_cta_text": true, "hero_cta_url": true, "hero_image": true,
	"hero_price": true, "hero_original_price": true,
	"about_title": true, "about_description": true, "about_image": true, "about_features": true,
	"why_title": true, "why_subtitle": true, "why_benefits": true,
	"benefits_title": true, "benefits_subtitle": true, "benefits_items": true,
	"features_title": true, "features_subtitle": true, "features_items": true,
	"pricing_title": true, "pricing_subtitle": true, "pricing_currency": true,
	"pricing_plans": true, "pricing_price": true, "pricing_period": true, "pricing_features": true,
	"faq_title": true, "faq_subtitle": true, "faq_items": true,
	"testimonials": true, "brand_name": true, "brand_logo": true,
	"theme_primary": true, "theme_secondary": true, "seo": true,
}

// UpdateSiteColumns applies a partial column update, scoped to the owner.
// Returns the number of rows affected; zero means not found or not owned.
// Column names outside the allowlist are rejected.
func (q *Queries) UpdateSiteColumns(ctx context.Context, id, ownerID int64, cols map[string]any) (int64, error) {
	if len(cols) == 0 {
		return 0, fmt.Errorf("empty column set")
	}

	names := make([]string, 0, len(cols))
	for name := range cols {
		if !updatableSiteColumns[name] {
			return 0, fmt.Errorf("column %q is not updatable", name)
		}
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	sb.WriteString("UPDATE sites SET ")
	args := make([]any, 0, len(names)+2)
	for i, name := range names {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(name)
		sb.WriteString(" = ?")
		args = append(args, cols[name])
	}
	sb.WriteString(", updated_at = CURRENT_TIMESTAMP WHERE id = ? AND owner_id = ?")
	args = append(args, id, ownerID)

	res, err := q.db.ExecContext(ctx, sb.String(), args...)
	if err != nil {
		return 0, fmt.Errorf("updating site: %w", err)
	}
	return res.RowsAffected()
}

// DeleteSiteForOwner removes a site when owned by ownerID. Returns rows
// affected.
func (q *Queries) DeleteSiteForOwner(ctx context.Context, id, ownerID int64) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		`DELETE FROM sites WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return 0, fmt.Errorf("deleting site: %w", err)
	}
	return res.RowsAffected()
}

// CountSitesByOwner returns the number of sites owned by ownerID.
func (q *Queries) CountSitesByOwner(ctx context.Context, ownerID int64) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sites WHERE owner_id = ?`, ownerID).Scan(&n)
	return n, err
}

// jsonOr substitutes a default for empty JSON columns so NOT NULL constraints
// hold even for zero-valued rows.
func jsonOr(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// prefixedSiteColumns qualifies the column list with the sites alias for
// joined queries.
func prefixedSiteColumns() string {
	parts := strings.Split(siteColumns, ",")
	for i, p := range parts {
		parts[i] = "s." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}
