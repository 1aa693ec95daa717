// Copyright (c) 2025-2026 PageCraft Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package template

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/pagecraft/pagecraft/internal/model"
)

// ToColumns flattens a document into persisted column values. Only sections
// present in the document emit columns, which makes this a partial-update
// mapper: saving a document that carries only a hero section leaves every
// non-hero column untouched. Each emitted leaf falls back to its
// section-appropriate default, never to an absent value.
func ToColumns(doc Document) (map[string]any, error) {
	if len(doc) == 0 {
		return map[string]any{}, nil
	}
	if !json.Valid(doc) {
		return nil, fmt.Errorf("invalid document JSON")
	}

	cols := make(map[string]any)
	family := doc.Family()

	if doc.Has("family") {
		cols["family"] = string(family)
	}

	if doc.Has("navbar") {
		cols["navbar_title"] = doc.Get("navbar.title").String()
		cols["navbar_logo"] = doc.Get("navbar.logo").String()
		cols["navbar_links"] = jsonArray(doc, "navbar.links")
		cols["navbar_sticky"] = doc.Get("navbar.sticky").Bool()
		cols["navbar_transparent"] = doc.Get("navbar.transparent").Bool()
	}

	if doc.Has("hero") {
		cols["hero_title"] = doc.Get("hero.title").String()
		cols["hero_tagline"] = firstString(doc, "hero.tagline", "hero.subtitle")
		cols["hero_description"] = doc.Get("hero.description").String()
		cols["hero_cta_text"] = doc.Get("hero.cta.text").String()
		cols["hero_cta_url"] = doc.Get("hero.cta.url").String()
		cols["hero_image"] = nullableString(doc, "hero.image")
		cols["hero_price"] = nullableNumber(doc, "hero.price")
		cols["hero_original_price"] = nullableNumber(doc, "hero.originalPrice")
	}

	if doc.Has("about") {
		cols["about_title"] = doc.Get("about.title").String()
		cols["about_description"] = doc.Get("about.description").String()
		cols["about_image"] = nullableString(doc, "about.image")
		cols["about_features"] = jsonArray(doc, "about.features")
	}

	if doc.Has("whyChoose") {
		cols["why_title"] = doc.Get("whyChoose.title").String()
		cols["why_subtitle"] = doc.Get("whyChoose.subtitle").String()
		cols["why_benefits"] = jsonArray(doc, "whyChoose.benefits")
	}

	if doc.Has("benefits") {
		cols["benefits_title"] = doc.Get("benefits.title").String()
		cols["benefits_subtitle"] = doc.Get("benefits.subtitle").String()
		cols["benefits_items"] = jsonArray(doc, "benefits.items")
	}

	if doc.Has("features") {
		cols["features_title"] = doc.Get("features.title").String()
		cols["features_subtitle"] = doc.Get("features.subtitle").String()
		cols["features_items"] = jsonArray(doc, "features.items")
	}

	if doc.Has("pricing") {
		cols["pricing_title"] = doc.Get("pricing.title").String()
		cols["pricing_subtitle"] = doc.Get("pricing.subtitle").String()
		currency := doc.Get("pricing.currency").String()
		if currency == "" {
			currency = DefaultCurrency
		}
		cols["pricing_currency"] = currency

		// The two families persist pricing under different columns; the
		// family discriminant picks the branch.
		if family == FamilyMinimal {
			cols["pricing_price"] = nullableNumber(doc, "pricing.price")
			cols["pricing_period"] = doc.Get("pricing.period").String()
			cols["pricing_features"] = jsonArray(doc, "pricing.features")
		} else {
			cols["pricing_plans"] = jsonArray(doc, "pricing.plans")
		}
	}

	if doc.Has("faq") {
		cols["faq_title"] = doc.Get("faq.title").String()
		cols["faq_subtitle"] = doc.Get("faq.subtitle").String()
		cols["faq_items"] = jsonArray(doc, "faq.items")
	}

	if doc.Has("testimonials") {
		cols["testimonials"] = jsonArray(doc, "testimonials")
	}

	if doc.Has("brand") {
		cols["brand_name"] = doc.Get("brand.name").String()
		cols["brand_logo"] = doc.Get("brand.logo").String()
	}

	if doc.Has("theme") {
		cols["theme_primary"] = hexOr(doc.Get("theme.primaryColor").String(), DefaultPrimaryColor)
		cols["theme_secondary"] = hexOr(doc.Get("theme.secondaryColor").String(), DefaultSecondaryColor)
	}

	return cols, nil
}

// FromColumns rebuilds a document from a persisted row. Unlike ToColumns this
// direction is total: every section is reconstructed unconditionally with
// empty-value fallbacks, so the editor and renderer never branch on absence.
func FromColumns(s *model.Site) Document {
	family, err := ParseFamily(s.Family)
	if err != nil {
		family = FamilyModern
	}

	hero := map[string]any{
		"title":       s.HeroTitle,
		"tagline":     s.HeroTagline,
		"description": s.HeroDescription,
		"cta": map[string]any{
			"text": s.HeroCTAText,
			"url":  s.HeroCTAURL,
		},
		"image": s.HeroImage.String,
	}
	if s.HeroPrice.Valid {
		hero["price"] = s.HeroPrice.Float64
	}
	if s.HeroOriginalPrice.Valid {
		hero["originalPrice"] = s.HeroOriginalPrice.Float64
	}

	pricing := map[string]any{
		"title":    s.PricingTitle,
		"subtitle": s.PricingSubtitle,
		"currency": stringOr(s.PricingCurrency, DefaultCurrency),
	}
	if family == FamilyMinimal {
		if s.PricingPrice.Valid {
			pricing["price"] = s.PricingPrice.Float64
		} else {
			pricing["price"] = float64(0)
		}
		pricing["period"] = s.PricingPeriod
		pricing["features"] = parseArray(s.PricingFeatures)
	} else {
		pricing["plans"] = parseArray(s.PricingPlans)
	}

	m := map[string]any{
		"family": string(family),
		"navbar": map[string]any{
			"title":       s.NavbarTitle,
			"logo":        s.NavbarLogo,
			"links":       parseArray(s.NavbarLinks),
			"sticky":      s.NavbarSticky,
			"transparent": s.NavbarTransparent,
		},
		"hero": hero,
		"about": map[string]any{
			"title":       s.AboutTitle,
			"description": s.AboutDescription,
			"image":       s.AboutImage.String,
			"features":    parseArray(s.AboutFeatures),
		},
		"whyChoose": map[string]any{
			"title":    s.WhyTitle,
			"subtitle": s.WhySubtitle,
			"benefits": parseArray(s.WhyBenefits),
		},
		"benefits": map[string]any{
			"title":    s.BenefitsTitle,
			"subtitle": s.BenefitsSubtitle,
			"items":    parseArray(s.BenefitsItems),
		},
		"features": map[string]any{
			"title":    s.FeaturesTitle,
			"subtitle": s.FeaturesSubtitle,
			"items":    parseArray(s.FeaturesItems),
		},
		"pricing": pricing,
		"faq": map[string]any{
			"title":    s.FAQTitle,
			"subtitle": s.FAQSubtitle,
			"items":    parseArray(s.FAQItems),
		},
		"testimonials": parseArray(s.Testimonials),
		"brand": map[string]any{
			"name": s.BrandName,
			"logo": s.BrandLogo,
		},
		"theme": map[string]any{
			"primaryColor":   hexOr(s.ThemePrimary, DefaultPrimaryColor),
			"secondaryColor": hexOr(s.ThemeSecondary, DefaultSecondaryColor),
		},
	}

	out, err := json.Marshal(m)
	if err != nil {
		// All inputs are JSON-compatible values.
		panic("template: encoding document from columns: " + err.Error())
	}
	return Document(out)
}

// ApplyColumns writes column values onto a site row. Unknown column names are
// ignored so callers can pass the full ToColumns output.
func ApplyColumns(s *model.Site, cols map[string]any) {
	for name, v := range cols {
		switch name {
		case "family":
			s.Family = asString(v)
		case "navbar_title":
			s.NavbarTitle = asString(v)
		case "navbar_logo":
			s.NavbarLogo = asString(v)
		case "navbar_links":
			s.NavbarLinks = asString(v)
		case "navbar_sticky":
			s.NavbarSticky = asBool(v)
		case "navbar_transparent":
			s.NavbarTransparent = asBool(v)
		case "hero_title":
			s.HeroTitle = asString(v)
		case "hero_tagline":
			s.HeroTagline = asString(v)
		case "hero_description":
			s.HeroDescription = asString(v)
		case "hero_cta_text":
			s.HeroCTAText = asString(v)
		case "hero_cta_url":
			s.HeroCTAURL = asString(v)
		case "hero_image":
			s.HeroImage = asNullString(v)
		case "hero_price":
			s.HeroPrice = asNullFloat(v)
		case "hero_original_price":
			s.HeroOriginalPrice = asNullFloat(v)
		case "about_title":
			s.AboutTitle = asString(v)
		case "about_description":
			s.AboutDescription = asString(v)
		case "about_image":
			s.AboutImage = asNullString(v)
		case "about_features":
			s.AboutFeatures = asString(v)
		case "why_title":
			s.WhyTitle = asString(v)
		case "why_subtitle":
			s.WhySubtitle = asString(v)
		case "why_benefits":
			s.WhyBenefits = asString(v)
		case "benefits_title":
			s.BenefitsTitle = asString(v)
		case "benefits_subtitle":
			s.BenefitsSubtitle = asString(v)
		case "benefits_items":
			s.BenefitsItems = asString(v)
		case "features_title":
			s.FeaturesTitle = asString(v)
		case "features_subtitle":
			s.FeaturesSubtitle = asString(v)
		case "features_items":
			s.FeaturesItems = asString(v)
		case "pricing_title":
			s.PricingTitle = asString(v)
		case "pricing_subtitle":
			s.PricingSubtitle = asString(v)
		case "pricing_currency":
			s.PricingCurrency = asString(v)
		case "pricing_plans":
			s.PricingPlans = asString(v)
		case "pricing_price":
			s.PricingPrice = asNullFloat(v)
		case "pricing_period":
			s.PricingPeriod = asString(v)
		case "pricing_features":
			s.PricingFeatures = asString(v)
		case "faq_title":
			s.FAQTitle = asString(v)
		case "faq_subtitle":
			s.FAQSubtitle = asString(v)
		case "faq_items":
			s.FAQItems = asString(v)
		case "testimonials":
			s.Testimonials = asString(v)
		case "brand_name":
			s.BrandName = asString(v)
		case "brand_logo":
			s.BrandLogo = asString(v)
		case "theme_primary":
			s.ThemePrimary = asString(v)
		case "theme_secondary":
			s.ThemeSecondary = asString(v)
		case "seo":
			s.SEO = asString(v)
		}
	}
}

// firstString returns the first path that resolves to a non-empty string.
func firstString(d Document, paths ...string) string {
	for _, p := range paths {
		if v := d.Get(p).String(); v != "" {
			return v
		}
	}
	return ""
}

// jsonArray returns the raw JSON at path if it is an array, "[]" otherwise.
func jsonArray(d Document, path string) string {
	r := d.Get(path)
	if r.IsArray() {
		return r.Raw
	}
	return "[]"
}

// nullableString returns nil for missing/empty string leaves (image fields
// persist as NULL, not "").
func nullableString(d Document, path string) any {
	if v := d.Get(path).String(); v != "" {
		return v
	}
	return nil
}

// nullableNumber returns nil when the leaf is absent.
func nullableNumber(d Document, path string) any {
	r := d.Get(path)
	if !r.Exists() {
		return nil
	}
	return r.Float()
}

func hexOr(s, fallback string) string {
	if IsHexColor(s) {
		return s
	}
	return fallback
}

func stringOr(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// parseArray decodes a persisted JSON array column, falling back to an empty
// array for NULL, empty or malformed values.
func parseArray(raw string) []any {
	if raw == "" {
		return []any{}
	}
	var out []any
	if err := json.Unmarshal([]byte(raw), &out); err != nil || out == nil {
		return []any{}
	}
	return out
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asBool(v any) bool {
	b, _ := v.(bool)
	return b
}

func asNullString(v any) sql.NullString {
	if s, ok := v.(string); ok && s != "" {
		return sql.NullString{String: s, Valid: true}
	}
	return sql.NullString{}
}

func asNullFloat(v any) sql.NullFloat64 {
	switch n := v.(type) {
	case float64:
		return sql.NullFloat64{Float64: n, Valid: true}
	case int:
		return sql.NullFloat64{Float64: float64(n), Valid: true}
	case int64:
		return sql.NullFloat64{Float64: float64(n), Valid: true}
	}
	return sql.NullFloat64{}
}
