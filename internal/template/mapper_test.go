// Copyright (c) 2025-2026 PageCraft Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package template

import (
	"database/sql"
	"encoding/json"
	"reflect"
	"testing"

	"github.com/pagecraft/pagecraft/internal/model"
)

func populatedModernSite() *model.Site {
	return &model.Site{
		Family:            model.FamilyModern,
		NavbarTitle:       "Acme",
		NavbarLogo:        "https://cdn.example.com/logo.png",
		NavbarLinks:       `[{"text":"Features","url":"#features"},{"isButton":true,"text":"Buy","url":"#pricing"}]`,
		NavbarSticky:      true,
		NavbarTransparent: false,
		HeroTitle:         "Acme Widget",
		HeroTagline:       "The widget that works",
		HeroDescription:   "A fine widget.",
		HeroCTAText:       "Get started",
		HeroCTAURL:        "#pricing",
		HeroImage:         sql.NullString{String: "https://cdn.example.com/hero.png", Valid: true},
		AboutTitle:        "About",
		AboutDescription:  "We make widgets.",
		AboutImage:        sql.NullString{String: "https://cdn.example.com/about.png", Valid: true},
		AboutFeatures:     `["Handmade","Tested"]`,
		WhyTitle:          "Why us",
		WhySubtitle:       "Three reasons",
		WhyBenefits:       `["Fast","Cheap","Good"]`,
		FeaturesTitle:     "Features",
		FeaturesSubtitle:  "What you get",
		FeaturesItems:     `[{"description":"Quick","icon":"bolt","title":"Fast setup"}]`,
		PricingTitle:      "Pricing",
		PricingSubtitle:   "Plans",
		PricingCurrency:   "$",
		PricingPlans:      `[{"features":["1 site"],"name":"Starter","period":"month","price":9}]`,
		FAQTitle:          "FAQ",
		FAQSubtitle:       "Questions",
		FAQItems:          `[{"answer":"Yes.","question":"Is it good?"}]`,
		Testimonials:      `[{"content":"Love it","image":"","name":"Sam","rating":5,"role":"Maker"}]`,
		BrandName:         "Acme",
		BrandLogo:         "https://cdn.example.com/logo.png",
		ThemePrimary:      "#112233",
		ThemeSecondary:    "#445566",
	}
}

// asValue normalizes a document for deep comparison.
func asValue(t *testing.T, d Document) any {
	t.Helper()
	var v any
	if err := json.Unmarshal(d, &v); err != nil {
		t.Fatalf("decoding document: %v", err)
	}
	return v
}

func TestMapper_RoundTripModern(t *testing.T) {
	row := populatedModernSite()
	doc := FromColumns(row)

	cols, err := ToColumns(doc)
	if err != nil {
		t.Fatalf("ToColumns failed: %v", err)
	}

	var rebuilt model.Site
	ApplyColumns(&rebuilt, cols)
	doc2 := FromColumns(&rebuilt)

	if !reflect.DeepEqual(asValue(t, doc), asValue(t, doc2)) {
		t.Errorf("round trip diverged:\n first: %s\nsecond: %s", doc, doc2)
	}
}

func TestMapper_RoundTripMinimal(t *testing.T) {
	row := &model.Site{
		Family:          model.FamilyMinimal,
		HeroTitle:       "One Widget",
		HeroPrice:       sql.NullFloat64{Float64: 49, Valid: true},
		PricingTitle:    "Buy",
		PricingCurrency: "€",
		PricingPrice:    sql.NullFloat64{Float64: 49, Valid: true},
		PricingPeriod:   "one-time",
		PricingFeatures: `["Free shipping"]`,
	}
	doc := FromColumns(row)

	cols, err := ToColumns(doc)
	if err != nil {
		t.Fatalf("ToColumns failed: %v", err)
	}
	if _, ok := cols["pricing_plans"]; ok {
		t.Error("minimal family must not emit pricing_plans")
	}
	if cols["pricing_price"] == nil {
		t.Error("minimal family must emit pricing_price")
	}

	var rebuilt model.Site
	ApplyColumns(&rebuilt, cols)
	doc2 := FromColumns(&rebuilt)

	if !reflect.DeepEqual(asValue(t, doc), asValue(t, doc2)) {
		t.Errorf("round trip diverged:\n first: %s\nsecond: %s", doc, doc2)
	}
}

func TestToColumns_PartialUpdateIsNonDestructive(t *testing.T) {
	doc := Document(`{"hero":{"title":"Changed","cta":{"text":"Go"}}}`)

	cols, err := ToColumns(doc)
	if err != nil {
		t.Fatalf("ToColumns failed: %v", err)
	}

	// Only hero columns may be present.
	for name := range cols {
		if len(name) < 5 || name[:5] != "hero_" {
			t.Errorf("unexpected non-hero column %q in partial output", name)
		}
	}

	row := populatedModernSite()
	ApplyColumns(row, cols)

	if row.HeroTitle != "Changed" {
		t.Errorf("expected hero_title updated, got %q", row.HeroTitle)
	}
	if row.HeroCTAText != "Go" {
		t.Errorf("expected hero_cta_text updated, got %q", row.HeroCTAText)
	}
	if row.AboutTitle != "About" || row.FAQTitle != "FAQ" || row.BrandName != "Acme" {
		t.Error("partial hero update touched unrelated columns")
	}
}

func TestToColumns_LeafFallbacks(t *testing.T) {
	doc := Document(`{"navbar":{"title":"Acme"},"hero":{"title":"X"},"pricing":{"title":"P"},"theme":{"primaryColor":"nonsense"}}`)

	cols, err := ToColumns(doc)
	if err != nil {
		t.Fatalf("ToColumns failed: %v", err)
	}

	if cols["navbar_sticky"] != false {
		t.Errorf("missing navbar.sticky should emit false, got %v", cols["navbar_sticky"])
	}
	if cols["hero_cta_text"] != "" {
		t.Errorf("missing hero.cta.text should emit '', got %v", cols["hero_cta_text"])
	}
	if cols["hero_image"] != nil {
		t.Errorf("missing hero.image should emit nil, got %v", cols["hero_image"])
	}
	if cols["pricing_currency"] != "$" {
		t.Errorf("missing pricing.currency should emit %q, got %v", "$", cols["pricing_currency"])
	}
	if cols["theme_primary"] != DefaultPrimaryColor {
		t.Errorf("invalid theme color should fall back to %q, got %v", DefaultPrimaryColor, cols["theme_primary"])
	}
}

func TestToColumns_TaglineSubtitleAlias(t *testing.T) {
	doc := Document(`{"hero":{"subtitle":"From the old shape"}}`)

	cols, err := ToColumns(doc)
	if err != nil {
		t.Fatalf("ToColumns failed: %v", err)
	}
	if cols["hero_tagline"] != "From the old shape" {
		t.Errorf("hero.subtitle should map to hero_tagline, got %v", cols["hero_tagline"])
	}
}

func TestFromColumns_IsTotal(t *testing.T) {
	doc := FromColumns(&model.Site{Family: model.FamilyMinimal})

	for _, section := range []string{
		"navbar", "hero", "about", "whyChoose", "benefits",
		"features", "pricing", "faq", "testimonials", "brand", "theme",
	} {
		if !doc.Has(section) {
			t.Errorf("FromColumns must reconstruct section %q unconditionally", section)
		}
	}
	if got := doc.Get("pricing.currency").String(); got != "$" {
		t.Errorf("expected default currency, got %q", got)
	}
	if got := doc.Get("theme.primaryColor").String(); !IsHexColor(got) {
		t.Errorf("theme color must be valid hex, got %q", got)
	}
	if !doc.Get("about.features").IsArray() {
		t.Error("empty array columns must decode to []")
	}
}
