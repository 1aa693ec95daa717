// Copyright (c) 2025-2026 PageCraft Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"time"
)

// Site statuses
const (
	SiteStatusDraft     = "draft"
	SiteStatusPublished = "published"
)

// Template families
const (
	FamilyModern  = "modern"
	FamilyMinimal = "minimal"
)

// Site is the flattened persisted form of a showcase site. One column (or one
// JSON column for arrays of objects) per template document leaf.
type Site struct {
	ID      int64  `json:"id"`
	OwnerID int64  `json:"owner_id"`
	Family  string `json:"family"`
	Name    string `json:"name"`
	Status  string `json:"status"`

	NavbarTitle       string `json:"navbar_title"`
	NavbarLogo        string `json:"navbar_logo"`
	NavbarLinks       string `json:"navbar_links"` // JSON array of {text,url,isButton}
	NavbarSticky      bool   `json:"navbar_sticky"`
	NavbarTransparent bool   `json:"navbar_transparent"`

	HeroTitle         string          `json:"hero_title"`
	HeroTagline       string          `json:"hero_tagline"`
	HeroDescription   string          `json:"hero_description"`
	HeroCTAText       string          `json:"hero_cta_text"`
	HeroCTAURL        string          `json:"hero_cta_url"`
	HeroImage         sql.NullString  `json:"hero_image"`
	HeroPrice         sql.NullFloat64 `json:"hero_price"`
	HeroOriginalPrice sql.NullFloat64 `json:"hero_original_price"`

	AboutTitle       string         `json:"about_title"`
	AboutDescription string         `json:"about_description"`
	AboutImage       sql.NullString `json:"about_image"`
	AboutFeatures    string         `json:"about_features"` // JSON array of strings

	WhyTitle    string `json:"why_title"`
	WhySubtitle string `json:"why_subtitle"`
	WhyBenefits string `json:"why_benefits"` // JSON array of strings

	BenefitsTitle    string `json:"benefits_title"`
	BenefitsSubtitle string `json:"benefits_subtitle"`
	BenefitsItems    string `json:"benefits_items"` // JSON array of {title,description,image}

	FeaturesTitle    string `json:"features_title"`
	FeaturesSubtitle string `json:"features_subtitle"`
	FeaturesItems    string `json:"features_items"` // JSON array of {title,description,icon}

	PricingTitle    string          `json:"pricing_title"`
	PricingSubtitle string          `json:"pricing_subtitle"`
	PricingCurrency string          `json:"pricing_currency"`
	PricingPlans    string          `json:"pricing_plans"` // JSON array (modern family)
	PricingPrice    sql.NullFloat64 `json:"pricing_price"` // minimal family
	PricingPeriod   string          `json:"pricing_period"`
	PricingFeatures string          `json:"pricing_features"` // JSON array of strings (minimal family)

	FAQTitle    string `json:"faq_title"`
	FAQSubtitle string `json:"faq_subtitle"`
	FAQItems    string `json:"faq_items"` // JSON array of {question,answer}

	Testimonials string `json:"testimonials"` // JSON array of {name,role,content,image,rating}

	BrandName string `json:"brand_name"`
	BrandLogo string `json:"brand_logo"`

	ThemePrimary   string `json:"theme_primary"`
	ThemeSecondary string `json:"theme_secondary"`

	SEO string `json:"seo"` // JSON object

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsPublished returns true if the site is published.
func (s *Site) IsPublished() bool {
	return s.Status == SiteStatusPublished
}
