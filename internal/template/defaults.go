// Copyright (c) 2025-2026 PageCraft Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package template

import "encoding/json"

// Brand default theme colors, used wherever a theme color is missing or
// invalid.
const (
	DefaultPrimaryColor   = "#2563eb"
	DefaultSecondaryColor = "#0f172a"
	DefaultCurrency       = "$"
)

// Default returns a fully populated document for the given family. This is
// the single factory for both families; the editor mounts it when a site has
// no persisted columns and no session-cached edits.
func Default(family Family) Document {
	var m map[string]any
	switch family {
	case FamilyMinimal:
		m = minimalDefault()
	default:
		m = modernDefault()
	}
	out, err := json.Marshal(m)
	if err != nil {
		// The default maps contain only JSON-compatible values.
		panic("template: encoding default document: " + err.Error())
	}
	return Document(out)
}

func sharedDefault(family Family) map[string]any {
	return map[string]any{
		"family": string(family),
		"navbar": map[string]any{
			"title": "Your Brand",
			"logo":  "",
			"links": []any{
				map[string]any{"text": "Features", "url": "#features"},
				map[string]any{"text": "Pricing", "url": "#pricing"},
				map[string]any{"text": "FAQ", "url": "#faq"},
				map[string]any{"text": "Get Started", "url": "#pricing", "isButton": true},
			},
			"sticky":      true,
			"transparent": false,
		},
		"features": map[string]any{
			"title":    "Everything you need",
			"subtitle": "Built to help your product shine",
			"items": []any{
				map[string]any{"title": "Fast setup", "description": "Launch your page in minutes, not weeks.", "icon": "bolt"},
				map[string]any{"title": "Your own domain", "description": "Publish on a subdomain or bring your own.", "icon": "globe"},
				map[string]any{"title": "Built-in analytics", "description": "See visits, devices and countries at a glance.", "icon": "chart"},
			},
		},
		"faq": map[string]any{
			"title":    "Frequently asked questions",
			"subtitle": "Answers to the things people ask most",
			"items": []any{
				map[string]any{"question": "Can I use my own domain?", "answer": "Yes, connect a custom domain from the site settings."},
				map[string]any{"question": "Can I change the design later?", "answer": "Every text, image and color is editable at any time."},
			},
		},
		"testimonials": []any{
			map[string]any{"name": "Alex Morgan", "role": "Founder, Acme", "content": "Set up our product page in an afternoon.", "image": "", "rating": 5},
			map[string]any{"name": "Sam Lee", "role": "Indie maker", "content": "The fastest way I found to validate an idea.", "image": "", "rating": 5},
		},
		"brand": map[string]any{
			"name": "Your Brand",
			"logo": "",
		},
		"theme": map[string]any{
			"primaryColor":   DefaultPrimaryColor,
			"secondaryColor": DefaultSecondaryColor,
		},
	}
}

func modernDefault() map[string]any {
	m := sharedDefault(FamilyModern)
	m["hero"] = map[string]any{
		"title":       "Launch your product with a page that sells",
		"tagline":     "From idea to landing page in minutes",
		"description": "Showcase what you built, tell your story and start taking orders.",
		"cta":         map[string]any{"text": "Get started", "url": "#pricing"},
		"image":       "",
	}
	m["about"] = map[string]any{
		"title":       "About the product",
		"description": "Tell visitors what your product does and why you built it.",
		"image":       "",
		"features": []any{
			"Designed for small teams",
			"No code required",
			"Ready in minutes",
		},
	}
	m["whyChoose"] = map[string]any{
		"title":    "Why choose us",
		"subtitle": "What makes this product different",
		"benefits": []any{
			"Honest pricing with no surprises",
			"Support from real humans",
			"Your data stays yours",
		},
	}
	m["pricing"] = map[string]any{
		"title":    "Simple pricing",
		"subtitle": "Pick the plan that fits",
		"currency": DefaultCurrency,
		"plans": []any{
			map[string]any{"name": "Starter", "price": 9, "period": "month", "features": []any{"1 site", "Subdomain hosting", "Basic analytics"}},
			map[string]any{"name": "Pro", "price": 29, "period": "month", "features": []any{"5 sites", "Custom domain", "Full analytics"}, "isFeatured": true},
			map[string]any{"name": "Business", "price": 79, "period": "month", "features": []any{"Unlimited sites", "Priority support"}},
		},
	}
	return m
}

func minimalDefault() map[string]any {
	m := sharedDefault(FamilyMinimal)
	m["hero"] = map[string]any{
		"title":         "One product, one page",
		"tagline":       "Everything a buyer needs to say yes",
		"description":   "A focused page for a single product with a clear call to action.",
		"cta":           map[string]any{"text": "Buy now", "url": "#pricing"},
		"image":         "",
		"price":         49,
		"originalPrice": 79,
	}
	m["benefits"] = map[string]any{
		"title":    "What you get",
		"subtitle": "Three reasons people pick this product",
		"items": []any{
			map[string]any{"title": "Quality first", "description": "Built to last, backed by a guarantee.", "image": ""},
			map[string]any{"title": "Fast delivery", "description": "Ships within two business days.", "image": ""},
			map[string]any{"title": "Easy returns", "description": "30 days, no questions asked.", "image": ""},
		},
	}
	m["pricing"] = map[string]any{
		"title":    "Get yours today",
		"subtitle": "One price, everything included",
		"currency": DefaultCurrency,
		"price":    49,
		"period":   "one-time",
		"features": []any{"Free shipping", "30-day returns", "1-year warranty"},
	}
	return m
}
