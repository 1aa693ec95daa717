// Copyright (c) 2025-2026 PageCraft Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package template implements the showcase template document model: a nested,
// path-addressable JSON document with two template families, a reducer-driven
// mutation protocol and a bidirectional mapping to the flattened site row.
package template

import (
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Family discriminates the two template shapes. The modern family carries
// about/whyChoose sections, the minimal family carries benefits and a flat
// single-product pricing block.
type Family string

// Template families
const (
	FamilyModern  Family = "modern"
	FamilyMinimal Family = "minimal"
)

// ParseFamily validates a family string, defaulting to modern when empty.
func ParseFamily(s string) (Family, error) {
	switch Family(s) {
	case FamilyModern, FamilyMinimal:
		return Family(s), nil
	case "":
		return FamilyModern, nil
	default:
		return "", fmt.Errorf("unknown template family %q", s)
	}
}

// Document is a nested template document held as raw JSON. All mutation
// helpers return a new buffer; the receiver is never modified in place, so
// callers can diff old vs new by reference.
type Document []byte

// MarshalJSON implements json.Marshaler.
func (d Document) MarshalJSON() ([]byte, error) {
	if len(d) == 0 {
		return []byte("null"), nil
	}
	return d, nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Document) UnmarshalJSON(b []byte) error {
	*d = append((*d)[:0], b...)
	return nil
}

// String returns the document as a JSON string.
func (d Document) String() string { return string(d) }

// IsZero reports whether the document is empty.
func (d Document) IsZero() bool { return len(d) == 0 }

// Get resolves a dotted path (array indexes as numeric segments, e.g.
// "features.items.2.title").
func (d Document) Get(path string) gjson.Result {
	return gjson.GetBytes(d, path)
}

// Has reports whether the path exists in the document.
func (d Document) Has(path string) bool {
	return d.Get(path).Exists()
}

// Family returns the document's family discriminant, defaulting to modern.
func (d Document) Family() Family {
	f, err := ParseFamily(d.Get("family").String())
	if err != nil {
		return FamilyModern
	}
	return f
}

// Set writes a value at the dotted path, creating intermediate objects as
// needed, and returns the updated document. Empty strings and nil are legal
// values and are stored as-is, never coerced to a deletion.
func (d Document) Set(path string, value any) (Document, error) {
	if path == "" {
		return nil, fmt.Errorf("empty document path")
	}
	src := d
	if len(src) == 0 {
		src = Document(`{}`)
	}
	out, err := sjson.SetBytes(src, path, value)
	if err != nil {
		return nil, fmt.Errorf("setting %q: %w", path, err)
	}
	return Document(out), nil
}

// SetRaw writes pre-encoded JSON at the dotted path.
func (d Document) SetRaw(path string, raw []byte) (Document, error) {
	if path == "" {
		return nil, fmt.Errorf("empty document path")
	}
	src := d
	if len(src) == 0 {
		src = Document(`{}`)
	}
	out, err := sjson.SetRawBytes(src, path, raw)
	if err != nil {
		return nil, fmt.Errorf("setting %q: %w", path, err)
	}
	return Document(out), nil
}

var hexColorRe = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// IsHexColor reports whether s is a #rgb or #rrggbb color.
func IsHexColor(s string) bool {
	return hexColorRe.MatchString(s)
}

// WithDefaults overlays the document on top of the family defaults so that
// every leaf the renderer or editor reads resolves to a concrete value.
// Theme colors that are missing or not valid hex fall back to the brand
// defaults.
func WithDefaults(d Document, family Family) (Document, error) {
	base := map[string]any{}
	if err := json.Unmarshal(Default(family), &base); err != nil {
		return nil, fmt.Errorf("decoding default document: %w", err)
	}

	if len(d) > 0 {
		overlay := map[string]any{}
		if err := json.Unmarshal(d, &overlay); err != nil {
			return nil, fmt.Errorf("decoding document: %w", err)
		}
		deepMerge(base, overlay)
	}

	// Theme colors must always be valid hex strings.
	if theme, ok := base["theme"].(map[string]any); ok {
		if c, _ := theme["primaryColor"].(string); !IsHexColor(c) {
			theme["primaryColor"] = DefaultPrimaryColor
		}
		if c, _ := theme["secondaryColor"].(string); !IsHexColor(c) {
			theme["secondaryColor"] = DefaultSecondaryColor
		}
	}

	out, err := json.Marshal(base)
	if err != nil {
		return nil, fmt.Errorf("encoding document: %w", err)
	}
	return Document(out), nil
}

// deepMerge overlays src onto dst in place. Nested objects merge key by key;
// arrays and scalars replace wholesale.
func deepMerge(dst, src map[string]any) {
	for k, v := range src {
		sv, srcIsMap := v.(map[string]any)
		dv, dstIsMap := dst[k].(map[string]any)
		if srcIsMap && dstIsMap {
			deepMerge(dv, sv)
			continue
		}
		dst[k] = v
	}
}
