// Copyright (c) 2025-2026 PageCraft Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package template

import (
	"encoding/json"
	"fmt"
)

// Persisted state slice names. Each slice is serialized independently to the
// editor's session store after a successful reduction.
const (
	SliceTemplate = "templateData"
	SliceSEO      = "seo"
	SliceDomain   = "domain"
	SliceLanguage = "languagePreference"
)

// State is the editor's top-level state: the template document plus its
// sibling slices. It is treated as immutable; Apply returns a new State.
type State struct {
	Template Document        `json:"templateData"`
	SEO      json.RawMessage `json:"seo,omitempty"`
	Domain   string          `json:"domain,omitempty"`
	Language string          `json:"languagePreference,omitempty"`
}

// Action is one editor mutation. Slice names the persisted state slice the
// action touches; LoadData returns "" since it hydrates from the store rather
// than writing to it.
type Action interface {
	Slice() string
}

// UpdateField sets a single leaf addressed by a dotted path, e.g.
// "features.items.2.title". Intermediate objects are created as needed;
// arrays are never resized implicitly, callers splice arrays and set the
// parent path instead.
type UpdateField struct {
	Path  string `json:"path"`
	Value any    `json:"value"`
}

// ThemeColors is the full theme payload for UpdateTheme.
type ThemeColors struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
	Text      string `json:"text"`
	Accent    string `json:"accent"`
}

// UpdateTheme replaces the document's theme object wholesale with exactly
// four keys. This is a replace, not a merge: any extra keys a previous theme
// carried are dropped.
type UpdateTheme struct {
	Colors ThemeColors `json:"colors"`
}

// UpdateSEO replaces the SEO slice.
type UpdateSEO struct {
	Data json.RawMessage `json:"data"`
}

// UpdateDomain replaces the domain slice.
type UpdateDomain struct {
	Domain string `json:"domain"`
}

// UpdateLanguage replaces the language preference slice.
type UpdateLanguage struct {
	Preference string `json:"preference"`
}

// LoadData shallow-merges a partial state; empty fields keep their current
// value. Used to hydrate from the session cache on editor mount.
type LoadData struct {
	Template Document        `json:"templateData,omitempty"`
	SEO      json.RawMessage `json:"seo,omitempty"`
	Domain   string          `json:"domain,omitempty"`
	Language string          `json:"languagePreference,omitempty"`
}

// Slice implementations.
func (UpdateField) Slice() string    { return SliceTemplate }
func (UpdateTheme) Slice() string    { return SliceTemplate }
func (UpdateSEO) Slice() string      { return SliceSEO }
func (UpdateDomain) Slice() string   { return SliceDomain }
func (UpdateLanguage) Slice() string { return SliceLanguage }
func (LoadData) Slice() string       { return "" }

// Apply reduces one action into a new state. The input state is never
// mutated, so callers can diff old vs new by reference.
func Apply(s State, a Action) (State, error) {
	switch act := a.(type) {
	case UpdateField:
		doc, err := s.Template.Set(act.Path, act.Value)
		if err != nil {
			return s, err
		}
		s.Template = doc
		return s, nil

	case UpdateTheme:
		raw, err := json.Marshal(map[string]string{
			"primaryColor":   act.Colors.Primary,
			"secondaryColor": act.Colors.Secondary,
			"textColor":      act.Colors.Text,
			"accentColor":    act.Colors.Accent,
		})
		if err != nil {
			return s, fmt.Errorf("encoding theme: %w", err)
		}
		doc, err := s.Template.SetRaw("theme", raw)
		if err != nil {
			return s, err
		}
		s.Template = doc
		return s, nil

	case UpdateSEO:
		s.SEO = append(json.RawMessage(nil), act.Data...)
		return s, nil

	case UpdateDomain:
		s.Domain = act.Domain
		return s, nil

	case UpdateLanguage:
		s.Language = act.Preference
		return s, nil

	case LoadData:
		if len(act.Template) > 0 {
			s.Template = append(Document(nil), act.Template...)
		}
		if len(act.SEO) > 0 {
			s.SEO = append(json.RawMessage(nil), act.SEO...)
		}
		if act.Domain != "" {
			s.Domain = act.Domain
		}
		if act.Language != "" {
			s.Language = act.Language
		}
		return s, nil

	default:
		return s, fmt.Errorf("unknown action %T", a)
	}
}

// SliceData returns the serialized form of one state slice, as written to the
// editor's session store.
func (s State) SliceData(slice string) ([]byte, error) {
	switch slice {
	case SliceTemplate:
		return append([]byte(nil), s.Template...), nil
	case SliceSEO:
		return append([]byte(nil), s.SEO...), nil
	case SliceDomain:
		return json.Marshal(s.Domain)
	case SliceLanguage:
		return json.Marshal(s.Language)
	default:
		return nil, fmt.Errorf("unknown state slice %q", slice)
	}
}
