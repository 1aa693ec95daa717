// Copyright (c) 2025-2026 PageCraft Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package editor

import (
	"context"
	"encoding/json"

	"github.com/alexedwards/scs/v2"

	"github.com/pagecraft/pagecraft/internal/template"
)

// SessionPersister stores state slices in the caller's server-side session.
// Durability is session-scoped on purpose: a reload within the session
// rehydrates the editor, a new session starts clean.
type SessionPersister struct {
	sessions *scs.SessionManager
}

// NewSessionPersister wraps a session manager.
func NewSessionPersister(sm *scs.SessionManager) *SessionPersister {
	return &SessionPersister{sessions: sm}
}

// PersistSlice writes one serialized slice under its slice name.
func (p *SessionPersister) PersistSlice(ctx context.Context, slice string, data []byte) error {
	p.sessions.Put(ctx, slice, data)
	return nil
}

// LoadState rehydrates editor state from the session. Missing or corrupt
// slices fall back to the provided base state, so a damaged session never
// blocks the editor from opening.
func LoadState(ctx context.Context, sm *scs.SessionManager, base template.State) template.State {
	load := template.LoadData{}

	if data := sm.GetBytes(ctx, template.SliceTemplate); len(data) > 0 && json.Valid(data) {
		load.Template = template.Document(data)
	}
	if data := sm.GetBytes(ctx, template.SliceSEO); len(data) > 0 && json.Valid(data) {
		load.SEO = json.RawMessage(data)
	}
	if data := sm.GetBytes(ctx, template.SliceDomain); len(data) > 0 {
		var domain string
		if err := json.Unmarshal(data, &domain); err == nil {
			load.Domain = domain
		}
	}
	if data := sm.GetBytes(ctx, template.SliceLanguage); len(data) > 0 {
		var lang string
		if err := json.Unmarshal(data, &lang); err == nil {
			load.Language = lang
		}
	}

	state, err := template.Apply(base, load)
	if err != nil {
		return base
	}
	return state
}
