// Copyright (c) 2025-2026 PageCraft Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package editor wraps the pure template reducer with the stateful concerns
// it must not know about: holding the current state, serializing dispatches,
// and persisting changed slices to the session after each reduction.
package editor

import (
	"context"
	"log/slog"
	"sync"

	"github.com/pagecraft/pagecraft/internal/template"
)

// Persister stores one serialized state slice. Implementations decide
// durability; the editor only promises to call it after every successful
// reduction that touches a persisted slice.
type Persister interface {
	PersistSlice(ctx context.Context, slice string, data []byte) error
}

// Editor holds one user's editing state and applies actions in dispatch
// order. A persist failure is logged and never fails the dispatch - the edit
// stays applied in memory, so a flaky session store cannot lose keystrokes.
type Editor struct {
	mu        sync.Mutex
	state     template.State
	persister Persister
	log       *slog.Logger
}

// New creates an editor over an initial state. persister may be nil, in which
// case edits are memory-only.
func New(initial template.State, p Persister, log *slog.Logger) *Editor {
	return &Editor{state: initial, persister: p, log: log}
}

// State returns the current state.
func (e *Editor) State() template.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Dispatch applies one action. Actions are serialized under the editor's
// lock, so concurrent dispatches apply last-write-wins per path in arrival
// order.
func (e *Editor) Dispatch(ctx context.Context, action template.Action) (template.State, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	next, err := template.Apply(e.state, action)
	if err != nil {
		return e.state, err
	}
	e.state = next

	if slice := action.Slice(); slice != "" && e.persister != nil {
		data, err := next.SliceData(slice)
		if err != nil {
			e.log.Warn("serializing editor state slice failed", "slice", slice, "error", err)
			return next, nil
		}
		if err := e.persister.PersistSlice(ctx, slice, data); err != nil {
			e.log.Warn("persisting editor state failed", "slice", slice, "error", err)
		}
	}
	return next, nil
}
