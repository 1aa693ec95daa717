// Copyright (c) 2025-2026 PageCraft Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package template

import (
	"encoding/json"
	"fmt"

	"github.com/microcosm-cc/bluemonday"
)

// ugcPolicy strips anything beyond basic formatting from user-authored copy.
// Policies are safe for concurrent use.
var ugcPolicy = bluemonday.UGCPolicy()

// Sanitize returns a copy of the document with every string leaf run through
// the UGC sanitizer. Called at save time so persisted columns never carry
// unsafe markup.
func Sanitize(d Document) (Document, error) {
	if len(d) == 0 {
		return d, nil
	}
	var v any
	if err := json.Unmarshal(d, &v); err != nil {
		return nil, fmt.Errorf("decoding document: %w", err)
	}
	v = sanitizeValue(v)
	out, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding document: %w", err)
	}
	return Document(out), nil
}

func sanitizeValue(v any) any {
	switch t := v.(type) {
	case string:
		return ugcPolicy.Sanitize(t)
	case map[string]any:
		for k, e := range t {
			t[k] = sanitizeValue(e)
		}
		return t
	case []any:
		for i, e := range t {
			t[i] = sanitizeValue(e)
		}
		return t
	default:
		return v
	}
}
