// Copyright (c) 2025-2026 PageCraft Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package render converts user-authored markdown to sanitized HTML for the
// public site surface.
package render

import (
	"bytes"
	"fmt"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var md = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
)

// Markdown output is sanitized with the UGC policy since the source is
// site-owner input, not trusted local files.
var policy = bluemonday.UGCPolicy()

// Markdown converts a markdown string to sanitized HTML.
func Markdown(source string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("converting markdown: %w", err)
	}
	return policy.Sanitize(buf.String()), nil
}
