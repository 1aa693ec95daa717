// Copyright (c) 2025-2026 PageCraft Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package render

import (
	"strings"
	"testing"
)

func TestMarkdown(t *testing.T) {
	html, err := Markdown("# Title\n\nSome **bold** text.")
	if err != nil {
		t.Fatalf("Markdown: %v", err)
	}
	if !strings.Contains(html, "<h1") || !strings.Contains(html, "<strong>bold</strong>") {
		t.Errorf("unexpected output: %s", html)
	}
}

func TestMarkdownTables(t *testing.T) {
	html, err := Markdown("| a | b |\n|---|---|\n| 1 | 2 |")
	if err != nil {
		t.Fatalf("Markdown: %v", err)
	}
	if !strings.Contains(html, "<table") {
		t.Errorf("GFM table not rendered: %s", html)
	}
}

func TestMarkdownSanitizesHTML(t *testing.T) {
	html, err := Markdown("hello <script>alert(1)</script> world")
	if err != nil {
		t.Fatalf("Markdown: %v", err)
	}
	if strings.Contains(html, "<script") || strings.Contains(html, "alert(1)") {
		t.Errorf("script survived sanitization: %s", html)
	}
	if !strings.Contains(html, "hello") || !strings.Contains(html, "world") {
		t.Errorf("content lost: %s", html)
	}
}
