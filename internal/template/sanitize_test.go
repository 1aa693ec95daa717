package template

import (
	"strings"
	"testing"
)

func TestSanitize_StripsScriptFromLeaves(t *testing.T) {
	doc := Document(`{"hero":{"title":"Hi <script>alert(1)</script>","cta":{"text":"<b>Go</b>"}},"testimonials":[{"content":"<img src=\"x\" onerror=\"alert(1)\">ok"}]}`)

	out, err := Sanitize(doc)
	if err != nil {
		t.Fatalf("Sanitize failed: %v", err)
	}

	title := out.Get("hero.title").String()
	if strings.Contains(title, "script") || strings.Contains(title, "alert") {
		t.Errorf("script tag survived: %q", title)
	}
	if !strings.Contains(title, "Hi") {
		t.Errorf("plain text was lost: %q", title)
	}
	if got := out.Get("hero.cta.text").String(); got != "<b>Go</b>" {
		t.Errorf("basic formatting should survive the UGC policy: %q", got)
	}
	if got := out.Get("testimonials.0.content").String(); strings.Contains(got, "onerror") {
		t.Errorf("event handler survived: %q", got)
	}
}

func TestSanitize_EmptyDocument(t *testing.T) {
	out, err := Sanitize(nil)
	if err != nil {
		t.Fatalf("Sanitize failed: %v", err)
	}
	if len(out) != 0 {
		t.Errorf("expected empty document, got %s", out)
	}
}
