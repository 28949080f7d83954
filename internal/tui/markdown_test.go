package tui

import (
	"strings"
	"testing"
)

func TestRenderMarkdownEmpty(t *testing.T) {
	if got := renderMarkdown("   \n", 60); got != "" {
		t.Fatalf("expected empty output, got %q", got)
	}
}

func TestRenderMarkdownKeepsText(t *testing.T) {
	out := renderMarkdown("# Heading\n\nplain body text", 60)
	if !strings.Contains(out, "Heading") {
		t.Fatalf("expected heading text, got %q", out)
	}
	if !strings.Contains(out, "plain body text") {
		t.Fatalf("expected body text, got %q", out)
	}
}

func TestRenderMarkdownReuseAcrossWidths(t *testing.T) {
	// Same input at different widths must both render; the cache is keyed by
	// width so the second call takes a different renderer.
	a := renderMarkdown("some note", 40)
	b := renderMarkdown("some note", 80)
	if a == "" || b == "" {
		t.Fatalf("expected non-empty renders, got %q / %q", a, b)
	}
}
