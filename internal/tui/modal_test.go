package tui

import (
	"strings"
	"testing"

	xansi "github.com/charmbracelet/x/ansi"
)

func TestModalBoxWidthClamps(t *testing.T) {
	cases := []struct {
		width int
		want  int
	}{
		{0, 32},
		{20, 32},
		{40, 32},
		{60, 52},
		{120, 72},
		{500, 72},
	}
	for _, tc := range cases {
		if got := modalBoxWidth(tc.width); got != tc.want {
			t.Errorf("modalBoxWidth(%d) = %d, want %d", tc.width, got, tc.want)
		}
	}
}

func TestModalBodyWidthFitsInsideBox(t *testing.T) {
	for _, width := range []int{0, 40, 80, 200} {
		if body, box := modalBodyWidth(width), modalBoxWidth(width); body >= box {
			t.Errorf("width=%d: body %d not inside box %d", width, body, box)
		}
	}
}

func TestRenderInputLineStripsNewlines(t *testing.T) {
	line := renderInputLine(40, "hello\nworld\r!")
	if strings.ContainsAny(line, "\n\r") {
		t.Fatalf("expected a single visual line, got %q", line)
	}
	if !strings.Contains(line, "hello world !") {
		t.Fatalf("expected flattened content, got %q", line)
	}
}

func TestRenderInputLineNeverExceedsBodyWidth(t *testing.T) {
	long := strings.Repeat("x", 200)
	for _, bodyW := range []int{10, 24, 60} {
		line := renderInputLine(bodyW, long)
		if got := xansi.StringWidth(line); got > bodyW {
			t.Errorf("bodyW=%d: rendered width %d overflows", bodyW, got)
		}
	}
}

func TestRenderModalBoxContainsTitleAndContent(t *testing.T) {
	out := renderModalBox(80, "Add note", "content goes here")
	if !strings.Contains(out, "Add note") {
		t.Fatalf("expected title in modal, got %q", out)
	}
	if !strings.Contains(out, "content goes here") {
		t.Fatalf("expected content in modal, got %q", out)
	}
}
