package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

// Modal chrome shared by the login form and every add-modal.

func modalBoxWidth(width int) int {
	w := width - 8
	if w > 72 {
		w = 72
	}
	if w < 32 {
		w = 32
	}
	return w
}

// modalBodyWidth is the inner width available to modal content.
func modalBodyWidth(width int) int {
	return modalBoxWidth(width) - 4
}

func renderModalBox(width int, title string, content string) string {
	boxW := modalBoxWidth(width)
	bodyW := modalBodyWidth(width)

	titleLine := styleAccent().Width(bodyW).Render(title)
	body := lipgloss.NewStyle().Width(bodyW).Render(content)

	box := lipgloss.NewStyle().
		Width(boxW).
		Padding(1, 2).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorAccent).
		Render(titleLine + "\n\n" + body)
	return box
}

// renderInputLine renders a single-line text input inside a modal body.
// Text inputs should always render as one visual line: if the view ever
// contains newlines (or overflows due to ANSI/cursor styling), it can trigger
// wrapping that looks like "newline insertion" while typing.
func renderInputLine(bodyW int, inputView string) string {
	if bodyW < 10 {
		bodyW = 10
	}

	inputView = strings.ReplaceAll(inputView, "\n", " ")
	inputView = strings.ReplaceAll(inputView, "\r", " ")

	line := lipgloss.PlaceHorizontal(
		bodyW,
		lipgloss.Left,
		" "+inputView+" ",
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceBackground(colorInputBg),
	)
	if xansi.StringWidth(line) > bodyW {
		// Never exceed the modal body width; terminate ANSI styling to
		// prevent bleed.
		line = xansi.Cut(line, 0, bodyW) + "\x1b[0m"
	}
	return line
}

// placeCentered centers a modal over the full window.
func placeCentered(width, height int, s string) string {
	if width <= 0 || height <= 0 {
		return s
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, s)
}
