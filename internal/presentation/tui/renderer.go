// Package tui renders assistant replies for an interactive terminal.
package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// Renderer turns a markdown reply into terminal output.
type Renderer func(markdown string) (string, error)

// NewRenderer returns a glamour renderer that word-wraps at width.
// EMI schedules are markdown tables, so wrapping must leave room for them.
func NewRenderer(width int) Renderer {
	if width <= 0 {
		width = 100
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return Plain
	}

	return func(markdown string) (string, error) {
		out, err := r.Render(markdown)
		if err != nil {
			return markdown, err
		}
		return strings.TrimRight(out, "\n") + "\n", nil
	}
}

// Plain passes text through unchanged; used when stdout is not a terminal.
func Plain(markdown string) (string, error) {
	return strings.TrimRight(markdown, "\n") + "\n", nil
}
