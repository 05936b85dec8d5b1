package ui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// DefaultWidth is the word-wrap width for rendered previews.
const DefaultWidth = 100

// RenderMarkdown renders a note preview. Without a terminal the plain notty
// style is used so the output stays free of escape codes.
func RenderMarkdown(content string, width int, tty bool) (string, error) {
	if width <= 0 {
		width = DefaultWidth
	}
	style := "notty"
	if tty {
		style = "dark"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}
	rendered, err := r.Render(content)
	if err != nil {
		return "", err
	}
	// glamour adds trailing newlines; normalize to a single trailing newline.
	return strings.TrimRight(rendered, "\n") + "\n", nil
}
