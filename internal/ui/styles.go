// Package ui renders command reports for the terminal.
package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Status symbols. Colors are reserved for paths and hints.
const (
	SymbolSuccess = "✓"
	SymbolError   = "✗"
	SymbolWarning = "⚠"
	SymbolPreview = "○"
)

var (
	// Accent style for file paths and attachment names.
	Accent = lipgloss.NewStyle().Foreground(lipgloss.Color("#A78BFA"))

	// Muted style for secondary info, hints, line numbers.
	Muted = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086"))

	// Bold style for headers.
	Bold = lipgloss.NewStyle().Bold(true)
)

// Path styles a vault path.
func Path(p string) string { return Accent.Render(p) }

// Hint styles secondary text.
func Hint(msg string) string { return Muted.Render(msg) }

// Header styles a section header.
func Header(msg string) string { return Bold.Render(msg) }

// LineNum formats a 1-based line number.
func LineNum(n int) string { return Muted.Render(fmt.Sprintf("%d:", n)) }

// Count formats n with its singular or plural noun.
func Count(n int, singular, plural string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, singular)
	}
	return fmt.Sprintf("%d %s", n, plural)
}
