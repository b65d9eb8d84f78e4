package ui

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var idDigitsStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))

// HighlightID returns a ticket ID with its significant digits highlighted,
// so T-000123 reads as T-000 followed by a bold 123.
func HighlightID(id string) string {
	if id == "" || !ColorEnabled() {
		return id
	}

	split := significantStart(id)
	if split >= len(id) {
		return id
	}
	return id[:split] + idDigitsStyle.Render(id[split:])
}

// significantStart returns the offset of the first non-zero digit after the
// ID prefix, keeping at least one digit.
func significantStart(id string) int {
	dash := strings.IndexByte(id, '-')
	if dash < 0 {
		return 0
	}
	i := dash + 1
	for i < len(id)-1 && id[i] == '0' {
		i++
	}
	return i
}

// ColorEnabled reports whether stdout is a terminal that accepts styling.
func ColorEnabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	return term.IsTerminal(int(os.Stdout.Fd()))
}
