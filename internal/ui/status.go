package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/amonks/muontickets/ticket"
)

var statusStyles = map[ticket.Status]lipgloss.Style{
	ticket.StatusReady:       lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
	ticket.StatusClaimed:     lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
	ticket.StatusBlocked:     lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
	ticket.StatusNeedsReview: lipgloss.NewStyle().Foreground(lipgloss.Color("5")),
	ticket.StatusDone:        lipgloss.NewStyle().Faint(true),
}

var (
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1"))
	warningStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("3"))
)

// FormatStatus renders a status name, coloured when stdout allows it.
func FormatStatus(status ticket.Status) string {
	style, ok := statusStyles[status]
	if !ok || !ColorEnabled() {
		return string(status)
	}
	return style.Render(string(status))
}

// FormatSeverity renders an issue severity label.
func FormatSeverity(severity string) string {
	if !ColorEnabled() {
		return severity
	}
	if severity == "error" {
		return errorStyle.Render(severity)
	}
	return warningStyle.Render(severity)
}
