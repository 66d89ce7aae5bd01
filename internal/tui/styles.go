package tui

import "github.com/charmbracelet/lipgloss"

var (
	// HeaderStyle styles the column header row.
	HeaderStyle = lipgloss.NewStyle().Bold(true)

	statusStyles = map[string]lipgloss.Style{
		// Outcomes
		"success": lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		"error":   lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		"aborted": lipgloss.NewStyle().Foreground(lipgloss.Color("3")),

		// Switch states
		"remaining": lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
		"finished":  lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		"empty":     lipgloss.NewStyle().Faint(true),
	}
)

// StatusStyle returns the lipgloss style for the given status string.
func StatusStyle(status string) lipgloss.Style {
	if s, ok := statusStyles[status]; ok {
		return s
	}
	return lipgloss.NewStyle()
}
