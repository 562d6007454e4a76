package tui

import "github.com/charmbracelet/lipgloss"

var (
	// Colors
	primaryColor = lipgloss.Color("39")  // Blue
	accentColor  = lipgloss.Color("205") // Pink
	mutedColor   = lipgloss.Color("241") // Gray
	successColor = lipgloss.Color("76")  // Green
	errorColor   = lipgloss.Color("196") // Red
	borderColor  = lipgloss.Color("63")  // Soft purple

	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(primaryColor)
	subtitleStyle = lipgloss.NewStyle().Foreground(mutedColor)
	groupKeyStyle = lipgloss.NewStyle().Bold(true).Foreground(accentColor)
	taskKeyStyle  = lipgloss.NewStyle().Bold(true).Foreground(successColor)
	errorStyle    = lipgloss.NewStyle().Foreground(errorColor)

	frameStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor).
			Padding(0, 1)
)
