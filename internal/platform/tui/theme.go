package tui

import "github.com/charmbracelet/lipgloss"

// Theme holds the lipgloss styles of the CLI output.
type Theme struct {
	Title   lipgloss.Style
	Label   lipgloss.Style
	Value   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Muted   lipgloss.Style
}

// DefaultTheme returns the neon palette shared by the progress view and tables.
func DefaultTheme() Theme {
	return Theme{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("51")), // Cyan
		Label:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Value:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("255")),
		Success: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("46")),  // Lime green
		Warning: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214")), // Orange
		Error:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
	}
}
