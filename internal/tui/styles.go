package tui

import "github.com/charmbracelet/lipgloss"

const (
	gridColumns = 3
	cardWidth   = 30
	cardHeight  = 7
)

var (
	colorAccent  = lipgloss.Color("#8BC34A")
	colorMuted   = lipgloss.Color("#6B7280")
	colorWarning = lipgloss.Color("#FFC107")
	colorDanger  = lipgloss.Color("#E53935")
	colorBorder  = lipgloss.Color("#2A3850")

	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	mutedStyle  = lipgloss.NewStyle().Foreground(colorMuted)
	errorStyle  = lipgloss.NewStyle().Foreground(colorDanger)
	warnStyle   = lipgloss.NewStyle().Foreground(colorWarning)

	tabStyle       = lipgloss.NewStyle().Padding(0, 1).Foreground(colorMuted)
	activeTabStyle = tabStyle.Foreground(colorAccent).Bold(true).Underline(true)

	cardStyle = lipgloss.NewStyle().
			Width(cardWidth).
			Height(cardHeight).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder)
	selectedCardStyle = cardStyle.BorderForeground(colorAccent)
	lockedCardStyle   = cardStyle.BorderForeground(colorWarning)

	dialogStyle = lipgloss.NewStyle().
			Padding(1, 2).
			Border(lipgloss.DoubleBorder()).
			BorderForeground(colorAccent)
	confirmStyle = dialogStyle.BorderForeground(colorWarning)
)
