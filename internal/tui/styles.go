package tui

import "github.com/charmbracelet/lipgloss"

var (
	// Colors
	ColorPrimary = lipgloss.Color("#7D56F4")
	ColorAccent  = lipgloss.Color("#FFA500")
	ColorSuccess = lipgloss.Color("#04B575")
	ColorDanger  = lipgloss.Color("#FF4672")
	ColorMuted   = lipgloss.Color("#626262")
	ColorBorder  = lipgloss.Color("#3C3C3C")

	// Base styles
	AppStyle      = lipgloss.NewStyle().Padding(1, 2)
	TitleStyle    = lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)
	SubtitleStyle = lipgloss.NewStyle().Foreground(ColorMuted)

	FieldLabelStyle   = lipgloss.NewStyle().Width(16)
	FocusedLabelStyle = FieldLabelStyle.Foreground(ColorPrimary).Bold(true)

	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	StatusBarStyle = lipgloss.NewStyle().Foreground(ColorMuted)
	ErrorStyle     = lipgloss.NewStyle().Foreground(ColorDanger).Bold(true)
	InfoStyle      = lipgloss.NewStyle().Foreground(ColorSuccess)
)
