package theme

import (
	"github.com/charmbracelet/lipgloss"
)

// CreateDialogStyle creates a bordered dialog box
func CreateDialogStyle(width int, borderColor string) lipgloss.Style {
	if borderColor == "" {
		borderColor = ColorBrightBlue
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(borderColor)).
		Padding(1, 3).
		Width(width).
		Align(lipgloss.Center).
		Foreground(lipgloss.Color(ColorWhite))
}

// CreatePromptStyle creates a style for prompt text in dialogs
func CreatePromptStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorBrightYellow)).
		Bold(true).
		Align(lipgloss.Center)
}

// CreateButtonStyle creates a style for the dialog action, e.g. "Sign in with Google"
func CreateButtonStyle(focused bool) lipgloss.Style {
	style := lipgloss.NewStyle().
		Padding(0, 2).
		Margin(1, 1, 0).
		Border(lipgloss.RoundedBorder())

	if focused {
		return style.
			Foreground(lipgloss.Color("#000000")).
			Background(lipgloss.Color(ColorBrightYellow)).
			BorderForeground(lipgloss.Color(ColorBrightYellow))
	}

	return style.
		Foreground(lipgloss.Color(ColorBrightCyan)).
		BorderForeground(lipgloss.Color(ColorBrightCyan))
}
