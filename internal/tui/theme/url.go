package theme

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// URLColorCode is the ANSI 256 color used for links
const URLColorCode = "51"

// FormatClickableURL formats a URL as an OSC 8 hyperlink so terminals that
// support it open the consent page on click
func FormatClickableURL(displayText, url string) string {
	hyperlink := fmt.Sprintf("\033]8;;%s\033\\%s\033]8;;\033\\", url, displayText)
	return fmt.Sprintf("\033[38;5;%sm\033[4m%s\033[0m", URLColorCode, hyperlink)
}

// CreateHintStyle creates a style for hints and tips
func CreateHintStyle() lipgloss.Style {
	return CreateSecondaryTextStyle()
}
