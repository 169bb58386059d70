package theme

// Terminal-compatible color constants using ANSI standard colors
const (
	ColorWhite        = "#FFFFFF" // ANSI 15 - primary text
	ColorBrightBlack  = "#808080" // ANSI 8 - secondary text
	ColorBrightBlue   = "#5C7CFA" // ANSI 12 - primary accent
	ColorBrightCyan   = "#66D9E8" // ANSI 14 - secondary accent
	ColorBrightGreen  = "#51CF66" // ANSI 10 - success/links
	ColorBrightYellow = "#FFD43B" // ANSI 11 - warning
	ColorBrightRed    = "#FF6B6B" // ANSI 9 - error

	ColorSelectedBackground = "#4A90E2"
	ColorSkeleton           = "#3A3A3A"

	// File type colors
	ColorFileFolder       = "#FFD43B" // Yellow
	ColorFileImage        = "#74C0FC" // Light blue
	ColorFileDocument     = "#51CF66" // Green
	ColorFileSpreadsheet  = "#69DB7C" // Light green
	ColorFilePresentation = "#FCC419" // Amber
	ColorFileArchive      = "#E8590C" // Orange
	ColorFileVideo        = "#FF8787" // Light red
	ColorFileAudio        = "#DA77F2" // Purple
	ColorFileText         = "#B197FC" // Light purple
)

// Message levels, in the order messaging.MessageType declares them
const (
	levelInfo = iota
	levelSuccess
	levelWarning
	levelError
)

// GetFileColor returns the color for a given file category
func GetFileColor(category string) string {
	switch category {
	case "folder":
		return ColorFileFolder
	case "image":
		return ColorFileImage
	case "document":
		return ColorFileDocument
	case "spreadsheet":
		return ColorFileSpreadsheet
	case "presentation":
		return ColorFilePresentation
	case "archive":
		return ColorFileArchive
	case "video":
		return ColorFileVideo
	case "audio":
		return ColorFileAudio
	case "text":
		return ColorFileText
	default:
		return ColorWhite
	}
}

// GetCategoryIcon returns the emoji shown next to an entry of category
func GetCategoryIcon(category string) string {
	switch category {
	case "folder":
		return "📁"
	case "image":
		return "🖼️"
	case "video":
		return "🎬"
	case "audio":
		return "🎵"
	case "document":
		return "📝"
	case "spreadsheet":
		return "📊"
	case "presentation":
		return "📽️"
	case "archive":
		return "📦"
	default:
		return "📄"
	}
}

// GetMessageColor returns the color for a given message type
func GetMessageColor(messageType int) string {
	switch messageType {
	case levelError:
		return ColorBrightRed
	case levelSuccess:
		return ColorBrightGreen
	case levelWarning:
		return ColorBrightYellow
	default:
		return ColorBrightCyan
	}
}

// GetMessageIcon returns the icon for a given message type
func GetMessageIcon(messageType int) string {
	switch messageType {
	case levelError:
		return "❌"
	case levelSuccess:
		return "✅"
	case levelWarning:
		return "⚠️"
	default:
		return "ℹ️"
	}
}
