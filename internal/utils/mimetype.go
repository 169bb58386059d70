package utils

import (
	"mime"
	"strings"
)

const googleAppsPrefix = "application/vnd.google-apps."

// IsImageType checks if the content type represents an image
func IsImageType(contentType string) bool {
	return strings.HasPrefix(contentType, "image/")
}

// IsVideoType checks if the content type represents a video
func IsVideoType(contentType string) bool {
	return strings.HasPrefix(contentType, "video/")
}

// IsValidMimeType reports whether s is a lowercase type/subtype media type,
// the form Drive reports and matches in queries
func IsValidMimeType(s string) bool {
	if !strings.Contains(s, "/") {
		return false
	}
	mediaType, params, err := mime.ParseMediaType(s)
	return err == nil && len(params) == 0 && mediaType == s
}

// GetFileCategory returns a general category for the content type
func GetFileCategory(contentType string) string {
	switch {
	case contentType == googleAppsPrefix+"folder":
		return "folder"
	case strings.HasPrefix(contentType, "image/"):
		return "image"
	case strings.HasPrefix(contentType, "video/"):
		return "video"
	case strings.HasPrefix(contentType, "audio/"):
		return "audio"
	case strings.HasPrefix(contentType, "text/"):
		return "text"
	case contentType == googleAppsPrefix+"spreadsheet" || strings.Contains(contentType, "spreadsheet"):
		return "spreadsheet"
	case contentType == googleAppsPrefix+"presentation" || strings.Contains(contentType, "presentation"):
		return "presentation"
	case contentType == googleAppsPrefix+"document" || strings.Contains(contentType, "pdf") || strings.Contains(contentType, "wordprocessing"):
		return "document"
	case strings.Contains(contentType, "zip") || strings.Contains(contentType, "tar") || strings.Contains(contentType, "gzip"):
		return "archive"
	default:
		return "other"
	}
}

// ShortType returns the subtype of a MIME type for compact display
func ShortType(contentType string) string {
	if i := strings.LastIndexAny(contentType, "/."); i >= 0 && i+1 < len(contentType) {
		return contentType[i+1:]
	}
	return contentType
}
