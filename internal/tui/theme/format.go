package theme

import "fmt"

// FormatSelectionCount renders "1 file selected" or "N files selected"
func FormatSelectionCount(n int) string {
	if n == 1 {
		return "1 file selected"
	}
	return fmt.Sprintf("%d files selected", n)
}

// FormatSuccessMessage formats a success message
func FormatSuccessMessage(operation, subject string) string {
	return fmt.Sprintf("%s %s", operation, subject)
}

// FormatErrorMessage formats an error message
func FormatErrorMessage(operation string, err error) string {
	return fmt.Sprintf("%s failed: %v", operation, err)
}
