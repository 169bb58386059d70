package tui

import (
	"github.com/HaiFongPan/gdrive-picker/internal/drive"
	"github.com/HaiFongPan/gdrive-picker/internal/picker"
	img "github.com/HaiFongPan/gdrive-picker/internal/tui/image"
)

// ConsentPromptMsg carries the consent URL while a sign-in waits for the
// browser, so the sign-in screen can show it
type ConsentPromptMsg struct {
	URL string
}

// Message types for tea.Cmd communication
type initDoneMsg struct {
	err error
}

type signInDoneMsg struct {
	err error
}

type signedOutMsg struct{}

type listingMsg struct {
	req  *picker.Request
	page *drive.ResultPage
	err  error
}

// searchMsg is sent by the debouncer once typing settles
type searchMsg struct {
	query string
}

type previewMsg struct {
	fileID  string
	preview *img.ThumbnailPreview
	err     error
}

type copiedMsg struct {
	id  string
	err error
}
