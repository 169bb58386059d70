package cmd

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HaiFongPan/gdrive-picker/internal/config"
	"github.com/HaiFongPan/gdrive-picker/internal/drive"
	"github.com/HaiFongPan/gdrive-picker/internal/tui"
)

func TestOutputTable(t *testing.T) {
	size := int64(1500000)
	modified := time.Now().Add(-2 * time.Hour)
	page := &drive.ResultPage{
		Folders: []drive.Folder{{ID: "d1", Name: "Trips"}},
		Files: []drive.File{
			{ID: "f1", Name: "beach.jpg", MimeType: "image/jpeg", Size: &size, ModifiedTime: &modified},
			{ID: "f2", Name: "clip.mp4", MimeType: "video/mp4"},
		},
		NextPageToken: "next-1",
		HasFolders:    true,
	}

	var buf bytes.Buffer
	require.NoError(t, outputTable(&buf, page))
	out := buf.String()

	lines := strings.Split(out, "\n")
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.Contains(t, lines[1], "Trips/")
	assert.Contains(t, lines[1], "folder")
	assert.Contains(t, lines[2], "beach.jpg")
	assert.Contains(t, lines[2], "1.5 MB")
	assert.Contains(t, lines[2], "2 hours ago")
	assert.Contains(t, out, "--page-token next-1")
	assert.NotContains(t, out, "No files found.")
}

func TestOutputTable_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, outputTable(&buf, &drive.ResultPage{}))

	assert.Contains(t, buf.String(), "No files found.")
	assert.NotContains(t, buf.String(), "--page-token")
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{" yes \n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
	}

	for _, tt := range tests {
		var out bytes.Buffer
		got := confirm(strings.NewReader(tt.input), &out, "Sure? ")
		assert.Equal(t, tt.want, got, "input %q", tt.input)
		assert.Equal(t, "Sure? ", out.String())
	}
}

func TestPickerOptions(t *testing.T) {
	cfg := &config.Config{
		Picker: config.PickerConfig{
			MimeTypes:        []string{"image/png"},
			DefaultView:      "grid",
			ShowToolbar:      true,
			ShowBreadcrumb:   true,
			SearchDebounceMs: 400,
		},
	}

	t.Run("config only", func(t *testing.T) {
		opts := pickerOptions(&cobra.Command{}, cfg, nil)
		assert.False(t, opts.Multiple)
		assert.Equal(t, []string{"image/png"}, opts.MimeTypes)
		assert.Equal(t, tui.ViewGrid, opts.DefaultView)
		assert.True(t, opts.ShowToolbar)
		assert.True(t, opts.ShowBreadcrumb)
		assert.Equal(t, 400*time.Millisecond, opts.SearchDebounce)
	})

	t.Run("saved view wins over config", func(t *testing.T) {
		opts := pickerOptions(&cobra.Command{}, cfg, &config.UserData{ViewMode: "list"})
		assert.Equal(t, tui.ViewList, opts.DefaultView)
	})

	t.Run("flags win", func(t *testing.T) {
		pickMimeTypes = []string{"video/mp4"}
		pickView = "list"
		noToolbar = true
		noBreadcrumb = true
		t.Cleanup(func() {
			pickMimeTypes = nil
			pickView = ""
			noToolbar = false
			noBreadcrumb = false
		})

		opts := pickerOptions(&cobra.Command{}, cfg, &config.UserData{ViewMode: "grid"})
		assert.Equal(t, []string{"video/mp4"}, opts.MimeTypes)
		assert.Equal(t, tui.ViewList, opts.DefaultView)
		assert.False(t, opts.ShowToolbar)
		assert.False(t, opts.ShowBreadcrumb)
	})
}
