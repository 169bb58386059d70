package image

import (
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solidImage(w, h int, c color.Color) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestNewRenderer_Method(t *testing.T) {
	assert.Equal(t, ProtocolNone, NewRenderer("none").Protocol)
	assert.False(t, NewRenderer("none").Enabled())
	assert.Equal(t, ProtocolText, NewRenderer("TEXT").Protocol)
}

func TestDetectTerminal(t *testing.T) {
	tests := []struct {
		name         string
		env          map[string]string
		wantTerminal TerminalType
		wantProtocol GraphicsProtocol
	}{
		{"kitty", map[string]string{"KITTY_WINDOW_ID": "1"}, TerminalKitty, ProtocolKitty},
		{"ghostty", map[string]string{"TERM_PROGRAM": "ghostty"}, TerminalGhostty, ProtocolKitty},
		{"iterm", map[string]string{"TERM_PROGRAM": "iTerm.app"}, TerminalITerm2, ProtocolITerm},
		{"wezterm", map[string]string{"TERM_PROGRAM": "WezTerm"}, TerminalWezTerm, ProtocolITerm},
		{"sixel", map[string]string{"TERM": "mlterm"}, TerminalGeneric, ProtocolSixel},
		{"plain", map[string]string{"TERM": "xterm-256color"}, TerminalGeneric, ProtocolText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, k := range []string{"TERM", "TERM_PROGRAM", "KITTY_WINDOW_ID", "GHOSTTY_RESOURCES_DIR"} {
				t.Setenv(k, "")
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			term, protocol := DetectTerminal()
			assert.Equal(t, tt.wantTerminal, term)
			assert.Equal(t, tt.wantProtocol, protocol)
		})
	}
}

func TestRenderHalfBlocks(t *testing.T) {
	out := RenderHalfBlocks(solidImage(20, 20, color.NRGBA{R: 255, A: 255}), 10, 5)

	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 5)
	for _, line := range lines {
		assert.Equal(t, 10, strings.Count(line, "▀"))
		assert.True(t, strings.HasSuffix(line, "\x1b[0m"))
	}
	assert.Contains(t, out, "\x1b[38;2;255;0;0m")
}

func TestRenderHalfBlocks_KeepsAspectRatio(t *testing.T) {
	// a wide image only fills the top rows
	out := RenderHalfBlocks(solidImage(40, 10, color.White), 10, 10)
	lines := strings.Split(out, "\n")
	assert.Less(t, len(lines), 10)
	assert.Equal(t, 10, strings.Count(lines[0], "▀"))
}

func TestRenderer_Protocols(t *testing.T) {
	img := solidImage(32, 32, color.NRGBA{G: 255, A: 255})

	for _, protocol := range []GraphicsProtocol{ProtocolKitty, ProtocolITerm, ProtocolSixel, ProtocolText} {
		t.Run(string(protocol), func(t *testing.T) {
			r := &Renderer{TerminalType: TerminalGeneric, Protocol: protocol}
			out, err := r.Render(img, 4, 2)
			require.NoError(t, err)
			assert.NotEmpty(t, out)
		})
	}

	_, err := (&Renderer{Protocol: ProtocolNone}).Render(img, 4, 2)
	assert.Error(t, err)
}
