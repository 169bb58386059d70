package image

import (
	"fmt"
	"image"
	"image/color/palette"
	"image/draw"
	"os"
	"strings"

	"github.com/BourgeoisBear/rasterm"
	"github.com/disintegration/imaging"
)

// 每个终端单元格的近似像素尺寸
const (
	cellPixelWidth  = 8
	cellPixelHeight = 16
)

// TerminalType 终端类型
type TerminalType string

const (
	TerminalKitty   TerminalType = "kitty"
	TerminalITerm2  TerminalType = "iterm2"
	TerminalWezTerm TerminalType = "wezterm"
	TerminalGhostty TerminalType = "ghostty"
	TerminalGeneric TerminalType = "generic"
)

// GraphicsProtocol 图形协议
type GraphicsProtocol string

const (
	ProtocolKitty GraphicsProtocol = "kitty"
	ProtocolITerm GraphicsProtocol = "iterm2"
	ProtocolSixel GraphicsProtocol = "sixel"
	// ProtocolText draws with 24-bit colored half blocks
	ProtocolText GraphicsProtocol = "text"
	ProtocolNone GraphicsProtocol = "none"
)

// Renderer turns a decoded thumbnail into terminal output
type Renderer struct {
	TerminalType TerminalType
	Protocol     GraphicsProtocol
}

// NewRenderer picks the protocol from the preview method: "auto" detects the
// terminal, "text" forces half blocks and "none" disables previews
func NewRenderer(method string) *Renderer {
	switch strings.ToLower(method) {
	case "none":
		return &Renderer{TerminalType: TerminalGeneric, Protocol: ProtocolNone}
	case "text":
		return &Renderer{TerminalType: TerminalGeneric, Protocol: ProtocolText}
	}

	termType, protocol := DetectTerminal()
	return &Renderer{TerminalType: termType, Protocol: protocol}
}

// DetectTerminal 通过环境变量检测终端类型并选择图形协议，无法识别时回退到文本模式
func DetectTerminal() (TerminalType, GraphicsProtocol) {
	term := strings.ToLower(os.Getenv("TERM"))
	termProgram := strings.ToLower(os.Getenv("TERM_PROGRAM"))

	switch {
	case os.Getenv("KITTY_WINDOW_ID") != "" || strings.Contains(term, "kitty"):
		return TerminalKitty, ProtocolKitty
	case os.Getenv("GHOSTTY_RESOURCES_DIR") != "" || termProgram == "ghostty" || strings.Contains(term, "ghostty"):
		return TerminalGhostty, ProtocolKitty
	case termProgram == "iterm.app":
		return TerminalITerm2, ProtocolITerm
	case termProgram == "wezterm":
		// WezTerm 支持 iTerm2 协议
		return TerminalWezTerm, ProtocolITerm
	}

	for _, sixelTerm := range []string{"xterm-sixel", "mlterm", "yaft"} {
		if strings.Contains(term, sixelTerm) {
			return TerminalGeneric, ProtocolSixel
		}
	}

	return TerminalGeneric, ProtocolText
}

// Enabled reports whether previews are rendered at all
func (r *Renderer) Enabled() bool {
	return r.Protocol != ProtocolNone
}

// Render fits img into cols x rows terminal cells
func (r *Renderer) Render(img image.Image, cols, rows int) (string, error) {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}

	switch r.Protocol {
	case ProtocolKitty:
		return r.renderKitty(img, cols, rows)
	case ProtocolITerm:
		return r.renderITerm(img, cols, rows)
	case ProtocolSixel:
		return r.renderSixel(img, cols, rows)
	case ProtocolText:
		return RenderHalfBlocks(img, cols, rows), nil
	default:
		return "", &RenderError{Terminal: string(r.TerminalType), Protocol: string(r.Protocol), Err: fmt.Errorf("previews disabled")}
	}
}

func (r *Renderer) renderKitty(img image.Image, cols, rows int) (string, error) {
	fitted := imaging.Fit(img, cols*cellPixelWidth, rows*cellPixelHeight, imaging.Lanczos)
	usedCols, usedRows := cellsFor(fitted.Bounds().Dx(), fitted.Bounds().Dy())

	var out strings.Builder
	opts := rasterm.KittyImgOpts{DstCols: uint32(usedCols), DstRows: uint32(usedRows)}
	if err := rasterm.KittyWriteImage(&out, fitted, opts); err != nil {
		return "", r.wrap(fmt.Errorf("failed to encode image with Kitty protocol: %w", err))
	}
	return out.String(), nil
}

func (r *Renderer) renderITerm(img image.Image, cols, rows int) (string, error) {
	fitted := imaging.Fit(img, cols*cellPixelWidth, rows*cellPixelHeight, imaging.Lanczos)

	var out strings.Builder
	if err := rasterm.ItermWriteImage(&out, fitted); err != nil {
		return "", r.wrap(fmt.Errorf("failed to encode image with iTerm2 protocol: %w", err))
	}
	return out.String(), nil
}

func (r *Renderer) renderSixel(img image.Image, cols, rows int) (string, error) {
	fitted := imaging.Fit(img, cols*cellPixelWidth, rows*cellPixelHeight, imaging.Lanczos)

	// Sixel 需要调色板图像
	bounds := fitted.Bounds()
	paletted := image.NewPaletted(bounds, palette.Plan9)
	draw.FloydSteinberg.Draw(paletted, bounds, fitted, image.Point{})

	var out strings.Builder
	if err := rasterm.SixelWriteImage(&out, paletted); err != nil {
		return "", r.wrap(fmt.Errorf("failed to encode image with Sixel protocol: %w", err))
	}
	return out.String(), nil
}

func (r *Renderer) wrap(err error) error {
	return &RenderError{Terminal: string(r.TerminalType), Protocol: string(r.Protocol), Err: err}
}

// RenderHalfBlocks draws img with "▀" cells: the foreground colors the upper
// pixel and the background the lower one, so each row covers two pixels
func RenderHalfBlocks(img image.Image, cols, rows int) string {
	fitted := imaging.Fit(img, cols, rows*2, imaging.Lanczos)
	b := fitted.Bounds()

	var out strings.Builder
	for y := b.Min.Y; y < b.Max.Y; y += 2 {
		for x := b.Min.X; x < b.Max.X; x++ {
			top := fitted.NRGBAAt(x, y)
			bottom := top
			if y+1 < b.Max.Y {
				bottom = fitted.NRGBAAt(x, y+1)
			}
			fmt.Fprintf(&out, "\x1b[38;2;%d;%d;%dm\x1b[48;2;%d;%d;%dm▀",
				top.R, top.G, top.B, bottom.R, bottom.G, bottom.B)
		}
		out.WriteString("\x1b[0m")
		if y+2 < b.Max.Y {
			out.WriteString("\n")
		}
	}
	return out.String()
}

func cellsFor(width, height int) (int, int) {
	cols := (width + cellPixelWidth - 1) / cellPixelWidth
	rows := (height + cellPixelHeight - 1) / cellPixelHeight
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	return cols, rows
}
