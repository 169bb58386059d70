package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/HaiFongPan/gdrive-picker/internal/picker"
	layout "github.com/HaiFongPan/gdrive-picker/internal/tui/config"
	"github.com/HaiFongPan/gdrive-picker/internal/tui/theme"
	"github.com/HaiFongPan/gdrive-picker/internal/utils"
)

const (
	emptyFolderText = "This folder is empty"
	emptySearchText = "No files found matching your search"
	placeholder     = "—"
)

// View implements the bubbletea.Model interface
func (m *PickerModel) View() string {
	var base string
	switch {
	case m.initializing:
		base = m.renderCentered(theme.CreateLoadingStyle().Render(fmt.Sprintf("%s Loading...", m.spinner.View())))
	case m.initErr != nil:
		base = m.renderCentered(m.renderInitError())
	case !m.browsing():
		base = m.renderCentered(m.renderSignIn())
	default:
		base = m.renderPicker()
	}

	if m.showHelp {
		return m.renderFloatingDialog(m.renderHelpDialog())
	}
	return base
}

func (m *PickerModel) renderInitError() string {
	var b strings.Builder
	b.WriteString(theme.CreateErrorStyle().Bold(true).Render(fmt.Sprintf("Failed to initialize: %v", m.initErr)))
	b.WriteString("\n\n")
	b.WriteString(theme.CreateHintStyle().Render("Press r to retry, q to quit"))
	return theme.CreateDialogStyle(layout.DialogDefaultWidth, theme.ColorBrightRed).Render(b.String())
}

func (m *PickerModel) renderSignIn() string {
	var b strings.Builder
	b.WriteString(theme.CreatePromptStyle().Render("🔐 Connect to Google Drive"))
	b.WriteString("\n\n")
	b.WriteString("Sign in to browse and select files from your Google Drive")
	b.WriteString("\n")

	if m.signingIn {
		b.WriteString("\n")
		b.WriteString(theme.CreateLoadingStyle().Render(fmt.Sprintf("%s Waiting for consent in your browser...", m.spinner.View())))
		if m.consentURL != "" {
			b.WriteString("\n\n")
			b.WriteString(theme.CreateHintStyle().Render("If no browser opened, visit:"))
			b.WriteString("\n")
			b.WriteString(theme.FormatClickableURL("Google consent page", m.consentURL))
		}
	} else {
		b.WriteString(theme.CreateButtonStyle(true).Render("Sign in with Google"))
		b.WriteString("\n\n")
		b.WriteString(theme.CreateHintStyle().Render("Press enter to sign in, q to quit"))
	}

	if m.status.HasMessage() {
		b.WriteString("\n\n")
		b.WriteString(m.status.RenderMessage())
	}
	return theme.CreateDialogStyle(layout.DialogDefaultWidth, "").Render(b.String())
}

func (m *PickerModel) renderPicker() string {
	sections := []string{m.renderHeader()}

	if m.opts.ShowToolbar {
		sections = append(sections, m.renderToolbar())
	}
	if query := m.nav.Query(); query != "" {
		sections = append(sections, theme.CreateSecondaryTextStyle().MarginLeft(1).Render(fmt.Sprintf("Searching for “%s”", query)))
	} else if m.opts.ShowBreadcrumb {
		sections = append(sections, m.renderBreadcrumb())
	}

	content := m.renderContent()
	if m.showPreview {
		content = lipgloss.JoinHorizontal(lipgloss.Top, content, "  ", m.renderPreviewPanel())
	}
	sections = append(sections, content)

	if m.nav.Listing() && m.nav.HasLoadedInitial() {
		sections = append(sections, theme.CreateLoadingStyle().MarginLeft(1).Render(fmt.Sprintf("%s Loading more...", m.spinner.View())))
	}
	if m.nav.CanLoadMore() {
		sections = append(sections, theme.CreateSecondaryTextStyle().MarginLeft(1).Render("▼ Load more (press n)"))
	}
	if m.nav.Multiple() && m.nav.SelectionCount() > 0 {
		sections = append(sections, theme.CreateSelectionBarStyle(m.windowWidth-2).Render(
			fmt.Sprintf("%s • press c to select", theme.FormatSelectionCount(m.nav.SelectionCount()))))
	}
	if m.status.HasMessage() {
		sections = append(sections, lipgloss.NewStyle().MarginLeft(1).Render(m.status.RenderMessage()))
	}

	shortHelp := m.keyMap.ShortHelp()
	if m.nav.Multiple() {
		shortHelp = m.keyMap.multiShortHelp()
	}
	sections = append(sections, theme.CreateFooterStyle().Render(m.help.ShortHelpView(shortHelp)))

	return strings.Join(sections, "\n")
}

func (m *PickerModel) renderHeader() string {
	header := "Google Drive Picker"
	if m.nav.Multiple() {
		header += " • multi-select"
	}
	line := theme.CreateHeaderStyle().Render(header)
	if filter := m.filterSummary(); filter != "" {
		line += "  " + theme.CreateSecondaryTextStyle().Render(filter)
	}
	return line
}

func (m *PickerModel) renderToolbar() string {
	viewToggle := func(mode ViewMode) string {
		style := lipgloss.NewStyle().Padding(0, 1)
		if m.viewMode == mode {
			style = style.Bold(true).
				Foreground(lipgloss.Color("#000000")).
				Background(lipgloss.Color(theme.ColorBrightCyan))
		}
		return style.Render(string(mode))
	}

	busy := " "
	if m.nav.Listing() {
		busy = m.spinner.View()
	}

	return lipgloss.NewStyle().MarginLeft(1).Render(lipgloss.JoinHorizontal(lipgloss.Center,
		m.searchInput.View(),
		"  ",
		viewToggle(ViewGrid),
		viewToggle(ViewList),
		" ",
		busy,
	))
}

// renderBreadcrumb renders "My Drive > A > B" with the current folder highlighted
func (m *PickerModel) renderBreadcrumb() string {
	stack := m.nav.Stack()
	parts := make([]string, 0, len(stack)+1)

	crumb := theme.CreateSecondaryTextStyle().Italic(false)
	current := theme.CreateSectionHeaderStyle()

	if len(stack) == 0 {
		parts = append(parts, current.Render("My Drive"))
	} else {
		parts = append(parts, crumb.Render("My Drive"))
	}
	for i, f := range stack {
		if i == len(stack)-1 {
			parts = append(parts, current.Render(f.Name))
		} else {
			parts = append(parts, crumb.Render(f.Name))
		}
	}
	return lipgloss.NewStyle().MarginLeft(1).Render(strings.Join(parts, " > "))
}

func (m *PickerModel) renderContent() string {
	width := m.contentWidth()
	height := m.contentHeight()

	switch {
	case m.nav.Listing() && !m.nav.HasLoadedInitial():
		return m.renderSkeleton(width)
	case m.nav.Empty():
		text := emptyFolderText
		if m.nav.Mode() == picker.ModeSearching {
			text = emptySearchText
		}
		return lipgloss.NewStyle().
			Foreground(lipgloss.Color(theme.ColorBrightBlack)).
			Width(width).
			Height(height).
			Align(lipgloss.Center).
			AlignVertical(lipgloss.Center).
			Render(text)
	case m.viewMode == ViewGrid:
		return m.renderGrid(width, height)
	default:
		m.updateTableSize()
		return m.fileTable.View()
	}
}

func (m *PickerModel) renderSkeleton(width int) string {
	style := theme.CreateSkeletonStyle()
	if m.viewMode == ViewList {
		nameWidth := max(10, width-layout.DefaultColumnModifiedWidth-layout.DefaultColumnSizeWidth-8)
		row := style.Render(fmt.Sprintf("▇▇ %s  %s  %s",
			strings.Repeat("▇", nameWidth),
			strings.Repeat("▇", layout.DefaultColumnModifiedWidth-4),
			strings.Repeat("▇", layout.DefaultColumnSizeWidth-4)))
		rows := make([]string, layout.SkeletonListRows)
		for i := range rows {
			rows[i] = row
		}
		return lipgloss.NewStyle().MarginLeft(1).Render(strings.Join(rows, "\n"))
	}

	card := theme.CreateCardStyle(layout.GridCardWidth, false, false).Render(
		style.Render(strings.Repeat("▇", 6)) + "\n" + style.Render(strings.Repeat("▇", layout.GridCardNameWidth-2)))
	cards := make([]string, layout.SkeletonGridCards)
	for i := range cards {
		cards[i] = card
	}
	return m.joinGrid(cards, width)
}

// renderGrid renders cards row by row, scrolled so the focused card is visible
func (m *PickerModel) renderGrid(width, height int) string {
	items := m.items()
	cards := make([]string, len(items))

	for i, e := range items {
		selected := e.file != nil && m.nav.IsSelected(e.file.ID)

		icon := theme.GetCategoryIcon(e.category())
		if m.nav.Multiple() && selected {
			icon = "✅"
		}

		meta := placeholder
		if e.file != nil && e.file.Size != nil {
			meta = humanize.Bytes(uint64(*e.file.Size))
		} else if e.folder != nil {
			meta = "folder"
		}

		name := lipgloss.NewStyle().
			Foreground(lipgloss.Color(theme.GetFileColor(e.category()))).
			Render(truncate(e.name(), layout.GridCardNameWidth))

		cards[i] = theme.CreateCardStyle(layout.GridCardWidth, i == m.focus, selected).Render(
			icon + "\n" + name + "\n" + theme.CreateSecondaryTextStyle().Render(meta))
	}

	cols := m.gridColumns()
	cardHeight := 5
	visibleRows := max(1, height/cardHeight)
	focusRow := m.focus / cols
	startRow := max(0, focusRow-visibleRows+1)

	start := min(len(cards), startRow*cols)
	end := min(len(cards), (startRow+visibleRows)*cols)
	return m.joinGrid(cards[start:end], width)
}

func (m *PickerModel) joinGrid(cards []string, width int) string {
	cols := max(1, width/(layout.GridCardWidth+2))
	var rows []string
	for i := 0; i < len(cards); i += cols {
		end := min(len(cards), i+cols)
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards[i:end]...))
	}
	return lipgloss.NewStyle().MarginLeft(1).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *PickerModel) renderPreviewPanel() string {
	width := m.previewWidth()
	var b strings.Builder

	b.WriteString(theme.CreateSectionHeaderStyle().Render("Thumbnail"))
	b.WriteString("\n")

	e, ok := m.focused()
	switch {
	case m.thumbs == nil || !m.thumbs.Enabled():
		b.WriteString(theme.CreateSecondaryTextStyle().Render("Previews are disabled"))
	case !ok || e.file == nil:
		b.WriteString(theme.CreateSecondaryTextStyle().Render("Focus a file to preview it"))
	case e.file.ThumbnailLink == "":
		b.WriteString(theme.CreateSecondaryTextStyle().Render("No thumbnail available"))
	case m.previewLoading:
		b.WriteString(theme.CreateLoadingStyle().Render(fmt.Sprintf("%s Loading thumbnail...", m.spinner.View())))
	case m.previewErr != nil:
		b.WriteString(theme.CreateErrorStyle().Render(fmt.Sprintf("Preview failed: %v", m.previewErr)))
	case m.preview != nil:
		b.WriteString(m.preview.RenderedData)
		if m.preview.CacheHit {
			b.WriteString("\n")
			b.WriteString(theme.CreateSecondaryTextStyle().Render("cached"))
		}
	}

	if ok {
		b.WriteString("\n\n")
		b.WriteString(m.renderDetails(e))
	}

	return theme.CreateUnifiedPanelStyle(width, m.contentHeight()).Render(b.String())
}

func (m *PickerModel) renderDetails(e entry) string {
	lines := []string{
		fmt.Sprintf("%s %s", theme.GetCategoryIcon(e.category()), e.name()),
		fmt.Sprintf("ID: %s", e.id()),
	}
	if e.file != nil {
		lines = append(lines,
			fmt.Sprintf("Type: %s", e.file.MimeType),
			fmt.Sprintf("Size: %s", formatSize(e)),
			fmt.Sprintf("Modified: %s", formatModified(e)),
		)
	}
	return strings.Join(lines, "\n")
}

// renderFloatingDialog centers dialog over the screen
func (m *PickerModel) renderFloatingDialog(dialog string) string {
	return lipgloss.Place(
		m.windowWidth,
		m.windowHeight,
		lipgloss.Center,
		lipgloss.Center,
		dialog,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color("#222222")),
	)
}

func (m *PickerModel) renderCentered(content string) string {
	return lipgloss.Place(m.windowWidth, m.windowHeight, lipgloss.Center, lipgloss.Center, content)
}

// renderHelpDialog renders the help dialog using bubbles components
func (m *PickerModel) renderHelpDialog() string {
	dialogStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(theme.ColorBrightYellow)).
		Padding(1).
		Width(min(layout.HelpDialogWidth, m.windowWidth-10))

	instructions := theme.CreateSecondaryTextStyle().
		MarginTop(1).
		Render("Press ? or esc to close help • Use ↑↓ to scroll")

	return dialogStyle.Render(lipgloss.JoinVertical(lipgloss.Left, m.helpViewport.View(), instructions))
}

// syncTable rebuilds the list rows from the navigator and moves the cursor
// to the focused entry
func (m *PickerModel) syncTable() {
	items := m.items()
	rows := make([]table.Row, len(items))
	nameWidth := m.nameColumnWidth()

	for i, e := range items {
		icon := theme.GetCategoryIcon(e.category())
		if e.file != nil && m.nav.Multiple() && m.nav.IsSelected(e.file.ID) {
			icon = "✅"
		}
		typ := "folder"
		if e.file != nil {
			typ = utils.ShortType(e.file.MimeType)
		}
		rows[i] = table.Row{
			fmt.Sprintf("%s %s", icon, truncate(e.name(), nameWidth-3)),
			formatModified(e),
			formatSize(e),
			typ,
		}
	}

	m.fileTable.SetRows(rows)
	if len(rows) > 0 {
		m.fileTable.SetCursor(m.focus)
	}
}

// updateTableSize updates table dimensions and column widths
func (m *PickerModel) updateTableSize() {
	m.fileTable.SetColumns([]table.Column{
		{Title: "📄 NAME", Width: m.nameColumnWidth()},
		{Title: "🕒 MODIFIED", Width: layout.DefaultColumnModifiedWidth},
		{Title: "📊 SIZE", Width: layout.DefaultColumnSizeWidth},
		{Title: "🏷️ TYPE", Width: layout.DefaultColumnTypeWidth},
	})
	m.fileTable.SetHeight(m.contentHeight())
}

func (m *PickerModel) nameColumnWidth() int {
	w := m.contentWidth() - 8 - layout.DefaultColumnModifiedWidth - layout.DefaultColumnSizeWidth - layout.DefaultColumnTypeWidth
	return min(layout.MaxColumnNameWidth, max(layout.MinColumnNameWidth, w))
}

func (m *PickerModel) contentWidth() int {
	if m.showPreview {
		return max(20, m.windowWidth-m.previewWidth()-4)
	}
	return max(20, m.windowWidth-2)
}

func (m *PickerModel) contentHeight() int {
	return max(5, m.windowHeight-layout.ReservedRows)
}

func (m *PickerModel) previewWidth() int {
	return max(layout.MinPreviewPanelWidth, int(float64(m.windowWidth)*layout.PreviewPanelWidthRatio))
}

// previewCells is the cell area a thumbnail may fill inside the panel
func (m *PickerModel) previewCells() (int, int) {
	return max(1, m.previewWidth()-4), max(1, m.contentHeight()-8)
}

func (m *PickerModel) gridColumns() int {
	return max(1, m.contentWidth()/(layout.GridCardWidth+2))
}

func formatSize(e entry) string {
	if e.file == nil || e.file.Size == nil {
		return placeholder
	}
	return humanize.Bytes(uint64(*e.file.Size))
}

func formatModified(e entry) string {
	if e.file == nil || e.file.ModifiedTime == nil {
		return placeholder
	}
	return humanize.Time(*e.file.ModifiedTime)
}

// truncate shortens s to at most n runes, marking the cut with "…"
func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}
