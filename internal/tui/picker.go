package tui

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"github.com/HaiFongPan/gdrive-picker/internal/drive"
	"github.com/HaiFongPan/gdrive-picker/internal/picker"
	layout "github.com/HaiFongPan/gdrive-picker/internal/tui/config"
	img "github.com/HaiFongPan/gdrive-picker/internal/tui/image"
	"github.com/HaiFongPan/gdrive-picker/internal/tui/messaging"
	"github.com/HaiFongPan/gdrive-picker/internal/tui/theme"
	"github.com/HaiFongPan/gdrive-picker/internal/utils"
)

// ViewMode selects how entries are laid out
type ViewMode string

const (
	ViewGrid ViewMode = "grid"
	ViewList ViewMode = "list"
)

// ParseViewMode maps a config value to a ViewMode, defaulting to grid
func ParseViewMode(s string) ViewMode {
	if strings.EqualFold(s, string(ViewList)) {
		return ViewList
	}
	return ViewGrid
}

// DriveService is what the picker needs from the Drive session
type DriveService interface {
	picker.Source
	Initialize(ctx context.Context) error
	SignIn(ctx context.Context) error
	SignOut(ctx context.Context)
	Authenticated() bool
	HTTPClient() *http.Client
}

// Options configures the picker component
type Options struct {
	Multiple bool
	// MimeTypes is shown as the active filter; the service applies it
	MimeTypes      []string
	DefaultView    ViewMode
	ShowToolbar    bool
	ShowBreadcrumb bool
	SearchDebounce time.Duration
	// Thumbnails is optional; previews are unavailable without it
	Thumbnails *img.ThumbnailManager

	OnSelect     func(files []drive.File)
	OnAuthChange func(authenticated bool)
	OnError      func(err error)
	OnNavigate   func(folder *drive.Folder)
	OnViewChange func(mode ViewMode)
}

// entry is one row or card: exactly one of folder and file is set
type entry struct {
	folder *drive.Folder
	file   *drive.File
}

// PickerModel is the Bubble Tea model of the Drive picker
type PickerModel struct {
	opts    Options
	service DriveService
	nav     *picker.Navigator
	thumbs  *img.ThumbnailManager

	ctx    context.Context
	cancel context.CancelFunc

	initializing bool
	initErr      error
	signingIn    bool
	consentURL   string

	viewMode    ViewMode
	focus       int
	showHelp    bool
	showPreview bool

	previewFor     string
	preview        *img.ThumbnailPreview
	previewErr     error
	previewLoading bool

	searchInput textinput.Model
	debouncer   *utils.Debouncer

	fileTable    table.Model
	keyMap       KeyMap
	help         help.Model
	spinner      spinner.Model
	helpViewport viewport.Model
	status       messaging.StatusManager

	windowWidth  int
	windowHeight int

	selection []drive.File
	done      bool

	program   *tea.Program
	send      func(tea.Msg)
	clipboard func(string) error
}

// NewPickerModel creates the picker over service
func NewPickerModel(service DriveService, opts Options) *PickerModel {
	if opts.DefaultView == "" {
		opts.DefaultView = ViewGrid
	}
	if opts.SearchDebounce <= 0 {
		opts.SearchDebounce = 400 * time.Millisecond
	}

	columns := []table.Column{
		{Title: "📄 NAME", Width: 40},
		{Title: "🕒 MODIFIED", Width: layout.DefaultColumnModifiedWidth},
		{Title: "📊 SIZE", Width: layout.DefaultColumnSizeWidth},
		{Title: "🏷️ TYPE", Width: layout.DefaultColumnTypeWidth},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithHeight(20),
		table.WithFocused(true),
		table.WithStyles(table.Styles{
			Header: lipgloss.NewStyle().
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(lipgloss.Color(theme.ColorBrightCyan)).
				BorderBottom(true).
				Bold(true).
				Foreground(lipgloss.Color(theme.ColorBrightCyan)),
			Selected: lipgloss.NewStyle().
				Foreground(lipgloss.Color(theme.ColorWhite)).
				Background(lipgloss.Color(theme.ColorSelectedBackground)).
				Bold(true),
			Cell: lipgloss.NewStyle().
				Foreground(lipgloss.Color(theme.ColorWhite)),
		}),
	)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = theme.CreateLoadingStyle()

	ti := textinput.New()
	ti.Placeholder = "Search files..."
	ti.Prompt = "🔍 "
	ti.CharLimit = 200

	h := help.New()
	h.ShowAll = false

	vp := viewport.New(60, 15)

	ctx, cancel := context.WithCancel(context.Background())

	m := &PickerModel{
		opts:         opts,
		service:      service,
		thumbs:       opts.Thumbnails,
		ctx:          ctx,
		cancel:       cancel,
		initializing: true,
		viewMode:     opts.DefaultView,
		searchInput:  ti,
		debouncer:    utils.NewDebouncer(opts.SearchDebounce),
		fileTable:    t,
		keyMap:       DefaultKeyMap(),
		help:         h,
		spinner:      s,
		helpViewport: vp,
		status:       messaging.NewStatusManager(),
		windowWidth:  100,
		windowHeight: 30,
		clipboard:    utils.CopyToClipboard,
	}

	m.nav = picker.NewNavigator(picker.Options{
		Multiple:   opts.Multiple,
		OnSelect:   m.handleSelect,
		OnNavigate: m.handleNavigate,
		OnError:    m.handleListingError,
	})
	return m
}

// SetProgram sets the tea.Program reference for direct message sending
func (m *PickerModel) SetProgram(p *tea.Program) {
	m.program = p
	m.send = p.Send
}

// Selection returns the finalized selection, nil when the picker was left
// without choosing
func (m *PickerModel) Selection() []drive.File {
	return m.selection
}

// Done reports whether a selection was finalized
func (m *PickerModel) Done() bool {
	return m.done
}

// ViewMode returns the current layout
func (m *PickerModel) ViewMode() ViewMode {
	return m.viewMode
}

// Navigator exposes the navigation state
func (m *PickerModel) Navigator() *picker.Navigator {
	return m.nav
}

// Init implements the bubbletea.Model interface
func (m *PickerModel) Init() tea.Cmd {
	return tea.Batch(m.initialize(), m.spinner.Tick)
}

func (m *PickerModel) initialize() tea.Cmd {
	m.initializing = true
	m.initErr = nil
	return func() tea.Msg {
		return initDoneMsg{err: m.service.Initialize(m.ctx)}
	}
}

// Update implements the bubbletea.Model interface
func (m *PickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.windowWidth = msg.Width
		m.windowHeight = msg.Height
		m.helpViewport.Width = min(layout.HelpDialogWidth-4, msg.Width-10)
		m.helpViewport.Height = min(18, msg.Height-8)
		m.updateTableSize()
		return m, nil

	case initDoneMsg:
		m.initializing = false
		if msg.err != nil {
			logrus.Errorf("Picker: initialization failed: %v", msg.err)
			m.initErr = msg.err
			m.reportError(msg.err)
			return m, nil
		}
		m.nav.SetReady()
		if m.thumbs != nil {
			m.thumbs.SetHTTPClient(m.service.HTTPClient())
		}
		if m.service.Authenticated() {
			return m, m.authChanged(true)
		}
		return m, nil

	case ConsentPromptMsg:
		m.consentURL = msg.URL
		return m, nil

	case signInDoneMsg:
		m.signingIn = false
		m.consentURL = ""
		if msg.err != nil {
			m.status.SetMessage(theme.FormatErrorMessage("Sign-in", msg.err), messaging.MessageError)
			m.reportError(msg.err)
			return m, nil
		}
		return m, m.authChanged(true)

	case signedOutMsg:
		logrus.Debug("Picker: token revoked")
		return m, nil

	case listingMsg:
		if m.nav.Apply(msg.req, msg.page, msg.err) {
			if !msg.req.Append {
				m.focus = 0
			}
			m.clampFocus()
			m.syncTable()
			return m, m.schedulePreview()
		}
		return m, nil

	case searchMsg:
		req := m.nav.Search(msg.query)
		if req != nil {
			m.focus = 0
			m.syncTable()
		}
		return m, m.run(req)

	case previewMsg:
		if msg.fileID != m.previewFor {
			return m, nil
		}
		m.previewLoading = false
		m.preview = msg.preview
		m.previewErr = msg.err
		if msg.err != nil {
			logrus.Warnf("Picker: thumbnail for %s failed: %v", msg.fileID, msg.err)
		}
		return m, nil

	case copiedMsg:
		if msg.err != nil {
			m.status.SetMessage(theme.FormatErrorMessage("Copy", msg.err), messaging.MessageError)
		} else {
			m.status.SetMessage(theme.FormatSuccessMessage("Copied file ID", msg.id), messaging.MessageSuccess)
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	// cursor blink and other input internals
	if m.searchInput.Focused() {
		var cmd tea.Cmd
		m.searchInput, cmd = m.searchInput.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *PickerModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, m.quit()
	}
	if m.status.Expired(layout.StatusMessageTTL) {
		m.status.ClearMessage()
	}

	switch {
	case m.initializing:
		if key.Matches(msg, m.keyMap.Quit) {
			return m, m.quit()
		}
		return m, nil

	case m.initErr != nil:
		switch {
		case key.Matches(msg, m.keyMap.Retry):
			return m, m.initialize()
		case key.Matches(msg, m.keyMap.Quit), key.Matches(msg, m.keyMap.Cancel):
			return m, m.quit()
		}
		return m, nil

	case !m.browsing():
		switch {
		case key.Matches(msg, m.keyMap.SignIn):
			return m, m.signIn()
		case key.Matches(msg, m.keyMap.Quit), key.Matches(msg, m.keyMap.Cancel):
			return m, m.quit()
		}
		return m, nil

	case m.showHelp:
		switch {
		case key.Matches(msg, m.keyMap.Help), key.Matches(msg, m.keyMap.Cancel):
			m.showHelp = false
		case key.Matches(msg, m.keyMap.Quit):
			return m, m.quit()
		default:
			var cmd tea.Cmd
			m.helpViewport, cmd = m.helpViewport.Update(msg)
			return m, cmd
		}
		return m, nil

	case m.searchInput.Focused():
		return m.handleSearchKey(msg)
	}

	return m.handleNavigation(msg)
}

func (m *PickerModel) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Submit):
		m.debouncer.Cancel()
		m.searchInput.Blur()
		return m.Update(searchMsg{query: m.searchInput.Value()})

	case key.Matches(msg, m.keyMap.BlurInput):
		m.searchInput.Blur()
		return m, nil
	}

	before := m.searchInput.Value()
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	if value := m.searchInput.Value(); value != before {
		m.scheduleSearch(value)
	}
	return m, cmd
}

// scheduleSearch restarts the quiet period; the query is sent back into the
// program once typing settles
func (m *PickerModel) scheduleSearch(query string) {
	send := m.send
	if send == nil {
		logrus.Warn("Picker: no program attached, search not scheduled")
		return
	}
	m.debouncer.Trigger(func() {
		send(searchMsg{query: query})
	})
}

// handleNavigation handles keyboard navigation in the picker screen
func (m *PickerModel) handleNavigation(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	items := m.items()

	switch {
	case key.Matches(msg, m.keyMap.Quit):
		return m, m.quit()

	case key.Matches(msg, m.keyMap.Cancel):
		if m.nav.Mode() == picker.ModeSearching {
			m.searchInput.Reset()
			m.debouncer.Cancel()
			return m.Update(searchMsg{query: ""})
		}
		return m, m.quit()

	case key.Matches(msg, m.keyMap.Up):
		m.moveFocus(-m.rowStep())

	case key.Matches(msg, m.keyMap.Down):
		if m.focus+m.rowStep() >= len(items) && m.nav.CanLoadMore() {
			return m, m.run(m.nav.LoadMore())
		}
		m.moveFocus(m.rowStep())

	case key.Matches(msg, m.keyMap.Left):
		if m.viewMode == ViewGrid {
			m.moveFocus(-1)
		}

	case key.Matches(msg, m.keyMap.Right):
		if m.viewMode == ViewGrid {
			m.moveFocus(1)
		}

	case key.Matches(msg, m.keyMap.Home):
		m.focus = 0
		m.syncTable()

	case key.Matches(msg, m.keyMap.End):
		m.focus = max(0, len(items)-1)
		m.syncTable()

	case key.Matches(msg, m.keyMap.Open):
		e, ok := m.focused()
		if !ok {
			return m, nil
		}
		if e.folder != nil {
			return m, m.run(m.nav.OpenFolder(*e.folder))
		}
		return m, m.clickFile(*e.file)

	case key.Matches(msg, m.keyMap.Toggle):
		if e, ok := m.focused(); ok && e.file != nil && m.nav.Multiple() {
			return m, m.clickFile(*e.file)
		}
		return m, nil

	case key.Matches(msg, m.keyMap.Confirm):
		if m.nav.Confirm() {
			return m, m.quit()
		}
		return m, nil

	case key.Matches(msg, m.keyMap.LoadMore):
		return m, m.run(m.nav.LoadMore())

	case key.Matches(msg, m.keyMap.Parent):
		return m, m.run(m.nav.Parent())

	case key.Matches(msg, m.keyMap.Root):
		return m, m.run(m.nav.NavigateTo(-1))

	case key.Matches(msg, m.keyMap.Crumb):
		if len(msg.Runes) == 1 {
			return m, m.run(m.nav.NavigateTo(int(msg.Runes[0] - '1')))
		}
		return m, nil

	case key.Matches(msg, m.keyMap.Search):
		if !m.opts.ShowToolbar {
			return m, nil
		}
		return m, m.searchInput.Focus()

	case key.Matches(msg, m.keyMap.View):
		m.toggleView()

	case key.Matches(msg, m.keyMap.Preview):
		m.showPreview = !m.showPreview
		m.previewFor = ""
		m.updateTableSize()
		if !m.showPreview && m.thumbs != nil {
			m.thumbs.ClearPreview()
		}

	case key.Matches(msg, m.keyMap.CopyID):
		e, ok := m.focused()
		if !ok {
			return m, nil
		}
		id := e.id()
		copyFn := m.clipboard
		return m, func() tea.Msg {
			return copiedMsg{id: id, err: copyFn(id)}
		}

	case key.Matches(msg, m.keyMap.SignOut):
		return m, m.signOut()

	case key.Matches(msg, m.keyMap.Refresh):
		m.status.ClearMessage()
		return m, m.run(m.nav.Refresh())

	case key.Matches(msg, m.keyMap.Help):
		m.showHelp = true
		m.setupHelpViewport()
		return m, nil
	}

	return m, m.schedulePreview()
}

func (m *PickerModel) toggleView() {
	if m.viewMode == ViewGrid {
		m.viewMode = ViewList
	} else {
		m.viewMode = ViewGrid
	}
	m.syncTable()
	if m.opts.OnViewChange != nil {
		m.opts.OnViewChange(m.viewMode)
	}
}

func (m *PickerModel) clickFile(file drive.File) tea.Cmd {
	if m.nav.ClickFile(file) {
		return m.quit()
	}
	return nil
}

func (m *PickerModel) signIn() tea.Cmd {
	if m.signingIn {
		return nil
	}
	m.signingIn = true
	m.status.ClearMessage()
	return func() tea.Msg {
		return signInDoneMsg{err: m.service.SignIn(m.ctx)}
	}
}

// signOut leaves browsing right away; revocation runs in the background
func (m *PickerModel) signOut() tea.Cmd {
	leave := m.authChanged(false)
	m.status.SetMessage("Signed out", messaging.MessageInfo)

	svc := m.service
	ctx := m.ctx
	return tea.Batch(leave, func() tea.Msg {
		svc.SignOut(ctx)
		return signedOutMsg{}
	})
}

// authChanged moves the navigator in or out of browsing
func (m *PickerModel) authChanged(authenticated bool) tea.Cmd {
	req := m.nav.SetAuthenticated(authenticated)
	m.focus = 0
	m.clearPreview()
	if !authenticated {
		m.debouncer.Cancel()
		m.searchInput.Reset()
		m.searchInput.Blur()
	}
	m.syncTable()

	logrus.Infof("Picker: authenticated=%v", authenticated)
	if m.opts.OnAuthChange != nil {
		m.opts.OnAuthChange(authenticated)
	}
	return m.run(req)
}

// run executes a navigator request off the update loop
func (m *PickerModel) run(req *picker.Request) tea.Cmd {
	if req == nil {
		return nil
	}
	svc := m.service
	parent := m.ctx
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, layout.RequestTimeout)
		defer cancel()
		page, err := picker.Execute(ctx, svc, req)
		return listingMsg{req: req, page: page, err: err}
	}
}

func (m *PickerModel) quit() tea.Cmd {
	m.debouncer.Stop()
	m.cancel()
	return tea.Quit
}

func (m *PickerModel) handleSelect(files []drive.File) {
	m.selection = files
	m.done = true
	logrus.Infof("Picker: %d file(s) selected", len(files))
	if m.opts.OnSelect != nil {
		m.opts.OnSelect(files)
	}
}

func (m *PickerModel) handleNavigate(folder *drive.Folder) {
	m.focus = 0
	m.clearPreview()
	m.debouncer.Cancel()
	m.searchInput.Reset()
	m.syncTable()
	if m.opts.OnNavigate != nil {
		m.opts.OnNavigate(folder)
	}
}

func (m *PickerModel) handleListingError(err error) {
	m.status.SetMessage(theme.FormatErrorMessage("Listing", err), messaging.MessageError)
	m.reportError(err)
}

func (m *PickerModel) reportError(err error) {
	if m.opts.OnError != nil {
		m.opts.OnError(err)
	}
}

func (m *PickerModel) browsing() bool {
	mode := m.nav.Mode()
	return mode == picker.ModeBrowsing || mode == picker.ModeSearching
}

// items lists folders first, then files
func (m *PickerModel) items() []entry {
	folders := m.nav.Folders()
	files := m.nav.Files()

	out := make([]entry, 0, len(folders)+len(files))
	for i := range folders {
		out = append(out, entry{folder: &folders[i]})
	}
	for i := range files {
		out = append(out, entry{file: &files[i]})
	}
	return out
}

func (e entry) id() string {
	if e.folder != nil {
		return e.folder.ID
	}
	return e.file.ID
}

func (e entry) name() string {
	if e.folder != nil {
		return e.folder.Name
	}
	return e.file.Name
}

func (e entry) category() string {
	if e.folder != nil {
		return "folder"
	}
	return utils.GetFileCategory(e.file.MimeType)
}

func (m *PickerModel) focused() (entry, bool) {
	items := m.items()
	if m.focus < 0 || m.focus >= len(items) {
		return entry{}, false
	}
	return items[m.focus], true
}

func (m *PickerModel) focusedFile() *drive.File {
	if e, ok := m.focused(); ok && e.file != nil {
		return e.file
	}
	return nil
}

func (m *PickerModel) moveFocus(delta int) {
	m.focus += delta
	m.clampFocus()
	m.syncTable()
}

func (m *PickerModel) clampFocus() {
	n := len(m.items())
	if m.focus >= n {
		m.focus = n - 1
	}
	if m.focus < 0 {
		m.focus = 0
	}
}

// rowStep is how far up/down moves: one row of cards in the grid
func (m *PickerModel) rowStep() int {
	if m.viewMode == ViewGrid {
		return m.gridColumns()
	}
	return 1
}

func (m *PickerModel) clearPreview() {
	m.previewFor = ""
	m.preview = nil
	m.previewErr = nil
	m.previewLoading = false
	if m.thumbs != nil {
		m.thumbs.ClearPreview()
	}
}

// schedulePreview loads the thumbnail of the focused file when the preview
// panel is open and the file changed
func (m *PickerModel) schedulePreview() tea.Cmd {
	if !m.showPreview || m.thumbs == nil {
		return nil
	}

	f := m.focusedFile()
	if f == nil || !m.thumbs.CanPreview(*f) {
		m.clearPreview()
		return nil
	}
	if f.ID == m.previewFor {
		return nil
	}

	m.previewFor = f.ID
	m.preview = nil
	m.previewErr = nil
	m.previewLoading = true

	file := *f
	cols, rows := m.previewCells()
	thumbs := m.thumbs
	parent := m.ctx
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, layout.PreviewTimeout)
		defer cancel()
		p, err := thumbs.Preview(ctx, file, cols, rows)
		return previewMsg{fileID: file.ID, preview: p, err: err}
	}
}

// setupHelpViewport sets up the help viewport with content
func (m *PickerModel) setupHelpViewport() {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(theme.ColorBrightYellow)).
		MarginBottom(1).
		Render("🚀 Google Drive Picker - Help")

	m.helpViewport.SetContent(lipgloss.JoinVertical(lipgloss.Left, title, m.help.FullHelpView(m.keyMap.FullHelp())))
	m.helpViewport.GotoTop()
}

// filterSummary renders the MIME filter as short type names
func (m *PickerModel) filterSummary() string {
	if len(m.opts.MimeTypes) == 0 {
		return ""
	}
	names := make([]string, 0, len(m.opts.MimeTypes))
	for _, t := range m.opts.MimeTypes {
		names = append(names, utils.ShortType(t))
	}
	return fmt.Sprintf("showing %s", strings.Join(names, ", "))
}
