package tui

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HaiFongPan/gdrive-picker/internal/drive"
	"github.com/HaiFongPan/gdrive-picker/internal/picker"
)

// fakeService serves canned pages keyed by folder or query plus page token
type fakeService struct {
	mu            sync.Mutex
	initErr       error
	signInErr     error
	authenticated bool
	listErr       error
	pages         map[string]*drive.ResultPage
	calls         []string
}

func (s *fakeService) Initialize(ctx context.Context) error { return s.initErr }

func (s *fakeService) SignIn(ctx context.Context) error {
	if s.signInErr != nil {
		return s.signInErr
	}
	s.authenticated = true
	return nil
}

func (s *fakeService) SignOut(ctx context.Context) { s.authenticated = false }
func (s *fakeService) Authenticated() bool         { return s.authenticated }
func (s *fakeService) HTTPClient() *http.Client    { return nil }

func (s *fakeService) ListFiles(ctx context.Context, folderID, pageToken string) (*drive.ResultPage, error) {
	return s.page("folder:" + folderID + "|" + pageToken)
}

func (s *fakeService) SearchFiles(ctx context.Context, query, pageToken string) (*drive.ResultPage, error) {
	return s.page("search:" + query + "|" + pageToken)
}

func (s *fakeService) page(k string) (*drive.ResultPage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, k)
	if s.listErr != nil {
		return nil, s.listErr
	}
	if p, ok := s.pages[k]; ok {
		return p, nil
	}
	return &drive.ResultPage{HasFolders: true}, nil
}

var (
	trips   = drive.Folder{ID: "trips", Name: "Trips"}
	beach   = drive.File{ID: "f-beach", Name: "beach.jpg", MimeType: "image/jpeg"}
	cat     = drive.File{ID: "f-cat", Name: "cat.png", MimeType: "image/png"}
	sunset  = drive.File{ID: "f-sunset", Name: "sunset.jpg", MimeType: "image/jpeg"}
	harbour = drive.File{ID: "f-harbour", Name: "harbour.mp4", MimeType: "video/mp4"}
)

func newFakeService() *fakeService {
	return &fakeService{
		pages: map[string]*drive.ResultPage{
			"folder:|":        {Files: []drive.File{beach, cat}, Folders: []drive.Folder{trips}, HasFolders: true},
			"folder:trips|":   {Files: []drive.File{sunset}, HasFolders: true, NextPageToken: "p2"},
			"folder:trips|p2": {Files: []drive.File{harbour}},
			"search:beach|":   {Files: []drive.File{beach}},
			"search:nothing|": {},
		},
	}
}

func newTestPicker(svc *fakeService, opts Options) *PickerModel {
	if opts.DefaultView == "" {
		opts.DefaultView = ViewList
	}
	m := NewPickerModel(svc, opts)
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return m
}

// exec runs cmd and feeds the picker's own messages back into Update
func exec(m *PickerModel, cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			exec(m, c)
		}
	case initDoneMsg, signInDoneMsg, signedOutMsg, listingMsg, previewMsg, copiedMsg:
		_, next := m.Update(msg)
		exec(m, next)
	}
}

func press(m *PickerModel, k tea.KeyMsg) tea.Cmd {
	_, cmd := m.Update(k)
	return cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	enter     = tea.KeyMsg{Type: tea.KeyEnter}
	space     = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	backspace = tea.KeyMsg{Type: tea.KeyBackspace}
	esc       = tea.KeyMsg{Type: tea.KeyEsc}
	down      = tea.KeyMsg{Type: tea.KeyDown}
)

// browsingPicker returns a picker signed in and showing the root listing
func browsingPicker(t *testing.T, svc *fakeService, opts Options) *PickerModel {
	t.Helper()
	svc.authenticated = true
	m := newTestPicker(svc, opts)
	exec(m, m.Init())
	require.Equal(t, picker.ModeBrowsing, m.Navigator().Mode())
	require.Len(t, m.items(), 3)
	return m
}

func TestParseViewMode(t *testing.T) {
	assert.Equal(t, ViewList, ParseViewMode("LIST"))
	assert.Equal(t, ViewGrid, ParseViewMode("grid"))
	assert.Equal(t, ViewGrid, ParseViewMode("bogus"))
}

func TestPicker_InitShowsLoadingThenSignIn(t *testing.T) {
	m := newTestPicker(newFakeService(), Options{})
	assert.Contains(t, m.View(), "Loading...")

	exec(m, m.Init())

	assert.Equal(t, picker.ModeAwaitingSignIn, m.Navigator().Mode())
	view := m.View()
	assert.Contains(t, view, "Connect to Google Drive")
	assert.Contains(t, view, "Sign in with Google")
}

func TestPicker_InitFailureAndRetry(t *testing.T) {
	svc := newFakeService()
	svc.initErr = errors.New("script blocked")

	var reported []error
	m := newTestPicker(svc, Options{OnError: func(err error) { reported = append(reported, err) }})
	exec(m, m.Init())

	assert.Contains(t, m.View(), "Failed to initialize: script blocked")
	require.Len(t, reported, 1)

	svc.initErr = nil
	exec(m, press(m, runes("r")))
	assert.Contains(t, m.View(), "Connect to Google Drive")
}

func TestPicker_SignInStartsBrowsingAtRoot(t *testing.T) {
	svc := newFakeService()
	var authChanges []bool
	m := newTestPicker(svc, Options{ShowBreadcrumb: true, OnAuthChange: func(a bool) { authChanges = append(authChanges, a) }})
	exec(m, m.Init())

	exec(m, press(m, enter))

	assert.Equal(t, []bool{true}, authChanges)
	assert.Equal(t, picker.ModeBrowsing, m.Navigator().Mode())
	view := m.View()
	assert.Contains(t, view, "My Drive")
	assert.Contains(t, view, "Trips")
	assert.Contains(t, view, "beach.jpg")
}

func TestPicker_SignInDenied(t *testing.T) {
	svc := newFakeService()
	svc.signInErr = errors.New("access_denied")

	var reported []error
	m := newTestPicker(svc, Options{OnError: func(err error) { reported = append(reported, err) }})
	exec(m, m.Init())
	exec(m, press(m, enter))

	assert.Equal(t, picker.ModeAwaitingSignIn, m.Navigator().Mode())
	assert.Contains(t, m.View(), "Sign-in failed: access_denied")
	assert.Len(t, reported, 1)
}

func TestPicker_ConsentPromptShownWhileSigningIn(t *testing.T) {
	m := newTestPicker(newFakeService(), Options{})
	exec(m, m.Init())

	// keep the sign-in pending by not running its command
	_ = press(m, enter)
	m.Update(ConsentPromptMsg{URL: "https://accounts.google.com/o/oauth2/auth?state=x"})

	view := m.View()
	assert.Contains(t, view, "Waiting for consent")
	assert.Contains(t, view, "Google consent page")
	assert.Equal(t, "https://accounts.google.com/o/oauth2/auth?state=x", m.consentURL)

	// a second enter does not start another sign-in
	assert.Nil(t, press(m, enter))
}

func TestPicker_OpenFolderAndBack(t *testing.T) {
	svc := newFakeService()
	var navigated []*drive.Folder
	m := browsingPicker(t, svc, Options{ShowBreadcrumb: true, OnNavigate: func(f *drive.Folder) { navigated = append(navigated, f) }})

	// folders come first, so Trips has focus
	exec(m, press(m, enter))

	require.Len(t, navigated, 1)
	assert.Equal(t, "trips", navigated[0].ID)
	assert.Equal(t, "trips", m.Navigator().CurrentFolderID())
	assert.Contains(t, m.View(), "My Drive > Trips")
	assert.Contains(t, m.View(), "sunset.jpg")

	exec(m, press(m, backspace))
	assert.Equal(t, "", m.Navigator().CurrentFolderID())
	require.Len(t, navigated, 2)
	assert.Nil(t, navigated[1])
	assert.Contains(t, m.View(), "beach.jpg")
}

func TestPicker_BreadcrumbKeys(t *testing.T) {
	m := browsingPicker(t, newFakeService(), Options{ShowBreadcrumb: true})
	exec(m, press(m, enter))
	require.Len(t, m.Navigator().Stack(), 1)

	exec(m, press(m, runes("~")))
	assert.Empty(t, m.Navigator().Stack())

	exec(m, press(m, enter))
	exec(m, press(m, runes("1")))
	assert.Len(t, m.Navigator().Stack(), 1)

	// out of range crumbs are ignored
	assert.Nil(t, press(m, runes("5")))
}

func TestPicker_SingleSelectFinishes(t *testing.T) {
	var selected []drive.File
	m := browsingPicker(t, newFakeService(), Options{OnSelect: func(files []drive.File) { selected = files }})

	press(m, down)
	cmd := press(m, enter)

	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.True(t, m.Done())
	assert.Equal(t, []drive.File{beach}, m.Selection())
	assert.Equal(t, []drive.File{beach}, selected)
}

func TestPicker_MultiSelectConfirm(t *testing.T) {
	m := browsingPicker(t, newFakeService(), Options{Multiple: true})

	// confirming an empty selection does nothing
	assert.Nil(t, press(m, runes("c")))

	press(m, down)
	press(m, space)
	press(m, down)
	press(m, space)
	assert.Contains(t, m.View(), "2 files selected")

	// toggling again removes cat
	press(m, space)
	assert.Contains(t, m.View(), "1 file selected")
	press(m, space)

	cmd := press(m, runes("c"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Equal(t, []drive.File{beach, cat}, m.Selection())
}

func TestPicker_SpaceDoesNotSelectInSingleMode(t *testing.T) {
	m := browsingPicker(t, newFakeService(), Options{})
	press(m, down)
	assert.Nil(t, press(m, space))
	assert.False(t, m.Done())
}

func TestPicker_SearchAndClear(t *testing.T) {
	svc := newFakeService()
	m := browsingPicker(t, svc, Options{ShowToolbar: true, ShowBreadcrumb: true})

	_, cmd := m.Update(searchMsg{query: "  beach "})
	exec(m, cmd)

	assert.Equal(t, picker.ModeSearching, m.Navigator().Mode())
	view := m.View()
	assert.Contains(t, view, "Searching for “beach”")
	assert.NotContains(t, view, "My Drive")
	assert.Contains(t, view, "beach.jpg")
	assert.NotContains(t, view, "cat.png")

	exec(m, press(m, esc))
	assert.Equal(t, picker.ModeBrowsing, m.Navigator().Mode())
	assert.Contains(t, m.View(), "My Drive")
	assert.Contains(t, m.View(), "cat.png")
}

func TestPicker_EmptyStates(t *testing.T) {
	svc := newFakeService()
	m := browsingPicker(t, svc, Options{})

	_, cmd := m.Update(searchMsg{query: "nothing"})
	exec(m, cmd)
	assert.Contains(t, m.View(), "No files found matching your search")

	svc.pages["folder:|"] = &drive.ResultPage{HasFolders: true}
	exec(m, press(m, esc))
	assert.Contains(t, m.View(), "This folder is empty")
}

func TestPicker_LoadMore(t *testing.T) {
	m := browsingPicker(t, newFakeService(), Options{})
	exec(m, press(m, enter))

	require.True(t, m.Navigator().CanLoadMore())
	assert.Contains(t, m.View(), "Load more")

	exec(m, press(m, runes("n")))
	assert.Equal(t, []drive.File{sunset, harbour}, m.Navigator().Files())
	assert.NotContains(t, m.View(), "Load more")
}

func TestPicker_DownAtEndLoadsMore(t *testing.T) {
	m := browsingPicker(t, newFakeService(), Options{})
	exec(m, press(m, enter))
	require.Len(t, m.items(), 1)

	exec(m, press(m, down))
	assert.Len(t, m.items(), 2)
}

func TestPicker_ListingErrorKeepsResults(t *testing.T) {
	svc := newFakeService()
	var reported []error
	m := browsingPicker(t, svc, Options{OnError: func(err error) { reported = append(reported, err) }})

	svc.listErr = errors.New("quota exceeded")
	exec(m, press(m, runes("r")))

	require.Len(t, reported, 1)
	assert.Contains(t, m.View(), "Listing failed")
	assert.Contains(t, m.View(), "beach.jpg")
}

func TestPicker_ToggleView(t *testing.T) {
	var modes []ViewMode
	m := browsingPicker(t, newFakeService(), Options{OnViewChange: func(v ViewMode) { modes = append(modes, v) }})
	assert.Contains(t, m.View(), "NAME")

	press(m, runes("v"))
	assert.Equal(t, ViewGrid, m.ViewMode())
	assert.NotContains(t, m.View(), "NAME")
	assert.Contains(t, m.View(), "Trips")

	press(m, runes("v"))
	assert.Equal(t, []ViewMode{ViewGrid, ViewList}, modes)
}

func TestPicker_GridMovesByRow(t *testing.T) {
	m := browsingPicker(t, newFakeService(), Options{DefaultView: ViewGrid})
	require.Greater(t, m.gridColumns(), 2)

	press(m, runes("l"))
	assert.Equal(t, 1, m.focus)
	press(m, runes("l"))
	press(m, runes("l"))
	assert.Equal(t, 2, m.focus)
	press(m, runes("h"))
	assert.Equal(t, 1, m.focus)
}

func TestPicker_DebouncedSearch(t *testing.T) {
	svc := newFakeService()
	m := browsingPicker(t, svc, Options{ShowToolbar: true, SearchDebounce: 20 * time.Millisecond})

	sent := make(chan tea.Msg, 4)
	m.send = func(msg tea.Msg) { sent <- msg }

	press(m, runes("/"))
	require.True(t, m.searchInput.Focused())
	for _, r := range "beach" {
		press(m, runes(string(r)))
	}

	select {
	case msg := <-sent:
		assert.Equal(t, searchMsg{query: "beach"}, msg)
	case <-time.After(time.Second):
		t.Fatal("debounced search was not sent")
	}

	select {
	case msg := <-sent:
		t.Fatalf("unexpected extra message %v", msg)
	case <-time.After(60 * time.Millisecond):
	}
}

func TestPicker_SearchSubmitSkipsDebounce(t *testing.T) {
	m := browsingPicker(t, newFakeService(), Options{ShowToolbar: true, SearchDebounce: time.Hour})
	m.send = func(tea.Msg) {}

	press(m, runes("/"))
	for _, r := range "beach" {
		press(m, runes(string(r)))
	}
	exec(m, press(m, enter))

	assert.False(t, m.searchInput.Focused())
	assert.Equal(t, "beach", m.Navigator().Query())
	assert.Equal(t, []drive.File{beach}, m.Navigator().Files())
}

func TestPicker_SearchNeedsToolbar(t *testing.T) {
	m := browsingPicker(t, newFakeService(), Options{ShowToolbar: false})
	press(m, runes("/"))
	assert.False(t, m.searchInput.Focused())
}

func TestPicker_QuitStopsDebouncer(t *testing.T) {
	m := browsingPicker(t, newFakeService(), Options{ShowToolbar: true, SearchDebounce: 10 * time.Millisecond})
	sent := make(chan tea.Msg, 1)
	m.send = func(msg tea.Msg) { sent <- msg }

	cmd := press(m, runes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	m.scheduleSearch("late")
	select {
	case <-sent:
		t.Fatal("search fired after quit")
	case <-time.After(50 * time.Millisecond):
	}
	assert.Error(t, m.ctx.Err())
}

func TestPicker_CopyID(t *testing.T) {
	m := browsingPicker(t, newFakeService(), Options{})
	var copied string
	m.clipboard = func(s string) error {
		copied = s
		return nil
	}

	press(m, down)
	exec(m, press(m, runes("y")))
	assert.Equal(t, "f-beach", copied)
	assert.Contains(t, m.View(), "Copied file ID f-beach")

	m.clipboard = func(string) error { return errors.New("no clipboard utility available") }
	exec(m, press(m, runes("y")))
	assert.Contains(t, m.View(), "Copy failed")
}

func TestPicker_SignOut(t *testing.T) {
	svc := newFakeService()
	var authChanges []bool
	m := browsingPicker(t, svc, Options{OnAuthChange: func(a bool) { authChanges = append(authChanges, a) }})

	exec(m, press(m, runes("o")))

	assert.False(t, svc.authenticated)
	assert.Equal(t, []bool{true, false}, authChanges)
	assert.Equal(t, picker.ModeAwaitingSignIn, m.Navigator().Mode())
	assert.Contains(t, m.View(), "Connect to Google Drive")
}

func TestPicker_SignOutStopsPickingBeforeRevoke(t *testing.T) {
	svc := newFakeService()
	var picked []drive.File
	m := browsingPicker(t, svc, Options{OnSelect: func(files []drive.File) { picked = files }})

	// the revoke command is left pending
	revoke := press(m, runes("o"))
	require.NotNil(t, revoke)
	assert.Equal(t, picker.ModeAwaitingSignIn, m.Navigator().Mode())
	assert.Empty(t, m.items())

	exec(m, press(m, down))
	press(m, enter)

	assert.Nil(t, picked)
	assert.False(t, m.Done())
	assert.Nil(t, m.Selection())
	assert.Contains(t, m.View(), "Connect to Google Drive")

	exec(m, revoke)
	assert.False(t, svc.authenticated)
	assert.Equal(t, picker.ModeAwaitingSignIn, m.Navigator().Mode())
}

func TestPicker_StaleListingIgnored(t *testing.T) {
	m := browsingPicker(t, newFakeService(), Options{})

	open := press(m, enter)
	back := press(m, backspace)

	// the superseded folder response arrives last
	exec(m, back)
	exec(m, open)

	assert.Equal(t, "", m.Navigator().CurrentFolderID())
	assert.Equal(t, []drive.File{beach, cat}, m.Navigator().Files())
}

func TestPicker_HelpOverlay(t *testing.T) {
	m := browsingPicker(t, newFakeService(), Options{})

	press(m, runes("?"))
	assert.True(t, m.showHelp)
	assert.Contains(t, m.View(), "Help")

	press(m, esc)
	assert.False(t, m.showHelp)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "long fi…", truncate("long filename", 8))
	assert.Equal(t, "…", truncate("abc", 1))
}
