package picker

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/HaiFongPan/gdrive-picker/internal/drive"
	"github.com/HaiFongPan/gdrive-picker/internal/errs"
)

// Mode is the navigation state
type Mode int

const (
	ModeUninitialized Mode = iota
	ModeAwaitingSignIn
	ModeBrowsing
	ModeSearching
)

func (m Mode) String() string {
	switch m {
	case ModeUninitialized:
		return "uninitialized"
	case ModeAwaitingSignIn:
		return "awaiting sign-in"
	case ModeBrowsing:
		return "browsing"
	case ModeSearching:
		return "searching"
	default:
		return "unknown"
	}
}

// LoadState tells whether a listing is in flight and which kind
type LoadState int

const (
	LoadIdle LoadState = iota
	LoadInitial
	LoadMore
)

// RequestKind selects the listing operation a Request runs
type RequestKind int

const (
	RequestBrowse RequestKind = iota
	RequestSearch
)

// Request is a listing the driver must execute and hand back to Apply
type Request struct {
	Gen       uint64
	Kind      RequestKind
	FolderID  string
	Query     string
	PageToken string
	// Append adds the returned files to the current ones instead of replacing them
	Append bool
}

// Source runs listing requests
type Source interface {
	ListFiles(ctx context.Context, folderID, pageToken string) (*drive.ResultPage, error)
	SearchFiles(ctx context.Context, query, pageToken string) (*drive.ResultPage, error)
}

// Options configures a Navigator
type Options struct {
	Multiple   bool
	OnSelect   func(files []drive.File)
	OnNavigate func(folder *drive.Folder)
	OnError    func(err error)
}

// Navigator owns the folder stack, the current results, the search query,
// the pagination cursor and the selection. It is not safe for concurrent use;
// drive it from a single goroutine, such as a Bubble Tea Update loop.
type Navigator struct {
	opts Options

	mode  Mode
	load  LoadState
	stack []drive.Folder

	files   []drive.File
	folders []drive.Folder
	query   string
	cursor  string

	selected map[string]bool
	order    []drive.File

	gen              uint64
	pending          *Request
	hasLoadedInitial bool
}

// NewNavigator creates an uninitialized navigator
func NewNavigator(opts Options) *Navigator {
	return &Navigator{
		opts:     opts,
		selected: make(map[string]bool),
	}
}

// Execute runs req against src
func Execute(ctx context.Context, src Source, req *Request) (*drive.ResultPage, error) {
	if req.Kind == RequestSearch {
		return src.SearchFiles(ctx, req.Query, req.PageToken)
	}
	return src.ListFiles(ctx, req.FolderID, req.PageToken)
}

// SetReady moves an uninitialized navigator to awaiting sign-in
func (n *Navigator) SetReady() {
	if n.mode == ModeUninitialized {
		n.mode = ModeAwaitingSignIn
	}
}

// SetAuthenticated reacts to the session gaining or losing its token. Gaining
// it starts browsing at root and returns the root listing request.
func (n *Navigator) SetAuthenticated(authenticated bool) *Request {
	if !authenticated {
		n.reset()
		n.mode = ModeAwaitingSignIn
		return nil
	}

	if n.mode == ModeBrowsing || n.mode == ModeSearching {
		return nil
	}

	n.reset()
	n.mode = ModeBrowsing
	return n.issue(RequestBrowse, false)
}

// reset clears everything and invalidates the pending request
func (n *Navigator) reset() {
	n.stack = nil
	n.files = nil
	n.folders = nil
	n.query = ""
	n.cursor = ""
	n.clearSelection()
	n.gen++
	n.pending = nil
	n.load = LoadIdle
	n.hasLoadedInitial = false
}

func (n *Navigator) active() bool {
	return n.mode == ModeBrowsing || n.mode == ModeSearching
}

// OpenFolder pushes folder onto the stack, leaving any search
func (n *Navigator) OpenFolder(folder drive.Folder) *Request {
	if !n.active() {
		return nil
	}

	n.stack = append(n.stack, folder)
	n.enterFolder()

	if n.opts.OnNavigate != nil {
		f := folder
		n.opts.OnNavigate(&f)
	}
	return n.issue(RequestBrowse, false)
}

// NavigateTo truncates the stack to index+1 entries; -1 returns to root.
// Indexes outside the stack are ignored.
func (n *Navigator) NavigateTo(index int) *Request {
	if !n.active() || index < -1 || index >= len(n.stack) {
		return nil
	}

	var target *drive.Folder
	if index == -1 {
		n.stack = nil
	} else {
		n.stack = n.stack[:index+1]
		f := n.stack[index]
		target = &f
	}
	n.enterFolder()

	if n.opts.OnNavigate != nil {
		n.opts.OnNavigate(target)
	}
	return n.issue(RequestBrowse, false)
}

// Parent navigates one level up, or does nothing at root
func (n *Navigator) Parent() *Request {
	if len(n.stack) == 0 {
		return nil
	}
	return n.NavigateTo(len(n.stack) - 2)
}

func (n *Navigator) enterFolder() {
	n.mode = ModeBrowsing
	n.query = ""
	n.cursor = ""
	n.clearSelection()
}

// Search runs query (trimmed) against the whole drive. An empty query
// returns to browsing the current folder.
func (n *Navigator) Search(query string) *Request {
	if !n.active() {
		return nil
	}

	query = strings.TrimSpace(query)
	if query == n.query {
		return nil
	}

	n.query = query
	n.cursor = ""
	n.clearSelection()

	if query == "" {
		n.mode = ModeBrowsing
		return n.issue(RequestBrowse, false)
	}

	n.mode = ModeSearching
	return n.issue(RequestSearch, false)
}

// LoadMore requests the next page. It returns nil unless a cursor is present
// and nothing is in flight.
func (n *Navigator) LoadMore() *Request {
	if !n.CanLoadMore() {
		return nil
	}

	kind := RequestBrowse
	if n.mode == ModeSearching {
		kind = RequestSearch
	}
	return n.issue(kind, true)
}

// Refresh reloads the current folder or search from the first page
func (n *Navigator) Refresh() *Request {
	if !n.active() {
		return nil
	}

	n.cursor = ""
	kind := RequestBrowse
	if n.mode == ModeSearching {
		kind = RequestSearch
	}
	return n.issue(kind, false)
}

func (n *Navigator) issue(kind RequestKind, appendPage bool) *Request {
	n.gen++
	req := &Request{
		Gen:    n.gen,
		Kind:   kind,
		Append: appendPage,
	}
	if kind == RequestSearch {
		req.Query = n.query
	} else {
		req.FolderID = n.CurrentFolderID()
	}
	if appendPage {
		req.PageToken = n.cursor
		n.load = LoadMore
	} else {
		n.load = LoadInitial
	}

	n.pending = req
	return req
}

// Apply stores the outcome of req. Responses to superseded requests are
// dropped and reported as not applied. A failure keeps the previous results
// and is reported through OnError.
func (n *Navigator) Apply(req *Request, page *drive.ResultPage, err error) bool {
	if req == nil || req.Gen != n.gen || n.pending == nil {
		if req != nil {
			logrus.Debugf("Navigator: dropping stale response (gen %d, latest %d)", req.Gen, n.gen)
		}
		return false
	}

	n.pending = nil
	n.load = LoadIdle

	if err != nil {
		logrus.Warnf("Navigator: listing failed: %v", err)
		if n.opts.OnError != nil {
			n.opts.OnError(errs.Normalize(errs.KindListing, "apply listing", err))
		}
		return true
	}
	if page == nil {
		page = &drive.ResultPage{}
	}

	if req.Append {
		n.files = append(n.files, page.Files...)
	} else {
		n.files = append([]drive.File(nil), page.Files...)
		if req.Kind == RequestSearch {
			n.folders = nil
		} else if page.HasFolders {
			n.folders = append([]drive.Folder(nil), page.Folders...)
		}
	}
	n.cursor = page.NextPageToken
	n.hasLoadedInitial = true
	return true
}

// ClickFile selects file. In single mode the selection is finalized at once
// and true is returned; in multi mode membership is toggled.
func (n *Navigator) ClickFile(file drive.File) bool {
	if !n.opts.Multiple {
		if n.opts.OnSelect != nil {
			n.opts.OnSelect([]drive.File{file})
		}
		return true
	}

	if n.selected[file.ID] {
		delete(n.selected, file.ID)
		for i, f := range n.order {
			if f.ID == file.ID {
				n.order = append(n.order[:i], n.order[i+1:]...)
				break
			}
		}
		return false
	}

	n.selected[file.ID] = true
	n.order = append(n.order, file)
	return false
}

// Confirm finalizes a non-empty multi selection
func (n *Navigator) Confirm() bool {
	if len(n.order) == 0 {
		return false
	}
	if n.opts.OnSelect != nil {
		n.opts.OnSelect(n.Selected())
	}
	return true
}

func (n *Navigator) clearSelection() {
	n.selected = make(map[string]bool)
	n.order = nil
}

// IsSelected reports whether the file with id is in the selection
func (n *Navigator) IsSelected(id string) bool {
	return n.selected[id]
}

// Selected returns the selection in click order
func (n *Navigator) Selected() []drive.File {
	return append([]drive.File(nil), n.order...)
}

// SelectionCount returns the number of selected files
func (n *Navigator) SelectionCount() int {
	return len(n.order)
}

// CanLoadMore reports whether a next page can be requested
func (n *Navigator) CanLoadMore() bool {
	return n.active() && n.cursor != "" && n.pending == nil
}

// Listing reports whether a request is in flight
func (n *Navigator) Listing() bool {
	return n.pending != nil
}

// Empty reports whether a completed listing returned nothing
func (n *Navigator) Empty() bool {
	return n.pending == nil && n.hasLoadedInitial && len(n.files) == 0 && len(n.folders) == 0
}

// CurrentFolder returns the folder being browsed, nil at root
func (n *Navigator) CurrentFolder() *drive.Folder {
	if len(n.stack) == 0 {
		return nil
	}
	f := n.stack[len(n.stack)-1]
	return &f
}

// CurrentFolderID returns the id of the folder being browsed, "" at root
func (n *Navigator) CurrentFolderID() string {
	if f := n.CurrentFolder(); f != nil {
		return f.ID
	}
	return ""
}

func (n *Navigator) Mode() Mode             { return n.mode }
func (n *Navigator) Load() LoadState        { return n.load }
func (n *Navigator) Multiple() bool         { return n.opts.Multiple }
func (n *Navigator) Query() string          { return n.query }
func (n *Navigator) Cursor() string         { return n.cursor }
func (n *Navigator) HasLoadedInitial() bool { return n.hasLoadedInitial }

// Stack returns a copy of the folder stack
func (n *Navigator) Stack() []drive.Folder {
	return append([]drive.Folder(nil), n.stack...)
}

// Files returns the current files
func (n *Navigator) Files() []drive.File {
	return n.files
}

// Folders returns the current folders
func (n *Navigator) Folders() []drive.Folder {
	return n.folders
}
