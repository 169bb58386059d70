package drive

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	gdrive "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/HaiFongPan/gdrive-picker/internal/errs"
)

// ListRequest describes one files.list call
type ListRequest struct {
	Query     string
	Fields    string
	OrderBy   string
	PageToken string
	PageSize  int64
}

// FilesAPI is the subset of the Drive files endpoint the picker uses
type FilesAPI interface {
	List(ctx context.Context, req ListRequest) (*gdrive.FileList, error)
}

// TokenProvider exposes the access token held by the session
type TokenProvider interface {
	AccessToken() (string, bool)
}

type serviceFiles struct {
	svc *gdrive.Service
}

// NewFilesAPI binds FilesAPI to a Drive service
func NewFilesAPI(svc *gdrive.Service) FilesAPI {
	return &serviceFiles{svc: svc}
}

func (s *serviceFiles) List(ctx context.Context, req ListRequest) (*gdrive.FileList, error) {
	call := s.svc.Files.List().
		Q(req.Query).
		Fields(googleapi.Field(req.Fields)).
		PageSize(req.PageSize).
		OrderBy(req.OrderBy).
		Context(ctx)

	if req.PageToken != "" {
		call = call.PageToken(req.PageToken)
	}

	return call.Do()
}

// NewService creates a Drive service that authenticates through httpClient
func NewService(ctx context.Context, httpClient *http.Client) (*gdrive.Service, error) {
	svc, err := gdrive.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}
	return svc, nil
}

// Client lists and searches Drive files restricted to a MIME allow-list
type Client struct {
	tokens    TokenProvider
	mimeTypes []string

	mu  sync.RWMutex
	api FilesAPI

	inFlight atomic.Int32
}

// NewClient creates a listing client. The Drive API is bound later with Bind,
// once the session has finished initializing.
func NewClient(tokens TokenProvider, mimeTypes []string) *Client {
	if len(mimeTypes) == 0 {
		mimeTypes = DefaultMimeTypes
	}
	return &Client{
		tokens:    tokens,
		mimeTypes: append([]string(nil), mimeTypes...),
	}
}

// Bind sets the Drive API used for queries
func (c *Client) Bind(api FilesAPI) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.api = api
}

// MimeTypes returns the allow-list
func (c *Client) MimeTypes() []string {
	return append([]string(nil), c.mimeTypes...)
}

// Listing reports whether a listing or search is in flight
func (c *Client) Listing() bool {
	return c.inFlight.Load() > 0
}

func (c *Client) prepare(op string) (FilesAPI, error) {
	if _, ok := c.tokens.AccessToken(); !ok {
		return nil, errs.New(errs.KindNotAuthenticated, op, errs.ErrNotAuthenticated)
	}

	c.mu.RLock()
	api := c.api
	c.mu.RUnlock()

	if api == nil {
		return nil, errs.New(errs.KindInitialization, op, fmt.Errorf("drive API not initialized"))
	}
	return api, nil
}

// ListFiles returns one page of allowed files under folderID (root when
// empty), newest first. The first page also carries every sub-folder, sorted
// by name; the file and folder queries run concurrently.
func (c *Client) ListFiles(ctx context.Context, folderID, pageToken string) (*ResultPage, error) {
	const op = "list files"

	api, err := c.prepare(op)
	if err != nil {
		return nil, err
	}

	c.inFlight.Add(1)
	defer c.inFlight.Add(-1)

	logrus.Debugf("Listing folder %q (page token %q)", folderID, pageToken)

	var (
		files     *gdrive.FileList
		folders   []Folder
		loadFolds = pageToken == ""
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		resp, err := api.List(gctx, ListRequest{
			Query:     FilesQuery(c.mimeTypes, folderID),
			Fields:    fileFields,
			OrderBy:   fileOrder,
			PageToken: pageToken,
			PageSize:  FilePageSize,
		})
		if err != nil {
			return err
		}
		files = resp
		return nil
	})

	if loadFolds {
		g.Go(func() error {
			var err error
			folders, err = listAllFolders(gctx, api, folderID)
			return err
		})
	}

	if err := g.Wait(); err != nil {
		logrus.Warnf("Listing folder %q failed: %v", folderID, err)
		return nil, errs.Normalize(errs.KindListing, op, err)
	}

	page := &ResultPage{
		Files:         MapFiles(files.Files),
		NextPageToken: files.NextPageToken,
		HasFolders:    loadFolds,
	}
	if loadFolds {
		page.Folders = folders
	}
	return page, nil
}

// listAllFolders follows folder cursors until the listing is exhausted
func listAllFolders(ctx context.Context, api FilesAPI, folderID string) ([]Folder, error) {
	var (
		folders   = []Folder{}
		pageToken string
		seen      = map[string]bool{}
	)

	for {
		resp, err := api.List(ctx, ListRequest{
			Query:     FoldersQuery(folderID),
			Fields:    folderFields,
			OrderBy:   folderOrder,
			PageToken: pageToken,
			PageSize:  FolderPageSize,
		})
		if err != nil {
			return nil, err
		}

		folders = append(folders, MapFolders(resp.Files)...)

		if resp.NextPageToken == "" || seen[resp.NextPageToken] {
			return folders, nil
		}
		seen[resp.NextPageToken] = true
		pageToken = resp.NextPageToken
	}
}

// SearchFiles returns one page of allowed files whose name contains query
func (c *Client) SearchFiles(ctx context.Context, query, pageToken string) (*ResultPage, error) {
	const op = "search files"

	api, err := c.prepare(op)
	if err != nil {
		return nil, err
	}

	c.inFlight.Add(1)
	defer c.inFlight.Add(-1)

	logrus.Debugf("Searching for %q (page token %q)", query, pageToken)

	resp, err := api.List(ctx, ListRequest{
		Query:     SearchQuery(c.mimeTypes, query),
		Fields:    fileFields,
		OrderBy:   fileOrder,
		PageToken: pageToken,
		PageSize:  FilePageSize,
	})
	if err != nil {
		logrus.Warnf("Search for %q failed: %v", query, err)
		return nil, errs.Normalize(errs.KindListing, op, err)
	}

	return &ResultPage{
		Files:         MapFiles(resp.Files),
		NextPageToken: resp.NextPageToken,
	}, nil
}
