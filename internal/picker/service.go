package picker

import (
	"context"
	"net/http"
	"sync"

	"golang.org/x/oauth2"

	"github.com/HaiFongPan/gdrive-picker/internal/auth"
	"github.com/HaiFongPan/gdrive-picker/internal/drive"
)

// DriveResource names the Drive API service resource
const DriveResource = "drive-api"

// ServiceOptions configures a Service
type ServiceOptions struct {
	Google    auth.GoogleConfig
	MimeTypes []string
	// HTTPClient is the transport layered under the OAuth client
	HTTPClient *http.Client
	// Store caches the token between runs; nil keeps it in memory only
	Store        auth.TokenStore
	OnError      func(error)
	OnAuthChange func(authenticated bool)

	// NewTokenClient and NewFilesAPI replace the Google bindings, mainly in tests
	NewTokenClient func(ctx context.Context) (auth.TokenClient, error)
	NewFilesAPI    func(ctx context.Context, client *http.Client) (drive.FilesAPI, error)
}

// Service is the reusable hook surface: session lifecycle plus listing
type Service struct {
	session *auth.Session
	client  *drive.Client

	mu         sync.RWMutex
	authClient *http.Client
}

// NewService wires a session and a listing client. Nothing touches the
// network until Initialize.
func NewService(opts ServiceOptions) *Service {
	s := &Service{}

	base := opts.HTTPClient
	if base == nil {
		base = http.DefaultClient
	}

	newTokenClient := opts.NewTokenClient
	if newTokenClient == nil {
		newTokenClient = func(ctx context.Context) (auth.TokenClient, error) {
			cfg := opts.Google
			if cfg.HTTPClient == nil {
				cfg.HTTPClient = base
			}
			return auth.NewGoogleTokenClient(cfg)
		}
	}

	newFilesAPI := opts.NewFilesAPI
	if newFilesAPI == nil {
		newFilesAPI = func(ctx context.Context, client *http.Client) (drive.FilesAPI, error) {
			svc, err := drive.NewService(ctx, client)
			if err != nil {
				return nil, err
			}
			return drive.NewFilesAPI(svc), nil
		}
	}

	driveResource := auth.Resource{
		Name: DriveResource,
		Load: func(ctx context.Context) error {
			authClient := oauth2.NewClient(context.WithValue(ctx, oauth2.HTTPClient, base), s.session)
			api, err := newFilesAPI(ctx, authClient)
			if err != nil {
				return err
			}
			s.client.Bind(api)

			s.mu.Lock()
			s.authClient = authClient
			s.mu.Unlock()
			return nil
		},
	}

	s.session = auth.NewSession(auth.Options{
		NewTokenClient: newTokenClient,
		Resources:      []auth.Resource{driveResource},
		Store:          opts.Store,
		OnError:        opts.OnError,
		OnAuthChange:   opts.OnAuthChange,
	})
	s.client = drive.NewClient(s.session, opts.MimeTypes)
	return s
}

func (s *Service) Initialize(ctx context.Context) error { return s.session.Initialize(ctx) }
func (s *Service) SignIn(ctx context.Context) error     { return s.session.SignIn(ctx) }
func (s *Service) SignOut(ctx context.Context)          { s.session.SignOut(ctx) }
func (s *Service) Ready() bool                          { return s.session.Ready() }
func (s *Service) Loading() bool                        { return s.session.Loading() }
func (s *Service) Authenticated() bool                  { return s.session.Authenticated() }
func (s *Service) Err() error                           { return s.session.Err() }
func (s *Service) AccessToken() (string, bool)          { return s.session.AccessToken() }
func (s *Service) Listing() bool                        { return s.client.Listing() }
func (s *Service) MimeTypes() []string                  { return s.client.MimeTypes() }

// ListFiles lists one page of folderID (root when empty)
func (s *Service) ListFiles(ctx context.Context, folderID, pageToken string) (*drive.ResultPage, error) {
	return s.client.ListFiles(ctx, folderID, pageToken)
}

// SearchFiles searches file names across the drive
func (s *Service) SearchFiles(ctx context.Context, query, pageToken string) (*drive.ResultPage, error) {
	return s.client.SearchFiles(ctx, query, pageToken)
}

// HTTPClient returns the authorized client once initialized, e.g. for
// thumbnail downloads. It returns nil before Initialize succeeds.
func (s *Service) HTTPClient() *http.Client {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authClient
}
