package auth

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"

	"github.com/HaiFongPan/gdrive-picker/internal/errs"
)

// IdentityResource names the OAuth token client resource
const IdentityResource = "google-identity"

// signInTimeout bounds a shared consent request once it is detached from
// its callers
const signInTimeout = 5 * time.Minute

// TokenClient obtains, refreshes and revokes OAuth tokens
type TokenClient interface {
	// RequestToken runs the consent flow; forceConsent always shows the prompt
	RequestToken(ctx context.Context, forceConsent bool) (*oauth2.Token, error)
	Revoke(ctx context.Context, token string) error
	TokenSource(ctx context.Context, t *oauth2.Token) oauth2.TokenSource
}

// TokenStore persists a token between runs. Load returns nil, nil when
// nothing is stored.
type TokenStore interface {
	Load() (*oauth2.Token, error)
	Save(t *oauth2.Token) error
	Delete() error
}

// Options configures a Session
type Options struct {
	// NewTokenClient builds the identity client during Initialize
	NewTokenClient func(ctx context.Context) (TokenClient, error)
	// Resources are loaded after the identity client, in order
	Resources []Resource
	// Store is optional
	Store        TokenStore
	OnError      func(error)
	OnAuthChange func(authenticated bool)
}

// Session tracks the authentication lifecycle: uninitialized, ready,
// authenticated, and back to unauthenticated on sign-out
type Session struct {
	opts   Options
	loader *Loader
	group  singleflight.Group

	mu      sync.RWMutex
	ready   bool
	loading bool
	client  TokenClient
	token   *oauth2.Token
	source  oauth2.TokenSource
	lastErr error
}

// NewSession creates an uninitialized session
func NewSession(opts Options) *Session {
	return &Session{
		opts:    opts,
		loader:  NewLoader(),
		loading: true,
	}
}

// Initialize loads the identity client and the extra resources. It is safe
// to call repeatedly and concurrently; once ready it returns immediately.
func (s *Session) Initialize(ctx context.Context) error {
	if s.Ready() {
		return nil
	}

	_, err, _ := s.group.Do("initialize", func() (interface{}, error) {
		return nil, s.initialize(ctx)
	})
	return err
}

func (s *Session) initialize(ctx context.Context) error {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	identity := Resource{
		Name: IdentityResource,
		Load: func(ctx context.Context) error {
			if s.opts.NewTokenClient == nil {
				return errs.ErrNotInitialized
			}
			client, err := s.opts.NewTokenClient(ctx)
			if err != nil {
				return err
			}
			s.mu.Lock()
			s.client = client
			s.mu.Unlock()
			return nil
		},
	}

	resources := append([]Resource{identity}, s.opts.Resources...)
	for _, r := range resources {
		if err := s.loader.Ensure(ctx, r); err != nil {
			err = errs.Normalize(errs.KindInitialization, "initialize", err)
			s.mu.Lock()
			s.loading = false
			s.mu.Unlock()
			s.fail(err)
			return err
		}
	}

	s.mu.Lock()
	s.ready = true
	s.loading = false
	s.mu.Unlock()

	logrus.Info("Session: identity client ready")
	s.restoreToken(ctx)
	return nil
}

// restoreToken picks up a cached token so the user is not prompted again.
// A token without an access token is refreshed first; if that fails the
// cached token is discarded and the session stays signed out.
func (s *Session) restoreToken(ctx context.Context) {
	if s.opts.Store == nil {
		return
	}

	tok, err := s.opts.Store.Load()
	if err != nil {
		logrus.Warnf("Session: failed to load cached token: %v", err)
		return
	}
	if tok == nil || (tok.AccessToken == "" && tok.RefreshToken == "") {
		return
	}

	if tok.AccessToken == "" {
		s.mu.RLock()
		client := s.client
		s.mu.RUnlock()

		fresh, err := client.TokenSource(ctx, tok).Token()
		if err == nil && (fresh == nil || fresh.AccessToken == "") {
			err = errs.ErrNotAuthenticated
		}
		if err != nil {
			logrus.Warnf("Session: cached token could not be refreshed, discarding it: %v", err)
			if err := s.opts.Store.Delete(); err != nil {
				logrus.Warnf("Session: failed to remove cached token: %v", err)
			}
			return
		}
		if fresh.RefreshToken == "" {
			fresh.RefreshToken = tok.RefreshToken
		}
		tok = fresh
		s.persist(tok)
	}

	logrus.Info("Session: restored cached token")
	s.setToken(tok)
}

// SignIn obtains a token, prompting for consent unless one is already held.
// Overlapping calls share the same pending request. The shared request runs
// on a context detached from any single caller, so a caller that gives up
// returns its own ctx error while the others keep waiting.
func (s *Session) SignIn(ctx context.Context) error {
	s.mu.RLock()
	client := s.client
	ready := s.ready
	s.mu.RUnlock()

	if !ready || client == nil {
		err := errs.New(errs.KindInitialization, "sign in", errs.ErrNotInitialized)
		s.setErr(err)
		return err
	}

	if s.Authenticated() {
		return nil
	}

	results := s.group.DoChan("sign-in", func() (interface{}, error) {
		reqCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), signInTimeout)
		defer cancel()

		tok, err := client.RequestToken(reqCtx, true)
		if err == nil && (tok == nil || tok.AccessToken == "") {
			err = errs.ErrConsentDenied
		}
		if err != nil {
			err = errs.Normalize(errs.KindAuthentication, "sign in", err)
			s.fail(err)
			return nil, err
		}

		s.mu.Lock()
		s.lastErr = nil
		s.mu.Unlock()

		s.setToken(tok)
		s.persist(tok)
		return nil, nil
	})

	select {
	case res := <-results:
		return res.Err
	case <-ctx.Done():
		return errs.Normalize(errs.KindAuthentication, "sign in", ctx.Err())
	}
}

// SignOut revokes the held token (best effort) and clears authentication
func (s *Session) SignOut(ctx context.Context) {
	s.mu.Lock()
	tok := s.token
	client := s.client
	s.token = nil
	s.source = nil
	s.mu.Unlock()

	if s.opts.Store != nil {
		if err := s.opts.Store.Delete(); err != nil {
			logrus.Warnf("Session: failed to remove cached token: %v", err)
		}
	}

	if tok == nil {
		return
	}

	if client != nil {
		revoke := tok.RefreshToken
		if revoke == "" {
			revoke = tok.AccessToken
		}
		if err := client.Revoke(ctx, revoke); err != nil {
			logrus.Warnf("Session: token revocation failed: %v", err)
		}
	}

	logrus.Info("Session: signed out")
	if s.opts.OnAuthChange != nil {
		s.opts.OnAuthChange(false)
	}
}

// AccessToken returns the held access token, if any
func (s *Session) AccessToken() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == nil || s.token.AccessToken == "" {
		return "", false
	}
	return s.token.AccessToken, true
}

// Token implements oauth2.TokenSource, refreshing the held token as needed
func (s *Session) Token() (*oauth2.Token, error) {
	s.mu.RLock()
	src := s.source
	held := s.token
	s.mu.RUnlock()

	if src == nil {
		return nil, errs.New(errs.KindNotAuthenticated, "token", errs.ErrNotAuthenticated)
	}

	tok, err := src.Token()
	if err != nil {
		return nil, errs.Normalize(errs.KindAuthentication, "refresh token", err)
	}

	if held == nil || tok.AccessToken != held.AccessToken {
		s.mu.Lock()
		// sign-out may have raced with the refresh
		current := s.source == src
		if current {
			s.token = tok
		}
		s.mu.Unlock()
		if current {
			s.persist(tok)
		}
	}
	return tok, nil
}

// Ready reports whether initialization completed
func (s *Session) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// Loading reports whether initialization is still pending
func (s *Session) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Authenticated reports whether a token is held
func (s *Session) Authenticated() bool {
	_, ok := s.AccessToken()
	return ok
}

// Err returns the last error, if any
func (s *Session) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

func (s *Session) setToken(tok *oauth2.Token) {
	s.mu.Lock()
	client := s.client
	s.token = tok
	s.source = oauth2.ReuseTokenSource(tok, client.TokenSource(context.Background(), tok))
	s.mu.Unlock()

	if s.opts.OnAuthChange != nil {
		s.opts.OnAuthChange(true)
	}
}

func (s *Session) persist(tok *oauth2.Token) {
	if s.opts.Store == nil {
		return
	}
	if err := s.opts.Store.Save(tok); err != nil {
		logrus.Warnf("Session: failed to cache token: %v", err)
	}
}

func (s *Session) setErr(err error) {
	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()
}

func (s *Session) fail(err error) {
	logrus.Errorf("Session: %v", err)
	s.setErr(err)
	if s.opts.OnError != nil {
		s.opts.OnError(err)
	}
}
