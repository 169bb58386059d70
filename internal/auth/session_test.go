package auth

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/HaiFongPan/gdrive-picker/internal/errs"
)

// MockTokenClient is a mock implementation of TokenClient
type MockTokenClient struct {
	mock.Mock
	// refresh replaces the static token source when set
	refresh oauth2.TokenSource
}

type tokenSourceFunc func() (*oauth2.Token, error)

func (f tokenSourceFunc) Token() (*oauth2.Token, error) { return f() }

func (m *MockTokenClient) RequestToken(ctx context.Context, forceConsent bool) (*oauth2.Token, error) {
	args := m.Called(ctx, forceConsent)
	tok, _ := args.Get(0).(*oauth2.Token)
	return tok, args.Error(1)
}

func (m *MockTokenClient) Revoke(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockTokenClient) TokenSource(ctx context.Context, t *oauth2.Token) oauth2.TokenSource {
	if m.refresh != nil {
		return m.refresh
	}
	return oauth2.StaticTokenSource(t)
}

type authEvents struct {
	mu      sync.Mutex
	changes []bool
	errors  []error
}

func (e *authEvents) onAuthChange(v bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.changes = append(e.changes, v)
}

func (e *authEvents) onError(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.errors = append(e.errors, err)
}

func newTestSession(client TokenClient, store TokenStore, events *authEvents) *Session {
	return NewSession(Options{
		NewTokenClient: func(ctx context.Context) (TokenClient, error) { return client, nil },
		Store:          store,
		OnError:        events.onError,
		OnAuthChange:   events.onAuthChange,
	})
}

func TestSession_InitialState(t *testing.T) {
	s := newTestSession(&MockTokenClient{}, nil, &authEvents{})

	assert.True(t, s.Loading())
	assert.False(t, s.Ready())
	assert.False(t, s.Authenticated())
	assert.NoError(t, s.Err())
}

func TestSession_InitializeSuccess(t *testing.T) {
	var loaded []string
	s := NewSession(Options{
		NewTokenClient: func(ctx context.Context) (TokenClient, error) {
			loaded = append(loaded, IdentityResource)
			return &MockTokenClient{}, nil
		},
		Resources: []Resource{{
			Name: "drive-api",
			Load: func(ctx context.Context) error {
				loaded = append(loaded, "drive-api")
				return nil
			},
		}},
	})

	require.NoError(t, s.Initialize(context.Background()))
	assert.True(t, s.Ready())
	assert.False(t, s.Loading())
	assert.Equal(t, []string{IdentityResource, "drive-api"}, loaded)

	// second call is a no-op
	require.NoError(t, s.Initialize(context.Background()))
	assert.Len(t, loaded, 2)
}

func TestSession_InitializeFailure(t *testing.T) {
	events := &authEvents{}
	s := NewSession(Options{
		NewTokenClient: func(ctx context.Context) (TokenClient, error) { return &MockTokenClient{}, nil },
		Resources: []Resource{{
			Name: "drive-api",
			Load: func(ctx context.Context) error { return errors.New("discovery unreachable") },
		}},
		OnError: events.onError,
	})

	err := s.Initialize(context.Background())
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindInitialization))
	assert.False(t, s.Ready())
	assert.False(t, s.Loading())
	assert.Equal(t, err, s.Err())
	require.Len(t, events.errors, 1)
}

func TestSession_RestoresCachedToken(t *testing.T) {
	store := NewFileTokenStore(filepath.Join(t.TempDir(), "token.json"))
	require.NoError(t, store.Save(&oauth2.Token{AccessToken: "cached", Expiry: time.Now().Add(time.Hour)}))

	events := &authEvents{}
	s := newTestSession(&MockTokenClient{}, store, events)
	require.NoError(t, s.Initialize(context.Background()))

	tok, ok := s.AccessToken()
	assert.True(t, ok)
	assert.Equal(t, "cached", tok)
	assert.Equal(t, []bool{true}, events.changes)
}

func TestSession_RestoreRefreshesTokenWithoutAccessToken(t *testing.T) {
	store := NewFileTokenStore(filepath.Join(t.TempDir(), "token.json"))
	require.NoError(t, store.Save(&oauth2.Token{RefreshToken: "r1"}))

	client := &MockTokenClient{
		refresh: tokenSourceFunc(func() (*oauth2.Token, error) {
			return &oauth2.Token{AccessToken: "renewed", Expiry: time.Now().Add(time.Hour)}, nil
		}),
	}
	events := &authEvents{}
	s := newTestSession(client, store, events)
	require.NoError(t, s.Initialize(context.Background()))

	tok, ok := s.AccessToken()
	assert.True(t, ok)
	assert.Equal(t, "renewed", tok)
	assert.Equal(t, []bool{true}, events.changes)

	cached, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, cached)
	assert.Equal(t, "renewed", cached.AccessToken)
	assert.Equal(t, "r1", cached.RefreshToken)
}

func TestSession_RestoreDiscardsUnusableToken(t *testing.T) {
	store := NewFileTokenStore(filepath.Join(t.TempDir(), "token.json"))
	require.NoError(t, store.Save(&oauth2.Token{RefreshToken: "r1"}))

	// the static source hands back the same token, still without an access token
	client := &MockTokenClient{}
	events := &authEvents{}
	s := newTestSession(client, store, events)
	require.NoError(t, s.Initialize(context.Background()))

	assert.False(t, s.Authenticated())
	assert.Empty(t, events.changes)

	cached, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, cached)

	// sign-in prompts instead of treating the stale token as held
	client.On("RequestToken", mock.Anything, true).
		Return(&oauth2.Token{AccessToken: "fresh", Expiry: time.Now().Add(time.Hour)}, nil).Once()

	require.NoError(t, s.SignIn(context.Background()))
	assert.True(t, s.Authenticated())
	assert.Equal(t, []bool{true}, events.changes)
	client.AssertNumberOfCalls(t, "RequestToken", 1)
}

func TestSession_RestoreDiscardsTokenWhenRefreshFails(t *testing.T) {
	store := NewFileTokenStore(filepath.Join(t.TempDir(), "token.json"))
	require.NoError(t, store.Save(&oauth2.Token{RefreshToken: "revoked"}))

	client := &MockTokenClient{
		refresh: tokenSourceFunc(func() (*oauth2.Token, error) {
			return nil, errors.New("invalid_grant")
		}),
	}
	events := &authEvents{}
	s := newTestSession(client, store, events)
	require.NoError(t, s.Initialize(context.Background()))

	assert.True(t, s.Ready())
	assert.False(t, s.Authenticated())
	assert.Empty(t, events.changes)
	assert.Empty(t, events.errors)

	cached, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, cached)
}

func TestSession_SignInBeforeReady(t *testing.T) {
	client := &MockTokenClient{}
	s := newTestSession(client, nil, &authEvents{})

	err := s.SignIn(context.Background())
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindInitialization))
	assert.ErrorIs(t, err, errs.ErrNotInitialized)
	client.AssertNotCalled(t, "RequestToken", mock.Anything, mock.Anything)
}

func TestSession_SignInStoresToken(t *testing.T) {
	client := &MockTokenClient{}
	store := NewFileTokenStore(filepath.Join(t.TempDir(), "token.json"))
	events := &authEvents{}
	s := newTestSession(client, store, events)
	require.NoError(t, s.Initialize(context.Background()))

	client.On("RequestToken", mock.Anything, true).
		Return(&oauth2.Token{AccessToken: "fresh", Expiry: time.Now().Add(time.Hour)}, nil).Once()

	require.NoError(t, s.SignIn(context.Background()))
	assert.True(t, s.Authenticated())
	assert.Equal(t, []bool{true}, events.changes)

	cached, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, cached)
	assert.Equal(t, "fresh", cached.AccessToken)

	// a held token short-circuits
	require.NoError(t, s.SignIn(context.Background()))
	client.AssertNumberOfCalls(t, "RequestToken", 1)
}

func TestSession_OverlappingSignInsShareRequest(t *testing.T) {
	client := &MockTokenClient{}
	s := newTestSession(client, nil, &authEvents{})
	require.NoError(t, s.Initialize(context.Background()))

	release := make(chan struct{})
	client.On("RequestToken", mock.Anything, true).
		Run(func(args mock.Arguments) { <-release }).
		Return(&oauth2.Token{AccessToken: "shared"}, nil).Once()

	var wg sync.WaitGroup
	errCh := make(chan error, 5)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errCh <- s.SignIn(context.Background())
		}()
	}

	time.Sleep(30 * time.Millisecond)
	close(release)
	wg.Wait()
	close(errCh)

	for err := range errCh {
		assert.NoError(t, err)
	}
	client.AssertNumberOfCalls(t, "RequestToken", 1)
	assert.True(t, s.Authenticated())
}

func TestSession_CancelledSignInDoesNotAbortOthers(t *testing.T) {
	client := &MockTokenClient{}
	s := newTestSession(client, nil, &authEvents{})
	require.NoError(t, s.Initialize(context.Background()))

	release := make(chan struct{})
	started := make(chan context.Context, 1)
	client.On("RequestToken", mock.Anything, true).
		Run(func(args mock.Arguments) {
			started <- args.Get(0).(context.Context)
			<-release
		}).
		Return(&oauth2.Token{AccessToken: "shared"}, nil).Once()

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() { firstErr <- s.SignIn(firstCtx) }()

	requestCtx := <-started

	secondErr := make(chan error, 1)
	go func() { secondErr <- s.SignIn(context.Background()) }()

	time.Sleep(20 * time.Millisecond)
	cancelFirst()

	select {
	case err := <-firstErr:
		assert.ErrorIs(t, err, context.Canceled)
		assert.True(t, errs.IsKind(err, errs.KindAuthentication))
	case <-time.After(time.Second):
		t.Fatal("cancelled caller did not return")
	}

	assert.NoError(t, requestCtx.Err(), "shared request must outlive the cancelled caller")

	close(release)
	select {
	case err := <-secondErr:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("waiting caller did not return")
	}

	assert.True(t, s.Authenticated())
	client.AssertNumberOfCalls(t, "RequestToken", 1)
}

func TestSession_SignInDenied(t *testing.T) {
	client := &MockTokenClient{}
	events := &authEvents{}
	s := newTestSession(client, nil, events)
	require.NoError(t, s.Initialize(context.Background()))

	client.On("RequestToken", mock.Anything, true).Return(nil, errs.ErrConsentDenied).Once()

	err := s.SignIn(context.Background())
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindAuthentication))
	assert.True(t, errs.KindOf(err).Recoverable())
	assert.False(t, s.Authenticated())
	assert.Len(t, events.errors, 1)

	// a later success clears the error
	client.On("RequestToken", mock.Anything, true).Return(&oauth2.Token{AccessToken: "ok"}, nil).Once()
	require.NoError(t, s.SignIn(context.Background()))
	assert.NoError(t, s.Err())
}

func TestSession_SignInEmptyTokenIsDenial(t *testing.T) {
	client := &MockTokenClient{}
	s := newTestSession(client, nil, &authEvents{})
	require.NoError(t, s.Initialize(context.Background()))

	client.On("RequestToken", mock.Anything, true).Return(&oauth2.Token{}, nil).Once()

	err := s.SignIn(context.Background())
	assert.ErrorIs(t, err, errs.ErrConsentDenied)
	assert.False(t, s.Authenticated())
}

func TestSession_SignOutClearsEvenWhenRevokeFails(t *testing.T) {
	client := &MockTokenClient{}
	store := NewFileTokenStore(filepath.Join(t.TempDir(), "token.json"))
	events := &authEvents{}
	s := newTestSession(client, store, events)
	require.NoError(t, s.Initialize(context.Background()))

	client.On("RequestToken", mock.Anything, true).
		Return(&oauth2.Token{AccessToken: "access", RefreshToken: "refresh"}, nil).Once()
	client.On("Revoke", mock.Anything, "refresh").Return(errors.New("offline")).Once()

	require.NoError(t, s.SignIn(context.Background()))
	s.SignOut(context.Background())

	assert.False(t, s.Authenticated())
	assert.Equal(t, []bool{true, false}, events.changes)
	client.AssertExpectations(t)

	cached, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, cached)

	_, err = s.Token()
	assert.True(t, errs.IsKind(err, errs.KindNotAuthenticated))
}

func TestSession_SignOutWithoutToken(t *testing.T) {
	client := &MockTokenClient{}
	events := &authEvents{}
	s := newTestSession(client, nil, events)
	require.NoError(t, s.Initialize(context.Background()))

	s.SignOut(context.Background())
	assert.Empty(t, events.changes)
	client.AssertNotCalled(t, "Revoke", mock.Anything, mock.Anything)
}
