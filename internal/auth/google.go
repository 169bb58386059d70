package auth

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/browser"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gdrive "google.golang.org/api/drive/v3"

	"github.com/HaiFongPan/gdrive-picker/internal/errs"
)

// Scopes is the fixed read-only scope set the picker requests
var Scopes = []string{
	gdrive.DriveReadonlyScope,
	gdrive.DriveMetadataReadonlyScope,
}

const (
	revokeEndpoint = "https://oauth2.googleapis.com/revoke"
	callbackPath   = "/callback"
)

// GoogleConfig holds what the Google token client needs
type GoogleConfig struct {
	ClientID        string
	ClientSecret    string
	CredentialsFile string
	// RedirectPort is the loopback port for the consent redirect, 0 picks one
	RedirectPort int
	HTTPClient   *http.Client
	// Prompt receives the consent URL, e.g. to print it when no browser opens
	Prompt func(authURL string)
}

// GoogleTokenClient runs the installed-app consent flow with a loopback
// redirect and PKCE
type GoogleTokenClient struct {
	config     *oauth2.Config
	port       int
	httpClient *http.Client
	prompt     func(string)
	openURL    func(string) error
	revokeURL  string
}

// NewGoogleTokenClient builds the OAuth client from either a downloaded
// credentials file or an explicit client id/secret pair
func NewGoogleTokenClient(cfg GoogleConfig) (*GoogleTokenClient, error) {
	var oauthCfg *oauth2.Config

	if cfg.CredentialsFile != "" {
		data, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read credentials file: %w", err)
		}
		oauthCfg, err = google.ConfigFromJSON(data, Scopes...)
		if err != nil {
			return nil, fmt.Errorf("failed to parse credentials file: %w", err)
		}
	} else {
		if strings.TrimSpace(cfg.ClientID) == "" {
			return nil, fmt.Errorf("client_id is required")
		}
		oauthCfg = &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       Scopes,
		}
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &GoogleTokenClient{
		config:     oauthCfg,
		port:       cfg.RedirectPort,
		httpClient: httpClient,
		prompt:     cfg.Prompt,
		openURL:    browser.OpenURL,
		revokeURL:  revokeEndpoint,
	}, nil
}

type callbackResult struct {
	code string
	err  error
}

// RequestToken opens the consent page and waits for the redirect
func (c *GoogleTokenClient) RequestToken(ctx context.Context, forceConsent bool) (*oauth2.Token, error) {
	ln, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", c.port))
	if err != nil {
		return nil, fmt.Errorf("failed to start redirect listener: %w", err)
	}
	defer ln.Close()

	conf := *c.config
	conf.RedirectURL = fmt.Sprintf("http://%s%s", ln.Addr().String(), callbackPath)

	state := uuid.NewString()
	verifier := oauth2.GenerateVerifier()

	opts := []oauth2.AuthCodeOption{oauth2.AccessTypeOffline, oauth2.S256ChallengeOption(verifier)}
	if forceConsent {
		opts = append(opts, oauth2.ApprovalForce)
	}
	authURL := conf.AuthCodeURL(state, opts...)

	results := make(chan callbackResult, 1)
	srv := &http.Server{
		Handler:           callbackHandler(state, results),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			logrus.Warnf("GoogleTokenClient: redirect server stopped: %v", err)
		}
	}()
	defer srv.Shutdown(context.Background())

	if c.prompt != nil {
		c.prompt(authURL)
	}
	if c.openURL != nil {
		if err := c.openURL(authURL); err != nil {
			logrus.Warnf("GoogleTokenClient: failed to open browser: %v", err)
		}
	}

	var res callbackResult
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-results:
	}
	if res.err != nil {
		return nil, res.err
	}

	exchangeCtx := context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	tok, err := conf.Exchange(exchangeCtx, res.code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("token exchange failed: %w", err)
	}
	return tok, nil
}

// callbackHandler receives the consent redirect and reports the outcome once
func callbackHandler(state string, results chan<- callbackResult) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(callbackPath, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		var res callbackResult
		switch {
		case q.Get("state") != state:
			http.Error(w, "state mismatch", http.StatusBadRequest)
			return
		case q.Get("error") != "":
			res.err = fmt.Errorf("%w: %s", errs.ErrConsentDenied, q.Get("error"))
			fmt.Fprintln(w, "Access was not granted. You can close this window.")
		case q.Get("code") == "":
			http.Error(w, "missing code", http.StatusBadRequest)
			return
		default:
			res.code = q.Get("code")
			fmt.Fprintln(w, "Signed in. You can close this window and return to the terminal.")
		}

		select {
		case results <- res:
		default:
		}
	})
	return mux
}

// Revoke invalidates token at Google's revocation endpoint
func (c *GoogleTokenClient) Revoke(ctx context.Context, token string) error {
	form := url.Values{"token": {token}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.revokeURL, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("revoke request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("revoke returned %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}
	return nil
}

// TokenSource refreshes t through the OAuth config
func (c *GoogleTokenClient) TokenSource(ctx context.Context, t *oauth2.Token) oauth2.TokenSource {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	return c.config.TokenSource(ctx, t)
}
