// Package googleauth obtains credentials for the Google APIs used by the
// sync engine and the YouTube generator.
//
// A configured service-account key file takes precedence and is re-read on
// every construction. Otherwise a persisted user OAuth token is loaded from
// disk, refreshed in place when expired, and rewritten on change. When no
// viable credential exists, the authorization URL is written to a side file
// for an external party to visit; a later run picks the authorization code
// up from a second side file and exchanges it.
package googleauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/jaipkapoor99/the-automaton/internal/config"
)

// ErrAuthorizationPending is returned while the side-file authorization flow
// waits for an external party to supply the code. Callers treat it as "sync
// unavailable", not a crash.
var ErrAuthorizationPending = errors.New("authorization pending: visit the URL in the auth URL file and write the code to the auth code file")

// Authenticator resolves a Google API credential for one process run.
type Authenticator struct {
	google       config.GoogleOAuth
	scopes       []string
	tokenFile    string
	authURLFile  string
	authCodeFile string
}

// New creates an authenticator from the loaded configuration.
func New(cfg *config.Config) *Authenticator {
	return &Authenticator{
		google:       cfg.Google,
		scopes:       cfg.Cloud.Scopes,
		tokenFile:    cfg.TokenFile(),
		authURLFile:  cfg.AuthURLFile(),
		authCodeFile: cfg.AuthCodeFile(),
	}
}

// TokenSource resolves a credential, refreshing and persisting as needed.
func (a *Authenticator) TokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	if a.google.ServiceAccountFile != "" {
		if data, err := os.ReadFile(a.google.ServiceAccountFile); err == nil {
			creds, err := google.CredentialsFromJSON(ctx, data, a.scopes...)
			if err != nil {
				return nil, fmt.Errorf("failed to parse service account key: %w", err)
			}
			return creds.TokenSource, nil
		}
	}
	return a.userTokenSource(ctx)
}

// Client returns an HTTP client carrying the resolved credential.
func (a *Authenticator) Client(ctx context.Context) (*http.Client, error) {
	ts, err := a.TokenSource(ctx)
	if err != nil {
		return nil, err
	}
	return oauth2.NewClient(ctx, ts), nil
}

func (a *Authenticator) userTokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	oc, err := a.oauthConfig()
	if err != nil {
		return nil, err
	}

	tok, _ := loadToken(a.tokenFile)
	if tok != nil && tok.Valid() {
		return a.persisting(oc.TokenSource(ctx, tok), tok.AccessToken), nil
	}

	if tok != nil && tok.RefreshToken != "" {
		src := oc.TokenSource(ctx, tok)
		refreshed, err := src.Token()
		if err == nil {
			if err := saveToken(a.tokenFile, refreshed); err != nil {
				return nil, err
			}
			return a.persisting(src, refreshed.AccessToken), nil
		}
		// Refresh failed; fall through to the authorization-code flow.
	}

	tok, err = a.exchangeFromSideFiles(ctx, oc)
	if err != nil {
		return nil, err
	}
	if err := saveToken(a.tokenFile, tok); err != nil {
		return nil, err
	}
	return a.persisting(oc.TokenSource(ctx, tok), tok.AccessToken), nil
}

func (a *Authenticator) oauthConfig() (*oauth2.Config, error) {
	if a.google.ClientID == "" || a.google.ClientSecret == "" {
		return nil, errors.New("Google OAuth environment variables (GOOGLE_CLIENT_ID, GOOGLE_CLIENT_SECRET) are not set")
	}
	endpoint := google.Endpoint
	if a.google.AuthURI != "" {
		endpoint.AuthURL = a.google.AuthURI
	}
	if a.google.TokenURI != "" {
		endpoint.TokenURL = a.google.TokenURI
	}
	return &oauth2.Config{
		ClientID:     a.google.ClientID,
		ClientSecret: a.google.ClientSecret,
		Endpoint:     endpoint,
		RedirectURL:  a.google.RedirectURI,
		Scopes:       a.scopes,
	}, nil
}

// exchangeFromSideFiles writes the authorization URL for an external party
// and exchanges the code once the code file has been filled in.
func (a *Authenticator) exchangeFromSideFiles(ctx context.Context, oc *oauth2.Config) (*oauth2.Token, error) {
	authURL := oc.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	if err := os.MkdirAll(filepath.Dir(a.authURLFile), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create auth file directory: %w", err)
	}
	if err := os.WriteFile(a.authURLFile, []byte(authURL+"\n"), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write auth URL file: %w", err)
	}

	data, err := os.ReadFile(a.authCodeFile)
	if err != nil {
		return nil, ErrAuthorizationPending
	}
	code := strings.TrimSpace(string(data))
	if code == "" {
		return nil, ErrAuthorizationPending
	}

	tok, err := oc.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("authorization code exchange failed: %w", err)
	}
	return tok, nil
}

// persisting wraps a token source so that refreshed tokens are rewritten to
// the token file.
func (a *Authenticator) persisting(src oauth2.TokenSource, lastAccessToken string) oauth2.TokenSource {
	return &persistingSource{src: src, path: a.tokenFile, last: lastAccessToken}
}

type persistingSource struct {
	src  oauth2.TokenSource
	path string
	last string
}

func (p *persistingSource) Token() (*oauth2.Token, error) {
	tok, err := p.src.Token()
	if err != nil {
		return nil, err
	}
	if tok.AccessToken != p.last {
		if err := saveToken(p.path, tok); err != nil {
			return nil, err
		}
		p.last = tok.AccessToken
	}
	return tok, nil
}

func loadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("failed to parse token file %s: %w", path, err)
	}
	return &tok, nil
}

func saveToken(path string, tok *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}
	data, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write token file %s: %w", path, err)
	}
	return nil
}
