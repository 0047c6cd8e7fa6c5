// Package auth handles Spotify PKCE login and token persistence.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/http"

	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"

	tlerrors "github.com/tessro/tracklog/internal/errors"
)

// DefaultRedirectURI is the default callback URI for the local server.
const DefaultRedirectURI = "http://127.0.0.1:8888/callback"

// Scopes are the Spotify scopes needed to read playback state.
var Scopes = []string{
	spotifyauth.ScopeUserReadPlaybackState,
	spotifyauth.ScopeUserReadCurrentlyPlaying,
}

// Login holds the per-attempt secrets of a PKCE login.
type Login struct {
	State    string
	Verifier string
	URL      string
}

// Authenticator drives the login flow and produces authorized HTTP clients.
type Authenticator struct {
	clientID    string
	redirectURI string
	storage     *TokenStorage
	spotify     *spotifyauth.Authenticator
}

// NewAuthenticator creates an authenticator. An empty redirectURI uses
// DefaultRedirectURI.
func NewAuthenticator(clientID, redirectURI string, storage *TokenStorage) *Authenticator {
	if redirectURI == "" {
		redirectURI = DefaultRedirectURI
	}
	return &Authenticator{
		clientID:    clientID,
		redirectURI: redirectURI,
		storage:     storage,
		spotify: spotifyauth.New(
			spotifyauth.WithClientID(clientID),
			spotifyauth.WithRedirectURL(redirectURI),
			spotifyauth.WithScopes(Scopes...),
		),
	}
}

// RedirectURI returns the callback URI registered with Spotify.
func (a *Authenticator) RedirectURI() string {
	return a.redirectURI
}

// Storage returns the token storage.
func (a *Authenticator) Storage() *TokenStorage {
	return a.storage
}

// Begin generates fresh state and verifier values and the URL to open.
func (a *Authenticator) Begin() (*Login, error) {
	state, err := randomState()
	if err != nil {
		return nil, fmt.Errorf("failed to generate state: %w", err)
	}
	verifier := oauth2.GenerateVerifier()
	return &Login{
		State:    state,
		Verifier: verifier,
		URL:      a.spotify.AuthURL(state, oauth2.S256ChallengeOption(verifier)),
	}, nil
}

// Complete exchanges the authorization code and stores the token.
func (a *Authenticator) Complete(ctx context.Context, login *Login, result CallbackResult) (*oauth2.Token, error) {
	if result.Error != "" {
		return nil, fmt.Errorf("authentication failed: %s", result.Error)
	}
	if result.State != login.State {
		return nil, fmt.Errorf("state mismatch: possible CSRF attack")
	}

	token, err := a.spotify.Exchange(ctx, result.Code, oauth2.VerifierOption(login.Verifier))
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code: %w", err)
	}
	if err := a.storage.Save(token); err != nil {
		return nil, err
	}
	return token, nil
}

// HTTPClient returns a client that authorizes requests with the stored token,
// refreshing it as needed and writing refreshed tokens back to storage.
func (a *Authenticator) HTTPClient(ctx context.Context) (*http.Client, error) {
	token, err := a.storage.Load()
	if err != nil {
		return nil, err
	}
	if token == nil {
		return nil, tlerrors.ErrNotAuthenticated
	}

	base := a.oauthConfig().TokenSource(ctx, token)
	return oauth2.NewClient(ctx, newPersistingSource(base, a.storage, token)), nil
}

func (a *Authenticator) oauthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:    a.clientID,
		RedirectURL: a.redirectURI,
		Scopes:      Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:   spotifyauth.AuthURL,
			TokenURL:  spotifyauth.TokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

func randomState() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
