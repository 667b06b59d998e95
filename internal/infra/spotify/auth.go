package spotify

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/oauth2"

	"github.com/a-vollm/spotifyFollowerUpdates/internal/domain/entity"
)

const (
	authURL  = "https://accounts.spotify.com/authorize"
	tokenURL = "https://accounts.spotify.com/api/token"
)

// Scopes requested during the authorization-code flow. user-follow-read
// covers the followed-artist collection, playlist-read-private the watched
// playlists.
var scopes = []string{"user-follow-read", "playlist-read-private"}

// AuthConfig holds the OAuth app credentials.
type AuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// Authenticator exchanges and refreshes tokens against the Spotify accounts
// endpoint using the standard oauth2 flows.
type Authenticator struct {
	config *oauth2.Config
}

// NewAuthenticator creates an Authenticator from the app credentials.
func NewAuthenticator(cfg AuthConfig) *Authenticator {
	return &Authenticator{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  authURL,
				TokenURL: tokenURL,
			},
		},
	}
}

// AuthCodeURL returns the URL to redirect a user to for consent.
func (a *Authenticator) AuthCodeURL(state string) string {
	return a.config.AuthCodeURL(state)
}

// Exchange trades an authorization code for a token pair.
func (a *Authenticator) Exchange(ctx context.Context, uid, code string) (*entity.Token, error) {
	tok, err := a.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}
	return fromOAuthToken(uid, tok), nil
}

// Refresh mints a new access token from a refresh token. Spotify does not
// rotate refresh tokens, so the stored refresh credential is carried over
// when the response omits one.
func (a *Authenticator) Refresh(ctx context.Context, uid, refreshToken string) (*entity.Token, error) {
	source := a.config.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	tok, err := source.Token()
	if err != nil {
		return nil, fmt.Errorf("refresh token: %w", err)
	}

	token := fromOAuthToken(uid, tok)
	if token.Refresh == "" {
		token.Refresh = refreshToken
	}
	return token, nil
}

func fromOAuthToken(uid string, tok *oauth2.Token) *entity.Token {
	exp := tok.Expiry
	if exp.IsZero() {
		exp = time.Now().Add(time.Hour)
	}
	return &entity.Token{
		UID:     uid,
		Access:  tok.AccessToken,
		Refresh: tok.RefreshToken,
		Exp:     exp,
	}
}
