package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/a-vollm/spotifyFollowerUpdates/internal/domain/entity"
	"github.com/a-vollm/spotifyFollowerUpdates/internal/handler/http/requestid"
	"github.com/a-vollm/spotifyFollowerUpdates/internal/handler/http/respond"
	"github.com/a-vollm/spotifyFollowerUpdates/internal/repository"
)

const stateCookie = "oauth_state"

// Exchanger runs the authorization-code side of the OAuth flow.
type Exchanger interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, uid, code string) (*entity.Token, error)
}

// ProfileSource resolves an access token to the owning Spotify user ID.
type ProfileSource interface {
	CurrentUserID(ctx context.Context, token string) (string, error)
}

// LoginHandler starts the OAuth flow: it plants a state cookie and
// redirects the browser to the Spotify consent page.
type LoginHandler struct {
	Auth Exchanger
}

func (h LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	state := uuid.New().String()

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   int((5 * time.Minute).Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.Auth.AuthCodeURL(state), http.StatusFound)
}

type sessionResponse struct {
	Token string `json:"token"`
	UID   string `json:"uid"`
}

// CallbackHandler finishes the OAuth flow: it validates the state cookie,
// exchanges the code, resolves the caller's Spotify uid, persists the token
// pair and issues a session JWT.
type CallbackHandler struct {
	Auth     Exchanger
	Profile  ProfileSource
	Tokens   repository.TokenRepository
	Sessions *Sessions
}

func (h CallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := slog.With(slog.String("request_id", requestid.FromContext(r.Context())))

	cookie, err := r.Cookie(stateCookie)
	if err != nil || cookie.Value == "" || cookie.Value != r.URL.Query().Get("state") {
		respond.SafeError(w, http.StatusBadRequest, errors.New("state parameter is invalid"))
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		respond.SafeError(w, http.StatusBadRequest, errors.New("code parameter is required"))
		return
	}

	tok, err := h.Auth.Exchange(r.Context(), "", code)
	if err != nil {
		logger.Warn("oauth code exchange failed", slog.Any("error", err))
		respond.SafeError(w, http.StatusBadGateway, fmt.Errorf("exchange authorization code: %w", err))
		return
	}

	uid, err := h.Profile.CurrentUserID(r.Context(), tok.Access)
	if err != nil {
		logger.Warn("profile lookup failed", slog.Any("error", err))
		respond.SafeError(w, http.StatusBadGateway, fmt.Errorf("resolve user profile: %w", err))
		return
	}
	tok.UID = uid

	if err := h.Tokens.Set(r.Context(), tok); err != nil {
		respond.SafeError(w, http.StatusInternalServerError, fmt.Errorf("persist token: %w", err))
		return
	}

	session, err := h.Sessions.Issue(uid)
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, fmt.Errorf("issue session: %w", err))
		return
	}

	// State cookie is single use.
	http.SetCookie(w, &http.Cookie{Name: stateCookie, Value: "", Path: "/", MaxAge: -1})

	logger.Info("user logged in", slog.String("uid", uid))
	respond.JSON(w, http.StatusOK, sessionResponse{Token: session, UID: uid})
}
