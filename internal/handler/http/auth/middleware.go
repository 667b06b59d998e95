package auth

import (
	"context"
	"fmt"
	"net/http"

	"github.com/a-vollm/spotifyFollowerUpdates/internal/handler/http/respond"
)

type ctxKey string

const ctxUID ctxKey = "uid"

// UIDFromContext returns the authenticated user's Spotify uid, or an empty
// string for unauthenticated requests.
func UIDFromContext(ctx context.Context) string {
	if uid, ok := ctx.Value(ctxUID).(string); ok {
		return uid
	}
	return ""
}

// WithUID stores a uid in the context. Exported for handler tests.
func WithUID(ctx context.Context, uid string) context.Context {
	return context.WithValue(ctx, ctxUID, uid)
}

// Authz requires a valid session token on every request it wraps and puts
// the caller's uid into the request context.
func (s *Sessions) Authz(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid, err := s.Validate(r.Header.Get("Authorization"))
		if err != nil {
			respond.SafeError(w, http.StatusUnauthorized, fmt.Errorf("unauthorized: %w", err))
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUID(r.Context(), uid)))
	})
}
