package releases

import (
	"net/http"
	"time"

	"github.com/a-vollm/spotifyFollowerUpdates/internal/handler/http/auth"
	"github.com/a-vollm/spotifyFollowerUpdates/internal/usecase/cache"
)

// Register registers the release cache routes with the given mux.
// All routes require an authenticated session.
func Register(mux *http.ServeMux, svc *cache.Service, sessions *auth.Sessions, rebuildTimeout time.Duration) {
	mux.Handle("GET /cache-status", sessions.Authz(StatusHandler{Cache: svc}))
	mux.Handle("GET /latest", sessions.Authz(LatestHandler{Cache: svc}))
	mux.Handle("GET /releases/{year}", sessions.Authz(YearHandler{Cache: svc}))
	mux.Handle("POST /rebuild", sessions.Authz(RebuildHandler{Cache: svc, Timeout: rebuildTimeout}))
}
