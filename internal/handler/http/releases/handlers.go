package releases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/a-vollm/spotifyFollowerUpdates/internal/handler/http/auth"
	"github.com/a-vollm/spotifyFollowerUpdates/internal/handler/http/requestid"
	"github.com/a-vollm/spotifyFollowerUpdates/internal/handler/http/respond"
	"github.com/a-vollm/spotifyFollowerUpdates/internal/usecase/cache"
)

// defaultRebuildTimeout caps a rebuild kicked off over HTTP.
const defaultRebuildTimeout = 10 * time.Minute

// StatusHandler reports the caller's cache lifecycle state and progress.
type StatusHandler struct {
	Cache *cache.Service
}

func (h StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	uid := auth.UIDFromContext(r.Context())
	respond.JSON(w, http.StatusOK, toStatusResponse(h.Cache.Status(uid)))
}

// LatestHandler serves the caller's twenty most recent releases.
type LatestHandler struct {
	Cache *cache.Service
}

func (h LatestHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	uid := auth.UIDFromContext(r.Context())

	latest, err := h.Cache.Latest(uid)
	if err != nil {
		writeCacheError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, toReleaseDTOs(latest))
}

// YearHandler serves one year of the caller's snapshot grouped by month.
type YearHandler struct {
	Cache *cache.Service
}

func (h YearHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	uid := auth.UIDFromContext(r.Context())

	year, err := strconv.Atoi(r.PathValue("year"))
	if err != nil || year < 1900 || year > 2200 {
		respond.SafeError(w, http.StatusBadRequest, errors.New("year is invalid"))
		return
	}

	months, err := h.Cache.Releases(uid, year)
	if err != nil {
		writeCacheError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, yearResponse{Year: year, Months: toMonthGroupDTOs(months)})
}

// RebuildHandler triggers a cache rebuild for the caller. The rebuild runs
// detached from the request, the handler answers 202 immediately; progress
// is observable through the status endpoint.
type RebuildHandler struct {
	Cache   *cache.Service
	Timeout time.Duration
}

func (h RebuildHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	uid := auth.UIDFromContext(r.Context())
	requestID := requestid.FromContext(r.Context())

	timeout := h.Timeout
	if timeout <= 0 {
		timeout = defaultRebuildTimeout
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := h.Cache.Rebuild(ctx, uid); err != nil {
			slog.Warn("triggered rebuild failed",
				slog.String("request_id", requestID),
				slog.String("uid", uid),
				slog.Any("error", err))
		}
	}()

	respond.JSON(w, http.StatusAccepted, map[string]string{"status": "rebuild started"})
}

func writeCacheError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, cache.ErrNotReady):
		respond.SafeError(w, http.StatusServiceUnavailable, fmt.Errorf("cache not ready"))
	default:
		respond.SafeError(w, http.StatusInternalServerError, err)
	}
}
