package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/a-vollm/spotifyFollowerUpdates/internal/domain/entity"
	"github.com/a-vollm/spotifyFollowerUpdates/internal/observability/metrics"
)

// defaultConcurrency bounds the per-artist release fetch fan-out.
const defaultConcurrency = 8

// ReleaseSource is an interface for reading a user's followed artists and
// their discographies from the Spotify API.
type ReleaseSource interface {
	FollowedArtistIDs(ctx context.Context, token string) ([]string, error)
	ArtistReleases(ctx context.Context, token, artistID string) ([]entity.Release, error)
}

// TokenProvider yields a valid access token for a user, refreshing it
// first if necessary.
type TokenProvider interface {
	AccessToken(ctx context.Context, uid string) (string, error)
}

// Status describes the lifecycle of a user's cache entry.
type Status string

const (
	StatusUninitialized Status = "uninitialized"
	StatusLoading       Status = "loading"
	StatusReady         Status = "ready"
)

// StatusInfo is a point-in-time view of a cache entry for status reporting.
// LastError carries the failure of the most recent rebuild and is nil after
// a successful one; a stale-but-served snapshot is recognizable by Status
// ready plus a non-nil LastError.
type StatusInfo struct {
	Status    Status
	Done      int
	Total     int
	BuiltAt   time.Time
	LastError error
}

// Config holds tunables for the cache store.
type Config struct {
	Concurrency int // Maximum number of concurrent per-artist fetches
}

// DefaultConfig returns the store defaults.
func DefaultConfig() Config {
	return Config{Concurrency: defaultConcurrency}
}

// entry holds the cache state for a single user. The snapshot pointer is
// swapped atomically under mu so readers never observe a half-built view.
type entry struct {
	mu       sync.RWMutex
	snapshot *Snapshot

	inflight chan struct{} // non-nil while a rebuild is running
	lastErr  error

	done  atomic.Int64
	total atomic.Int64
}

// Service builds and serves per-user release snapshots.
// It orchestrates the followed-artists fetch, the bounded per-artist
// fan-out and the atomic snapshot swap.
type Service struct {
	Source ReleaseSource
	Tokens TokenProvider

	concurrency int
	now         func() time.Time

	mu      sync.Mutex
	entries map[string]*entry
}

// NewService creates a cache service with the provided dependencies.
func NewService(source ReleaseSource, tokens TokenProvider, cfg Config) *Service {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	return &Service{
		Source:      source,
		Tokens:      tokens,
		concurrency: cfg.Concurrency,
		now:         time.Now,
		entries:     make(map[string]*entry),
	}
}

func (s *Service) entryFor(uid string) *entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[uid]
	if !ok {
		e = &entry{}
		s.entries[uid] = e
	}
	return e
}

// Rebuild fetches the user's followed artists and all their releases, then
// swaps in a freshly built snapshot. Concurrent calls for the same user are
// coalesced onto the in-flight rebuild and share its result. On failure the
// previous snapshot stays in place.
func (s *Service) Rebuild(ctx context.Context, uid string) error {
	e := s.entryFor(uid)

	s.mu.Lock()
	if e.inflight != nil {
		done := e.inflight
		s.mu.Unlock()
		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}
		s.mu.Lock()
		err := e.lastErr
		s.mu.Unlock()
		return err
	}
	done := make(chan struct{})
	e.inflight = done
	s.mu.Unlock()

	err := s.rebuild(ctx, uid, e)

	s.mu.Lock()
	e.inflight = nil
	e.lastErr = err
	s.mu.Unlock()
	close(done)

	return err
}

func (s *Service) rebuild(ctx context.Context, uid string, e *entry) error {
	logger := slog.Default()
	start := s.now()

	token, err := s.Tokens.AccessToken(ctx, uid)
	if err != nil {
		metrics.RecordCacheRebuildError("token")
		return fmt.Errorf("access token for rebuild: %w", err)
	}

	artistIDs, err := s.Source.FollowedArtistIDs(ctx, token)
	if err != nil {
		metrics.RecordCacheRebuildError("followed_artists")
		return fmt.Errorf("list followed artists: %w", err)
	}

	// Progress counters keep the previous run's values until the new run
	// actually has work to count; a rebuild that dies before this point
	// must not make a stale snapshot look freshly empty.
	e.done.Store(0)
	e.total.Store(int64(len(artistIDs)))

	releases, err := s.collectReleases(ctx, token, artistIDs, e)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			metrics.RecordCacheRebuildError("canceled")
		} else {
			metrics.RecordCacheRebuildError("fetch")
		}
		return err
	}

	snap := BuildSnapshot(releases, s.now())

	e.mu.Lock()
	e.snapshot = snap
	e.mu.Unlock()

	duration := s.now().Sub(start)
	metrics.RecordCacheRebuild(duration, snap.Total)

	logger.Info("cache rebuild completed",
		slog.String("uid", uid),
		slog.Int("artists", len(artistIDs)),
		slog.Int("releases", snap.Total),
		slog.Duration("duration", duration),
	)

	return nil
}

// collectReleases fans out over the artist list with bounded parallelism.
//
// Error handling:
//   - Context cancellation (context.Canceled, context.DeadlineExceeded):
//     propagates immediately and aborts the rebuild
//   - Per-artist fetch errors: logged and skipped, the other artists are
//     still collected
//
// The done counter advances exactly once per artist, success or not.
func (s *Service) collectReleases(ctx context.Context, token string, artistIDs []string, e *entry) ([]entity.Release, error) {
	sem := make(chan struct{}, s.concurrency)
	eg, egCtx := errgroup.WithContext(ctx)

	results := make([][]entity.Release, len(artistIDs))

	for i, artistID := range artistIDs {
		i, artistID := i, artistID

		eg.Go(func() error {
			sem <- struct{}{}
			defer func() { <-sem }()
			defer e.done.Add(1)

			releases, err := s.Source.ArtistReleases(egCtx, token, artistID)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}

				metrics.RecordArtistFetch(false)
				slog.Warn("artist release fetch failed, skipping",
					slog.String("artist_id", artistID),
					slog.Any("error", err))
				return nil
			}

			metrics.RecordArtistFetch(true)
			results[i] = releases
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	all := make([]entity.Release, 0)
	for _, rels := range results {
		all = append(all, rels...)
	}
	return all, nil
}

// Status reports the lifecycle state, rebuild progress and the last rebuild
// failure for a user.
func (s *Service) Status(uid string) StatusInfo {
	e := s.entryFor(uid)

	s.mu.Lock()
	loading := e.inflight != nil
	lastErr := e.lastErr
	s.mu.Unlock()

	e.mu.RLock()
	snap := e.snapshot
	e.mu.RUnlock()

	info := StatusInfo{
		Done:      int(e.done.Load()),
		Total:     int(e.total.Load()),
		LastError: lastErr,
	}
	switch {
	case loading:
		info.Status = StatusLoading
	case snap == nil:
		info.Status = StatusUninitialized
	default:
		info.Status = StatusReady
	}
	if snap != nil {
		info.BuiltAt = snap.BuiltAt
	}
	return info
}

// Latest returns the most recent releases for a user, capped at twenty.
func (s *Service) Latest(uid string) ([]entity.Release, error) {
	snap, err := s.current(uid)
	if err != nil {
		return nil, err
	}
	return snap.Latest, nil
}

// Releases returns the month groups of a single year, newest month first.
// A year with no releases yields an empty slice, not an error.
func (s *Service) Releases(uid string, year int) ([]MonthGroup, error) {
	snap, err := s.current(uid)
	if err != nil {
		return nil, err
	}
	months, ok := snap.ByYear[year]
	if !ok {
		return []MonthGroup{}, nil
	}
	return months, nil
}

// ReleaseIDs returns the sorted identity set of the user's current snapshot.
func (s *Service) ReleaseIDs(uid string) ([]string, error) {
	snap, err := s.current(uid)
	if err != nil {
		return nil, err
	}
	return snap.ReleaseIDs(), nil
}

func (s *Service) current(uid string) (*Snapshot, error) {
	e := s.entryFor(uid)
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.snapshot == nil {
		return nil, ErrNotReady
	}
	return e.snapshot, nil
}
