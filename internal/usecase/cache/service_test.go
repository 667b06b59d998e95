package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a-vollm/spotifyFollowerUpdates/internal/domain/entity"
)

type stubSource struct {
	followedFn func(ctx context.Context, token string) ([]string, error)
	releasesFn func(ctx context.Context, token, artistID string) ([]entity.Release, error)
}

func (s *stubSource) FollowedArtistIDs(ctx context.Context, token string) ([]string, error) {
	return s.followedFn(ctx, token)
}

func (s *stubSource) ArtistReleases(ctx context.Context, token, artistID string) ([]entity.Release, error) {
	return s.releasesFn(ctx, token, artistID)
}

type stubTokens struct {
	token string
	err   error
}

func (s *stubTokens) AccessToken(ctx context.Context, uid string) (string, error) {
	return s.token, s.err
}

func artistList(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("artist-%02d", i)
	}
	return ids
}

func TestRebuild_FanOutRespectsConcurrencyBound(t *testing.T) {
	const artists = 50
	const bound = 8

	var current, max, calls atomic.Int64
	var maxMu sync.Mutex

	source := &stubSource{
		followedFn: func(ctx context.Context, token string) ([]string, error) {
			return artistList(artists), nil
		},
		releasesFn: func(ctx context.Context, token, artistID string) ([]entity.Release, error) {
			n := current.Add(1)
			maxMu.Lock()
			if n > max.Load() {
				max.Store(n)
			}
			maxMu.Unlock()

			time.Sleep(5 * time.Millisecond)
			current.Add(-1)
			calls.Add(1)
			return []entity.Release{release(artistID, day(2023, time.June, 1))}, nil
		},
	}

	svc := NewService(source, &stubTokens{token: "tok"}, Config{Concurrency: bound})
	require.NoError(t, svc.Rebuild(context.Background(), "u1"))

	assert.Equal(t, int64(artists), calls.Load(), "every artist fetched exactly once")
	assert.LessOrEqual(t, max.Load(), int64(bound), "in-flight fetches exceeded the bound")

	info := svc.Status("u1")
	assert.Equal(t, StatusReady, info.Status)
	assert.Equal(t, artists, info.Done)
	assert.Equal(t, artists, info.Total)
}

func TestRebuild_SingleArtistFailureDoesNotAbort(t *testing.T) {
	source := &stubSource{
		followedFn: func(ctx context.Context, token string) ([]string, error) {
			return artistList(10), nil
		},
		releasesFn: func(ctx context.Context, token, artistID string) ([]entity.Release, error) {
			if artistID == "artist-03" {
				return nil, errors.New("spotify: 500 from albums endpoint")
			}
			return []entity.Release{release(artistID, day(2023, time.June, 1))}, nil
		},
	}

	svc := NewService(source, &stubTokens{token: "tok"}, DefaultConfig())
	require.NoError(t, svc.Rebuild(context.Background(), "u1"))

	latest, err := svc.Latest("u1")
	require.NoError(t, err)
	assert.Len(t, latest, 9, "failed artist skipped, others kept")

	info := svc.Status("u1")
	assert.Equal(t, 10, info.Done, "done advances for failed artists too")
}

func TestRebuild_ContextCancellationAborts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	source := &stubSource{
		followedFn: func(ctx context.Context, token string) ([]string, error) {
			return artistList(5), nil
		},
		releasesFn: func(ctx context.Context, token, artistID string) ([]entity.Release, error) {
			cancel()
			return nil, ctx.Err()
		},
	}

	svc := NewService(source, &stubTokens{token: "tok"}, DefaultConfig())
	err := svc.Rebuild(ctx, "u1")
	require.ErrorIs(t, err, context.Canceled)

	_, err = svc.Latest("u1")
	assert.ErrorIs(t, err, ErrNotReady)
}

func TestRebuild_EmptyFollowListYieldsEmptySnapshot(t *testing.T) {
	source := &stubSource{
		followedFn: func(ctx context.Context, token string) ([]string, error) {
			return nil, nil
		},
		releasesFn: func(ctx context.Context, token, artistID string) ([]entity.Release, error) {
			t.Fatal("no artist fetch expected for empty follow list")
			return nil, nil
		},
	}

	svc := NewService(source, &stubTokens{token: "tok"}, DefaultConfig())
	require.NoError(t, svc.Rebuild(context.Background(), "u1"))

	latest, err := svc.Latest("u1")
	require.NoError(t, err)
	assert.Empty(t, latest)
	assert.Equal(t, StatusReady, svc.Status("u1").Status)
}

func TestRebuild_FailureKeepsStaleSnapshot(t *testing.T) {
	var fail atomic.Bool

	source := &stubSource{
		followedFn: func(ctx context.Context, token string) ([]string, error) {
			if fail.Load() {
				return nil, errors.New("spotify: 502 from following endpoint")
			}
			return []string{"artist-00"}, nil
		},
		releasesFn: func(ctx context.Context, token, artistID string) ([]entity.Release, error) {
			return []entity.Release{release("r1", day(2023, time.June, 1))}, nil
		},
	}

	svc := NewService(source, &stubTokens{token: "tok"}, DefaultConfig())
	require.NoError(t, svc.Rebuild(context.Background(), "u1"))

	fail.Store(true)
	require.Error(t, svc.Rebuild(context.Background(), "u1"))

	latest, err := svc.Latest("u1")
	require.NoError(t, err, "stale snapshot still served after failed rebuild")
	require.Len(t, latest, 1)
	assert.Equal(t, "r1", latest[0].ID)

	info := svc.Status("u1")
	assert.Equal(t, StatusReady, info.Status)
	require.Error(t, info.LastError, "failed rebuild must be visible in the status")
	assert.Equal(t, 1, info.Done, "failed rebuild must not clobber progress counters")
	assert.Equal(t, 1, info.Total)

	fail.Store(false)
	require.NoError(t, svc.Rebuild(context.Background(), "u1"))
	assert.NoError(t, svc.Status("u1").LastError, "successful rebuild clears the last error")
}

func TestRebuild_ConcurrentCallsCoalesce(t *testing.T) {
	var followedCalls atomic.Int64
	release := make(chan struct{})

	source := &stubSource{
		followedFn: func(ctx context.Context, token string) ([]string, error) {
			followedCalls.Add(1)
			<-release
			return nil, nil
		},
		releasesFn: func(ctx context.Context, token, artistID string) ([]entity.Release, error) {
			return nil, nil
		},
	}

	svc := NewService(source, &stubTokens{token: "tok"}, DefaultConfig())

	var wg sync.WaitGroup
	errs := make([]error, 5)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = svc.Rebuild(context.Background(), "u1")
		}(i)
	}

	// Let the goroutines pile up on the in-flight rebuild before it finishes.
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int64(1), followedCalls.Load(), "concurrent rebuilds collapsed into one fetch")
	for i, err := range errs {
		assert.NoError(t, err, "caller %d", i)
	}
}

func TestRebuild_TokenFailure(t *testing.T) {
	source := &stubSource{
		followedFn: func(ctx context.Context, token string) ([]string, error) {
			t.Fatal("no fetch expected without a token")
			return nil, nil
		},
	}

	svc := NewService(source, &stubTokens{err: entity.ErrNoToken}, DefaultConfig())
	err := svc.Rebuild(context.Background(), "u1")
	require.ErrorIs(t, err, entity.ErrNoToken)
}

func TestReaders_NotReadyBeforeFirstRebuild(t *testing.T) {
	svc := NewService(&stubSource{}, &stubTokens{token: "tok"}, DefaultConfig())

	_, err := svc.Latest("u1")
	assert.ErrorIs(t, err, ErrNotReady)
	_, err = svc.Releases("u1", 2023)
	assert.ErrorIs(t, err, ErrNotReady)
	_, err = svc.ReleaseIDs("u1")
	assert.ErrorIs(t, err, ErrNotReady)
	assert.Equal(t, StatusUninitialized, svc.Status("u1").Status)
}

func TestReleases_UnknownYear(t *testing.T) {
	source := &stubSource{
		followedFn: func(ctx context.Context, token string) ([]string, error) {
			return []string{"artist-00"}, nil
		},
		releasesFn: func(ctx context.Context, token, artistID string) ([]entity.Release, error) {
			return []entity.Release{release("r1", day(2023, time.June, 1))}, nil
		},
	}

	svc := NewService(source, &stubTokens{token: "tok"}, DefaultConfig())
	require.NoError(t, svc.Rebuild(context.Background(), "u1"))

	months, err := svc.Releases("u1", 2023)
	require.NoError(t, err)
	require.Len(t, months, 1)

	months, err = svc.Releases("u1", 1999)
	require.NoError(t, err, "a year without releases is not an error")
	assert.Empty(t, months)
	assert.NotNil(t, months)
}

func TestReleaseIDs_SortedIdentitySet(t *testing.T) {
	source := &stubSource{
		followedFn: func(ctx context.Context, token string) ([]string, error) {
			return []string{"artist-00", "artist-01"}, nil
		},
		releasesFn: func(ctx context.Context, token, artistID string) ([]entity.Release, error) {
			if artistID == "artist-00" {
				return []entity.Release{
					release("zz", day(2023, time.June, 1)),
					release("aa", day(2022, time.May, 1)),
				}, nil
			}
			return []entity.Release{release("mm", day(2021, time.April, 1))}, nil
		},
	}

	svc := NewService(source, &stubTokens{token: "tok"}, DefaultConfig())
	require.NoError(t, svc.Rebuild(context.Background(), "u1"))

	ids, err := svc.ReleaseIDs("u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"aa", "mm", "zz"}, ids)
}
