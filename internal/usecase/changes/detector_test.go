package changes

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a-vollm/spotifyFollowerUpdates/internal/domain/entity"
)

type memSnapshots struct {
	data   map[string][]string
	setErr error
	getErr error
}

func newMemSnapshots() *memSnapshots {
	return &memSnapshots{data: make(map[string][]string)}
}

func (m *memSnapshots) key(resourceKey, uid string) string { return resourceKey + "|" + uid }

func (m *memSnapshots) Get(ctx context.Context, resourceKey, uid string) ([]string, bool, error) {
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	ids, ok := m.data[m.key(resourceKey, uid)]
	return ids, ok, nil
}

func (m *memSnapshots) Set(ctx context.Context, resourceKey, uid string, ids []string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.data[m.key(resourceKey, uid)] = ids
	return nil
}

type recordingNotifier struct {
	bodies []string
	err    error
}

func (r *recordingNotifier) NotifyUser(ctx context.Context, uid, title, body string) error {
	if r.err != nil {
		return r.err
	}
	r.bodies = append(r.bodies, body)
	return nil
}

var trackNoun = Noun{Singular: "Track", Plural: "Tracks"}

func TestCheck_FirstRunPersistsSilently(t *testing.T) {
	snapshots := newMemSnapshots()
	notifier := &recordingNotifier{}
	d := NewDetector(snapshots, notifier, false)

	err := d.Check(context.Background(), "playlist:p1", "u1", []string{"a", "b"}, "Playlist", trackNoun)
	require.NoError(t, err)

	assert.Empty(t, notifier.bodies, "first run must not notify")
	ids, found, _ := snapshots.Get(context.Background(), "playlist:p1", "u1")
	require.True(t, found)
	assert.Equal(t, []string{"a", "b"}, ids)
}

func TestCheck_FirstRunNotifiesWhenConfigured(t *testing.T) {
	snapshots := newMemSnapshots()
	notifier := &recordingNotifier{}
	d := NewDetector(snapshots, notifier, true)

	err := d.Check(context.Background(), "playlist:p1", "u1", []string{"a", "b"}, "Playlist", trackNoun)
	require.NoError(t, err)

	require.Len(t, notifier.bodies, 1)
	assert.Equal(t, "2 Tracks wurden hinzugefügt", notifier.bodies[0])
}

func TestCheck_NotifiesOnceThenGoesQuiet(t *testing.T) {
	snapshots := newMemSnapshots()
	notifier := &recordingNotifier{}
	d := NewDetector(snapshots, notifier, false)

	ctx := context.Background()
	require.NoError(t, d.Check(ctx, "releases", "u1", []string{"a"}, "Releases", Noun{"Release", "Releases"}))
	require.NoError(t, d.Check(ctx, "releases", "u1", []string{"a", "b"}, "Releases", Noun{"Release", "Releases"}))
	require.Len(t, notifier.bodies, 1)
	assert.Equal(t, "1 Release wurde hinzugefügt", notifier.bodies[0])

	// Unchanged set on the next run stays silent.
	require.NoError(t, d.Check(ctx, "releases", "u1", []string{"b", "a"}, "Releases", Noun{"Release", "Releases"}))
	assert.Len(t, notifier.bodies, 1)
}

func TestCheck_AddedAndRemovedJoined(t *testing.T) {
	snapshots := newMemSnapshots()
	require.NoError(t, snapshots.Set(context.Background(), "playlist:p1", "u1", []string{"a", "b", "c"}))

	notifier := &recordingNotifier{}
	d := NewDetector(snapshots, notifier, false)

	err := d.Check(context.Background(), "playlist:p1", "u1", []string{"a", "d"}, "Playlist", trackNoun)
	require.NoError(t, err)

	require.Len(t, notifier.bodies, 1)
	assert.Equal(t, "1 Track wurde hinzugefügt – 2 Tracks wurden entfernt", notifier.bodies[0])
}

func TestCheck_DispatchFailureKeepsBaseline(t *testing.T) {
	snapshots := newMemSnapshots()
	require.NoError(t, snapshots.Set(context.Background(), "releases", "u1", []string{"a"}))

	notifier := &recordingNotifier{err: errors.New("push endpoint gone")}
	d := NewDetector(snapshots, notifier, false)

	err := d.Check(context.Background(), "releases", "u1", []string{"a", "b"}, "Releases", Noun{"Release", "Releases"})
	require.Error(t, err)

	ids, _, _ := snapshots.Get(context.Background(), "releases", "u1")
	assert.Equal(t, []string{"a"}, ids, "baseline must not advance past a failed dispatch")

	// Delivery recovers, the same delta is reported on the next run.
	notifier.err = nil
	require.NoError(t, d.Check(context.Background(), "releases", "u1", []string{"a", "b"}, "Releases", Noun{"Release", "Releases"}))
	require.Len(t, notifier.bodies, 1)
	assert.Equal(t, "1 Release wurde hinzugefügt", notifier.bodies[0])
}

func TestCheck_PersistFailureSurfaces(t *testing.T) {
	snapshots := newMemSnapshots()
	require.NoError(t, snapshots.Set(context.Background(), "releases", "u1", []string{"a"}))
	snapshots.setErr = errors.New("db down")

	notifier := &recordingNotifier{}
	d := NewDetector(snapshots, notifier, false)

	err := d.Check(context.Background(), "releases", "u1", []string{"a", "b"}, "Releases", Noun{"Release", "Releases"})
	require.Error(t, err)
	assert.Len(t, notifier.bodies, 1, "notification already went out before the persist failed")
}

func TestCheck_BaselineLoadFailure(t *testing.T) {
	snapshots := newMemSnapshots()
	snapshots.getErr = errors.New("db down")

	d := NewDetector(snapshots, &recordingNotifier{}, false)
	err := d.Check(context.Background(), "releases", "u1", []string{"a"}, "Releases", Noun{"Release", "Releases"})
	require.Error(t, err)
}

func TestFormatDelta(t *testing.T) {
	tests := []struct {
		name  string
		delta entity.Delta
		want  string
	}{
		{
			name:  "single added",
			delta: entity.Delta{Added: []string{"a"}},
			want:  "1 Track wurde hinzugefügt",
		},
		{
			name:  "two added",
			delta: entity.Delta{Added: []string{"a", "b"}},
			want:  "2 Tracks wurden hinzugefügt",
		},
		{
			name:  "single removed",
			delta: entity.Delta{Removed: []string{"a"}},
			want:  "1 Track wurde entfernt",
		},
		{
			name:  "two removed",
			delta: entity.Delta{Removed: []string{"a", "b"}},
			want:  "2 Tracks wurden entfernt",
		},
		{
			name:  "mixed",
			delta: entity.Delta{Added: []string{"a"}, Removed: []string{"b", "c"}},
			want:  "1 Track wurde hinzugefügt – 2 Tracks wurden entfernt",
		},
		{
			name:  "empty",
			delta: entity.Delta{},
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDelta(tt.delta, trackNoun))
		})
	}
}
