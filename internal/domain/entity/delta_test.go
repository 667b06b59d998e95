package entity_test

import (
	"testing"

	"github.com/a-vollm/spotifyFollowerUpdates/internal/domain/entity"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestDiff(t *testing.T) {
	tests := []struct {
		name     string
		previous []string
		current  []string
		want     entity.Delta
	}{
		{
			name:     "added and removed",
			previous: []string{"a", "b", "c"},
			current:  []string{"b", "c", "d", "e"},
			want:     entity.Delta{Added: []string{"d", "e"}, Removed: []string{"a"}},
		},
		{
			name:     "no change",
			previous: []string{"a", "b"},
			current:  []string{"b", "a"},
			want:     entity.Delta{},
		},
		{
			name:    "empty previous yields all added",
			current: []string{"x", "y"},
			want:    entity.Delta{Added: []string{"x", "y"}},
		},
		{
			name:     "empty current yields all removed",
			previous: []string{"x"},
			want:     entity.Delta{Removed: []string{"x"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := entity.Diff(entity.NewIDSet(tt.previous), entity.NewIDSet(tt.current))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Diff mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDiff_AddedRemovedDisjoint(t *testing.T) {
	d := entity.Diff(entity.NewIDSet([]string{"a", "b"}), entity.NewIDSet([]string{"b", "c"}))
	for _, added := range d.Added {
		assert.NotContains(t, d.Removed, added)
	}
}

func TestNewIDSet_DropsDuplicatesAndBlanks(t *testing.T) {
	set := entity.NewIDSet([]string{"a", "a", "", "b"})
	assert.Equal(t, []string{"a", "b"}, set.Slice())
}

func TestDeltaEmpty(t *testing.T) {
	assert.True(t, entity.Delta{}.Empty())
	assert.False(t, entity.Delta{Added: []string{"a"}}.Empty())
	assert.False(t, entity.Delta{Removed: []string{"a"}}.Empty())
}
