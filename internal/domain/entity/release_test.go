package entity_test

import (
	"testing"
	"time"

	"github.com/a-vollm/spotifyFollowerUpdates/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReleaseDate(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want time.Time
	}{
		{"day precision", "2023-03-17", time.Date(2023, 3, 17, 0, 0, 0, 0, time.UTC)},
		{"month precision pins to first day", "2023-03", time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)},
		{"year precision pins to january first", "2023", time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := entity.ParseReleaseDate(tt.raw)
			require.NoError(t, err)
			assert.True(t, got.Equal(tt.want), "got %v, want %v", got, tt.want)
		})
	}
}

func TestParseReleaseDate_Invalid(t *testing.T) {
	for _, raw := range []string{"", "not-a-date", "03-17-2023"} {
		_, err := entity.ParseReleaseDate(raw)
		assert.Error(t, err, "raw=%q", raw)
	}
}

func TestReleaseValidate(t *testing.T) {
	valid := entity.Release{
		ID:         "abc",
		Name:       "Album",
		ReleasedAt: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	assert.NoError(t, valid.Validate())

	missingID := valid
	missingID.ID = ""
	assert.Error(t, missingID.Validate())

	missingDate := valid
	missingDate.ReleasedAt = time.Time{}
	assert.Error(t, missingDate.Validate())
}
