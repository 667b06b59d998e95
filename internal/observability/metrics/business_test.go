package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRecordCacheRebuild(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		releases int
	}{
		{
			name:     "with releases",
			duration: 2 * time.Second,
			releases: 42,
		},
		{
			name:     "empty rebuild",
			duration: 100 * time.Millisecond,
			releases: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				RecordCacheRebuild(tt.duration, tt.releases)
			})
		})
	}
}

func TestRecordChangeEvent(t *testing.T) {
	tests := []struct {
		name     string
		resource string
		added    int
		removed  int
	}{
		{
			name:     "additions only",
			resource: "releases",
			added:    3,
			removed:  0,
		},
		{
			name:     "removals only",
			resource: "playlist:abc",
			added:    0,
			removed:  2,
		},
		{
			name:     "empty delta",
			resource: "releases",
			added:    0,
			removed:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				RecordChangeEvent(tt.resource, tt.added, tt.removed)
			})
		})
	}
}

func TestRecordStatusCounters(t *testing.T) {
	assert.NotPanics(t, func() {
		RecordArtistFetch(true)
		RecordArtistFetch(false)
		RecordNotificationSent(true)
		RecordNotificationSent(false)
		RecordTokenRefresh(true)
		RecordTokenRefresh(false)
		RecordSubscriptionPruned()
		RecordRateLimited()
	})
}

func TestUpdateGauges(t *testing.T) {
	assert.NotPanics(t, func() {
		UpdateTrackedUsers(7)
		UpdateDBConnectionStats(3, 5)
	})
}

func TestRecordHTTPRequest(t *testing.T) {
	assert.NotPanics(t, func() {
		RecordHTTPRequest("GET", "/latest", "200", 50*time.Millisecond)
	})
}
