package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "watch.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadWatchConfig(t *testing.T) {
	path := writeConfig(t, `
watch:
  notify_on_first_run: true
  playlists:
    - uid: alice
      id: pl-road-trip
      title: Road Trip
    - uid: bob
      id: pl-gym
      title: Gym
`)

	cfg, err := LoadWatchConfig(path)
	require.NoError(t, err)

	assert.True(t, cfg.Watch.NotifyOnFirstRun)
	require.Len(t, cfg.Watch.Playlists, 2)

	alice := cfg.PlaylistsFor("alice")
	require.Len(t, alice, 1)
	assert.Equal(t, "pl-road-trip", alice[0].ID)
	assert.Equal(t, "Road Trip", alice[0].Title)
	assert.Empty(t, cfg.PlaylistsFor("nobody"))
}

func TestLoadWatchConfig_Defaults(t *testing.T) {
	path := writeConfig(t, `watch: {}`)

	cfg, err := LoadWatchConfig(path)
	require.NoError(t, err)
	assert.False(t, cfg.Watch.NotifyOnFirstRun)
	assert.Empty(t, cfg.Watch.Playlists)
}

func TestLoadWatchConfig_Validation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name: "missing uid",
			content: `
watch:
  playlists:
    - id: pl-1
`,
			wantErr: "uid is required",
		},
		{
			name: "missing id",
			content: `
watch:
  playlists:
    - uid: alice
`,
			wantErr: "id is required",
		},
		{
			name: "duplicate entry",
			content: `
watch:
  playlists:
    - uid: alice
      id: pl-1
    - uid: alice
      id: pl-1
`,
			wantErr: "duplicate entry",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadWatchConfig(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadWatchConfig_MissingFile(t *testing.T) {
	_, err := LoadWatchConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestLoadWatchConfig_InvalidYAML(t *testing.T) {
	_, err := LoadWatchConfig(writeConfig(t, "watch: [broken"))
	require.Error(t, err)
}
