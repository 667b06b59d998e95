package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// WatchConfig represents the change-watching configuration: which playlists
// to track per user and how the first sighting of a resource is handled.
type WatchConfig struct {
	Watch struct {
		// NotifyOnFirstRun reports the whole initial identity set as
		// added instead of establishing the baseline silently.
		NotifyOnFirstRun bool `yaml:"notify_on_first_run"`

		Playlists []WatchedPlaylist `yaml:"playlists"`
	} `yaml:"watch"`
}

// WatchedPlaylist names a single playlist whose track set is diffed on
// every scheduled rebuild.
type WatchedPlaylist struct {
	UID   string `yaml:"uid"`
	ID    string `yaml:"id"`
	Title string `yaml:"title"`
}

// LoadWatchConfig loads the watch configuration from a YAML file.
// The path parameter is expected to come from a trusted source (command-line argument or hardcoded default).
func LoadWatchConfig(path string) (*WatchConfig, error) {
	// #nosec G304 -- path is provided by trusted source (CLI arg or config), not user input
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config WatchConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := validateWatchConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// validateWatchConfig validates the loaded configuration.
func validateWatchConfig(config *WatchConfig) error {
	seen := make(map[string]struct{})
	for i, pl := range config.Watch.Playlists {
		if pl.UID == "" {
			return fmt.Errorf("playlist %d: uid is required", i)
		}
		if pl.ID == "" {
			return fmt.Errorf("playlist %d: id is required", i)
		}
		key := pl.UID + "/" + pl.ID
		if _, dup := seen[key]; dup {
			return fmt.Errorf("playlist %d: duplicate entry %s", i, key)
		}
		seen[key] = struct{}{}
	}
	return nil
}

// PlaylistsFor returns the watched playlists of a single user.
func (c *WatchConfig) PlaylistsFor(uid string) []WatchedPlaylist {
	out := make([]WatchedPlaylist, 0)
	for _, pl := range c.Watch.Playlists {
		if pl.UID == uid {
			out = append(out, pl)
		}
	}
	return out
}
