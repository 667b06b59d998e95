package spotify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/a-vollm/spotifyFollowerUpdates/internal/domain/entity"
)

// FollowedArtistIDs walks the user's followed-artist collection to completion
// and returns the artist IDs in server order.
func (c *Client) FollowedArtistIDs(ctx context.Context, token string) ([]string, error) {
	var ids []string
	start := c.cfg.BaseURL + "/me/following?type=artist&limit=50"

	err := c.walkPages(ctx, token, start, func(raw json.RawMessage) (*string, error) {
		var envelope followedArtistsEnvelope
		if err := json.Unmarshal(raw, &envelope); err != nil {
			return nil, fmt.Errorf("decode followed artists page: %w", err)
		}
		for _, artist := range envelope.Artists.Items {
			ids = append(ids, artist.ID)
		}
		return envelope.Artists.Next, nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// CurrentUserID returns the Spotify user ID of the token's owner.
func (c *Client) CurrentUserID(ctx context.Context, token string) (string, error) {
	var me struct {
		ID string `json:"id"`
	}
	if err := c.getJSON(ctx, token, c.cfg.BaseURL+"/me", &me); err != nil {
		return "", err
	}
	if me.ID == "" {
		return "", fmt.Errorf("profile response missing user id")
	}
	return me.ID, nil
}

// ArtistReleases returns the artist's albums and singles across all pages in
// server order. Release dates that fail to parse are kept with a zero
// ReleasedAt; the snapshot builder drops them.
func (c *Client) ArtistReleases(ctx context.Context, token, artistID string) ([]entity.Release, error) {
	var releases []entity.Release
	start := fmt.Sprintf("%s/artists/%s/albums?include_groups=album,single&limit=50", c.cfg.BaseURL, artistID)

	err := c.walkPages(ctx, token, start, func(raw json.RawMessage) (*string, error) {
		var page albumPage
		if err := json.Unmarshal(raw, &page); err != nil {
			return nil, fmt.Errorf("decode albums page: %w", err)
		}
		for _, album := range page.Items {
			releases = append(releases, toRelease(album))
		}
		return page.Next, nil
	})
	if err != nil {
		return nil, err
	}
	return releases, nil
}

// PlaylistTrackIDs returns the track IDs of a playlist across all pages in
// server order. Local tracks without an ID are skipped.
func (c *Client) PlaylistTrackIDs(ctx context.Context, token, playlistID string) ([]string, error) {
	var ids []string
	start := fmt.Sprintf("%s/playlists/%s/tracks?fields=items(track(id)),next&limit=100", c.cfg.BaseURL, playlistID)

	err := c.walkPages(ctx, token, start, func(raw json.RawMessage) (*string, error) {
		var page playlistTrackPage
		if err := json.Unmarshal(raw, &page); err != nil {
			return nil, fmt.Errorf("decode playlist tracks page: %w", err)
		}
		for _, item := range page.Items {
			if item.Track.ID != "" {
				ids = append(ids, item.Track.ID)
			}
		}
		return page.Next, nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func toRelease(album albumObject) entity.Release {
	artists := make([]string, 0, len(album.Artists))
	for _, artist := range album.Artists {
		artists = append(artists, artist.Name)
	}

	released, _ := entity.ParseReleaseDate(album.ReleaseDate)
	return entity.Release{
		ID:          album.ID,
		Name:        album.Name,
		AlbumType:   album.AlbumType,
		Artists:     artists,
		ReleaseDate: album.ReleaseDate,
		ReleasedAt:  released,
	}
}
