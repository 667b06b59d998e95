package spotify

// Wire types for the Spotify Web API endpoints this service consumes.
// https://developer.spotify.com/documentation/web-api/reference/
// Every collection endpoint wraps its items in a paging object whose Next
// field points at the following page, or is null on the last one.

type artistObject struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type artistPage struct {
	Items []artistObject `json:"items"`
	Next  *string        `json:"next"`
}

// followedArtistsEnvelope wraps the paging object: GET /me/following nests
// it under an "artists" key, unlike every other collection endpoint.
type followedArtistsEnvelope struct {
	Artists artistPage `json:"artists"`
}

type albumObject struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	AlbumType   string         `json:"album_type"`
	ReleaseDate string         `json:"release_date"`
	Artists     []artistObject `json:"artists"`
}

type albumPage struct {
	Items []albumObject `json:"items"`
	Next  *string       `json:"next"`
}

type trackObject struct {
	ID string `json:"id"`
}

type playlistTrackObject struct {
	Track trackObject `json:"track"`
}

type playlistTrackPage struct {
	Items []playlistTrackObject `json:"items"`
	Next  *string               `json:"next"`
}
