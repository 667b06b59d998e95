// Package entity defines the core domain entities and validation logic for the application.
// It contains the fundamental business objects such as Release and Token, along with
// their validation rules and domain-specific errors.
package entity

import (
	"fmt"
	"time"
)

// Release represents one album or single published by a followed artist.
// Identity is the Spotify release ID; the fetch layer does not guarantee
// uniqueness across include groups, so consumers dedupe by ID.
type Release struct {
	ID          string
	Name        string
	AlbumType   string // "album" or "single"
	Artists     []string
	ReleaseDate string    // raw upstream value: "2006", "2006-01" or "2006-01-02"
	ReleasedAt  time.Time // parsed ReleaseDate, coarse dates pinned to the period start
}

// releaseDateLayouts are the date precisions Spotify returns, most precise first.
var releaseDateLayouts = []string{"2006-01-02", "2006-01", "2006"}

// ParseReleaseDate parses an upstream release date at day, month or year
// precision. Month- and year-precision dates resolve to the first day of the
// period so that ordering across mixed precisions stays total.
func ParseReleaseDate(raw string) (time.Time, error) {
	for _, layout := range releaseDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable release date %q", raw)
}

// Validate checks that the release carries the fields the cache relies on.
func (r *Release) Validate() error {
	if r.ID == "" {
		return &ValidationError{Field: "id", Message: "must not be empty"}
	}
	if r.ReleasedAt.IsZero() {
		return &ValidationError{Field: "release_date", Message: "must be a parseable date"}
	}
	return nil
}
