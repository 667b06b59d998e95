// Package releases exposes the per-user release cache over HTTP: status,
// latest view, per-year groups and the rebuild trigger.
package releases

import (
	"time"

	"github.com/a-vollm/spotifyFollowerUpdates/internal/domain/entity"
	"github.com/a-vollm/spotifyFollowerUpdates/internal/handler/http/respond"
	"github.com/a-vollm/spotifyFollowerUpdates/internal/usecase/cache"
)

type statusResponse struct {
	Status    string `json:"status"`
	Done      int    `json:"done"`
	Total     int    `json:"total"`
	BuiltAt   string `json:"built_at,omitempty"`
	LastError string `json:"last_error,omitempty"`
}

type releaseDTO struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	AlbumType   string   `json:"album_type"`
	Artists     []string `json:"artists"`
	ReleaseDate string   `json:"release_date"`
}

type monthGroupDTO struct {
	Month    int          `json:"month"`
	Releases []releaseDTO `json:"releases"`
}

type yearResponse struct {
	Year   int             `json:"year"`
	Months []monthGroupDTO `json:"months"`
}

func toStatusResponse(info cache.StatusInfo) statusResponse {
	resp := statusResponse{
		Status: string(info.Status),
		Done:   info.Done,
		Total:  info.Total,
	}
	if !info.BuiltAt.IsZero() {
		resp.BuiltAt = info.BuiltAt.UTC().Format(time.RFC3339)
	}
	if info.LastError != nil {
		resp.LastError = respond.SanitizeError(info.LastError)
	}
	return resp
}

func toReleaseDTO(r entity.Release) releaseDTO {
	return releaseDTO{
		ID:          r.ID,
		Name:        r.Name,
		AlbumType:   r.AlbumType,
		Artists:     r.Artists,
		ReleaseDate: r.ReleaseDate,
	}
}

func toReleaseDTOs(rels []entity.Release) []releaseDTO {
	out := make([]releaseDTO, 0, len(rels))
	for _, r := range rels {
		out = append(out, toReleaseDTO(r))
	}
	return out
}

func toMonthGroupDTOs(months []cache.MonthGroup) []monthGroupDTO {
	out := make([]monthGroupDTO, 0, len(months))
	for _, mg := range months {
		out = append(out, monthGroupDTO{
			Month:    int(mg.Month),
			Releases: toReleaseDTOs(mg.Releases),
		})
	}
	return out
}
