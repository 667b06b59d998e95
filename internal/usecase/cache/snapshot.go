package cache

import (
	"sort"
	"time"

	"github.com/a-vollm/spotifyFollowerUpdates/internal/domain/entity"
)

// latestLimit is the maximum number of releases in the latest view.
const latestLimit = 20

// MonthGroup holds the releases of a single calendar month, newest first.
type MonthGroup struct {
	Month    time.Month
	Releases []entity.Release
}

// Snapshot is an immutable view over a user's aggregated releases.
// ByYear groups releases into per-month buckets, Latest holds the most
// recent releases across all years. Snapshots are replaced wholesale on
// rebuild and must never be mutated after construction.
type Snapshot struct {
	ByYear  map[int][]MonthGroup
	Latest  []entity.Release
	Total   int
	BuiltAt time.Time
}

// Years returns the years present in the snapshot, newest first.
func (s *Snapshot) Years() []int {
	years := make([]int, 0, len(s.ByYear))
	for y := range s.ByYear {
		years = append(years, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years
}

// ReleaseIDs returns the identity set of the snapshot as a sorted slice.
func (s *Snapshot) ReleaseIDs() []string {
	ids := make([]string, 0, s.Total)
	for _, months := range s.ByYear {
		for _, mg := range months {
			for _, r := range mg.Releases {
				ids = append(ids, r.ID)
			}
		}
	}
	sort.Strings(ids)
	return ids
}

// BuildSnapshot aggregates releases into a snapshot. Duplicate IDs are
// collapsed to their first occurrence, releases without a parseable date
// are dropped. The input is not modified.
func BuildSnapshot(releases []entity.Release, now time.Time) *Snapshot {
	seen := make(map[string]struct{}, len(releases))
	kept := make([]entity.Release, 0, len(releases))
	for _, r := range releases {
		if r.ID == "" || r.ReleasedAt.IsZero() {
			continue
		}
		if _, dup := seen[r.ID]; dup {
			continue
		}
		seen[r.ID] = struct{}{}
		kept = append(kept, r)
	}

	// Newest first, ID breaks ties so rebuilds over identical data
	// produce identical ordering.
	sort.SliceStable(kept, func(i, j int) bool {
		if !kept[i].ReleasedAt.Equal(kept[j].ReleasedAt) {
			return kept[i].ReleasedAt.After(kept[j].ReleasedAt)
		}
		return kept[i].ID < kept[j].ID
	})

	latest := kept
	if len(latest) > latestLimit {
		latest = latest[:latestLimit]
	}

	byMonth := make(map[int]map[time.Month][]entity.Release)
	for _, r := range kept {
		y, m := r.ReleasedAt.Year(), r.ReleasedAt.Month()
		if byMonth[y] == nil {
			byMonth[y] = make(map[time.Month][]entity.Release)
		}
		byMonth[y][m] = append(byMonth[y][m], r)
	}

	byYear := make(map[int][]MonthGroup, len(byMonth))
	for y, months := range byMonth {
		groups := make([]MonthGroup, 0, len(months))
		for m, rels := range months {
			groups = append(groups, MonthGroup{Month: m, Releases: rels})
		}
		sort.Slice(groups, func(i, j int) bool {
			return groups[i].Month > groups[j].Month
		})
		byYear[y] = groups
	}

	return &Snapshot{
		ByYear:  byYear,
		Latest:  latest,
		Total:   len(kept),
		BuiltAt: now,
	}
}
