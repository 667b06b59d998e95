package entity

import "sort"

// IDSet is an identity snapshot: the set of item IDs last observed for a
// tracked resource (a playlist's track IDs, a user's release IDs).
type IDSet map[string]struct{}

// NewIDSet builds an IDSet from a list of IDs, dropping duplicates and blanks.
func NewIDSet(ids []string) IDSet {
	set := make(IDSet, len(ids))
	for _, id := range ids {
		if id != "" {
			set[id] = struct{}{}
		}
	}
	return set
}

// Slice returns the set's IDs in sorted order.
func (s IDSet) Slice() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Delta describes the difference between two identity snapshots.
// Added and Removed are disjoint by construction and sorted for determinism.
type Delta struct {
	Added   []string
	Removed []string
}

// Empty reports whether the delta carries no changes.
func (d Delta) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0
}

// Diff computes the symmetric set difference between the previous and the
// current identity snapshot.
func Diff(previous, current IDSet) Delta {
	var d Delta
	for id := range current {
		if _, ok := previous[id]; !ok {
			d.Added = append(d.Added, id)
		}
	}
	for id := range previous {
		if _, ok := current[id]; !ok {
			d.Removed = append(d.Removed, id)
		}
	}
	sort.Strings(d.Added)
	sort.Strings(d.Removed)
	return d
}
