package repository

import "context"

// SnapshotRepository is the durable store for identity snapshots: the last
// observed item-ID set per tracked resource per user. The change detector
// writes a new snapshot only after a successful compare-and-dispatch cycle,
// so a failed cycle keeps the previous comparison baseline.
type SnapshotRepository interface {
	// Get returns the stored ID set for (resourceKey, uid). found is false
	// when no snapshot has ever been written for that key, which the caller
	// uses to distinguish a first run from an observed-empty resource.
	Get(ctx context.Context, resourceKey, uid string) (ids []string, found bool, err error)
	// Set replaces the stored ID set for (resourceKey, uid).
	Set(ctx context.Context, resourceKey, uid string, ids []string) error
}
