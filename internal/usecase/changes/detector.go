// Package changes detects identity-set deltas between scheduled rebuilds
// and dispatches a notification exactly once per change.
//
// The persisted baseline is only advanced after a successful dispatch, so
// a failed delivery is retried with the same delta on the next run rather
// than silently dropped.
package changes

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/a-vollm/spotifyFollowerUpdates/internal/domain/entity"
	"github.com/a-vollm/spotifyFollowerUpdates/internal/observability/metrics"
	"github.com/a-vollm/spotifyFollowerUpdates/internal/repository"
)

// Notifier delivers a change notification to all of a user's subscriptions.
type Notifier interface {
	NotifyUser(ctx context.Context, uid, title, body string) error
}

// Detector compares a resource's current identity set against its stored
// baseline and notifies on differences.
type Detector struct {
	Snapshots repository.SnapshotRepository
	Notifier  Notifier

	// NotifyOnFirstRun controls the very first check of a resource. When
	// false the baseline is persisted silently, when true the whole
	// initial set is reported as added.
	NotifyOnFirstRun bool
}

// NewDetector creates a change detector with the provided dependencies.
func NewDetector(snapshots repository.SnapshotRepository, notifier Notifier, notifyOnFirstRun bool) *Detector {
	return &Detector{
		Snapshots:        snapshots,
		Notifier:         notifier,
		NotifyOnFirstRun: notifyOnFirstRun,
	}
}

// Check diffs currentIDs against the stored baseline for (resourceKey, uid)
// and dispatches a notification when they differ. The baseline is written
// only after the dispatch succeeded. title and noun shape the notification
// text for this resource.
func (d *Detector) Check(ctx context.Context, resourceKey, uid string, currentIDs []string, title string, noun Noun) error {
	logger := slog.Default()

	previous, found, err := d.Snapshots.Get(ctx, resourceKey, uid)
	if err != nil {
		return fmt.Errorf("load identity baseline: %w", err)
	}

	current := entity.NewIDSet(currentIDs)
	delta := entity.Diff(entity.NewIDSet(previous), current)

	if !found && !d.NotifyOnFirstRun {
		// First sighting of this resource, establish the baseline
		// without notifying.
		if err := d.Snapshots.Set(ctx, resourceKey, uid, current.Slice()); err != nil {
			return fmt.Errorf("persist initial baseline: %w", err)
		}
		logger.Info("baseline established",
			slog.String("resource", resourceKey),
			slog.String("uid", uid),
			slog.Int("ids", len(current)),
		)
		return nil
	}

	if delta.Empty() {
		return nil
	}

	body := FormatDelta(delta, noun)
	if err := d.Notifier.NotifyUser(ctx, uid, title, body); err != nil {
		return fmt.Errorf("dispatch change notification: %w", err)
	}

	if err := d.Snapshots.Set(ctx, resourceKey, uid, current.Slice()); err != nil {
		// The baseline stays at its old value, the same delta will be
		// reported again on the next run.
		return fmt.Errorf("persist identity baseline: %w", err)
	}

	metrics.RecordChangeEvent(resourceKey, len(delta.Added), len(delta.Removed))
	logger.Info("change notification dispatched",
		slog.String("resource", resourceKey),
		slog.String("uid", uid),
		slog.Int("added", len(delta.Added)),
		slog.Int("removed", len(delta.Removed)),
	)

	return nil
}
