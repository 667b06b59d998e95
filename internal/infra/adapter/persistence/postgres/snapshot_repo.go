package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/a-vollm/spotifyFollowerUpdates/internal/repository"
)

type SnapshotRepo struct{ db *sql.DB }

func NewSnapshotRepo(db *sql.DB) repository.SnapshotRepository {
	return &SnapshotRepo{db: db}
}

func (repo *SnapshotRepo) Get(ctx context.Context, resourceKey, uid string) ([]string, bool, error) {
	const query = `
SELECT ids
FROM identity_snapshots
WHERE resource_key = $1 AND uid = $2
LIMIT 1`
	var raw []byte
	err := repo.db.QueryRowContext(ctx, query, resourceKey, uid).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("Get: %w", err)
	}

	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, false, fmt.Errorf("Get: unmarshal ids: %w", err)
	}
	return ids, true, nil
}

func (repo *SnapshotRepo) Set(ctx context.Context, resourceKey, uid string, ids []string) error {
	if ids == nil {
		ids = []string{} // persisted-empty is distinct from never-persisted
	}
	raw, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("Set: marshal ids: %w", err)
	}

	const query = `
INSERT INTO identity_snapshots (resource_key, uid, ids)
VALUES ($1, $2, $3)
ON CONFLICT (resource_key, uid) DO UPDATE
    SET ids        = EXCLUDED.ids,
        updated_at = CURRENT_TIMESTAMP`
	if _, err := repo.db.ExecContext(ctx, query, resourceKey, uid, raw); err != nil {
		return fmt.Errorf("Set: %w", err)
	}
	return nil
}
