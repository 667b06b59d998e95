package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/a-vollm/spotifyFollowerUpdates/internal/domain/entity"
	"github.com/a-vollm/spotifyFollowerUpdates/internal/repository"
)

type SubscriptionRepo struct{ db *sql.DB }

func NewSubscriptionRepo(db *sql.DB) repository.SubscriptionRepository {
	return &SubscriptionRepo{db: db}
}

func (repo *SubscriptionRepo) ListByUser(ctx context.Context, uid string) ([]*entity.Subscription, error) {
	const query = `
SELECT id, uid, endpoint, auth, p256dh, created_at
FROM push_subscriptions
WHERE uid = $1
ORDER BY id ASC`
	rows, err := repo.db.QueryContext(ctx, query, uid)
	if err != nil {
		return nil, fmt.Errorf("ListByUser: %w", err)
	}
	defer func() { _ = rows.Close() }()

	subs := make([]*entity.Subscription, 0, 4)
	for rows.Next() {
		var sub entity.Subscription
		if err := rows.Scan(
			&sub.ID, &sub.UID, &sub.Endpoint, &sub.Auth, &sub.P256DH, &sub.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("ListByUser: %w", err)
		}
		subs = append(subs, &sub)
	}
	return subs, rows.Err()
}

func (repo *SubscriptionRepo) Create(ctx context.Context, sub *entity.Subscription) error {
	const query = `
INSERT INTO push_subscriptions (uid, endpoint, auth, p256dh)
VALUES ($1, $2, $3, $4)
ON CONFLICT (endpoint) DO UPDATE
    SET uid    = EXCLUDED.uid,
        auth   = EXCLUDED.auth,
        p256dh = EXCLUDED.p256dh
RETURNING id`
	if err := repo.db.QueryRowContext(ctx, query,
		sub.UID, sub.Endpoint, sub.Auth, sub.P256DH,
	).Scan(&sub.ID); err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (repo *SubscriptionRepo) Delete(ctx context.Context, id int64) error {
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM push_subscriptions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	return nil
}
