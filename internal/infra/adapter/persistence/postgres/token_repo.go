// Package postgres implements the repository interfaces on top of a
// Postgres database accessed through database/sql with the pgx driver.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/a-vollm/spotifyFollowerUpdates/internal/domain/entity"
	"github.com/a-vollm/spotifyFollowerUpdates/internal/repository"
)

type TokenRepo struct{ db *sql.DB }

func NewTokenRepo(db *sql.DB) repository.TokenRepository {
	return &TokenRepo{db: db}
}

func (repo *TokenRepo) Get(ctx context.Context, uid string) (*entity.Token, error) {
	const query = `
SELECT uid, access, refresh, exp
FROM tokens
WHERE uid = $1
LIMIT 1`
	var token entity.Token
	err := repo.db.QueryRowContext(ctx, query, uid).Scan(
		&token.UID, &token.Access, &token.Refresh, &token.Exp,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return &token, nil
}

func (repo *TokenRepo) Set(ctx context.Context, token *entity.Token) error {
	const query = `
INSERT INTO tokens (uid, access, refresh, exp)
VALUES ($1, $2, $3, $4)
ON CONFLICT (uid) DO UPDATE
    SET access     = EXCLUDED.access,
        refresh    = EXCLUDED.refresh,
        exp        = EXCLUDED.exp,
        updated_at = CURRENT_TIMESTAMP`
	if _, err := repo.db.ExecContext(ctx, query,
		token.UID, token.Access, token.Refresh, token.Exp,
	); err != nil {
		return fmt.Errorf("Set: %w", err)
	}
	return nil
}

func (repo *TokenRepo) Delete(ctx context.Context, uid string) error {
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM tokens WHERE uid = $1`, uid); err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	return nil
}

func (repo *TokenRepo) All(ctx context.Context) ([]*entity.Token, error) {
	const query = `
SELECT uid, access, refresh, exp
FROM tokens
ORDER BY uid ASC`
	rows, err := repo.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("All: %w", err)
	}
	defer func() { _ = rows.Close() }()

	tokens := make([]*entity.Token, 0, 16)
	for rows.Next() {
		var token entity.Token
		if err := rows.Scan(&token.UID, &token.Access, &token.Refresh, &token.Exp); err != nil {
			return nil, fmt.Errorf("All: %w", err)
		}
		tokens = append(tokens, &token)
	}
	return tokens, rows.Err()
}
