// Package repository defines the persistence interfaces consumed by the use
// case layer. Concrete adapters live under internal/infra/adapter/persistence.
package repository

import (
	"context"

	"github.com/a-vollm/spotifyFollowerUpdates/internal/domain/entity"
)

// TokenRepository is the durable store for per-user OAuth credentials.
type TokenRepository interface {
	// Get returns the stored token for a user, or (nil, nil) if none exists.
	Get(ctx context.Context, uid string) (*entity.Token, error)
	// Set inserts or updates the token for token.UID.
	Set(ctx context.Context, token *entity.Token) error
	// Delete removes a user's token. Deleting an absent token is not an error.
	Delete(ctx context.Context, uid string) error
	// All returns the tokens of every known user, ordered by uid.
	All(ctx context.Context) ([]*entity.Token, error)
}
