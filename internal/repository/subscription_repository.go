package repository

import (
	"context"

	"github.com/a-vollm/spotifyFollowerUpdates/internal/domain/entity"
)

// SubscriptionRepository stores push-notification subscriptions per user.
type SubscriptionRepository interface {
	ListByUser(ctx context.Context, uid string) ([]*entity.Subscription, error)
	Create(ctx context.Context, sub *entity.Subscription) error
	// Delete removes a subscription, typically after a delivery failure
	// marked it as dead. Deleting an absent subscription is not an error.
	Delete(ctx context.Context, id int64) error
}
