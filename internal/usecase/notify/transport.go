package notify

import (
	"context"
	"log/slog"

	"github.com/a-vollm/spotifyFollowerUpdates/internal/domain/entity"
)

// Message is the payload delivered to a user's devices.
type Message struct {
	Title string
	Body  string
}

// Sender delivers a message to a single push subscription endpoint.
// Implementations report unrecoverable endpoints (gone, unsubscribed)
// as errors so the service can prune them.
type Sender interface {
	Send(ctx context.Context, sub entity.Subscription, msg Message) error
}

// Broadcaster pushes a message to a user's currently connected realtime
// clients. Delivery is best effort.
type Broadcaster interface {
	Broadcast(uid string, msg Message)
}

// NoopSender drops messages. Used when no push transport is configured.
type NoopSender struct{}

func (NoopSender) Send(ctx context.Context, sub entity.Subscription, msg Message) error {
	slog.Debug("push transport disabled, dropping message",
		slog.String("uid", sub.UID),
		slog.String("title", msg.Title))
	return nil
}

// NoopBroadcaster drops realtime messages.
type NoopBroadcaster struct{}

func (NoopBroadcaster) Broadcast(uid string, msg Message) {}
