package notify

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/a-vollm/spotifyFollowerUpdates/internal/domain/entity"
	"github.com/a-vollm/spotifyFollowerUpdates/internal/observability/metrics"
	"github.com/a-vollm/spotifyFollowerUpdates/internal/repository"
)

const (
	workerPoolTimeout   = 5 * time.Second  // Timeout for acquiring a worker slot
	notificationTimeout = 30 * time.Second // Timeout for an individual delivery

	// sendsPerSecond paces outbound push deliveries so the push gateway
	// is not hammered when many users change at once.
	sendsPerSecond = 20
)

// Service fans a notification out to all push subscriptions of a user.
//
// Deliveries run concurrently through a bounded worker pool and are paced
// by a shared token bucket. Endpoints that reject a delivery are pruned
// from the subscription store so dead devices do not accumulate.
type Service interface {
	// NotifyUser delivers a message to every subscription of the user
	// and broadcasts it to connected realtime clients. It returns an
	// error only when the subscription list cannot be loaded; individual
	// delivery failures prune the endpoint and are logged.
	NotifyUser(ctx context.Context, uid, title, body string) error

	// Shutdown stops the service, waiting for in-flight deliveries to
	// complete or the context to expire.
	Shutdown(ctx context.Context) error
}

type service struct {
	subs        repository.SubscriptionRepository
	sender      Sender
	broadcaster Broadcaster

	workerPool     chan struct{}
	limiter        *rate.Limiter
	wg             sync.WaitGroup
	shutdownCtx    context.Context
	shutdownCancel context.CancelFunc
}

// NewService creates a notification service.
//
// maxConcurrent bounds parallel push deliveries across all users
// (recommended: 10-20). Passing nil for sender or broadcaster installs
// the noop implementation.
func NewService(subs repository.SubscriptionRepository, sender Sender, broadcaster Broadcaster, maxConcurrent int) Service {
	if sender == nil {
		sender = NoopSender{}
	}
	if broadcaster == nil {
		broadcaster = NoopBroadcaster{}
	}
	if maxConcurrent <= 0 {
		maxConcurrent = 10
	}

	shutdownCtx, shutdownCancel := context.WithCancel(context.Background())

	return &service{
		subs:           subs,
		sender:         sender,
		broadcaster:    broadcaster,
		workerPool:     make(chan struct{}, maxConcurrent),
		limiter:        rate.NewLimiter(rate.Limit(sendsPerSecond), maxConcurrent),
		shutdownCtx:    shutdownCtx,
		shutdownCancel: shutdownCancel,
	}
}

// NotifyUser implements Service.NotifyUser.
func (s *service) NotifyUser(ctx context.Context, uid, title, body string) error {
	requestID := uuid.New().String()
	msg := Message{Title: title, Body: body}

	subs, err := s.subs.ListByUser(ctx, uid)
	if err != nil {
		return fmt.Errorf("list push subscriptions: %w", err)
	}

	s.broadcaster.Broadcast(uid, msg)

	if len(subs) == 0 {
		slog.Debug("no push subscriptions for user",
			slog.String("request_id", requestID),
			slog.String("uid", uid))
		return nil
	}

	slog.Info("dispatching push notification",
		slog.String("request_id", requestID),
		slog.String("uid", uid),
		slog.Int("subscriptions", len(subs)))

	var wg sync.WaitGroup
	for _, sub := range subs {
		sub := sub
		wg.Add(1)
		s.wg.Add(1)
		go func() {
			defer wg.Done()
			s.deliver(requestID, *sub, msg)
		}()
	}
	wg.Wait()

	return nil
}

// deliver sends the message to a single subscription with panic recovery
// and circuit around the shared worker pool.
func (s *service) deliver(requestID string, sub entity.Subscription, msg Message) {
	defer s.wg.Done()

	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic in push delivery",
				slog.String("request_id", requestID),
				slog.String("uid", sub.UID),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())))
		}
	}()

	select {
	case s.workerPool <- struct{}{}:
		defer func() { <-s.workerPool }()
	case <-time.After(workerPoolTimeout):
		slog.Warn("push delivery dropped: worker pool full",
			slog.String("request_id", requestID),
			slog.String("uid", sub.UID))
		metrics.RecordNotificationSent(false)
		return
	}

	ctx, cancel := context.WithTimeout(s.shutdownCtx, notificationTimeout)
	defer cancel()

	if err := s.limiter.Wait(ctx); err != nil {
		slog.Warn("push delivery dropped: rate limit wait aborted",
			slog.String("request_id", requestID),
			slog.String("uid", sub.UID),
			slog.Any("error", err))
		metrics.RecordNotificationSent(false)
		return
	}

	start := time.Now()
	err := s.sender.Send(ctx, sub, msg)
	duration := time.Since(start)

	if err != nil {
		metrics.RecordNotificationSent(false)
		slog.Warn("push delivery failed, pruning subscription",
			slog.String("request_id", requestID),
			slog.String("uid", sub.UID),
			slog.Int64("subscription_id", sub.ID),
			slog.Duration("send_duration", duration),
			slog.Any("error", err))
		s.prune(sub)
		return
	}

	metrics.RecordNotificationSent(true)
	slog.Info("push delivery sent",
		slog.String("request_id", requestID),
		slog.String("uid", sub.UID),
		slog.Int64("subscription_id", sub.ID),
		slog.Duration("send_duration", duration))
}

// prune removes a subscription whose endpoint rejected delivery.
// Runs detached from the caller's context so a canceled notify does not
// leave dead endpoints behind.
func (s *service) prune(sub entity.Subscription) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(s.shutdownCtx), 5*time.Second)
	defer cancel()

	if err := s.subs.Delete(ctx, sub.ID); err != nil {
		slog.Warn("failed to prune push subscription",
			slog.Int64("subscription_id", sub.ID),
			slog.String("uid", sub.UID),
			slog.Any("error", err))
		return
	}
	metrics.RecordSubscriptionPruned()
}

// Shutdown implements Service.Shutdown. In-flight deliveries keep their
// context until they finish; only when the caller's context expires are the
// remaining ones cancelled.
func (s *service) Shutdown(ctx context.Context) error {
	slog.Info("shutting down notification service")
	defer s.shutdownCancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		slog.Info("notification service shutdown complete")
		return nil
	case <-ctx.Done():
		s.shutdownCancel()
		slog.Warn("notification service shutdown timeout")
		return ctx.Err()
	}
}
