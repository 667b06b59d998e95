// Package token manages stored Spotify token pairs: handing out valid
// access tokens on demand and proactively refreshing pairs that are about
// to expire.
package token

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/a-vollm/spotifyFollowerUpdates/internal/domain/entity"
	"github.com/a-vollm/spotifyFollowerUpdates/internal/observability/metrics"
	"github.com/a-vollm/spotifyFollowerUpdates/internal/repository"
	"github.com/a-vollm/spotifyFollowerUpdates/internal/resilience/retry"
)

// defaultLeeway is how long before expiry a token is treated as expired.
// Rebuilds can take a while, handing out a token that dies mid-rebuild
// wastes a whole fan-out.
const defaultLeeway = 5 * time.Minute

// Refresher exchanges a refresh token for a new token pair at the OAuth
// token endpoint.
type Refresher interface {
	Refresh(ctx context.Context, uid, refreshToken string) (*entity.Token, error)
}

// Service hands out valid access tokens and keeps stored pairs fresh.
type Service struct {
	Tokens    repository.TokenRepository
	Refresher Refresher

	leeway time.Duration
	now    func() time.Time
}

// NewService creates a token service with the default expiry leeway.
func NewService(tokens repository.TokenRepository, refresher Refresher) *Service {
	return &Service{
		Tokens:    tokens,
		Refresher: refresher,
		leeway:    defaultLeeway,
		now:       time.Now,
	}
}

// AccessToken returns a valid access token for the user, refreshing the
// stored pair first when it expires within the leeway window.
func (s *Service) AccessToken(ctx context.Context, uid string) (string, error) {
	tok, err := s.Tokens.Get(ctx, uid)
	if err != nil {
		return "", fmt.Errorf("load token: %w", err)
	}
	if tok == nil {
		return "", entity.ErrNoToken
	}

	if !tok.ExpiresWithin(s.leeway) {
		return tok.Access, nil
	}

	refreshed, err := s.refresh(ctx, tok)
	if err != nil {
		return "", err
	}
	return refreshed.Access, nil
}

// RefreshExpiring refreshes every stored pair that expires within the
// window. Failures are isolated per user so one revoked grant does not
// stall the rest. Returns the number of refreshed pairs.
func (s *Service) RefreshExpiring(ctx context.Context, window time.Duration) (int, error) {
	logger := slog.Default()

	tokens, err := s.Tokens.All(ctx)
	if err != nil {
		return 0, fmt.Errorf("list tokens: %w", err)
	}

	refreshed := 0
	for _, tok := range tokens {
		if !tok.ExpiresWithin(window) {
			continue
		}
		if _, err := s.refresh(ctx, tok); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return refreshed, err
			}
			logger.Warn("token refresh failed, skipping user",
				slog.String("uid", tok.UID),
				slog.Any("error", err))
			continue
		}
		refreshed++
	}

	if refreshed > 0 {
		logger.Info("expiring tokens refreshed",
			slog.Int("refreshed", refreshed),
			slog.Int("stored", len(tokens)))
	}
	return refreshed, nil
}

// refresh exchanges the stored pair and persists the result. Transient
// token endpoint failures are retried with backoff.
func (s *Service) refresh(ctx context.Context, tok *entity.Token) (*entity.Token, error) {
	var fresh *entity.Token
	err := retry.WithBackoff(ctx, retry.TokenEndpointConfig(), func() error {
		var err error
		fresh, err = s.Refresher.Refresh(ctx, tok.UID, tok.Refresh)
		return err
	})
	if err != nil {
		metrics.RecordTokenRefresh(false)
		return nil, fmt.Errorf("refresh token for %s: %w", tok.UID, err)
	}

	if err := s.Tokens.Set(ctx, fresh); err != nil {
		metrics.RecordTokenRefresh(false)
		return nil, fmt.Errorf("persist refreshed token: %w", err)
	}

	metrics.RecordTokenRefresh(true)
	return fresh, nil
}
