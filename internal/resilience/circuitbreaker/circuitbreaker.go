// Package circuitbreaker guards calls to external services so sustained
// upstream failure stops producing traffic instead of cascading. It is a
// thin layer over github.com/sony/gobreaker.
package circuitbreaker

import (
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
)

// Config tunes one breaker. The circuit trips when, after at least
// MinRequests calls inside an Interval, the failure ratio reaches
// FailureThreshold. It stays open for Timeout, then allows up to
// MaxRequests probes in half-open state.
type Config struct {
	Name             string
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold float64
	MinRequests      uint32
}

// SpotifyAPIConfig returns the breaker settings for Spotify Web API calls.
// The rebuild fan-out issues many requests per cycle, so the minimum sample
// is higher than for the token endpoint.
func SpotifyAPIConfig() Config {
	return Config{
		Name:             "spotify-api",
		MaxRequests:      5,
		Interval:         60 * time.Second,
		Timeout:          120 * time.Second,
		FailureThreshold: 0.7,
		MinRequests:      10,
	}
}

// TokenEndpointConfig returns the breaker settings for the OAuth token
// endpoint.
func TokenEndpointConfig() Config {
	return Config{
		Name:             "spotify-token",
		MaxRequests:      3,
		Interval:         30 * time.Second,
		Timeout:          60 * time.Second,
		FailureThreshold: 0.6,
		MinRequests:      5,
	}
}

// tripsAt builds the ReadyToTrip predicate for the configured ratio.
func (c Config) tripsAt() func(gobreaker.Counts) bool {
	return func(counts gobreaker.Counts) bool {
		if counts.Requests < c.MinRequests {
			return false
		}
		return float64(counts.TotalFailures)/float64(counts.Requests) >= c.FailureThreshold
	}
}

// CircuitBreaker wraps a gobreaker instance configured from Config.
type CircuitBreaker struct {
	breaker *gobreaker.CircuitBreaker
}

// New builds a breaker that logs every state transition.
func New(cfg Config) *CircuitBreaker {
	return &CircuitBreaker{
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        cfg.Name,
			MaxRequests: cfg.MaxRequests,
			Interval:    cfg.Interval,
			Timeout:     cfg.Timeout,
			ReadyToTrip: cfg.tripsAt(),
			OnStateChange: func(name string, from, to gobreaker.State) {
				slog.Warn("circuit breaker state changed",
					slog.String("circuit", name),
					slog.String("from", from.String()),
					slog.String("to", to.String()))
			},
		}),
	}
}

// Execute runs fn through the breaker. While the circuit is open it returns
// gobreaker.ErrOpenState without calling fn.
func (cb *CircuitBreaker) Execute(fn func() (interface{}, error)) (interface{}, error) {
	return cb.breaker.Execute(fn)
}

// State returns the current breaker state.
func (cb *CircuitBreaker) State() gobreaker.State {
	return cb.breaker.State()
}

// IsOpen reports whether the circuit is currently open.
func (cb *CircuitBreaker) IsOpen() bool {
	return cb.breaker.State() == gobreaker.StateOpen
}
