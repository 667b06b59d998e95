// Package spotify is the HTTP client for the Spotify Web API. It owns the
// rate-limit handling contract of this service: 429 responses are retried
// after the server-provided Retry-After delay up to a fixed ceiling, every
// other failure is terminal for the request.
package spotify

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/a-vollm/spotifyFollowerUpdates/internal/resilience/circuitbreaker"
)

const defaultBaseURL = "https://api.spotify.com/v1"

// Config holds the Spotify client configuration.
type Config struct {
	// BaseURL is the API root. Overridden in tests.
	BaseURL string

	// Timeout is the per-request timeout. A timed-out request is a terminal
	// failure, not a retry candidate.
	Timeout time.Duration

	// MaxAttempts caps how often a single request is issued while the
	// upstream answers 429.
	MaxAttempts int

	// RequestsPerSecond and Burst configure the client-side token bucket
	// that keeps the rebuild fan-out from hammering the API in the first place.
	RequestsPerSecond float64
	Burst             int
}

// DefaultConfig returns the production client configuration.
func DefaultConfig() Config {
	return Config{
		BaseURL:           defaultBaseURL,
		Timeout:           30 * time.Second,
		MaxAttempts:       4,
		RequestsPerSecond: 10,
		Burst:             20,
	}
}

// Client talks to the Spotify Web API with bearer-token auth.
// All methods are safe for concurrent use.
type Client struct {
	cfg        Config
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *circuitbreaker.CircuitBreaker
}

// NewClient creates a Spotify API client.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
				TLSClientConfig: &tls.Config{
					MinVersion: tls.VersionTLS12,
				},
			},
		},
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		breaker: circuitbreaker.New(circuitbreaker.SpotifyAPIConfig()),
	}
}

// getJSON executes one authorized GET against the API and decodes the body
// into out. Retry policy: only 429 is retried, sleeping the server-provided
// Retry-After (default 1s when absent or unparseable), bounded by
// cfg.MaxAttempts. Any other non-2xx status or transport error fails
// immediately as *APIError.
func (c *Client) getJSON(ctx context.Context, token, url string, out interface{}) error {
	var lastWait time.Duration

	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return &APIError{URL: url, Message: err.Error()}
		}

		status, body, err := c.doRequest(ctx, token, url)
		if err != nil {
			return &APIError{URL: url, Message: err.Error()}
		}

		if status == http.StatusTooManyRequests {
			lastWait = retryAfter(body.header)
			slog.Warn("spotify rate limit hit, backing off",
				slog.String("url", url),
				slog.Int("attempt", attempt),
				slog.Duration("retry_after", lastWait))

			select {
			case <-time.After(lastWait):
				continue
			case <-ctx.Done():
				return &APIError{URL: url, Message: ctx.Err().Error()}
			}
		}

		if status < 200 || status >= 300 {
			return &APIError{StatusCode: status, URL: url, Message: string(body.data)}
		}

		if err := json.Unmarshal(body.data, out); err != nil {
			return &APIError{StatusCode: status, URL: url, Message: fmt.Sprintf("decode response: %v", err)}
		}
		return nil
	}

	return &RateLimitError{URL: url, Attempts: c.cfg.MaxAttempts, LastWait: lastWait}
}

// responseBody bundles the drained body with the headers needed for
// Retry-After extraction after the response is closed.
type responseBody struct {
	data   []byte
	header http.Header
}

// doRequest issues the request through the circuit breaker and fully drains
// the response. Status codes are returned to the caller for classification;
// only transport-level failures surface as errors here (and count against
// the breaker).
func (c *Client) doRequest(ctx context.Context, token, url string) (int, responseBody, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("execute request: %w", err)
		}
		defer func() { _ = resp.Body.Close() }()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("read response: %w", err)
		}

		return &rawResponse{status: resp.StatusCode, body: data, header: resp.Header}, nil
	})
	if err != nil {
		return 0, responseBody{}, err
	}

	raw := result.(*rawResponse)
	return raw.status, responseBody{data: raw.body, header: raw.header}, nil
}

type rawResponse struct {
	status int
	body   []byte
	header http.Header
}

// retryAfter parses the Retry-After header in seconds, defaulting to 1s.
func retryAfter(header http.Header) time.Duration {
	if v := header.Get("Retry-After"); v != "" {
		if seconds, err := strconv.Atoi(v); err == nil && seconds > 0 {
			return time.Duration(seconds) * time.Second
		}
	}
	return 1 * time.Second
}

// walkPages follows a paging chain starting at startURL. decodePage consumes
// one raw page and returns the next URL, or nil on the last page. Any page
// failure aborts the walk; no partial accumulation is exposed to callers on
// error paths.
func (c *Client) walkPages(ctx context.Context, token, startURL string, decodePage func(raw json.RawMessage) (*string, error)) error {
	url := startURL
	for url != "" {
		var raw json.RawMessage
		if err := c.getJSON(ctx, token, url, &raw); err != nil {
			return err
		}
		next, err := decodePage(raw)
		if err != nil {
			return &APIError{URL: url, Message: err.Error()}
		}
		if next == nil || *next == "" {
			return nil
		}
		url = *next
	}
	return nil
}
