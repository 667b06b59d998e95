package spotify

import (
	"errors"
	"fmt"
	"time"
)

// APIError represents a non-retryable upstream failure: any non-2xx,
// non-429 response from the Spotify Web API. 401/404/5xx are all terminal
// for the current request; transient handling is the caller's concern.
type APIError struct {
	StatusCode int
	URL        string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("spotify API %d on %s: %s", e.StatusCode, e.URL, e.Message)
}

// RateLimitError indicates that the retry ceiling was exhausted while the
// upstream kept answering 429. Callers treat it like any other upstream
// failure; the distinction exists for logs and metrics.
type RateLimitError struct {
	URL      string
	Attempts int
	LastWait time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("spotify rate limit on %s not cleared after %d attempts (last wait %v)",
		e.URL, e.Attempts, e.LastWait)
}

// IsRateLimited reports whether err is a RateLimitError.
func IsRateLimited(err error) bool {
	var rle *RateLimitError
	return errors.As(err, &rle)
}
