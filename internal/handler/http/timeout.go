package http

import (
	"context"
	"net/http"
	"sync"
	"time"
)

// Timeout returns middleware that bounds request handling. The handler runs
// with a deadline on its context; when the deadline fires first, the client
// receives a 504 and any late writes from the handler are swallowed.
func Timeout(duration time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), duration)
			defer cancel()

			guard := &deadlineWriter{w: w}
			done := make(chan struct{})

			go func() {
				defer close(done)
				next.ServeHTTP(guard, r.WithContext(ctx))
			}()

			select {
			case <-done:
			case <-ctx.Done():
				guard.expire()
			}
		})
	}
}

// deadlineWriter serializes handler writes against the timeout response.
// After expire() wins the race, handler writes report ErrHandlerTimeout.
type deadlineWriter struct {
	w http.ResponseWriter

	mu      sync.Mutex
	wrote   bool
	expired bool
}

func (d *deadlineWriter) Header() http.Header {
	return d.w.Header()
}

func (d *deadlineWriter) WriteHeader(status int) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.expired || d.wrote {
		return
	}
	d.wrote = true
	d.w.WriteHeader(status)
}

func (d *deadlineWriter) Write(b []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.expired {
		return 0, http.ErrHandlerTimeout
	}
	if !d.wrote {
		d.wrote = true
		d.w.WriteHeader(http.StatusOK)
	}
	return d.w.Write(b)
}

// expire sends the 504 unless the handler already produced a response.
func (d *deadlineWriter) expire() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.expired = true
	if d.wrote {
		return
	}
	d.wrote = true
	d.w.Header().Set("Content-Type", "application/json")
	d.w.WriteHeader(http.StatusGatewayTimeout)
	_, _ = d.w.Write([]byte(`{"error":"request timeout"}`))
}
