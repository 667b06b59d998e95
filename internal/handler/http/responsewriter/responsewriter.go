// Package responsewriter wraps http.ResponseWriter so middleware can
// observe the status code and body size after the handler ran.
package responsewriter

import "net/http"

// ResponseWriter records the status code and byte count of a response.
// The zero status before any write is reported as 200, matching what the
// net/http server sends for a handler that never calls WriteHeader.
type ResponseWriter struct {
	http.ResponseWriter

	status int
	bytes  int
	wrote  bool
}

// Wrap returns a recording wrapper around w.
func Wrap(w http.ResponseWriter) *ResponseWriter {
	return &ResponseWriter{ResponseWriter: w, status: http.StatusOK}
}

// WriteHeader records the first status code; later calls are dropped the
// same way the standard library ignores duplicate headers.
func (w *ResponseWriter) WriteHeader(status int) {
	if w.wrote {
		return
	}
	w.wrote = true
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Write forwards the body bytes and accumulates their count, defaulting
// the status to 200 when the handler skipped WriteHeader.
func (w *ResponseWriter) Write(b []byte) (int, error) {
	if !w.wrote {
		w.WriteHeader(http.StatusOK)
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

// StatusCode returns the recorded status code.
func (w *ResponseWriter) StatusCode() int { return w.status }

// BytesWritten returns how many body bytes were sent.
func (w *ResponseWriter) BytesWritten() int { return w.bytes }

// Unwrap exposes the underlying writer for http.ResponseController.
func (w *ResponseWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }
