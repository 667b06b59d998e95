// Package slo tracks the service level objectives of the HTTP surface.
// Request outcomes are fed in via ObserveRequest and a background sampler
// periodically folds them into availability, error rate and latency
// quantile gauges.
package slo

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SLO targets for the service.
const (
	// AvailabilitySLO is the target uptime percentage (99.9% allows about
	// 43 minutes of downtime per month).
	AvailabilitySLO = 99.9

	// LatencyP95SLO is the 95th percentile latency target in seconds.
	LatencyP95SLO = 0.200

	// LatencyP99SLO is the 99th percentile latency target in seconds.
	LatencyP99SLO = 0.500

	// ErrorRateSLO is the maximum acceptable error rate ratio.
	ErrorRateSLO = 0.001
)

var (
	// SLOAvailability is the availability ratio of the last sample window,
	// computed as (total - 5xx) / total.
	SLOAvailability = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "slo_availability_ratio",
		Help: "Current availability ratio (0-1), target: 0.999",
	})

	// SLOLatencyP95 is the approximated p95 latency of the last window.
	SLOLatencyP95 = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "slo_latency_p95_seconds",
		Help: "Current p95 latency in seconds, target: 0.200",
	})

	// SLOLatencyP99 is the approximated p99 latency of the last window.
	SLOLatencyP99 = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "slo_latency_p99_seconds",
		Help: "Current p99 latency in seconds, target: 0.500",
	})

	// SLOErrorRate is the 5xx ratio of the last sample window.
	SLOErrorRate = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "slo_error_rate_ratio",
		Help: "Current error rate ratio (0-1), target: 0.001",
	})
)

// latencyBuckets are the upper bounds (seconds) of the coarse histogram the
// quantile approximation runs on. The last bucket catches everything above
// ten seconds.
var latencyBuckets = [...]float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

type window struct {
	total   atomic.Int64
	errors  atomic.Int64
	buckets [len(latencyBuckets) + 1]atomic.Int64
}

var current atomic.Pointer[window]

func init() {
	current.Store(&window{})
}

// ObserveRequest records one finished request for SLO tracking. statusCode
// is the HTTP status, seconds the handling duration.
func ObserveRequest(statusCode int, seconds float64) {
	w := current.Load()
	w.total.Add(1)
	if statusCode >= 500 {
		w.errors.Add(1)
	}

	idx := len(latencyBuckets)
	for i, bound := range latencyBuckets {
		if seconds <= bound {
			idx = i
			break
		}
	}
	w.buckets[idx].Add(1)
}

// Sample folds the accumulated window into the gauges and starts a fresh
// window. A window without traffic leaves the gauges untouched.
func Sample() {
	w := current.Swap(&window{})

	total := w.total.Load()
	if total == 0 {
		return
	}

	errors := w.errors.Load()
	SLOAvailability.Set(float64(total-errors) / float64(total))
	SLOErrorRate.Set(float64(errors) / float64(total))
	SLOLatencyP95.Set(quantile(w, total, 0.95))
	SLOLatencyP99.Set(quantile(w, total, 0.99))
}

// quantile approximates the q-quantile as the upper bound of the first
// bucket whose cumulative count reaches q*total.
func quantile(w *window, total int64, q float64) float64 {
	threshold := int64(q * float64(total))
	if threshold < 1 {
		threshold = 1
	}

	var cumulative int64
	for i := range latencyBuckets {
		cumulative += w.buckets[i].Load()
		if cumulative >= threshold {
			return latencyBuckets[i]
		}
	}
	return latencyBuckets[len(latencyBuckets)-1]
}

// StartSampler runs Sample every interval until ctx is cancelled.
func StartSampler(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			Sample()
		}
	}
}
