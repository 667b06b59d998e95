// Package observability provides production-grade observability infrastructure
// including structured logging, Prometheus metrics, SLO tracking and
// OpenTelemetry tracing.
//
// Subpackages:
//   - logging: structured logging utilities with slog
//   - metrics: Prometheus metrics registry and recorders
//   - slo: service level objective targets and tracking gauges
//   - tracing: OpenTelemetry tracing integration
//
// Example usage:
//
//	import (
//	    "github.com/a-vollm/spotifyFollowerUpdates/internal/observability/logging"
//	    "github.com/a-vollm/spotifyFollowerUpdates/internal/observability/metrics"
//	)
//
//	func main() {
//	    logger := logging.NewLogger()
//	    logger.Info("application started")
//
//	    metrics.RecordCacheRebuild(duration, releases)
//	}
package observability
