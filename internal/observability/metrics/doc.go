// Package metrics provides Prometheus metrics registry and recording utilities.
//
// This package centralizes all application metrics including:
//   - HTTP request metrics (duration, count, size)
//   - Business metrics (rebuilds, releases, change notifications)
//   - Database query metrics
//   - Token refresh and push delivery metrics
//
// All metrics are automatically registered with the Prometheus default registry
// and exposed via the /metrics endpoint.
//
// Example usage:
//
//	import "github.com/a-vollm/spotifyFollowerUpdates/internal/observability/metrics"
//
//	func rebuildCache(uid string) {
//	    start := time.Now()
//	    // ... rebuild snapshot ...
//	    metrics.RecordCacheRebuild(uid, time.Since(start), releaseCount)
//	}
package metrics
