package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics track HTTP request patterns and performance
var (
	// HTTPRequestsTotal counts total HTTP requests by method, path, and status
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration measures HTTP request duration in seconds
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// ActiveConnections tracks the number of active HTTP connections
	ActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_connections",
			Help: "Number of active HTTP connections",
		},
	)
)

// Business metrics track application-specific operations
var (
	// TrackedUsersTotal tracks the number of users with a stored token
	TrackedUsersTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tracked_users_total",
			Help: "Number of users with a stored Spotify token",
		},
	)

	// CacheRebuildDuration measures time to rebuild a user's release cache
	CacheRebuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cache_rebuild_duration_seconds",
			Help:    "Time taken to rebuild a user release cache",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		},
	)

	// CacheRebuildErrors counts failed cache rebuilds by error type
	CacheRebuildErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_rebuild_errors_total",
			Help: "Total number of failed cache rebuilds",
		},
		[]string{"error_type"},
	)

	// ReleasesFetchedTotal counts releases collected during rebuilds
	ReleasesFetchedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "releases_fetched_total",
			Help: "Total number of releases fetched from the Spotify API",
		},
	)

	// ArtistFetchesTotal counts per-artist discography fetches by status
	ArtistFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "artist_fetches_total",
			Help: "Total number of per-artist release fetches",
		},
		[]string{"status"},
	)

	// ChangeEventsTotal counts detected identity changes by resource and kind
	ChangeEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "change_events_total",
			Help: "Total number of detected identity changes",
		},
		[]string{"resource", "kind"}, // kind: added, removed
	)

	// NotificationsSentTotal counts push deliveries by status
	NotificationsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_sent_total",
			Help: "Total number of push notification deliveries",
		},
		[]string{"status"},
	)

	// SubscriptionsPrunedTotal counts push subscriptions removed after
	// delivery failures
	SubscriptionsPrunedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "subscriptions_pruned_total",
			Help: "Total number of push subscriptions pruned after failed delivery",
		},
	)

	// TokenRefreshesTotal counts OAuth token refreshes by status
	TokenRefreshesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "token_refreshes_total",
			Help: "Total number of Spotify token refresh attempts",
		},
		[]string{"status"},
	)

	// SpotifyRateLimitsTotal counts rate-limit responses from the Spotify API
	SpotifyRateLimitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "spotify_rate_limits_total",
			Help: "Total number of 429 responses from the Spotify API",
		},
	)
)

// Database metrics track database performance
var (
	// DBQueryDuration measures database query duration
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 10),
		},
		[]string{"operation"},
	)

	// DBConnectionsActive tracks active database connections
	DBConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_active",
			Help: "Number of active database connections",
		},
	)

	// DBConnectionsIdle tracks idle database connections
	DBConnectionsIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_idle",
			Help: "Number of idle database connections",
		},
	)
)

// RecordHTTPRequest records an HTTP request with its metadata
func RecordHTTPRequest(method, path, status string, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}
