package metrics

import "time"

// RecordCacheRebuild records a completed cache rebuild for a user.
// The release count feeds the global fetch counter.
func RecordCacheRebuild(duration time.Duration, releases int) {
	CacheRebuildDuration.Observe(duration.Seconds())
	if releases > 0 {
		ReleasesFetchedTotal.Add(float64(releases))
	}
}

// RecordCacheRebuildError records a failed cache rebuild.
// errorType should be a short category such as "token", "fetch" or "canceled".
func RecordCacheRebuildError(errorType string) {
	CacheRebuildErrors.WithLabelValues(errorType).Inc()
}

// RecordArtistFetch records the result of a per-artist discography fetch.
func RecordArtistFetch(success bool) {
	status := "success"
	if !success {
		status = "failure"
	}
	ArtistFetchesTotal.WithLabelValues(status).Inc()
}

// RecordChangeEvent records a detected identity change for a resource.
// Zero counts are skipped so empty deltas leave no trace.
func RecordChangeEvent(resource string, added, removed int) {
	if added > 0 {
		ChangeEventsTotal.WithLabelValues(resource, "added").Add(float64(added))
	}
	if removed > 0 {
		ChangeEventsTotal.WithLabelValues(resource, "removed").Add(float64(removed))
	}
}

// RecordNotificationSent records a push delivery attempt.
func RecordNotificationSent(success bool) {
	status := "success"
	if !success {
		status = "failure"
	}
	NotificationsSentTotal.WithLabelValues(status).Inc()
}

// RecordSubscriptionPruned records the removal of a dead push subscription.
func RecordSubscriptionPruned() {
	SubscriptionsPrunedTotal.Inc()
}

// RecordTokenRefresh records an OAuth refresh attempt.
func RecordTokenRefresh(success bool) {
	status := "success"
	if !success {
		status = "failure"
	}
	TokenRefreshesTotal.WithLabelValues(status).Inc()
}

// RecordRateLimited records a 429 response from the Spotify API.
func RecordRateLimited() {
	SpotifyRateLimitsTotal.Inc()
}

// UpdateTrackedUsers updates the count of users with stored tokens.
// This gauge should be refreshed at the start of every scheduled rebuild.
func UpdateTrackedUsers(count int) {
	TrackedUsersTotal.Set(float64(count))
}

// RecordDBQuery records the duration of a database query operation.
// Operation should describe the query type (e.g., "get_token", "set_snapshot").
func RecordDBQuery(operation string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// UpdateDBConnectionStats updates database connection pool statistics.
func UpdateDBConnectionStats(active, idle int) {
	DBConnectionsActive.Set(float64(active))
	DBConnectionsIdle.Set(float64(idle))
}
