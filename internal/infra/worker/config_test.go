package worker

import (
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Metrics auto-register in the default Prometheus registry, so all tests in
// this package share one instance.
var (
	testMetricsOnce sync.Once
	testMetrics     *WorkerMetrics
)

func sharedMetrics() *WorkerMetrics {
	testMetricsOnce.Do(func() {
		testMetrics = NewWorkerMetrics()
	})
	return testMetrics
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())
}

func TestValidateCollectsViolations(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*WorkerConfig)
	}{
		{"bad rebuild schedule", func(c *WorkerConfig) { c.RebuildSchedule = "often" }},
		{"bad refresh schedule", func(c *WorkerConfig) { c.TokenRefreshSchedule = "" }},
		{"bad timezone", func(c *WorkerConfig) { c.Timezone = "Nowhere/Town" }},
		{"fan-out too low", func(c *WorkerConfig) { c.FanOutConcurrency = 0 }},
		{"fan-out too high", func(c *WorkerConfig) { c.FanOutConcurrency = 128 }},
		{"zero timeout", func(c *WorkerConfig) { c.RebuildTimeout = 0 }},
		{"notify concurrency too high", func(c *WorkerConfig) { c.NotifyMaxConcurrent = 200 }},
		{"privileged health port", func(c *WorkerConfig) { c.HealthPort = 80 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadConfigFromEnvDefaults(t *testing.T) {
	cfg, err := LoadConfigFromEnv(slog.Default(), sharedMetrics())
	require.NoError(t, err)

	assert.Equal(t, "*/30 * * * *", cfg.RebuildSchedule)
	assert.Equal(t, "*/10 * * * *", cfg.TokenRefreshSchedule)
	assert.Equal(t, "Europe/Berlin", cfg.Timezone)
	assert.Equal(t, 8, cfg.FanOutConcurrency)
	assert.Equal(t, 10*time.Minute, cfg.RebuildTimeout)
	assert.Equal(t, 10, cfg.NotifyMaxConcurrent)
	assert.Equal(t, 9091, cfg.HealthPort)
	assert.Equal(t, "watch.yaml", cfg.WatchConfigPath)
}

func TestLoadConfigFromEnvOverrides(t *testing.T) {
	t.Setenv("REBUILD_SCHEDULE", "0 * * * *")
	t.Setenv("TOKEN_REFRESH_SCHEDULE", "*/5 * * * *")
	t.Setenv("WORKER_TIMEZONE", "UTC")
	t.Setenv("CACHE_FANOUT_CONCURRENCY", "16")
	t.Setenv("REBUILD_TIMEOUT", "20m")
	t.Setenv("NOTIFY_MAX_CONCURRENT", "5")
	t.Setenv("WORKER_HEALTH_PORT", "9191")
	t.Setenv("WATCH_CONFIG", "/etc/follower/watch.yaml")

	cfg, err := LoadConfigFromEnv(slog.Default(), sharedMetrics())
	require.NoError(t, err)

	assert.Equal(t, "0 * * * *", cfg.RebuildSchedule)
	assert.Equal(t, "*/5 * * * *", cfg.TokenRefreshSchedule)
	assert.Equal(t, "UTC", cfg.Timezone)
	assert.Equal(t, 16, cfg.FanOutConcurrency)
	assert.Equal(t, 20*time.Minute, cfg.RebuildTimeout)
	assert.Equal(t, 5, cfg.NotifyMaxConcurrent)
	assert.Equal(t, 9191, cfg.HealthPort)
	assert.Equal(t, "/etc/follower/watch.yaml", cfg.WatchConfigPath)
}

func TestLoadConfigFromEnvFailOpen(t *testing.T) {
	t.Setenv("REBUILD_SCHEDULE", "not a schedule")
	t.Setenv("CACHE_FANOUT_CONCURRENCY", "-3")
	t.Setenv("REBUILD_TIMEOUT", "10h")

	cfg, err := LoadConfigFromEnv(slog.Default(), sharedMetrics())
	require.NoError(t, err)

	// Invalid values fall back to defaults instead of failing startup.
	assert.Equal(t, "*/30 * * * *", cfg.RebuildSchedule)
	assert.Equal(t, 8, cfg.FanOutConcurrency)
	assert.Equal(t, 10*time.Minute, cfg.RebuildTimeout)
	assert.NoError(t, cfg.Validate())
}
