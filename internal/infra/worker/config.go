// Package worker holds the runtime configuration, metrics and health
// endpoints for the scheduled background worker.
package worker

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/a-vollm/spotifyFollowerUpdates/internal/pkg/config"
)

// WorkerConfig controls the cron schedules and operational limits of the
// worker process. Every field has a safe default so the worker starts even
// when the environment is partially misconfigured.
type WorkerConfig struct {
	// RebuildSchedule is the cron expression for the snapshot rebuild and
	// change detection job.
	RebuildSchedule string

	// TokenRefreshSchedule is the cron expression for the proactive token
	// refresh sweep.
	TokenRefreshSchedule string

	// Timezone is the IANA zone name the cron scheduler runs in.
	Timezone string

	// FanOutConcurrency caps concurrent artist fetches per rebuild.
	FanOutConcurrency int

	// RebuildTimeout bounds one full rebuild-and-diff pass over all users.
	RebuildTimeout time.Duration

	// NotifyMaxConcurrent caps concurrent subscription deliveries.
	NotifyMaxConcurrent int

	// HealthPort is the listen port of the health check server.
	HealthPort int

	// WatchConfigPath points at the YAML file listing watched playlists.
	WatchConfigPath string
}

// DefaultConfig returns the production defaults: a rebuild every 30 minutes,
// a token sweep every 10 minutes so access tokens never lapse between
// rebuilds, and Berlin time for the schedules.
func DefaultConfig() WorkerConfig {
	return WorkerConfig{
		RebuildSchedule:      "*/30 * * * *",
		TokenRefreshSchedule: "*/10 * * * *",
		Timezone:             "Europe/Berlin",
		FanOutConcurrency:    8,
		RebuildTimeout:       10 * time.Minute,
		NotifyMaxConcurrent:  10,
		HealthPort:           9091,
		WatchConfigPath:      "watch.yaml",
	}
}

// Validate checks every field and returns the collected violations.
func (c *WorkerConfig) Validate() error {
	var errs []error

	if err := config.ValidateCronSchedule(c.RebuildSchedule); err != nil {
		errs = append(errs, fmt.Errorf("rebuild schedule: %w", err))
	}
	if err := config.ValidateCronSchedule(c.TokenRefreshSchedule); err != nil {
		errs = append(errs, fmt.Errorf("token refresh schedule: %w", err))
	}
	if err := config.ValidateTimezone(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
	}
	if err := config.ValidateIntRange(c.FanOutConcurrency, 1, 64); err != nil {
		errs = append(errs, fmt.Errorf("fan-out concurrency: %w", err))
	}
	if err := config.ValidatePositiveDuration(c.RebuildTimeout); err != nil {
		errs = append(errs, fmt.Errorf("rebuild timeout: %w", err))
	}
	if err := config.ValidateIntRange(c.NotifyMaxConcurrent, 1, 50); err != nil {
		errs = append(errs, fmt.Errorf("notify max concurrent: %w", err))
	}
	if err := config.ValidateIntRange(c.HealthPort, 1024, 65535); err != nil {
		errs = append(errs, fmt.Errorf("health port: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed: %v", errs)
	}
	return nil
}

// LoadConfigFromEnv loads the worker configuration from the environment
// with a fail-open strategy: an invalid value falls back to its default,
// logs a warning and increments the fallback metrics. The returned config
// is always valid and the error is always nil.
//
// Environment variables:
//   - REBUILD_SCHEDULE: cron expression (default "*/30 * * * *")
//   - TOKEN_REFRESH_SCHEDULE: cron expression (default "*/10 * * * *")
//   - WORKER_TIMEZONE: IANA zone name (default "Europe/Berlin")
//   - CACHE_FANOUT_CONCURRENCY: integer 1-64 (default 8)
//   - REBUILD_TIMEOUT: duration 1m-4h (default 10m)
//   - NOTIFY_MAX_CONCURRENT: integer 1-50 (default 10)
//   - WORKER_HEALTH_PORT: integer 1024-65535 (default 9091)
//   - WATCH_CONFIG: path to the watched-playlist YAML (default "watch.yaml")
func LoadConfigFromEnv(logger *slog.Logger, metrics *WorkerMetrics) (*WorkerConfig, error) {
	cfg := DefaultConfig()
	fallbackApplied := false

	applyString := func(field, envKey string, target *string, validator func(string) error) {
		result := config.LoadEnvWithFallback(envKey, *target, validator)
		*target = result.Value.(string)
		if result.FallbackApplied {
			fallbackApplied = true
			metrics.RecordValidationError(field)
			metrics.RecordFallback(field, "default")
			for _, warning := range result.Warnings {
				logger.Warn("configuration fallback applied",
					slog.String("field", field),
					slog.String("warning", warning))
			}
		}
	}

	applyInt := func(field, envKey string, target *int, validator func(int) error) {
		result := config.LoadEnvInt(envKey, *target, validator)
		*target = result.Value.(int)
		if result.FallbackApplied {
			fallbackApplied = true
			metrics.RecordValidationError(field)
			metrics.RecordFallback(field, "default")
			for _, warning := range result.Warnings {
				logger.Warn("configuration fallback applied",
					slog.String("field", field),
					slog.String("warning", warning))
			}
		}
	}

	applyString("rebuild_schedule", "REBUILD_SCHEDULE", &cfg.RebuildSchedule, config.ValidateCronSchedule)
	applyString("token_refresh_schedule", "TOKEN_REFRESH_SCHEDULE", &cfg.TokenRefreshSchedule, config.ValidateCronSchedule)
	applyString("timezone", "WORKER_TIMEZONE", &cfg.Timezone, config.ValidateTimezone)

	applyInt("fanout_concurrency", "CACHE_FANOUT_CONCURRENCY", &cfg.FanOutConcurrency, func(v int) error {
		return config.ValidateIntRange(v, 1, 64)
	})

	result := config.LoadEnvDuration("REBUILD_TIMEOUT", cfg.RebuildTimeout, func(d time.Duration) error {
		return config.ValidateDuration(d, 1*time.Minute, 4*time.Hour)
	})
	cfg.RebuildTimeout = result.Value.(time.Duration)
	if result.FallbackApplied {
		fallbackApplied = true
		metrics.RecordValidationError("rebuild_timeout")
		metrics.RecordFallback("rebuild_timeout", "default")
		for _, warning := range result.Warnings {
			logger.Warn("configuration fallback applied",
				slog.String("field", "rebuild_timeout"),
				slog.String("warning", warning))
		}
	}

	applyInt("notify_max_concurrent", "NOTIFY_MAX_CONCURRENT", &cfg.NotifyMaxConcurrent, func(v int) error {
		return config.ValidateIntRange(v, 1, 50)
	})
	applyInt("health_port", "WORKER_HEALTH_PORT", &cfg.HealthPort, func(v int) error {
		return config.ValidateIntRange(v, 1024, 65535)
	})

	cfg.WatchConfigPath = config.LoadEnvString("WATCH_CONFIG", cfg.WatchConfigPath)

	metrics.SetFallbackActive("", fallbackApplied)
	metrics.RecordLoadTimestamp()

	return &cfg, nil
}
