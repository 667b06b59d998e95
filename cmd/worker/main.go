package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/robfig/cron/v3"

	appcfg "github.com/a-vollm/spotifyFollowerUpdates/internal/config"
	"github.com/a-vollm/spotifyFollowerUpdates/internal/handler/http/respond"
	pgRepo "github.com/a-vollm/spotifyFollowerUpdates/internal/infra/adapter/persistence/postgres"
	"github.com/a-vollm/spotifyFollowerUpdates/internal/infra/db"
	"github.com/a-vollm/spotifyFollowerUpdates/internal/infra/spotify"
	workerPkg "github.com/a-vollm/spotifyFollowerUpdates/internal/infra/worker"
	"github.com/a-vollm/spotifyFollowerUpdates/internal/observability/logging"
	"github.com/a-vollm/spotifyFollowerUpdates/internal/observability/metrics"
	"github.com/a-vollm/spotifyFollowerUpdates/internal/usecase/cache"
	"github.com/a-vollm/spotifyFollowerUpdates/internal/usecase/changes"
	"github.com/a-vollm/spotifyFollowerUpdates/internal/usecase/notify"
	"github.com/a-vollm/spotifyFollowerUpdates/internal/usecase/token"
)

// jobs holds everything one scheduler tick needs.
type jobs struct {
	logger   *slog.Logger
	cfg      *workerPkg.WorkerConfig
	metrics  *workerPkg.WorkerMetrics
	tokens   *token.Service
	tokenSrc func(ctx context.Context) ([]string, error)
	cache    *cache.Service
	spotify  *spotify.Client
	watch    *appcfg.WatchConfig
	detector *changes.Detector
}

func main() {
	logger := initLogger()
	database := initDatabase(logger)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	workerMetrics := workerPkg.NewWorkerMetrics()
	workerConfig, err := workerPkg.LoadConfigFromEnv(logger, workerMetrics)
	if err != nil {
		logger.Error("failed to load worker configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("worker configuration loaded",
		slog.String("rebuild_schedule", workerConfig.RebuildSchedule),
		slog.String("token_refresh_schedule", workerConfig.TokenRefreshSchedule),
		slog.String("timezone", workerConfig.Timezone),
		slog.Int("fanout_concurrency", workerConfig.FanOutConcurrency),
		slog.Duration("rebuild_timeout", workerConfig.RebuildTimeout),
		slog.Int("notify_max_concurrent", workerConfig.NotifyMaxConcurrent),
		slog.Int("health_port", workerConfig.HealthPort))

	watchConfig := loadWatchConfig(logger, workerConfig.WatchConfigPath)

	tokenRepo := pgRepo.NewTokenRepo(database)
	subRepo := pgRepo.NewSubscriptionRepo(database)
	snapRepo := pgRepo.NewSnapshotRepo(database)

	authenticator := spotify.NewAuthenticator(loadSpotifyCredentials(logger))
	spotifyClient := spotify.NewClient(spotify.DefaultConfig())

	tokenSvc := token.NewService(tokenRepo, authenticator)
	cacheSvc := cache.NewService(spotifyClient, tokenSvc, cache.Config{
		Concurrency: workerConfig.FanOutConcurrency,
	})

	notifySvc := notify.NewService(subRepo, nil, nil, workerConfig.NotifyMaxConcurrent)
	detector := changes.NewDetector(snapRepo, notifySvc, watchConfig.Watch.NotifyOnFirstRun)

	startMetricsServer(ctx, logger)

	healthAddr := fmt.Sprintf(":%d", workerConfig.HealthPort)
	healthServer := workerPkg.NewHealthServer(healthAddr, logger)
	go func() {
		if err := healthServer.Start(ctx); err != nil && err != http.ErrServerClosed {
			logger.Error("health server failed", slog.Any("error", err))
		}
	}()
	logger.Info("health check server started", slog.String("addr", healthAddr))

	j := &jobs{
		logger:  logger,
		cfg:     workerConfig,
		metrics: workerMetrics,
		tokens:  tokenSvc,
		tokenSrc: func(ctx context.Context) ([]string, error) {
			toks, err := tokenRepo.All(ctx)
			if err != nil {
				return nil, err
			}
			uids := make([]string, 0, len(toks))
			for _, t := range toks {
				uids = append(uids, t.UID)
			}
			return uids, nil
		},
		cache:    cacheSvc,
		spotify:  spotifyClient,
		watch:    watchConfig,
		detector: detector,
	}

	runScheduler(ctx, logger, j, healthServer, notifySvc)
}

// initLogger initializes the process-wide structured logger.
func initLogger() *slog.Logger {
	logger := logging.NewLogger()
	slog.SetDefault(logger)
	return logger
}

// initDatabase opens the database connection and waits for the API side to
// finish migrating.
func initDatabase(logger *slog.Logger) *sql.DB {
	database := db.Open()
	waitForMigrations(logger, database)
	return database
}

func waitForMigrations(logger *slog.Logger, db *sql.DB) {
	const probe = "SELECT 1 FROM tokens LIMIT 1"
	for i := 0; i < 10; i++ {
		if _, err := db.Exec(probe); err == nil {
			return
		}
		logger.Info("waiting for migrations, retrying in 3s", slog.Int("attempt", i+1))
		time.Sleep(3 * time.Second)
	}
	logger.Error("migrations did not complete in time")
	os.Exit(1)
}

// loadSpotifyCredentials reads the OAuth app credentials from the environment.
func loadSpotifyCredentials(logger *slog.Logger) spotify.AuthConfig {
	cfg := spotify.AuthConfig{
		ClientID:     os.Getenv("SPOTIFY_CLIENT_ID"),
		ClientSecret: os.Getenv("SPOTIFY_CLIENT_SECRET"),
		RedirectURL:  os.Getenv("SPOTIFY_REDIRECT_URL"),
	}
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		logger.Error("SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET must be set")
		os.Exit(1)
	}
	return cfg
}

// loadWatchConfig loads the watched-playlist file. A missing or invalid file
// disables playlist watching but does not stop the worker, release change
// detection still runs.
func loadWatchConfig(logger *slog.Logger, path string) *appcfg.WatchConfig {
	cfg, err := appcfg.LoadWatchConfig(path)
	if err != nil {
		logger.Warn("watch config unavailable, playlist watching disabled",
			slog.String("path", path),
			slog.Any("error", err))
		return &appcfg.WatchConfig{}
	}
	logger.Info("watch config loaded",
		slog.String("path", path),
		slog.Int("playlists", len(cfg.Watch.Playlists)),
		slog.Bool("notify_on_first_run", cfg.Watch.NotifyOnFirstRun))
	return cfg
}

// runScheduler starts the cron jobs and blocks until a shutdown signal.
func runScheduler(ctx context.Context, logger *slog.Logger, j *jobs, healthServer *workerPkg.HealthServer, notifySvc notify.Service) {
	loc, err := time.LoadLocation(j.cfg.Timezone)
	if err != nil {
		logger.Error("invalid timezone, using UTC", slog.String("timezone", j.cfg.Timezone), slog.Any("error", err))
		loc = time.UTC
	}
	c := cron.New(cron.WithLocation(loc))

	if _, err := c.AddFunc(j.cfg.RebuildSchedule, func() { j.runRebuild(ctx) }); err != nil {
		logger.Error("failed to add rebuild job", slog.Any("error", err))
		os.Exit(1)
	}
	if _, err := c.AddFunc(j.cfg.TokenRefreshSchedule, func() { j.runTokenRefresh(ctx) }); err != nil {
		logger.Error("failed to add token refresh job", slog.Any("error", err))
		os.Exit(1)
	}
	c.Start()

	healthServer.SetReady(true)
	logger.Info("worker started",
		slog.String("rebuild_schedule", j.cfg.RebuildSchedule),
		slog.String("token_refresh_schedule", j.cfg.TokenRefreshSchedule),
		slog.String("timezone", j.cfg.Timezone))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down worker...")

	cronCtx := c.Stop()
	<-cronCtx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := notifySvc.Shutdown(shutdownCtx); err != nil {
		logger.Error("notification service shutdown incomplete", slog.Any("error", err))
	}
	logger.Info("worker stopped")
}

// runRebuild executes one rebuild-and-diff pass over every stored user.
// Per-user failures are isolated so one broken token does not starve the
// remaining users.
func (j *jobs) runRebuild(parent context.Context) {
	start := time.Now()
	j.metrics.RecordJobRun("rebuild", "started")
	j.logger.Info("rebuild pass started")

	ctx, cancel := context.WithTimeout(parent, j.cfg.RebuildTimeout)
	defer cancel()

	uids, err := j.tokenSrc(ctx)
	if err != nil {
		j.logger.Error("rebuild pass failed", slog.String("error", respond.SanitizeError(err)))
		j.metrics.RecordJobRun("rebuild", "failure")
		j.metrics.RecordJobDuration("rebuild", time.Since(start).Seconds())
		return
	}
	metrics.UpdateTrackedUsers(len(uids))

	failures := 0
	for _, uid := range uids {
		if ctx.Err() != nil {
			j.logger.Warn("rebuild pass cancelled", slog.Any("error", ctx.Err()))
			break
		}
		if err := j.rebuildUser(ctx, uid); err != nil {
			failures++
			j.logger.Error("user rebuild failed",
				slog.String("uid", uid),
				slog.String("error", respond.SanitizeError(err)))
		}
	}

	j.metrics.RecordJobDuration("rebuild", time.Since(start).Seconds())
	j.metrics.RecordUsersProcessed(len(uids))
	if failures == len(uids) && len(uids) > 0 {
		j.metrics.RecordJobRun("rebuild", "failure")
	} else {
		j.metrics.RecordJobRun("rebuild", "success")
		j.metrics.RecordLastSuccess("rebuild")
	}

	j.logger.Info("rebuild pass completed",
		slog.Int("users", len(uids)),
		slog.Int("failures", failures),
		slog.Duration("duration", time.Since(start)))
}

// rebuildUser refreshes one user's snapshot and runs change detection for
// the release set and every watched playlist.
func (j *jobs) rebuildUser(ctx context.Context, uid string) error {
	if err := j.cache.Rebuild(ctx, uid); err != nil {
		return fmt.Errorf("rebuild cache: %w", err)
	}

	ids, err := j.cache.ReleaseIDs(uid)
	if err != nil {
		return fmt.Errorf("read release ids: %w", err)
	}
	if err := j.detector.Check(ctx, "releases", uid, ids, "Neue Releases", changes.Noun{
		Singular: "Release",
		Plural:   "Releases",
	}); err != nil {
		return fmt.Errorf("release change check: %w", err)
	}

	for _, pl := range j.watch.PlaylistsFor(uid) {
		accessToken, err := j.tokens.AccessToken(ctx, uid)
		if err != nil {
			return fmt.Errorf("access token for playlist %s: %w", pl.ID, err)
		}
		trackIDs, err := j.spotify.PlaylistTrackIDs(ctx, accessToken, pl.ID)
		if err != nil {
			return fmt.Errorf("fetch playlist %s: %w", pl.ID, err)
		}
		if err := j.detector.Check(ctx, "playlist:"+pl.ID, uid, trackIDs, pl.Title, changes.Noun{
			Singular: "Track",
			Plural:   "Tracks",
		}); err != nil {
			return fmt.Errorf("playlist change check %s: %w", pl.ID, err)
		}
	}

	return nil
}

// runTokenRefresh renews every stored token pair that expires before the
// next sweep would run.
func (j *jobs) runTokenRefresh(parent context.Context) {
	start := time.Now()
	j.metrics.RecordJobRun("token_refresh", "started")

	ctx, cancel := context.WithTimeout(parent, 2*time.Minute)
	defer cancel()

	refreshed, err := j.tokens.RefreshExpiring(ctx, 10*time.Minute)
	j.metrics.RecordJobDuration("token_refresh", time.Since(start).Seconds())
	if err != nil {
		j.logger.Error("token refresh sweep failed", slog.String("error", respond.SanitizeError(err)))
		j.metrics.RecordJobRun("token_refresh", "failure")
		return
	}

	j.metrics.RecordJobRun("token_refresh", "success")
	j.metrics.RecordLastSuccess("token_refresh")
	if refreshed > 0 {
		j.logger.Info("token refresh sweep completed",
			slog.Int("refreshed", refreshed),
			slog.Duration("duration", time.Since(start)))
	}
}
