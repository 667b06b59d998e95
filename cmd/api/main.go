package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	hhttp "github.com/a-vollm/spotifyFollowerUpdates/internal/handler/http"
	hauth "github.com/a-vollm/spotifyFollowerUpdates/internal/handler/http/auth"
	hreleases "github.com/a-vollm/spotifyFollowerUpdates/internal/handler/http/releases"
	"github.com/a-vollm/spotifyFollowerUpdates/internal/handler/http/requestid"
	hsubscription "github.com/a-vollm/spotifyFollowerUpdates/internal/handler/http/subscription"
	pgRepo "github.com/a-vollm/spotifyFollowerUpdates/internal/infra/adapter/persistence/postgres"
	"github.com/a-vollm/spotifyFollowerUpdates/internal/infra/db"
	"github.com/a-vollm/spotifyFollowerUpdates/internal/infra/spotify"
	"github.com/a-vollm/spotifyFollowerUpdates/internal/observability/logging"
	"github.com/a-vollm/spotifyFollowerUpdates/internal/observability/slo"
	"github.com/a-vollm/spotifyFollowerUpdates/internal/observability/tracing"
	"github.com/a-vollm/spotifyFollowerUpdates/internal/repository"
	"github.com/a-vollm/spotifyFollowerUpdates/internal/usecase/cache"
	"github.com/a-vollm/spotifyFollowerUpdates/internal/usecase/token"
	"github.com/a-vollm/spotifyFollowerUpdates/pkg/config"
)

func main() {
	logger := initLogger()
	validateJWTSecret(logger)
	spotifyCfg := loadSpotifyCredentials(logger)
	database := initDatabase(logger)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	version := getVersion()
	handler := setupServer(logger, database, spotifyCfg, version)

	runServer(logger, handler, version)
}

// initLogger initializes the process-wide structured logger.
func initLogger() *slog.Logger {
	logger := logging.NewLogger()
	slog.SetDefault(logger)
	return logger
}

// validateJWTSecret validates the JWT_SECRET environment variable for security requirements.
func validateJWTSecret(logger *slog.Logger) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		logger.Error("JWT_SECRET must be set")
		os.Exit(1)
	}
	if len(secret) < 32 {
		logger.Error("JWT_SECRET must be at least 32 characters (256 bits)")
		os.Exit(1)
	}
	weakSecrets := []string{"secret", "password", "test", "admin", "default"}
	for _, weak := range weakSecrets {
		if secret == weak || secret == weak+"123" {
			logger.Error("JWT_SECRET must not be a common weak value", slog.String("weak_value", weak))
			os.Exit(1)
		}
	}
}

// loadSpotifyCredentials reads the OAuth app credentials from the environment.
// The server cannot do anything useful without them, so missing values are fatal.
func loadSpotifyCredentials(logger *slog.Logger) spotify.AuthConfig {
	cfg := spotify.AuthConfig{
		ClientID:     os.Getenv("SPOTIFY_CLIENT_ID"),
		ClientSecret: os.Getenv("SPOTIFY_CLIENT_SECRET"),
		RedirectURL:  config.GetEnvString("SPOTIFY_REDIRECT_URL", "http://localhost:4000/auth/callback"),
	}
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		logger.Error("SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET must be set")
		os.Exit(1)
	}
	return cfg
}

// initDatabase opens the database connection and runs migrations.
func initDatabase(logger *slog.Logger) *sql.DB {
	database := db.Open()
	if err := db.MigrateUp(database); err != nil {
		logger.Error("failed to migrate database", slog.Any("error", err))
		os.Exit(1)
	}
	return database
}

// getVersion returns the application version from environment or default.
func getVersion() string {
	version := os.Getenv("VERSION")
	if version == "" {
		version = "dev"
	}
	return version
}

// setupServer wires the services and returns the HTTP handler with all
// routes and middleware applied.
func setupServer(logger *slog.Logger, database *sql.DB, spotifyCfg spotify.AuthConfig, version string) http.Handler {
	tokenRepo := pgRepo.NewTokenRepo(database)
	subRepo := pgRepo.NewSubscriptionRepo(database)

	authenticator := spotify.NewAuthenticator(spotifyCfg)
	spotifyClient := spotify.NewClient(spotify.DefaultConfig())
	tokenSvc := token.NewService(tokenRepo, authenticator)

	cacheSvc := cache.NewService(spotifyClient, tokenSvc, cache.Config{
		Concurrency: config.GetEnvInt("CACHE_FANOUT_CONCURRENCY", 8),
	})

	sessions := hauth.NewSessions(
		[]byte(os.Getenv("JWT_SECRET")),
		config.GetEnvDuration("SESSION_TTL", 24*time.Hour),
	)

	rootMux := setupRoutes(database, subRepo, tokenRepo, authenticator, spotifyClient, cacheSvc, sessions, version)

	return applyMiddleware(logger, rootMux)
}

// setupRoutes builds the route tree. OAuth endpoints sit behind an IP rate
// limiter because they are unauthenticated and trigger upstream calls.
func setupRoutes(
	database *sql.DB,
	subRepo repository.SubscriptionRepository,
	tokenRepo repository.TokenRepository,
	authenticator *spotify.Authenticator,
	spotifyClient *spotify.Client,
	cacheSvc *cache.Service,
	sessions *hauth.Sessions,
	version string,
) *http.ServeMux {
	authRateLimiter := hhttp.NewRateLimiter(
		config.GetEnvInt("AUTH_RATE_LIMIT", 5),
		time.Minute,
	)

	publicMux := http.NewServeMux()
	publicMux.Handle("GET /auth/login", authRateLimiter.Limit(hauth.LoginHandler{Auth: authenticator}))
	publicMux.Handle("GET /auth/callback", authRateLimiter.Limit(hauth.CallbackHandler{
		Auth:     authenticator,
		Profile:  spotifyClient,
		Tokens:   tokenRepo,
		Sessions: sessions,
	}))

	publicMux.Handle("/health", &hhttp.HealthHandler{DB: database, Version: version})
	publicMux.Handle("/ready", &hhttp.ReadyHandler{DB: database})
	publicMux.Handle("/live", &hhttp.LiveHandler{})
	publicMux.Handle("/metrics", hhttp.MetricsHandler())

	privateMux := http.NewServeMux()
	hreleases.Register(privateMux, cacheSvc, sessions, config.GetEnvDuration("REBUILD_TIMEOUT", 10*time.Minute))
	hsubscription.Register(privateMux, subRepo, sessions)

	rootMux := http.NewServeMux()
	rootMux.Handle("/auth/", publicMux)
	rootMux.Handle("/health", publicMux)
	rootMux.Handle("/ready", publicMux)
	rootMux.Handle("/live", publicMux)
	rootMux.Handle("/metrics", publicMux)
	rootMux.Handle("/", privateMux)

	return rootMux
}

// applyMiddleware wraps the handler with the middleware chain.
// Order: Tracing → Request ID → Recovery → Logging → Metrics → Timeout → Body Limit.
func applyMiddleware(logger *slog.Logger, handler http.Handler) http.Handler {
	requestTimeout := config.GetEnvDuration("REQUEST_TIMEOUT", 30*time.Second)

	chain := handler
	chain = hhttp.LimitRequestBody(1 << 20)(chain) // 1MB limit
	chain = hhttp.Timeout(requestTimeout)(chain)
	chain = hhttp.Metrics(chain)
	chain = hhttp.Logging(logger)(chain)
	chain = hhttp.Recover(logger)(chain)
	chain = requestid.Middleware(chain)
	chain = tracing.Middleware(chain)

	return chain
}

// runServer starts the HTTP server and blocks until a shutdown signal arrives.
func runServer(logger *slog.Logger, handler http.Handler, version string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tracerShutdown := tracing.InitTracer()
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := tracerShutdown(shutdownCtx); err != nil {
			logger.Error("tracer shutdown failed", slog.Any("error", err))
		}
	}()

	go slo.StartSampler(ctx, time.Minute)

	addr := ":" + config.GetEnvString("PORT", "4000")
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second, // Prevent Slowloris attacks
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		logger.Info("server starting",
			slog.String("addr", addr),
			slog.String("version", version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("server stopped")
}
