package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vidly/auth"
	cachepackage "vidly/cache"
	"vidly/config"
	"vidly/database"
	"vidly/middleware"
	"vidly/store"

	"github.com/umakantv/go-utils/logger"
	"go.uber.org/zap"
)

const (
	shutdownTimeout = 10 * time.Second
	limiterIdle     = 3 * time.Minute
)

// InitLogger sets up the process-wide logger
func InitLogger() {
	logger.Init(logger.LoggerConfig{
		CallerKey:  "file",
		TimeKey:    "timestamp",
		CallerSkip: 1,
	})
}

// StartServer runs the API until SIGINT or SIGTERM
func StartServer(cfg config.Config) error {
	logger.Info("Starting vidly...")

	// Initialize database
	dbConn := database.InitializeDatabase(cfg)
	defer dbConn.Close()

	// Initialize cache
	cache := cachepackage.InitializeCache(cfg)
	defer cache.Close()

	tokens := auth.NewTokenIssuer(cfg.JWTPrivateKey, cfg.TokenTTL)
	deps := Deps{
		DB:        dbConn,
		Cache:     cache,
		Auth:      auth.NewService(store.NewUserStore(dbConn), tokens, cfg.BcryptCost),
		APIPrefix: cfg.APIPrefix,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.RateLimit.Enabled {
		deps.RateLimiter = middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
		go sweepLimiter(ctx, deps.RateLimiter)
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           NewRouter(deps),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("vidly listening", zap.String("addr", srv.Addr), zap.String("prefix", cfg.APIPrefix))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("Server failed to start", zap.Error(err))
			return err
		}
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func sweepLimiter(ctx context.Context, limiter *middleware.RateLimiter) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			limiter.Sweep(limiterIdle)
		}
	}
}
