// cmd/analysis-server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"content-brainstorm/internal/analysis"
	"content-brainstorm/internal/common/config"
	"content-brainstorm/internal/common/database"
	"content-brainstorm/internal/common/logger"
	"content-brainstorm/internal/common/observability"
	"content-brainstorm/internal/openai"
	"content-brainstorm/internal/server"
	"content-brainstorm/internal/storage"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting analysis server...",
		zap.String("app", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("backend", cfg.Storage.Backend),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()

	store, cleanup, err := buildStore(ctx, cfg, zapLog, log)
	if err != nil {
		zapLog.Fatal("session store init failed", zap.Error(err))
	}
	if cleanup != nil {
		defer cleanup()
	}

	llmClient := openai.NewClient(cfg.OpenAI, cfg.Storage.Analysis.TruncationThreshold, nil, log)
	service := analysis.NewService(cfg.OpenAI, cfg.Storage.Analysis, llmClient, store, log)
	httpServer := server.New(service, obs, cfg.App.Name, cfg.App.Version, log)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      httpServer.Routes(),
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error during server shutdown", zap.Error(err))
	}

	zapLog.Info("Analysis server stopped gracefully")
}

// buildStore wires the configured session store backend. Redis and Postgres
// connections are established with bootstrap retries since the backing
// services may come up after the server in container environments.
func buildStore(ctx context.Context, cfg *config.Config, zapLog *zap.Logger, log logger.Logger) (storage.SessionStore, func(), error) {
	switch cfg.Storage.Backend {
	case "redis":
		var rc *database.RedisClient
		err := retryWithBackoff(func() error {
			var err error
			rc, err = database.NewRedis(cfg.Storage.Redis)
			if err != nil {
				return err
			}
			return rc.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			return nil, nil, err
		}
		zapLog.Info("Redis connected successfully")

		ttl := time.Duration(cfg.Storage.SessionTTL) * time.Second
		store := storage.NewRedisStore(rc.GetClient(), cfg.Storage.MaxSessions, ttl, log)
		return store, func() { rc.Close() }, nil

	case "postgres":
		var pg *database.PostgresClient
		err := retryWithBackoff(func() error {
			var err error
			pg, err = database.NewPostgres(cfg.Storage.Postgres)
			if err != nil {
				return err
			}
			return pg.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
		if err != nil {
			return nil, nil, err
		}
		zapLog.Info("PostgreSQL connected successfully")

		store, err := storage.NewPostgresStore(pg.GetDB(), log)
		if err != nil {
			pg.Close()
			return nil, nil, err
		}
		return store, func() { pg.Close() }, nil

	default:
		return storage.NewMemoryStore(cfg.Storage.MaxSessions, log), nil, nil
	}
}
