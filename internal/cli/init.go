// Package cli provides common initialization shared by cmd/housesplit,
// cmd/housesplit-worker and cmd/splitctl.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"housesplit/internal/backend"
	"housesplit/internal/config"
	applog "housesplit/internal/log"
	"housesplit/internal/storage"
)

// Bootstrap loads .env and the configuration, installs the default logger
// for component and validates the configuration. It exits on invalid config.
func Bootstrap(component string) (*config.Config, *applog.Logger) {
	config.LoadEnvFile()
	cfg := config.Load()
	logger := SetupLogger(component, cfg)

	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}
	return cfg, logger
}

// SetupLogger installs a logger configured from LOG_LEVEL and LOG_FORMAT.
func SetupLogger(component string, cfg *config.Config) *applog.Logger {
	return applog.Setup(component, applog.Format(cfg.LogFormat), applog.ParseLevel(cfg.LogLevel))
}

// InitBackend creates the configured block store. Exits the process on failure.
func InitBackend(ctx context.Context, logger *applog.Logger, cfg *config.Config) *backend.BackendResult {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err)
		os.Exit(1)
	}

	res, err := backend.NewFactory(logger.Logger).CreateBackend(ctx, bcfg)
	if err != nil {
		logger.Error("Failed to initialize backend", applog.FieldError, err, "backend", bcfg.Type)
		os.Exit(1)
	}
	logger.Info("Backend initialized", "backend", res.Type)
	return res
}

// InitSQLite opens the snapshot repository. Exits the process on failure.
func InitSQLite(logger *applog.Logger, dbPath string) *storage.SQLiteRepository {
	repo, err := storage.NewSQLiteRepository(dbPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", applog.FieldError, err, "path", dbPath)
		os.Exit(1)
	}
	return repo
}

// GracefulShutdown sets up signal handling for graceful shutdown.
// The returned context is cancelled once a signal arrives and cleanup has
// run; done is closed after that.
func GracefulShutdown(logger *applog.Logger, timeout time.Duration, cleanup func(ctx context.Context)) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		if cleanup != nil {
			cleanup(shutdownCtx)
		}
		cancel()

		if shutdownCtx.Err() != nil {
			logger.Warn("Shutdown timeout reached")
		} else {
			logger.Info("Shutdown complete")
		}
		close(done)
	}()

	return ctx, done
}

// WaitForShutdown blocks until the context is cancelled and cleanup is done.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}
