package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"housesplit/internal/cache"
	"housesplit/internal/cli"
	apphttp "housesplit/internal/http"
	"housesplit/internal/ledger"
	applog "housesplit/internal/log"
	"housesplit/internal/metrics"
	"housesplit/internal/services"

	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg, logger := cli.Bootstrap(applog.ComponentApp)

	res := cli.InitBackend(context.Background(), logger, cfg)
	defer func() {
		if err := res.Close(); err != nil {
			logger.Error("Backend cleanup failed", applog.FieldError, err)
		}
	}()

	results := cache.NewLRUCache[*ledger.Result](cfg.CacheSize, cfg.CacheTTL)
	caches := cache.NewManager()
	caches.Register(results)
	caches.StartCleanup(cfg.CacheTTL)
	defer caches.Stop()

	svc := services.NewSplitService(res.Store, services.Options{
		Backend:   res.Type.String(),
		Publisher: res.SyncPublisher(),
		Metrics:   metrics.New(prometheus.DefaultRegisterer),
		Cache:     results,
	})

	srv := apphttp.NewServer(":"+cfg.Port, svc, apphttp.Options{
		Gatherer: prometheus.DefaultGatherer,
		Logger:   logger,
	})
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	ctx, done := cli.GracefulShutdown(logger, cfg.ShutdownTimeout, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
	})

	logger.Info("Starting housesplit server", "port", cfg.Port, "backend", res.Type)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
