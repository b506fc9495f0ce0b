// Command server runs the long-lived nitro API process: it wires the
// container, serves the HTTP adapter, and drives the reminder pipeline and
// event transport as background goroutines under one shutdown context.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nitro-scheduler/nitro/adapter/api"
	"github.com/nitro-scheduler/nitro/internal/app"
	"github.com/nitro-scheduler/nitro/pkg/config"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	logger.Info("starting nitro server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if cfg.IsDevelopment() {
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to build container", "error", err)
		os.Exit(1)
	}
	defer container.Conn.Close()

	if err := container.OutboxProcessor.Start(ctx); err != nil {
		logger.Error("failed to start outbox processor", "error", err)
		os.Exit(1)
	}
	defer container.OutboxProcessor.Stop()

	go func() {
		if err := container.EventBus.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("event bus stopped with error", "error", err)
		}
	}()

	if cfg.EnableRemindersJob {
		go runTickerStage(ctx, logger, "reminder expansion", cfg.ReminderExpansionInterval, container.ExpansionStage.Run)
		go runTickerStage(ctx, logger, "reminder dispatch", cfg.ReminderDispatchInterval, container.DispatcherStage.Run)
	}

	router := api.NewRouter(container)
	srv := &http.Server{
		Addr:              cfg.HTTPHost + ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down nitro server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http server shutdown error", "error", err)
	}

	logger.Info("nitro server stopped")
}

// runTickerStage drives a pipeline stage (ExpansionStage.Run or
// DispatcherStage.Run) on a fixed interval until ctx is cancelled.
func runTickerStage(ctx context.Context, logger *slog.Logger, name string, interval time.Duration, run func(context.Context, time.Time) error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if err := run(ctx, now); err != nil {
				logger.Error(name+" stage failed", "error", err)
			}
		}
	}
}
