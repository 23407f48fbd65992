package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rbasoalto/terrabot/internal/config"
	"github.com/rbasoalto/terrabot/internal/notify"
	"github.com/rbasoalto/terrabot/internal/poller"
	"github.com/rbasoalto/terrabot/internal/server"
	"github.com/rbasoalto/terrabot/internal/storage"
	"github.com/rbasoalto/terrabot/internal/terra"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Set up logging
	setupLogging(cfg.LogLevel)

	slog.Info("Starting TerraBot")

	// Create context that cancels on interrupt
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize storage
	repo, err := storage.NewRepository(cfg.DatabasePath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer repo.Close()

	// Wire up the poll pipeline
	strategy, err := poller.NewStrategy(cfg.DetectionStrategy)
	if err != nil {
		slog.Error("Failed to configure change detection", "error", err)
		os.Exit(1)
	}

	client := terra.NewClient(cfg.TerraBaseURL)
	sender := notify.NewWebhookSender()
	p := poller.New(repo, client, sender, strategy, poller.Options{
		Workers:         cfg.PollWorkers,
		UpdateUnchanged: cfg.UpdateUnchanged,
		Interval:        time.Duration(cfg.PollingIntervalSeconds) * time.Second,
	})

	// Background poll loop is optional; with interval 0 polling is
	// HTTP-triggered only (cron hitting /api/v1/run)
	if cfg.PollingIntervalSeconds > 0 {
		go p.Start(ctx)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: server.New(repo, p, cfg.AdminToken).Router(),
	}

	go func() {
		slog.Info("HTTP server listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server failed", "error", err)
			cancel()
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigChan:
	case <-ctx.Done():
	}

	slog.Info("Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Error during shutdown", "error", err)
	}

	if cfg.PollingIntervalSeconds > 0 {
		p.Stop()
	}

	slog.Info("TerraBot stopped")
}

func setupLogging(level string) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}
