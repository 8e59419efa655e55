package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"trading-journal-go/internal/api"
	"trading-journal-go/internal/app"
	"trading-journal-go/internal/config"
	"trading-journal-go/internal/logger"
	"trading-journal-go/internal/scheduler"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewLogger(cfg.Logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	a, err := app.New(cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize journal", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The server subscribes to the session before it is restored, so a
	// restored session also triggers the local trade migration.
	server := api.NewAPIServer(cfg.Server, a.Journal, a.Session, log)
	a.Session.Start(ctx)

	runner := scheduler.New(ctx, log)
	if a.Client != nil {
		if _, err := runner.Add(cfg.Auth.RefreshSchedule, scheduler.RefreshJob(a.Session, cfg.Backend.Timeout, log)); err != nil {
			log.Fatal("Invalid session refresh schedule", zap.String("schedule", cfg.Auth.RefreshSchedule), zap.Error(err))
		}
	}
	runner.Start()
	server.Start()

	<-ctx.Done()
	log.Info("Shutdown signal received, gracefully shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	runner.Stop()
	if err := server.Stop(shutdownCtx); err != nil {
		log.Error("API server shutdown failed", zap.Error(err))
	}
	log.Info("Journal server has been shut down.")
}
