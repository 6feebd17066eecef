package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"flussi/internal/amqp"
	"flussi/internal/config"
	"flussi/internal/services"
	"flussi/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	// Setup structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("Starting due-worker")

	// Load configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the due-worker")
		os.Exit(1)
	}

	// Initialize SQLite repository
	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	// Initialize AMQP client for publishing due reminders
	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPDueQueue, cfg.AMQPExecutedQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger.Info("Due flow processor configured",
		"interval", cfg.DueCheckInterval,
		"sqlite_db", cfg.SQLiteDBPath,
		"account", cfg.AccountName)

	// The API server owns the snapshot, so every check reloads it fresh.
	check := func(now time.Time) {
		ledger, err := repo.Load(ctx, cfg.AccountName)
		if err != nil {
			if errors.Is(err, storage.ErrLedgerNotFound) {
				logger.Info("No ledger snapshot yet, nothing due", "account", cfg.AccountName)
				return
			}
			logger.Error("Failed to load ledger snapshot", "error", err, "account", cfg.AccountName)
			return
		}

		ledgerService := services.NewLedgerService(ledger, repo, nil)
		processor := services.NewDueProcessor(ledgerService, amqpClient)

		count, err := processor.ProcessDueFlows(ctx, now)
		if err != nil {
			logger.Error("Due flow processing failed", "error", err)
			return
		}
		logger.Info("Due flow check complete",
			"reminders_published", count,
			"next_check", now.Add(cfg.DueCheckInterval).Format("15:04:05"))
	}

	ticker := time.NewTicker(cfg.DueCheckInterval)
	defer ticker.Stop()

	// Run initial check on startup
	logger.Info("Running initial due flow check...")
	check(time.Now())

	// Start periodic processing
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				check(now)
			}
		}
	}()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("Context cancelled")
	}

	logger.Info("Shutting down due-worker...")
	cancel()
	logger.Info("Due-worker shutdown complete")
}
