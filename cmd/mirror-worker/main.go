package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"flussi/internal/amqp"
	"flussi/internal/config"
	"flussi/internal/core"
	ports "flussi/internal/sheets"
	gsheet "flussi/internal/sheets/google"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	// Setup structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("Starting mirror-worker")

	// Load configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the mirror-worker")
		os.Exit(1)
	}
	if cfg.GoogleSpreadsheetID == "" {
		logger.Error("GOOGLE_SPREADSHEET_ID is required for the mirror-worker")
		os.Exit(1)
	}

	// Initialize Google Sheets client
	sheetsClient, err := gsheet.NewFromEnv(context.Background())
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", "error", err)
		os.Exit(1)
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)

	// Initialize AMQP client for consuming executed-flow events
	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPDueQueue, cfg.AMQPExecutedQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	handle := func(msg *amqp.FlowExecutedMessage) error {
		hctx, hcancel := context.WithTimeout(ctx, 15*time.Second)
		defer hcancel()

		row := ports.Realization{
			FlowID:       msg.FlowID,
			CommitmentID: msg.CommitmentID,
			Date:         msg.ExecutedAt.Format("2006-01-02"),
			Category:     msg.Category,
			Amount:       core.Money{Cents: msg.AmountCents}.Format(),
			Note:         msg.Note,
		}
		ref, err := sheetsClient.Append(hctx, row)
		if err != nil {
			return err
		}
		slog.InfoContext(hctx, "Executed flow mirrored", "flow_id", msg.FlowID, "row_ref", ref)
		return nil
	}

	go func() {
		if err := amqpClient.ConsumeFlowExecuted(ctx, handle); err != nil {
			if err != context.Canceled {
				logger.Error("Message consumption failed", "error", err)
			}
			cancel()
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

	logger.Info("Shutting down mirror-worker...")
	cancel()
	logger.Info("Mirror-worker shutdown complete")
}
