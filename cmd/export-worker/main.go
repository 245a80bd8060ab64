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

	"financeiro/internal/amqp"
	"financeiro/internal/config"
	gsheet "financeiro/internal/export/google"
	"financeiro/internal/storage"
	"financeiro/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	// Setup structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("Starting export-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	sqliteRepo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer sqliteRepo.Close()

	// Google Sheets client is optional: without it the worker idles.
	var sheetsClient *gsheet.Client
	if cfg.GoogleSpreadsheetID != "" {
		sheetsClient, err = gsheet.New(context.Background(), cfg.GoogleSpreadsheetID, cfg.GoogleSheetName)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		logger.Info("Google Sheets disabled - no GOOGLE_SPREADSHEET_ID provided")
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var exportWorker *worker.ExportWorker
	if sheetsClient != nil {
		exportWorker = worker.NewExportWorker(sqliteRepo, sheetsClient, cfg.ExportBatchSize)

		// On startup, export any entries missed while the worker was down
		logger.Info("Performing startup export check...")
		if err := exportWorker.StartupCheck(ctx); err != nil {
			logger.Error("Failed startup export check", "error", err)
			// Don't exit - continue with normal operation
		}
	} else {
		logger.Info("Skipping export operations - no Sheets client available")
	}

	if exportWorker != nil {
		go func() {
			err := amqpClient.ConsumeEntrySync(ctx, func(msg *amqp.EntrySyncMessage) error {
				return exportWorker.HandleSyncMessage(ctx, msg)
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Message consumption failed", "error", err)
			}
			cancel()
		}()

		// Periodic poll for entries whose sync message was lost
		ticker := time.NewTicker(cfg.ExportPollInterval)
		defer ticker.Stop()

		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					if err := exportWorker.ProcessPendingEntries(ctx); err != nil {
						logger.Error("Periodic export failed", "error", err)
					}
				}
			}
		}()
	} else {
		logger.Info("Skipping AMQP message consumption - no export worker available")
	}

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("Context cancelled")
	}

	logger.Info("Shutting down export-worker...")
	cancel()

	logger.Info("Export-worker shutdown complete")
}
