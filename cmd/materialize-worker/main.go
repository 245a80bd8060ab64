package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"financeiro/internal/amqp"
	"financeiro/internal/config"
	"financeiro/internal/services"
	"financeiro/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	// Setup structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("Starting materialize-worker")

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

	// Materialized entries go through the ledger service so they are
	// published to the export queue like any manually created entry.
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing in SQLite-only mode", "error", err)
			amqpClient = nil
		} else {
			defer amqpClient.Close()
			logger.Info("AMQP client initialized - materialized entries will sync via export-worker")
		}
	} else {
		logger.Info("AMQP disabled - materialized entries will not be exported")
	}

	var ledger *services.Ledger
	if amqpClient != nil {
		ledger = services.NewLedger(sqliteRepo, amqpClient)
	} else {
		ledger = services.NewLedger(sqliteRepo, nil)
	}

	materializer := services.NewMaterializer(sqliteRepo, ledger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	interval := cfg.MaterializeInterval
	logger.Info("Materializer configured",
		"interval", interval,
		"sqlite_db", cfg.SQLiteDBPath)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Run initial sweep on startup
	logger.Info("Running initial materialization sweep...")
	if count, err := materializer.ProcessDue(ctx, time.Now()); err != nil {
		logger.Error("Initial sweep failed", "error", err)
	} else {
		logger.Info("Initial sweep complete", "entries_created", count)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				logger.Info("Sweeping due recurring obligations...")
				count, err := materializer.ProcessDue(ctx, now)
				if err != nil {
					logger.Error("Periodic sweep failed", "error", err)
				} else {
					logger.Info("Periodic sweep complete",
						"entries_created", count,
						"next_check", now.Add(interval).Format("15:04:05"))
				}
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

	logger.Info("Shutting down materialize-worker...")
	cancel()

	logger.Info("Materialize-worker shutdown complete")
}
