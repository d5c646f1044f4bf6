package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"kopilka/internal/amqp"
	"kopilka/internal/cli"
	gsheet "kopilka/internal/ledger/google"
	"kopilka/internal/log"
	"kopilka/internal/storage"
	"kopilka/internal/worker"
)

func main() {
	cfg, logger := cli.Bootstrap(log.ComponentWorker)
	logger.Info("Starting kopilka-worker")

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the mirror worker")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", log.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	archive, err := gsheet.New(ctx, cfg.ArchiveSpreadsheetID, cfg.ArchiveSheetName)
	if err != nil {
		logger.Error("Failed to initialize archive spreadsheet client", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Archive client initialized", "spreadsheet_id", cfg.ArchiveSpreadsheetID)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	mirror := worker.NewMirrorWorker(repo, archive, cfg.SyncBatchSize)

	// Catch up on anything that was appended while the worker was down.
	if err := mirror.Reconcile(ctx); err != nil {
		logger.Error("Startup reconcile failed", log.FieldError, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return amqpClient.ConsumeMirror(gctx, func(msg *amqp.MirrorMessage) error {
			return mirror.HandleMessage(gctx, msg)
		})
	})
	g.Go(func() error {
		return mirror.Run(gctx, cfg.SyncInterval)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}
