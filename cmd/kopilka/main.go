package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kopilka/internal/backend"
	"kopilka/internal/bot"
	"kopilka/internal/cli"
	"kopilka/internal/log"
	"kopilka/internal/services"
	"kopilka/internal/stats"
)

func main() {
	cfg, logger := cli.Bootstrap(log.ComponentApp)
	vocab := cli.LoadVocabulary(cfg, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	be, err := backend.Build(ctx, cfg)
	if err != nil {
		logger.Error("Failed to build ledger backend", log.FieldError, err, log.FieldBackend, cfg.DataBackend)
		os.Exit(1)
	}
	defer func() {
		if err := be.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", log.FieldError, err)
		}
	}()
	logger.Info("Ledger backend initialized", log.FieldBackend, cfg.DataBackend,
		"mirroring", be.Publisher != nil)

	aggregator := stats.NewAggregator(be.Store, vocab, cfg.Currency, cfg.LatestLimit)
	engine := services.NewRecordService(be.Store, vocab, cfg.Suffixes(), aggregator, be.Publisher)

	tg := bot.NewClient(cfg.BotToken)
	dispatcher := bot.NewDispatcher(engine, cfg.AuthorID, cfg.Currency, logger.WithComponent(log.ComponentBot).Logger)
	srv := bot.NewServer(":"+cfg.Port, cfg.BotToken, dispatcher, tg)

	if cfg.WebhookURL != "" {
		if err := tg.SetWebhook(ctx, cfg.WebhookURL+"/"+cfg.BotToken); err != nil {
			logger.Error("Failed to register webhook", log.FieldError, err)
			os.Exit(1)
		}
		logger.Info("Webhook registered", "url", cfg.WebhookURL)
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		cancel()
	}()

	logger.Info("Starting kopilka bot", "port", cfg.Port, log.FieldBackend, cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
