// Package cli holds the startup steps shared by cmd/kopilka and
// cmd/kopilka-worker.
package cli

import (
	"os"

	"github.com/joho/godotenv"

	"kopilka/internal/config"
	"kopilka/internal/core"
	"kopilka/internal/log"
)

// Bootstrap loads the environment, configures logging, and returns the
// validated configuration. Exits the process on a configuration error,
// there is nothing to recover to at this point.
func Bootstrap(component string) (*config.Config, *log.Logger) {
	// .env is for local development, absence is normal in production.
	_ = godotenv.Load()

	logger := log.New(log.Config{Component: component})
	log.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	return cfg, logger
}

// LoadVocabulary returns the category vocabulary, either the built-in
// Russian set or the configured JSON file. Exits on an unreadable or
// inconsistent file, a bot with a broken vocabulary misfiles every
// record it accepts.
func LoadVocabulary(cfg *config.Config, logger *log.Logger) *core.Vocabulary {
	if cfg.CategoriesFile == "" {
		return core.DefaultVocabulary()
	}
	vocab, err := core.LoadVocabulary(cfg.CategoriesFile)
	if err != nil {
		logger.Error("Failed to load categories file", log.FieldError, err, "path", cfg.CategoriesFile)
		os.Exit(1)
	}
	return vocab
}
