// Package config reads the application configuration from environment
// variables. Everything has a workable default except the bot
// credentials.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"kopilka/internal/core"
)

type Config struct {
	// Telegram
	BotToken string
	AuthorID int64

	// HTTP webhook server
	Port string
	// Public URL registered with Telegram on startup, empty to skip.
	WebhookURL string

	// Display
	Currency    string
	LatestLimit int

	// Vocabulary and amount grammar
	CategoriesFile string
	AmountSuffixes core.SuffixTable

	// Ledger backend selection
	DataBackend string

	// SQLite
	SQLiteDBPath string

	// Google Sheets: primary ledger (sheets backend) and mirror archive
	GoogleSpreadsheetID  string
	GoogleSheetName      string
	ArchiveSpreadsheetID string
	ArchiveSheetName     string

	// AMQP mirror queue
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Mirror worker
	SyncBatchSize int
	SyncInterval  time.Duration
}

func Load() *Config {
	return &Config{
		BotToken: getEnv("BOT_TOKEN", ""),
		AuthorID: getEnvInt64("AUTHOR_ID", 0),

		Port:       getEnv("PORT", "8081"),
		WebhookURL: getEnv("WEBHOOK_URL", ""),

		Currency:    getEnv("CURRENCY", "руб."),
		LatestLimit: getEnvInt("LATEST_LIMIT", 10),

		CategoriesFile: getEnv("CATEGORIES_FILE", ""),
		AmountSuffixes: parseSuffixes(getEnv("AMOUNT_SUFFIXES", "")),

		DataBackend: getEnv("DATA_BACKEND", "sqlite"),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/kopilka.db"),

		GoogleSpreadsheetID:  getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:      getEnv("GOOGLE_SHEET_NAME", "Ledger"),
		ArchiveSpreadsheetID: getEnv("ARCHIVE_SPREADSHEET_ID", ""),
		ArchiveSheetName:     getEnv("ARCHIVE_SHEET_NAME", "Archive"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "kopilka"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "mirror_records"),

		SyncBatchSize: getEnvInt("SYNC_BATCH_SIZE", 10),
		SyncInterval:  getEnvDuration("SYNC_INTERVAL", 30*time.Second),
	}
}

// Validate checks the configuration and reports every problem at once.
func (c *Config) Validate() error {
	var errs []string

	if c.BotToken == "" {
		errs = append(errs, "BOT_TOKEN is required")
	}
	if c.AuthorID == 0 {
		errs = append(errs, "AUTHOR_ID is required")
	}

	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.WebhookURL != "" {
		if parsed, err := url.Parse(c.WebhookURL); err != nil || parsed.Scheme != "https" {
			errs = append(errs, fmt.Sprintf("invalid webhook URL '%s': Telegram requires https", c.WebhookURL))
		}
	}

	if c.LatestLimit < 1 || c.LatestLimit > 100 {
		errs = append(errs, fmt.Sprintf("invalid latest limit %d: must be between 1 and 100", c.LatestLimit))
	}

	switch c.DataBackend {
	case "sqlite":
		if c.SQLiteDBPath == "" {
			errs = append(errs, "SQLite database path cannot be empty when using sqlite backend")
		} else if dir := filepath.Dir(c.SQLiteDBPath); dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errs = append(errs, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	case "sheets":
		if c.GoogleSpreadsheetID == "" {
			errs = append(errs, "GOOGLE_SPREADSHEET_ID is required when using sheets backend")
		}
	case "memory":
		// Nothing to check.
	default:
		errs = append(errs, fmt.Sprintf("invalid data backend '%s': must be one of [sqlite sheets memory]", c.DataBackend))
	}

	if c.AMQPURL != "" {
		if parsed, err := url.Parse(c.AMQPURL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsed.Scheme != "amqp" && parsed.Scheme != "amqps" {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsed.Scheme))
		}
		if c.AMQPExchange == "" {
			errs = append(errs, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errs = append(errs, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
		if c.ArchiveSpreadsheetID == "" {
			errs = append(errs, "ARCHIVE_SPREADSHEET_ID is required when the mirror queue is configured")
		}
	}

	if c.SyncBatchSize < 1 || c.SyncBatchSize > 1000 {
		errs = append(errs, fmt.Sprintf("invalid sync batch size %d: must be between 1 and 1000", c.SyncBatchSize))
	}
	if c.SyncInterval < time.Second || c.SyncInterval > 24*time.Hour {
		errs = append(errs, fmt.Sprintf("invalid sync interval %v: must be between 1 second and 24 hours", c.SyncInterval))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

// Suffixes returns the configured magnitude-suffix table, falling back
// to the built-in one.
func (c *Config) Suffixes() core.SuffixTable {
	if len(c.AmountSuffixes) > 0 {
		return c.AmountSuffixes
	}
	return core.DefaultSuffixes()
}

// parseSuffixes reads a "k=1000,к=1000" style table. Malformed entries
// are dropped; an empty result selects the default table.
func parseSuffixes(s string) core.SuffixTable {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	table := core.SuffixTable{}
	for _, pair := range strings.Split(s, ",") {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if utf8.RuneCountInString(key) != 1 {
			continue
		}
		mult, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil || mult <= 0 {
			continue
		}
		r, _ := utf8.DecodeRuneInString(key)
		table[r] = mult
	}
	if len(table) == 0 {
		return nil
	}
	return table
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
