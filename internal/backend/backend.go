// Package backend builds the ledger store the bot writes to, picked by
// configuration. The sqlite backend optionally comes with an AMQP
// publisher feeding the mirror worker.
package backend

import (
	"context"
	"fmt"

	"kopilka/internal/amqp"
	"kopilka/internal/config"
	"kopilka/internal/ledger"
	gsheet "kopilka/internal/ledger/google"
	"kopilka/internal/ledger/memory"
	"kopilka/internal/services"
	"kopilka/internal/storage"
)

// Type selects the ledger store implementation.
type Type string

const (
	SQLite Type = "sqlite"
	Sheets Type = "sheets"
	Memory Type = "memory"
)

func (t Type) String() string {
	return string(t)
}

func (t Type) Valid() bool {
	switch t {
	case SQLite, Sheets, Memory:
		return true
	default:
		return false
	}
}

// CleanupFunc releases backend resources.
type CleanupFunc func() error

// Result bundles the store with the optional mirror publisher and the
// cleanup the caller must run on shutdown.
type Result struct {
	Store     ledger.Ledger
	Publisher services.MirrorPublisher
	Cleanup   CleanupFunc
}

// Build constructs the configured ledger backend.
func Build(ctx context.Context, cfg *config.Config) (*Result, error) {
	t := Type(cfg.DataBackend)
	if !t.Valid() {
		return nil, fmt.Errorf("invalid ledger backend: %s", cfg.DataBackend)
	}

	switch t {
	case Sheets:
		cli, err := gsheet.New(ctx, cfg.GoogleSpreadsheetID, cfg.GoogleSheetName)
		if err != nil {
			return nil, fmt.Errorf("initialize sheets ledger: %w", err)
		}
		return &Result{Store: cli, Cleanup: func() error { return nil }}, nil

	case Memory:
		return &Result{Store: memory.New(), Cleanup: func() error { return nil }}, nil

	default:
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("initialize sqlite ledger: %w", err)
		}

		res := &Result{Store: repo, Cleanup: repo.Close}

		// Mirroring only makes sense with a durable local primary.
		if cfg.AMQPURL != "" {
			amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
			if err != nil {
				_ = repo.Close()
				return nil, fmt.Errorf("initialize mirror publisher: %w", err)
			}
			res.Publisher = amqpClient
			res.Cleanup = func() error {
				cerr := amqpClient.Close()
				if err := repo.Close(); err != nil {
					return err
				}
				return cerr
			}
		}
		return res, nil
	}
}
