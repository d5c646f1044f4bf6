// Package ledger defines the ports the record engine consumes. Any
// tabular backend with stable row identifiers and insertion-ordered range
// scans can sit behind them.
package ledger

import (
	"context"
	"time"

	"kopilka/internal/core"
)

// Ports for outbound ledger adapters.
type (
	Appender interface {
		// Append stores the record and returns its row identifier. Row
		// ids are stable and unique for the lifetime of the record.
		Append(ctx context.Context, r core.Record) (rowID string, err error)
	}

	Deleter interface {
		// Delete removes the record with the given row id. A missing row
		// is not an error: found is false and err is nil.
		Delete(ctx context.Context, rowID string) (found bool, err error)
	}

	Scanner interface {
		// Scan returns records whose date falls in [from, to], in
		// insertion order.
		Scan(ctx context.Context, from, to time.Time) ([]core.Record, error)

		// ScanLatest returns the n most recently inserted records,
		// newest first.
		ScanLatest(ctx context.Context, n int) ([]core.Record, error)
	}

	// Ledger is the full store surface the record service depends on.
	Ledger interface {
		Appender
		Deleter
		Scanner
	}
)
