// Package storage is the SQLite ledger backend. It is the default store
// for the bot and the read side of the Sheets mirror pipeline.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"kopilka/internal/core"
	"kopilka/internal/ledger"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

var _ ledger.Ledger = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Append implements ledger.Appender.
func (r *SQLiteRepository) Append(ctx context.Context, rec core.Record) (string, error) {
	if err := rec.Validate(); err != nil {
		return "", fmt.Errorf("validate record: %w", err)
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO records (kind, amount, category, description, recorded_at)
		 VALUES (?, ?, ?, ?, ?)`,
		string(rec.Kind), rec.Amount, rec.Category, rec.Description, rec.Date.UTC())
	if err != nil {
		return "", fmt.Errorf("insert record: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return "", fmt.Errorf("last insert id: %w", err)
	}

	slog.InfoContext(ctx, "Record saved to SQLite",
		"id", id,
		"kind", rec.Kind,
		"amount", rec.Amount,
		"label", rec.Label())

	return strconv.FormatInt(id, 10), nil
}

// Delete implements ledger.Deleter. A missing row is a normal negative
// result, not an error.
func (r *SQLiteRepository) Delete(ctx context.Context, rowID string) (bool, error) {
	id, err := strconv.ParseInt(rowID, 10, 64)
	if err != nil {
		return false, nil
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM records WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete record: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// Scan implements ledger.Scanner.
func (r *SQLiteRepository) Scan(ctx context.Context, from, to time.Time) ([]core.Record, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, kind, amount, category, description, recorded_at
		 FROM records
		 WHERE recorded_at >= ? AND recorded_at <= ?
		 ORDER BY id`,
		from.UTC(), to.UTC())
	if err != nil {
		return nil, fmt.Errorf("scan records: %w", err)
	}
	defer rows.Close()
	return collectRecords(rows)
}

// ScanLatest implements ledger.Scanner, newest first.
func (r *SQLiteRepository) ScanLatest(ctx context.Context, n int) ([]core.Record, error) {
	if n <= 0 {
		return nil, nil
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, kind, amount, category, description, recorded_at
		 FROM records
		 ORDER BY id DESC
		 LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("scan latest records: %w", err)
	}
	defer rows.Close()
	return collectRecords(rows)
}

// GetRecord retrieves a single record by id for the mirror worker.
func (r *SQLiteRepository) GetRecord(ctx context.Context, id int64) (core.Record, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, kind, amount, category, description, recorded_at
		 FROM records WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Record{}, fmt.Errorf("record %d not found", id)
	}
	if err != nil {
		return core.Record{}, fmt.Errorf("get record %d: %w", id, err)
	}
	return rec, nil
}

// PendingMirror lists record ids that have not been mirrored to the
// archive spreadsheet yet, oldest first.
func (r *SQLiteRepository) PendingMirror(ctx context.Context, limit int) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id FROM records WHERE mirrored = 0 ORDER BY id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("pending mirror records: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan pending id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// MarkMirrored marks a record as copied to the archive.
func (r *SQLiteRepository) MarkMirrored(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE records SET mirrored = 1 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("mark record mirrored: %w", err)
	}
	slog.InfoContext(ctx, "Record marked as mirrored", "id", id)
	return nil
}

// MarkMirrorError bumps the attempt counter after a failed mirror pass.
func (r *SQLiteRepository) MarkMirrorError(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE records SET mirror_attempts = mirror_attempts + 1 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("mark mirror error: %w", err)
	}
	slog.WarnContext(ctx, "Record mirror attempt failed", "id", id)
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(s rowScanner) (core.Record, error) {
	var (
		id       int64
		kind     string
		rec      core.Record
		recorded time.Time
	)
	if err := s.Scan(&id, &kind, &rec.Amount, &rec.Category, &rec.Description, &recorded); err != nil {
		return core.Record{}, err
	}
	rec.RowID = strconv.FormatInt(id, 10)
	rec.Kind = core.RecordKind(kind)
	rec.Date = recorded.Local()
	return rec, nil
}

func collectRecords(rows *sql.Rows) ([]core.Record, error) {
	var out []core.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record row: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
