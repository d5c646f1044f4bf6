package storage

import (
	"context"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"kopilka/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "kopilka.db"))
	if err != nil {
		t.Fatalf("open test repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestMigrationsLeaveConnectionOpen(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	// The schema migration runs on the repository's own connection at
	// open time; the handle must still accept writes afterwards.
	if err := RunMigrations(repo.db); err != nil {
		t.Fatalf("second RunMigrations() on open handle: %v", err)
	}
	if _, err := repo.Append(ctx, core.Record{
		Kind:     core.Expense,
		Amount:   100,
		Category: "кафе",
		Date:     time.Now(),
	}); err != nil {
		t.Fatalf("Append() after migrations: %v", err)
	}
}

func TestAppendDeleteRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	id, err := repo.Append(ctx, core.Record{
		Kind:     core.Expense,
		Amount:   250,
		Category: "такси",
		Date:     time.Now(),
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}

	latest, err := repo.ScanLatest(ctx, 10)
	if err != nil {
		t.Fatalf("scan latest: %v", err)
	}
	if len(latest) != 1 || latest[0].RowID != id {
		t.Fatalf("latest = %+v, want the appended row %q", latest, id)
	}
	if latest[0].Amount != 250 || latest[0].Category != "такси" {
		t.Errorf("round-tripped record lost data: %+v", latest[0])
	}

	found, err := repo.Delete(ctx, id)
	if err != nil || !found {
		t.Fatalf("delete = (%v, %v), want found", found, err)
	}
	// Second delete of the same id is a normal not-found.
	found, err = repo.Delete(ctx, id)
	if err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if found {
		t.Error("second delete must report not-found")
	}
}

func TestDeleteGarbageID(t *testing.T) {
	repo := newTestRepo(t)
	found, err := repo.Delete(context.Background(), "abc")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if found {
		t.Error("non-numeric id must be not-found")
	}
}

func TestScanDateWindow(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	day := func(d int) time.Time { return time.Date(2026, 8, d, 10, 0, 0, 0, time.UTC) }

	for _, d := range []int{1, 15, 28} {
		_, err := repo.Append(ctx, core.Record{
			Kind: core.Expense, Amount: int64(d), Category: "такси", Date: day(d),
		})
		if err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	got, err := repo.Scan(ctx, day(10), day(20))
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(got) != 1 || got[0].Amount != 15 {
		t.Fatalf("scan = %+v, want only the day-15 record", got)
	}
}

func TestMirrorBookkeeping(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	id, err := repo.Append(ctx, core.Record{
		Kind: core.Income, Amount: 100000, Category: "зарплата", Date: time.Now(),
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}

	pending, err := repo.PendingMirror(ctx, 10)
	if err != nil {
		t.Fatalf("pending mirror: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("pending = %v, want one id", pending)
	}

	if err := repo.MarkMirrored(ctx, pending[0]); err != nil {
		t.Fatalf("mark mirrored: %v", err)
	}
	pending, err = repo.PendingMirror(ctx, 10)
	if err != nil {
		t.Fatalf("pending mirror: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("pending after mirror = %v, want empty", pending)
	}

	rec, err := repo.GetRecord(ctx, mustInt(t, id))
	if err != nil {
		t.Fatalf("get record: %v", err)
	}
	if rec.Kind != core.Income || rec.Amount != 100000 {
		t.Errorf("get record = %+v", rec)
	}
}

func mustInt(t *testing.T, s string) int64 {
	t.Helper()
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		t.Fatalf("parse row id %q: %v", s, err)
	}
	return v
}
