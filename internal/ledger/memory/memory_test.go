package memory

import (
	"context"
	"testing"
	"time"

	"kopilka/internal/core"
)

func record(amount int64, category string, date time.Time) core.Record {
	return core.Record{Kind: core.Expense, Amount: amount, Category: category, Date: date}
}

func TestAppendAssignsStableIDs(t *testing.T) {
	s := New()
	ctx := context.Background()
	now := time.Now()

	id1, err := s.Append(ctx, record(100, "такси", now))
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	id2, err := s.Append(ctx, record(200, "кафе", now))
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if id1 == id2 {
		t.Fatalf("row ids must be unique, got %q twice", id1)
	}

	// Deleting one row must not disturb the other's id.
	if found, err := s.Delete(ctx, id1); err != nil || !found {
		t.Fatalf("delete %q = (%v, %v)", id1, found, err)
	}
	latest, err := s.ScanLatest(ctx, 10)
	if err != nil {
		t.Fatalf("scan latest: %v", err)
	}
	if len(latest) != 1 || latest[0].RowID != id2 {
		t.Fatalf("latest = %+v, want only row %q", latest, id2)
	}
}

func TestDeleteMissingRow(t *testing.T) {
	s := New()
	found, err := s.Delete(context.Background(), "42")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if found {
		t.Error("deleting a missing row must report not-found, not success")
	}
}

func TestScanWindow(t *testing.T) {
	s := New()
	ctx := context.Background()
	day := func(d int) time.Time { return time.Date(2026, 8, d, 12, 0, 0, 0, time.UTC) }

	for i, d := range []int{1, 10, 20} {
		if _, err := s.Append(ctx, record(int64(i+1)*100, "такси", day(d))); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	got, err := s.Scan(ctx, day(5), day(25))
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("scan returned %d records, want 2", len(got))
	}
	if got[0].Amount != 200 || got[1].Amount != 300 {
		t.Errorf("scan must preserve insertion order, got %+v", got)
	}
}

func TestScanLatestNewestFirst(t *testing.T) {
	s := New()
	ctx := context.Background()
	now := time.Now()
	for _, amt := range []int64{1, 2, 3} {
		if _, err := s.Append(ctx, record(amt, "такси", now)); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	got, err := s.ScanLatest(ctx, 2)
	if err != nil {
		t.Fatalf("scan latest: %v", err)
	}
	if len(got) != 2 || got[0].Amount != 3 || got[1].Amount != 2 {
		t.Errorf("latest = %+v, want amounts [3 2]", got)
	}
}

func TestAppendRejectsInvalidRecord(t *testing.T) {
	s := New()
	_, err := s.Append(context.Background(), core.Record{Kind: core.Expense, Amount: 1, Date: time.Now()})
	if err == nil {
		t.Error("record without category or description must be rejected")
	}
}
