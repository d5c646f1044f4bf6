package stats

import (
	"context"
	"strings"
	"testing"
	"time"

	"kopilka/internal/core"
	"kopilka/internal/ledger/memory"
)

func newAggregator(t *testing.T, store *memory.Store) *Aggregator {
	t.Helper()
	return NewAggregator(store, core.DefaultVocabulary(), "руб.", 10)
}

func mustAppend(t *testing.T, store *memory.Store, rec core.Record) string {
	t.Helper()
	id, err := store.Append(context.Background(), rec)
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	return id
}

func TestTodayEmptyStore(t *testing.T) {
	a := newAggregator(t, memory.New())
	got, err := a.Today(context.Background())
	if err != nil {
		t.Fatalf("today: %v", err)
	}
	if got != noRecordsToday {
		t.Errorf("empty today = %q, want the no-records message", got)
	}
}

func TestMonthEmptyStore(t *testing.T) {
	a := newAggregator(t, memory.New())
	got, err := a.Month(context.Background())
	if err != nil {
		t.Fatalf("month: %v", err)
	}
	if got != noRecordsMonth {
		t.Errorf("empty month = %q, want the no-records message", got)
	}
}

func TestLatestEmptyStore(t *testing.T) {
	a := newAggregator(t, memory.New())
	got, err := a.Latest(context.Background())
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if got != noRecordsAtAll {
		t.Errorf("empty latest = %q, want the no-records message", got)
	}
}

func TestTodayGroupsAndItemizesIncome(t *testing.T) {
	store := memory.New()
	now := time.Now()
	mustAppend(t, store, core.Record{Kind: core.Expense, Amount: 250, Category: "такси", Date: now})
	mustAppend(t, store, core.Record{Kind: core.Expense, Amount: 150, Category: "такси", Date: now})
	mustAppend(t, store, core.Record{Kind: core.Expense, Amount: 90, Description: "шаурма", Date: now})
	mustAppend(t, store, core.Record{Kind: core.Income, Amount: 100000, Category: "зарплата", Date: now})

	a := newAggregator(t, store)
	got, err := a.Today(context.Background())
	if err != nil {
		t.Fatalf("today: %v", err)
	}

	for _, want := range []string{
		"потрачено 490 руб.",
		"такси — 400 руб.",
		"прочее — 90 руб.", // description-only record under the catch-all
		"Доходы: 100000 руб.",
		"зарплата — 100000 руб.",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("today summary missing %q:\n%s", want, got)
		}
	}
	// Income must not be folded into the expense total.
	if strings.Contains(got, "100490") {
		t.Errorf("income merged into expense total:\n%s", got)
	}
}

func TestMonthWindow(t *testing.T) {
	store := memory.New()
	now := time.Now()
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 1, 0, now.Location())
	lastMonth := firstOfMonth.AddDate(0, 0, -1)

	mustAppend(t, store, core.Record{Kind: core.Expense, Amount: 100, Category: "кафе", Date: lastMonth})
	mustAppend(t, store, core.Record{Kind: core.Expense, Amount: 300, Category: "кафе", Date: firstOfMonth})

	a := newAggregator(t, store)
	got, err := a.Month(context.Background())
	if err != nil {
		t.Fatalf("month: %v", err)
	}
	if !strings.Contains(got, "потрачено 300 руб.") {
		t.Errorf("month summary should only cover the current month:\n%s", got)
	}
}

func TestLatestNewestFirstWithDeleteHints(t *testing.T) {
	store := memory.New()
	now := time.Now()
	mustAppend(t, store, core.Record{Kind: core.Expense, Amount: 100, Category: "кафе", Date: now})
	id2 := mustAppend(t, store, core.Record{Kind: core.Income, Amount: 500, Category: "зарплата", Date: now})

	a := newAggregator(t, store)
	got, err := a.Latest(context.Background())
	if err != nil {
		t.Fatalf("latest: %v", err)
	}

	lines := strings.Split(got, "\n")
	if len(lines) != 3 {
		t.Fatalf("latest = %q, want header plus two lines", got)
	}
	if !strings.Contains(lines[1], "/del"+id2) || !strings.Contains(lines[1], "доход 500") {
		t.Errorf("newest record must come first with its delete hint: %q", lines[1])
	}
}

func TestLatestRespectsLimit(t *testing.T) {
	store := memory.New()
	now := time.Now()
	for i := 0; i < 5; i++ {
		mustAppend(t, store, core.Record{Kind: core.Expense, Amount: int64(i + 1), Category: "кафе", Date: now})
	}

	a := NewAggregator(store, core.DefaultVocabulary(), "руб.", 3)
	got, err := a.Latest(context.Background())
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if n := strings.Count(got, "/del"); n != 3 {
		t.Errorf("latest shows %d records, want 3:\n%s", n, got)
	}
}
