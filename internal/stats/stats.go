// Package stats computes and formats the ledger summary views: today,
// current month and latest records. Every query re-reads the store, so
// results are always fresh (nothing is cached between calls).
package stats

import (
	"context"
	"fmt"
	"strings"
	"time"

	"kopilka/internal/core"
	"kopilka/internal/ledger"
)

const (
	noRecordsToday = "Сегодня ещё нет записей"
	noRecordsMonth = "В этом месяце ещё нет записей"
	noRecordsAtAll = "Пока нет ни одной записи"
)

// Aggregator answers the statistics queries over a ledger scanner.
type Aggregator struct {
	scanner     ledger.Scanner
	vocab       *core.Vocabulary
	currency    string
	latestLimit int
	now         func() time.Time
}

func NewAggregator(scanner ledger.Scanner, vocab *core.Vocabulary, currency string, latestLimit int) *Aggregator {
	if latestLimit <= 0 {
		latestLimit = 10
	}
	return &Aggregator{
		scanner:     scanner,
		vocab:       vocab,
		currency:    currency,
		latestLimit: latestLimit,
		now:         time.Now,
	}
}

// Today renders the summary for the current calendar date.
func (a *Aggregator) Today(ctx context.Context) (string, error) {
	now := a.now()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	records, err := a.scanner.Scan(ctx, from, now)
	if err != nil {
		return "", fmt.Errorf("scan today: %w", err)
	}
	if len(records) == 0 {
		return noRecordsToday, nil
	}
	return a.renderSummary("Сегодня", records), nil
}

// Month renders the summary for the current calendar month, from the
// first of the month through now.
func (a *Aggregator) Month(ctx context.Context) (string, error) {
	now := a.now()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	records, err := a.scanner.Scan(ctx, from, now)
	if err != nil {
		return "", fmt.Errorf("scan month: %w", err)
	}
	if len(records) == 0 {
		return noRecordsMonth, nil
	}
	return a.renderSummary("В этом месяце", records), nil
}

// Latest renders the most recently inserted records, newest first, with
// the row id the user needs for deletion.
func (a *Aggregator) Latest(ctx context.Context) (string, error) {
	records, err := a.scanner.ScanLatest(ctx, a.latestLimit)
	if err != nil {
		return "", fmt.Errorf("scan latest: %w", err)
	}
	if len(records) == 0 {
		return noRecordsAtAll, nil
	}

	var b strings.Builder
	b.WriteString("Последние записи:\n")
	for _, r := range records {
		verb := "траты"
		if r.Kind == core.Income {
			verb = "доход"
		}
		fmt.Fprintf(&b, "%s %d %s на %s (%s) — /del%s\n",
			verb, r.Amount, a.currency, a.displayLabel(r), r.Date.Format("02.01"), r.RowID)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

// renderSummary builds the expense breakdown plus a separately itemized
// income total. The two are never merged into one number.
func (a *Aggregator) renderSummary(period string, records []core.Record) string {
	expenses := groupByCategory(filterKind(records, core.Expense), a.vocab)
	incomes := groupByCategory(filterKind(records, core.Income), a.vocab)

	var b strings.Builder
	if len(expenses.order) > 0 {
		fmt.Fprintf(&b, "%s потрачено %d %s", period, expenses.total, a.currency)
		for _, name := range expenses.order {
			fmt.Fprintf(&b, "\n%s — %d %s", name, expenses.byName[name], a.currency)
		}
	} else {
		fmt.Fprintf(&b, "%s трат нет", period)
	}
	if len(incomes.order) > 0 {
		fmt.Fprintf(&b, "\n\nДоходы: %d %s", incomes.total, a.currency)
		for _, name := range incomes.order {
			fmt.Fprintf(&b, "\n%s — %d %s", name, incomes.byName[name], a.currency)
		}
	}
	return b.String()
}

// displayLabel files description-only records under the catch-all name
// while keeping the user's own words visible.
func (a *Aggregator) displayLabel(r core.Record) string {
	if r.Category != "" {
		return r.Category
	}
	return fmt.Sprintf("%s (%s)", a.vocab.OtherName(r.Kind), r.Description)
}

type grouped struct {
	total  int64
	byName map[string]int64
	order  []string // first-seen category order
}

func groupByCategory(records []core.Record, vocab *core.Vocabulary) grouped {
	g := grouped{byName: map[string]int64{}}
	for _, r := range records {
		name := r.Category
		if name == "" {
			name = vocab.OtherName(r.Kind)
		}
		if _, seen := g.byName[name]; !seen {
			g.order = append(g.order, name)
		}
		g.byName[name] += r.Amount
		g.total += r.Amount
	}
	return g
}

func filterKind(records []core.Record, kind core.RecordKind) []core.Record {
	var out []core.Record
	for _, r := range records {
		if r.Kind == kind {
			out = append(out, r)
		}
	}
	return out
}
