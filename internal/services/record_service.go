// Package services wires the parser, vocabulary, ledger and statistics
// into the operations the bot front end calls.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"kopilka/internal/core"
	"kopilka/internal/ledger"
	"kopilka/internal/stats"
)

// MirrorPublisher publishes sync messages so a worker can copy records
// into the Sheets archive. It is optional; a nil publisher disables
// mirroring.
type MirrorPublisher interface {
	PublishRecordSync(ctx context.Context, id int64) error
	PublishRecordDelete(ctx context.Context, id int64) error
}

// RecordService is the engine behind the bot commands: add records from
// free text, delete by row id, list categories, answer statistics.
type RecordService struct {
	store     ledger.Ledger
	vocab     *core.Vocabulary
	suffixes  core.SuffixTable
	stats     *stats.Aggregator
	publisher MirrorPublisher
	now       func() time.Time
}

func NewRecordService(store ledger.Ledger, vocab *core.Vocabulary, suffixes core.SuffixTable, aggregator *stats.Aggregator, publisher MirrorPublisher) *RecordService {
	return &RecordService{
		store:     store,
		vocab:     vocab,
		suffixes:  suffixes,
		stats:     aggregator,
		publisher: publisher,
		now:       time.Now,
	}
}

// AddItems converts message text into records, one per non-blank line,
// and appends them to the ledger. The whole message is parsed before
// anything is written, so a grammar failure on any line means zero
// appends (NotCorrectMessage). A store failure mid-batch propagates
// as-is; lines already appended stay.
func (s *RecordService) AddItems(ctx context.Context, text string, kind core.RecordKind) ([]core.Record, error) {
	lines, err := core.ParseMessage(text, kind, s.suffixes)
	if err != nil {
		return nil, err
	}

	records := make([]core.Record, 0, len(lines))
	for _, line := range lines {
		amount, echo, err := core.ParseAmount(line.AmountToken, s.suffixes)
		if err != nil {
			// ParseMessage already vetted every token.
			return nil, fmt.Errorf("normalize amount %q: %w", line.AmountToken, err)
		}
		category, description := s.vocab.Resolve(line.Remainder, line.Kind)
		records = append(records, core.Record{
			Kind:        line.Kind,
			Amount:      amount,
			AmountText:  echo,
			Category:    category,
			Description: description,
			Date:        s.now(),
		})
	}

	for i := range records {
		rowID, err := s.store.Append(ctx, records[i])
		if err != nil {
			return nil, fmt.Errorf("append record: %w", err)
		}
		records[i].RowID = rowID
		s.publishSync(ctx, rowID)
	}
	return records, nil
}

// DeleteRecord removes one record by row id. Not-found is a normal
// result with its own user-facing message, not an error.
func (s *RecordService) DeleteRecord(ctx context.Context, rowID string) (string, error) {
	found, err := s.store.Delete(ctx, rowID)
	if err != nil {
		return "", fmt.Errorf("delete record %s: %w", rowID, err)
	}
	if !found {
		return fmt.Sprintf("Запись с id %s не найдена", rowID), nil
	}
	s.publishDelete(ctx, rowID)
	return "Запись удалена", nil
}

// Categories renders the vocabulary grouped by polarity.
func (s *RecordService) Categories() string {
	var b strings.Builder
	b.WriteString("Категории трат:\n")
	b.WriteString(strings.Join(s.vocab.Names(core.Expense), "\n"))
	b.WriteString("\n\nКатегории доходов:\n")
	b.WriteString(strings.Join(s.vocab.Names(core.Income), "\n"))
	return b.String()
}

func (s *RecordService) TodayStatistics(ctx context.Context) (string, error) {
	return s.stats.Today(ctx)
}

func (s *RecordService) MonthStatistics(ctx context.Context) (string, error) {
	return s.stats.Month(ctx)
}

func (s *RecordService) Latest(ctx context.Context) (string, error) {
	return s.stats.Latest(ctx)
}

// publishSync notifies the mirror worker of a new record. Mirroring is
// best-effort: a publish failure is logged and never fails the user
// operation, since the record is already durable in the primary store.
func (s *RecordService) publishSync(ctx context.Context, rowID string) {
	if s.publisher == nil {
		return
	}
	id, err := strconv.ParseInt(rowID, 10, 64)
	if err != nil {
		slog.ErrorContext(ctx, "Row id is not numeric, skipping mirror publish", "row_id", rowID)
		return
	}
	if err := s.publisher.PublishRecordSync(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to publish mirror sync message", "id", id, "error", err)
	}
}

func (s *RecordService) publishDelete(ctx context.Context, rowID string) {
	if s.publisher == nil {
		return
	}
	id, err := strconv.ParseInt(rowID, 10, 64)
	if err != nil {
		slog.ErrorContext(ctx, "Row id is not numeric, skipping mirror publish", "row_id", rowID)
		return
	}
	if err := s.publisher.PublishRecordDelete(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to publish mirror delete message", "id", id, "error", err)
	}
}
