package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"kopilka/internal/core"
)

// RecordEngine is what the dispatcher needs from the application layer.
type RecordEngine interface {
	AddItems(ctx context.Context, text string, kind core.RecordKind) ([]core.Record, error)
	DeleteRecord(ctx context.Context, rowID string) (string, error)
	Categories() string
	TodayStatistics(ctx context.Context) (string, error)
	MonthStatistics(ctx context.Context) (string, error)
	Latest(ctx context.Context) (string, error)
}

const helpText = "Бот для учёта личных финансов\n\n" +
	"Добавить расход: 250 такси\n" +
	"Можно несколько строк сразу, по одной записи на строку.\n" +
	"Суффиксы суммы: 2k и 2к означают 2000.\n\n" +
	"Добавить доход: /i 50000 зарплата\n" +
	"Сегодняшняя статистика: /today\n" +
	"За текущий месяц: /month\n" +
	"Последние записи: /expenses\n" +
	"Категории: /categories"

const deniedText = "Permission denied"

// Dispatcher routes incoming messages to engine operations and renders
// the replies. Only the configured author may use the bot.
type Dispatcher struct {
	engine   RecordEngine
	authorID int64
	currency string
	logger   *slog.Logger
}

func NewDispatcher(engine RecordEngine, authorID int64, currency string, logger *slog.Logger) *Dispatcher {
	if currency == "" {
		currency = "руб."
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{engine: engine, authorID: authorID, currency: currency, logger: logger}
}

// Dispatch handles one message and returns the reply text. It never
// returns an empty reply for an allowed user.
func (d *Dispatcher) Dispatch(ctx context.Context, chatID int64, text string) string {
	if chatID != d.authorID {
		d.logger.WarnContext(ctx, "Message from unknown chat", "chat_id", chatID)
		return deniedText
	}

	text = strings.TrimSpace(text)
	switch {
	case text == "/start", text == "/help":
		return helpText
	case text == "/categories":
		return d.engine.Categories()
	case text == "/today":
		return d.statistics(ctx, d.engine.TodayStatistics)
	case text == "/month":
		return d.statistics(ctx, d.engine.MonthStatistics)
	case text == "/expenses":
		return d.statistics(ctx, d.engine.Latest)
	case strings.HasPrefix(text, "/del"):
		return d.deleteRecord(ctx, strings.TrimPrefix(text, "/del"))
	case strings.HasPrefix(text, "/i"):
		return d.addItems(ctx, strings.TrimSpace(strings.TrimPrefix(text, "/i")), core.Income)
	default:
		return d.addItems(ctx, text, core.Expense)
	}
}

func (d *Dispatcher) statistics(ctx context.Context, fn func(context.Context) (string, error)) string {
	msg, err := fn(ctx)
	if err != nil {
		d.logger.ErrorContext(ctx, "Statistics failed", "error", err)
		return "Не получилось собрать статистику, попробуйте ещё раз"
	}
	return msg
}

func (d *Dispatcher) deleteRecord(ctx context.Context, rowID string) string {
	rowID = strings.TrimSpace(rowID)
	if rowID == "" {
		return "Укажите id записи, например: /del42"
	}
	msg, err := d.engine.DeleteRecord(ctx, rowID)
	if err != nil {
		d.logger.ErrorContext(ctx, "Delete failed", "row_id", rowID, "error", err)
		return "Не получилось удалить запись, попробуйте ещё раз"
	}
	return msg
}

// addItems appends the parsed records and confirms each one, then
// appends today's summary so the user sees the running total.
func (d *Dispatcher) addItems(ctx context.Context, text string, kind core.RecordKind) string {
	records, err := d.engine.AddItems(ctx, text, kind)
	if err != nil {
		if core.IsNotCorrectMessage(err) {
			return err.Error()
		}
		d.logger.ErrorContext(ctx, "Add items failed", "error", err)
		return "Не получилось сохранить запись, попробуйте ещё раз"
	}

	var b strings.Builder
	for _, rec := range records {
		b.WriteString(d.confirmation(rec))
		b.WriteString("\n")
	}

	today, err := d.engine.TodayStatistics(ctx)
	if err != nil {
		d.logger.ErrorContext(ctx, "Today statistics after add failed", "error", err)
		return strings.TrimRight(b.String(), "\n")
	}
	b.WriteString("\n")
	b.WriteString(today)
	return b.String()
}

// confirmation echoes the amount exactly as the user typed it, suffix
// included, with the configured currency label.
func (d *Dispatcher) confirmation(rec core.Record) string {
	amount := rec.AmountText
	if amount == "" {
		amount = strconv.FormatInt(rec.Amount, 10)
	}
	if rec.Kind == core.Income {
		return fmt.Sprintf("Добавлен доход %s %s на %s.", amount, d.currency, rec.Label())
	}
	return fmt.Sprintf("Добавлены траты %s %s на %s.", amount, d.currency, rec.Label())
}
