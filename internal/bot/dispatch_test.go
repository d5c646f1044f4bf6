package bot

import (
	"context"
	"strings"
	"testing"

	"kopilka/internal/core"
)

type fakeEngine struct {
	addedText string
	addedKind core.RecordKind
	addErr    error
	records   []core.Record

	deletedID string
	deleteMsg string
}

func (f *fakeEngine) AddItems(_ context.Context, text string, kind core.RecordKind) ([]core.Record, error) {
	f.addedText = text
	f.addedKind = kind
	if f.addErr != nil {
		return nil, f.addErr
	}
	return f.records, nil
}

func (f *fakeEngine) DeleteRecord(_ context.Context, rowID string) (string, error) {
	f.deletedID = rowID
	return f.deleteMsg, nil
}

func (f *fakeEngine) Categories() string { return "Категории трат:\nтакси" }

func (f *fakeEngine) TodayStatistics(context.Context) (string, error) {
	return "Сегодня потрачено 250 руб.", nil
}

func (f *fakeEngine) MonthStatistics(context.Context) (string, error) {
	return "В этом месяце потрачено 250 руб.", nil
}

func (f *fakeEngine) Latest(context.Context) (string, error) {
	return "Последние записи:", nil
}

func TestDispatchDeniesStrangers(t *testing.T) {
	d := NewDispatcher(&fakeEngine{}, 42, "", nil)

	got := d.Dispatch(context.Background(), 7, "/today")
	if got != deniedText {
		t.Fatalf("Dispatch() = %q, want %q", got, deniedText)
	}
}

func TestDispatchCommands(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "start", text: "/start", want: helpText},
		{name: "help", text: "/help", want: helpText},
		{name: "categories", text: "/categories", want: "Категории трат:\nтакси"},
		{name: "today", text: "/today", want: "Сегодня потрачено 250 руб."},
		{name: "month", text: "/month", want: "В этом месяце потрачено 250 руб."},
		{name: "expenses", text: "/expenses", want: "Последние записи:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDispatcher(&fakeEngine{}, 42, "", nil)
			got := d.Dispatch(context.Background(), 42, tt.text)
			if got != tt.want {
				t.Errorf("Dispatch(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestDispatchDelete(t *testing.T) {
	engine := &fakeEngine{deleteMsg: "Запись удалена"}
	d := NewDispatcher(engine, 42, "", nil)

	got := d.Dispatch(context.Background(), 42, "/del17")
	if got != "Запись удалена" {
		t.Fatalf("Dispatch(/del17) = %q", got)
	}
	if engine.deletedID != "17" {
		t.Fatalf("deleted id = %q, want %q", engine.deletedID, "17")
	}
}

func TestDispatchDeleteWithoutID(t *testing.T) {
	engine := &fakeEngine{}
	d := NewDispatcher(engine, 42, "", nil)

	got := d.Dispatch(context.Background(), 42, "/del")
	if !strings.Contains(got, "/del42") {
		t.Fatalf("Dispatch(/del) = %q, want usage hint", got)
	}
	if engine.deletedID != "" {
		t.Fatalf("delete reached engine for empty id")
	}
}

func TestDispatchFreeTextAddsExpense(t *testing.T) {
	engine := &fakeEngine{records: []core.Record{
		{RowID: "1", Kind: core.Expense, Amount: 250, Category: "такси"},
	}}
	d := NewDispatcher(engine, 42, "", nil)

	got := d.Dispatch(context.Background(), 42, "250 такси")

	if engine.addedKind != core.Expense {
		t.Fatalf("kind = %q, want expense", engine.addedKind)
	}
	if engine.addedText != "250 такси" {
		t.Fatalf("text = %q", engine.addedText)
	}
	if !strings.Contains(got, "Добавлены траты 250 руб. на такси.") {
		t.Errorf("reply %q missing confirmation", got)
	}
	if !strings.Contains(got, "Сегодня потрачено 250 руб.") {
		t.Errorf("reply %q missing today snippet", got)
	}
}

func TestDispatchIncomeCommand(t *testing.T) {
	engine := &fakeEngine{records: []core.Record{
		{RowID: "2", Kind: core.Income, Amount: 50000, Category: "зарплата"},
	}}
	d := NewDispatcher(engine, 42, "", nil)

	got := d.Dispatch(context.Background(), 42, "/i 50000 зарплата")

	if engine.addedKind != core.Income {
		t.Fatalf("kind = %q, want income", engine.addedKind)
	}
	if engine.addedText != "50000 зарплата" {
		t.Fatalf("text = %q, want command prefix stripped", engine.addedText)
	}
	if !strings.Contains(got, "Добавлен доход 50000 руб. на зарплата.") {
		t.Errorf("reply %q missing confirmation", got)
	}
}

func TestConfirmationUsesConfiguredCurrencyAndEchoesToken(t *testing.T) {
	engine := &fakeEngine{records: []core.Record{
		{RowID: "1", Kind: core.Expense, Amount: 1000000, AmountText: "1000k", Category: "такси"},
	}}
	d := NewDispatcher(engine, 42, "тг.", nil)

	got := d.Dispatch(context.Background(), 42, "1000k такси")
	if !strings.Contains(got, "Добавлены траты 1000k тг. на такси.") {
		t.Errorf("reply %q: want the submitted token and configured currency, not normalized digits", got)
	}
	if strings.Contains(got, "1000000 тг.") {
		t.Errorf("reply %q shows the normalized amount in the confirmation", got)
	}
}

func TestDispatchGrammarErrorShownToUser(t *testing.T) {
	engine := &fakeEngine{addErr: &core.NotCorrectMessage{Reason: "Не пойму строку"}}
	d := NewDispatcher(engine, 42, "", nil)

	got := d.Dispatch(context.Background(), 42, "такси 250")
	if got != "Не пойму строку" {
		t.Fatalf("Dispatch() = %q, want grammar reason verbatim", got)
	}
}

func TestDispatchMultiLineConfirmsEach(t *testing.T) {
	engine := &fakeEngine{records: []core.Record{
		{RowID: "1", Kind: core.Expense, Amount: 250, Category: "такси"},
		{RowID: "2", Kind: core.Expense, Amount: 1500, Category: "продукты"},
	}}
	d := NewDispatcher(engine, 42, "", nil)

	got := d.Dispatch(context.Background(), 42, "250 такси\n2k продукты")
	if !strings.Contains(got, "на такси.") || !strings.Contains(got, "на продукты.") {
		t.Fatalf("reply %q missing per-record confirmations", got)
	}
}
