package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Expense RecordKind = "expense"
	Income  RecordKind = "income"
)

type (
	// RecordKind tags a record as an expense or an income. It is carried
	// through parsing instead of being modeled as separate record types;
	// only statistics formatting branches on it.
	RecordKind string

	// Record is one ledger entry. Exactly one of Category and Description
	// is set: Category when the remainder text matched the vocabulary,
	// Description (verbatim user text) otherwise.
	Record struct {
		RowID       string
		Kind        RecordKind
		Amount      int64
		AmountText  string // original token, for confirmations
		Category    string
		Description string
		Date        time.Time
	}

	// ParsedLine is the intermediate result of parsing one message line.
	// It lives only for the duration of an add operation.
	ParsedLine struct {
		Raw         string
		AmountToken string
		Remainder   string
		Kind        RecordKind
	}
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrUnknownSuffix = errors.New("unknown amount suffix")
)

// NotCorrectMessage reports that an incoming message does not match the
// line grammar. Its text is shown to the user as-is, so it is written in
// the bot's language and names the offending line.
type NotCorrectMessage struct {
	Reason string
}

func (e *NotCorrectMessage) Error() string {
	return e.Reason
}

// IsNotCorrectMessage reports whether err is a message-grammar rejection.
func IsNotCorrectMessage(err error) bool {
	var ncm *NotCorrectMessage
	return errors.As(err, &ncm)
}

func (k RecordKind) Valid() bool {
	return k == Expense || k == Income
}

// Label returns the text the record is displayed under: the resolved
// category name, or the free-text description.
func (r Record) Label() string {
	if r.Category != "" {
		return r.Category
	}
	return r.Description
}

func (r Record) Validate() error {
	if !r.Kind.Valid() {
		return errors.New("invalid record kind")
	}
	if r.Amount < 0 {
		return ErrInvalidAmount
	}
	hasCategory := strings.TrimSpace(r.Category) != ""
	hasDescription := strings.TrimSpace(r.Description) != ""
	if hasCategory == hasDescription {
		return errors.New("record needs exactly one of category or description")
	}
	if r.Date.IsZero() {
		return errors.New("record date cannot be zero")
	}
	return nil
}
