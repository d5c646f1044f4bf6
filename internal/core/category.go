package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

type (
	// Category is one entry of the closed vocabulary. Names are
	// case-sensitive and unique; IsOther marks the catch-all bucket that
	// unmatched free text is filed under for display.
	Category struct {
		Name    string     `json:"name"`
		Kind    RecordKind `json:"kind"` // "expense", "income" or "both"
		IsOther bool       `json:"is_other,omitempty"`
	}

	// Vocabulary is the startup-loaded category set. It is immutable after
	// construction and safe to share between goroutines without locking.
	Vocabulary struct {
		categories []Category
		byName     map[string]Category
		otherName  map[RecordKind]string
	}
)

// KindBoth marks a category valid for both expenses and incomes.
const KindBoth RecordKind = "both"

// NewVocabulary validates and indexes a category list. It requires unique
// names and exactly one catch-all per polarity.
func NewVocabulary(categories []Category) (*Vocabulary, error) {
	if len(categories) == 0 {
		return nil, errors.New("empty category vocabulary")
	}
	v := &Vocabulary{
		categories: append([]Category(nil), categories...),
		byName:     make(map[string]Category, len(categories)),
		otherName:  make(map[RecordKind]string, 2),
	}
	for _, c := range v.categories {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return nil, errors.New("category with empty name")
		}
		if c.Kind != Expense && c.Kind != Income && c.Kind != KindBoth {
			return nil, fmt.Errorf("category %q: invalid kind %q", name, c.Kind)
		}
		if _, dup := v.byName[name]; dup {
			return nil, fmt.Errorf("duplicate category name %q", name)
		}
		v.byName[name] = c
		if c.IsOther {
			for _, k := range c.polarities() {
				if prev, ok := v.otherName[k]; ok {
					return nil, fmt.Errorf("two catch-all categories for %s: %q and %q", k, prev, name)
				}
				v.otherName[k] = name
			}
		}
	}
	for _, k := range []RecordKind{Expense, Income} {
		if _, ok := v.otherName[k]; !ok {
			return nil, fmt.Errorf("no catch-all category for %s", k)
		}
	}
	return v, nil
}

// LoadVocabulary reads a JSON category list from path.
func LoadVocabulary(path string) (*Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read categories file: %w", err)
	}
	var categories []Category
	if err := json.Unmarshal(data, &categories); err != nil {
		return nil, fmt.Errorf("parse categories file: %w", err)
	}
	return NewVocabulary(categories)
}

// DefaultVocabulary is the built-in russian category set used when no
// categories file is configured.
func DefaultVocabulary() *Vocabulary {
	v, err := NewVocabulary([]Category{
		{Name: "продукты", Kind: Expense},
		{Name: "кафе", Kind: Expense},
		{Name: "такси", Kind: Expense},
		{Name: "транспорт", Kind: Expense},
		{Name: "связь", Kind: Expense},
		{Name: "дом", Kind: Expense},
		{Name: "подарки", Kind: KindBoth},
		{Name: "прочее", Kind: Expense, IsOther: true},
		{Name: "зарплата", Kind: Income},
		{Name: "поступления", Kind: Income, IsOther: true},
	})
	if err != nil {
		panic(err) // static data, validated by tests
	}
	return v
}

// Resolve fills the category or description of a record from remainder
// text. An exact, case-sensitive match against a category of the right
// polarity sets Category; anything else becomes a Description, implicitly
// filed under the catch-all for display. Unknown text is never rejected.
func (v *Vocabulary) Resolve(remainder string, kind RecordKind) (category, description string) {
	text := strings.TrimSpace(remainder)
	if c, ok := v.byName[text]; ok && c.validFor(kind) {
		return c.Name, ""
	}
	return "", text
}

// OtherName returns the catch-all category name for the given polarity.
func (v *Vocabulary) OtherName(kind RecordKind) string {
	return v.otherName[kind]
}

// Names returns the category names valid for the given polarity, in
// vocabulary order.
func (v *Vocabulary) Names(kind RecordKind) []string {
	var out []string
	for _, c := range v.categories {
		if c.validFor(kind) {
			out = append(out, c.Name)
		}
	}
	return out
}

func (c Category) validFor(kind RecordKind) bool {
	return c.Kind == kind || c.Kind == KindBoth
}

func (c Category) polarities() []RecordKind {
	if c.Kind == KindBoth {
		return []RecordKind{Expense, Income}
	}
	return []RecordKind{c.Kind}
}
