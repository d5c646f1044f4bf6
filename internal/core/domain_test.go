package core

import (
	"testing"
	"time"
)

func TestRecordValidate(t *testing.T) {
	now := time.Now()
	cases := []struct {
		name string
		rec  Record
		ok   bool
	}{
		{"category only", Record{Kind: Expense, Amount: 250, Category: "такси", Date: now}, true},
		{"description only", Record{Kind: Income, Amount: 100, Description: "нашёл на улице", Date: now}, true},
		{"zero amount is allowed", Record{Kind: Expense, Amount: 0, Category: "кафе", Date: now}, true},
		{"neither category nor description", Record{Kind: Expense, Amount: 1, Date: now}, false},
		{"both category and description", Record{Kind: Expense, Amount: 1, Category: "такси", Description: "x", Date: now}, false},
		{"negative amount", Record{Kind: Expense, Amount: -1, Category: "такси", Date: now}, false},
		{"bad kind", Record{Kind: "transfer", Amount: 1, Category: "такси", Date: now}, false},
		{"zero date", Record{Kind: Expense, Amount: 1, Category: "такси"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.rec.Validate()
			if tc.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tc.ok && err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestRecordLabel(t *testing.T) {
	if got := (Record{Category: "такси"}).Label(); got != "такси" {
		t.Errorf("Label = %q", got)
	}
	if got := (Record{Description: "шаурма"}).Label(); got != "шаурма" {
		t.Errorf("Label = %q", got)
	}
}
