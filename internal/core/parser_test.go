package core

import (
	"testing"
)

func TestParseMessage(t *testing.T) {
	suffixes := DefaultSuffixes()
	tests := []struct {
		name string
		text string
		kind RecordKind
		want []ParsedLine
	}{
		{
			name: "single expense line",
			text: "250 такси",
			kind: Expense,
			want: []ParsedLine{
				{Raw: "250 такси", AmountToken: "250", Remainder: "такси", Kind: Expense},
			},
		},
		{
			name: "multi line with suffix",
			text: "250 такси\n1000k зарплата",
			kind: Income,
			want: []ParsedLine{
				{Raw: "250 такси", AmountToken: "250", Remainder: "такси", Kind: Income},
				{Raw: "1000k зарплата", AmountToken: "1000k", Remainder: "зарплата", Kind: Income},
			},
		},
		{
			name: "blank lines are skipped",
			text: "\n  250 такси  \n\n100 кафе\n",
			kind: Expense,
			want: []ParsedLine{
				{Raw: "250 такси", AmountToken: "250", Remainder: "такси", Kind: Expense},
				{Raw: "100 кафе", AmountToken: "100", Remainder: "кафе", Kind: Expense},
			},
		},
		{
			name: "remainder keeps inner spaces",
			text: "900 обед с коллегами",
			kind: Expense,
			want: []ParsedLine{
				{Raw: "900 обед с коллегами", AmountToken: "900", Remainder: "обед с коллегами", Kind: Expense},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMessage(tt.text, tt.kind, suffixes)
			if err != nil {
				t.Fatalf("ParseMessage: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d lines, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("line %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestParseMessageRejects(t *testing.T) {
	suffixes := DefaultSuffixes()
	tests := []struct {
		name string
		text string
	}{
		{"empty message", ""},
		{"blank message", "  \n \n"},
		{"no amount", "такси 250"},
		{"amount only", "250"},
		{"unknown suffix", "250m такси"},
		{"bad line among good ones", "250 такси\nкафе\n100 кафе"},
		{"negative amount", "-5 такси"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseMessage(tt.text, Expense, suffixes)
			if err == nil {
				t.Fatal("expected rejection")
			}
			if !IsNotCorrectMessage(err) {
				t.Fatalf("error %v is not a NotCorrectMessage", err)
			}
			if err.Error() == "" {
				t.Error("rejection must carry a user-facing explanation")
			}
		})
	}
}
