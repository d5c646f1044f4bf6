// Package core holds the domain model of the finance ledger: records,
// categories, the message line grammar and amount normalization.
package core

import (
	"strconv"
	"unicode"
	"unicode/utf8"
)

// SuffixTable maps a single trailing magnitude rune of an amount token to
// its multiplier (for example 'k' -> 1000). The table comes from
// configuration; an empty table disables suffixes entirely.
type SuffixTable map[rune]int64

// DefaultSuffixes covers the latin and cyrillic thousands markers.
func DefaultSuffixes() SuffixTable {
	return SuffixTable{'k': 1000, 'к': 1000}
}

// ParseAmount converts an amount token into its canonical integer value.
//
// A token is either plain digits, or digits followed by exactly one
// non-digit magnitude rune looked up in the suffix table. The original
// token is returned alongside the value for confirmation messages.
// Normalizing an already canonical token of value V yields V unchanged.
func ParseAmount(token string, suffixes SuffixTable) (int64, string, error) {
	if token == "" {
		return 0, token, ErrInvalidAmount
	}
	// The grammar has no sign token, so the first rune must be a digit.
	if first, _ := utf8.DecodeRuneInString(token); !unicode.IsDigit(first) {
		return 0, token, ErrInvalidAmount
	}

	if v, err := strconv.ParseInt(token, 10, 64); err == nil {
		return v, token, nil
	}

	// Retry without the last rune: digits plus a single magnitude suffix.
	last, size := utf8.DecodeLastRuneInString(token)
	if last == utf8.RuneError && size <= 1 {
		return 0, token, ErrInvalidAmount
	}
	if unicode.IsDigit(last) {
		// Ends in a digit yet failed to parse: a non-digit sits inside
		// the token, or the value overflows int64.
		return 0, token, ErrInvalidAmount
	}
	prefix := token[:len(token)-size]
	v, err := strconv.ParseInt(prefix, 10, 64)
	if err != nil {
		return 0, token, ErrInvalidAmount
	}
	mult, ok := suffixes[last]
	if !ok {
		return 0, token, ErrUnknownSuffix
	}
	return v * mult, token, nil
}
