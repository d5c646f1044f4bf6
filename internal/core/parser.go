package core

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ParseMessage splits raw message text into one ParsedLine per non-blank
// line. A line is `<amount-token> <remainder>` where the amount token is
// digits with at most one trailing magnitude rune. The whole message is
// atomic: if any line fails the grammar (including an unknown suffix),
// nothing is accepted and a NotCorrectMessage names the offending line.
func ParseMessage(text string, kind RecordKind, suffixes SuffixTable) ([]ParsedLine, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("invalid record kind %q", kind)
	}

	var lines []ParsedLine
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		parsed, err := parseLine(line, suffixes)
		if err != nil {
			return nil, err
		}
		parsed.Kind = kind
		lines = append(lines, parsed)
	}
	if len(lines) == 0 {
		return nil, &NotCorrectMessage{Reason: "Пустое сообщение. Напишите сумму и категорию, например: 250 такси"}
	}
	return lines, nil
}

func parseLine(line string, suffixes SuffixTable) (ParsedLine, error) {
	token, remainder := splitFirstToken(line)

	first, _ := utf8.DecodeRuneInString(token)
	if !unicode.IsDigit(first) {
		return ParsedLine{}, &NotCorrectMessage{Reason: fmt.Sprintf(
			"Не пойму строку %q: она должна начинаться с суммы, например: 250 такси", line)}
	}
	if remainder == "" {
		return ParsedLine{}, &NotCorrectMessage{Reason: fmt.Sprintf(
			"Не пойму строку %q: после суммы нужна категория или описание, например: 250 такси", line)}
	}
	// An unrecognized suffix is a grammar failure like any other bad
	// amount, not a separate error kind.
	if _, _, err := ParseAmount(token, suffixes); err != nil {
		return ParsedLine{}, &NotCorrectMessage{Reason: fmt.Sprintf(
			"Не пойму сумму %q в строке %q", token, line)}
	}

	return ParsedLine{Raw: line, AmountToken: token, Remainder: remainder}, nil
}

func splitFirstToken(line string) (token, rest string) {
	if i := strings.IndexFunc(line, unicode.IsSpace); i >= 0 {
		return line[:i], strings.TrimSpace(line[i:])
	}
	return line, ""
}
