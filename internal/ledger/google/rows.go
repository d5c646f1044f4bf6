package google

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"kopilka/internal/core"
)

// dateLayout is how record dates are written into the sheet.
const dateLayout = "2006-01-02"

// sheetRow pairs a decoded record with its zero-based sheet position,
// which DeleteDimension requests need.
type sheetRow struct {
	id         int64
	sheetIndex int
	rec        core.Record
}

// recordToRow encodes a record as one sheet row:
// ID | Date | Kind | Amount | Category | Description.
func recordToRow(id int64, rec core.Record) []any {
	return []any{
		id,
		rec.Date.Format(dateLayout),
		string(rec.Kind),
		rec.Amount,
		rec.Category,
		rec.Description,
	}
}

// parseRows decodes the values matrix returned by the Sheets API. Header
// rows and rows that do not start with a numeric id are skipped; a sheet
// edited by hand is read best-effort rather than rejected wholesale.
func parseRows(values [][]any) []sheetRow {
	var out []sheetRow
	for i, raw := range values {
		cols := toStrings(raw)
		if len(cols) < 4 {
			continue
		}
		id, err := strconv.ParseInt(cols[0], 10, 64)
		if err != nil {
			continue
		}
		date, err := time.ParseInLocation(dateLayout, cols[1], time.Local)
		if err != nil {
			continue
		}
		kind := core.RecordKind(cols[2])
		if !kind.Valid() {
			continue
		}
		amount, err := strconv.ParseInt(cols[3], 10, 64)
		if err != nil {
			continue
		}
		rec := core.Record{
			RowID:  formatRowID(id),
			Kind:   kind,
			Amount: amount,
			Date:   date,
		}
		if len(cols) > 4 {
			rec.Category = cols[4]
		}
		if len(cols) > 5 {
			rec.Description = cols[5]
		}
		out = append(out, sheetRow{id: id, sheetIndex: i, rec: rec})
	}
	return out
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func formatRowID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func parseRowID(s string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
