// Package google is the Google Sheets ledger backend. One spreadsheet tab
// holds the whole ledger; row identity lives in the ID column, so sheet
// row numbers may shift on deletion without breaking references.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"kopilka/internal/core"
	"kopilka/internal/ledger"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string

	// Numeric sheet id, resolved lazily for DeleteDimension requests.
	sheetID      int64
	sheetIDKnown bool
}

var _ ledger.Ledger = (*Client)(nil)

// New creates a Sheets ledger client for one spreadsheet tab.
// Credentials come from GOOGLE_SERVICE_ACCOUNT_JSON,
// GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_APPLICATION_CREDENTIALS.
func New(ctx context.Context, spreadsheetID, sheetName string) (*Client, error) {
	if strings.TrimSpace(spreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if strings.TrimSpace(sheetName) == "" {
		sheetName = "Ledger"
	}
	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return &Client{svc: svc, spreadsheetID: spreadsheetID, sheetName: sheetName}, nil
}

func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// Append implements ledger.Appender. The new row id is one past the
// largest id currently in the sheet.
func (c *Client) Append(ctx context.Context, rec core.Record) (string, error) {
	if err := rec.Validate(); err != nil {
		return "", fmt.Errorf("validate record: %w", err)
	}
	rows, err := c.readAll(ctx)
	if err != nil {
		return "", err
	}
	var maxID int64
	for _, row := range rows {
		if row.id > maxID {
			maxID = row.id
		}
	}
	id := maxID + 1
	if err := c.AppendRow(ctx, id, rec); err != nil {
		return "", err
	}
	return formatRowID(id), nil
}

// AppendRow writes a record under an explicit id. The mirror worker uses
// it to keep archive ids equal to the source SQLite ids.
func (c *Client) AppendRow(ctx context.Context, id int64, rec core.Record) error {
	rng := fmt.Sprintf("%s!A:F", c.sheetName)
	vr := &gsheet.ValueRange{Values: [][]any{recordToRow(id, rec)}}
	_, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append row to %s: %w", c.sheetName, err)
	}
	slog.InfoContext(ctx, "Record appended to sheet",
		"id", id, "sheet", c.sheetName, "kind", rec.Kind, "amount", rec.Amount)
	return nil
}

// Delete implements ledger.Deleter: it removes the sheet row whose ID
// column matches. A missing id reports not-found without error.
func (c *Client) Delete(ctx context.Context, rowID string) (bool, error) {
	id, ok := parseRowID(rowID)
	if !ok {
		return false, nil
	}
	rows, err := c.readAll(ctx)
	if err != nil {
		return false, err
	}
	idx := -1
	for _, row := range rows {
		if row.id == id {
			idx = row.sheetIndex
			break
		}
	}
	if idx < 0 {
		return false, nil
	}

	sheetID, err := c.resolveSheetID(ctx)
	if err != nil {
		return false, err
	}
	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			DeleteDimension: &gsheet.DeleteDimensionRequest{
				Range: &gsheet.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "ROWS",
					StartIndex: int64(idx),
					EndIndex:   int64(idx + 1),
				},
			},
		}},
	}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return false, fmt.Errorf("delete row %d from %s: %w", id, c.sheetName, err)
	}
	slog.InfoContext(ctx, "Record deleted from sheet", "id", id, "sheet", c.sheetName)
	return true, nil
}

// Scan implements ledger.Scanner.
func (c *Client) Scan(ctx context.Context, from, to time.Time) ([]core.Record, error) {
	rows, err := c.readAll(ctx)
	if err != nil {
		return nil, err
	}
	var out []core.Record
	for _, row := range rows {
		if row.rec.Date.Before(from) || row.rec.Date.After(to) {
			continue
		}
		out = append(out, row.rec)
	}
	return out, nil
}

// ScanLatest implements ledger.Scanner, newest first. Sheet order is
// append order, so the tail of the sheet is the newest data.
func (c *Client) ScanLatest(ctx context.Context, n int) ([]core.Record, error) {
	if n <= 0 {
		return nil, nil
	}
	rows, err := c.readAll(ctx)
	if err != nil {
		return nil, err
	}
	start := len(rows) - n
	if start < 0 {
		start = 0
	}
	out := make([]core.Record, 0, len(rows)-start)
	for i := len(rows) - 1; i >= start; i-- {
		out = append(out, rows[i].rec)
	}
	return out, nil
}

func (c *Client) readAll(ctx context.Context) ([]sheetRow, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	rng := fmt.Sprintf("%s!A:F", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	return parseRows(resp.Values), nil
}

func (c *Client) resolveSheetID(ctx context.Context) (int64, error) {
	if c.sheetIDKnown {
		return c.sheetID, nil
	}
	meta, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("get spreadsheet metadata: %w", err)
	}
	for _, s := range meta.Sheets {
		if s.Properties != nil && s.Properties.Title == c.sheetName {
			c.sheetID = s.Properties.SheetId
			c.sheetIDKnown = true
			return c.sheetID, nil
		}
	}
	return 0, fmt.Errorf("sheet %q not found in spreadsheet", c.sheetName)
}
