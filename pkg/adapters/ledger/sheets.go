package ledger

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/aretw0/uranai/pkg/domain"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// DefaultSheetName is used when a sheets DSN names no tab.
const DefaultSheetName = "Sheet1"

// sheetColumns is the A1 column span of one row.
const sheetColumns = "A:F"

// SheetsSink appends one row per request to a Google Sheets tab:
// created_at, user_id, name, birth, theme, report.
type SheetsSink struct {
	values        *sheets.SpreadsheetsValuesService
	spreadsheetID string
	sheet         string
}

// NewSheetsSink connects to the spreadsheet. Without client options the
// service uses Application Default Credentials.
func NewSheetsSink(ctx context.Context, spreadsheetID, sheet string, opts ...option.ClientOption) (*SheetsSink, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet id not set")
	}
	if sheet == "" {
		sheet = DefaultSheetName
	}
	opts = append([]option.ClientOption{option.WithScopes(sheets.SpreadsheetsScope)}, opts...)
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	return &SheetsSink{values: svc.Spreadsheets.Values, spreadsheetID: spreadsheetID, sheet: sheet}, nil
}

// openSheets parses sheets://<spreadsheetID>/<sheet>?credentials=<file>.
func openSheets(dsn string) (*SheetsSink, error) {
	u, err := url.Parse(strings.TrimSpace(dsn))
	if err != nil {
		return nil, fmt.Errorf("invalid sheets DSN: %w", err)
	}
	var opts []option.ClientOption
	if creds := u.Query().Get("credentials"); creds != "" {
		opts = append(opts, option.WithCredentialsFile(creds))
	}
	return NewSheetsSink(context.Background(), u.Host, strings.Trim(u.Path, "/"), opts...)
}

func (s *SheetsSink) rangeA1() string {
	return fmt.Sprintf("'%s'!%s", strings.ReplaceAll(s.sheet, "'", "''"), sheetColumns)
}

func (s *SheetsSink) Append(ctx context.Context, e domain.LedgerEntry) error {
	row := []interface{}{
		e.CreatedAt.UTC().Format(time.RFC3339),
		e.UserID,
		e.Name,
		e.Birth,
		e.Theme,
		e.Report,
	}
	_, err := s.values.Append(s.spreadsheetID, s.rangeA1(), &sheets.ValueRange{Values: [][]interface{}{row}}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to append ledger row: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first. Rows whose first cell
// is not a timestamp, such as a header row, are skipped.
func (s *SheetsSink) Recent(ctx context.Context, limit int) ([]domain.LedgerEntry, error) {
	resp, err := s.values.Get(s.spreadsheetID, s.rangeA1()).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger rows: %w", err)
	}

	out := make([]domain.LedgerEntry, 0, min(limit, len(resp.Values)))
	for i := len(resp.Values) - 1; i >= 0 && len(out) < limit; i-- {
		e, ok := rowEntry(resp.Values[i])
		if !ok {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (s *SheetsSink) Close() error { return nil }

func rowEntry(row []interface{}) (domain.LedgerEntry, bool) {
	cell := func(i int) string {
		if i >= len(row) {
			return ""
		}
		return fmt.Sprint(row[i])
	}
	created, err := time.Parse(time.RFC3339, cell(0))
	if err != nil {
		return domain.LedgerEntry{}, false
	}
	return domain.LedgerEntry{
		CreatedAt: created,
		UserID:    cell(1),
		Name:      cell(2),
		Birth:     cell(3),
		Theme:     cell(4),
		Report:    cell(5),
	}, true
}
