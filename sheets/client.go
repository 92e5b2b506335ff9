// Package sheets talks to the Google Sheets backend: the fleet worksheet
// through a cached repository and the reports worksheet through a
// cumulative ledger updater.
package sheets

import (
	"context"
	"fmt"
	"strings"

	gsheets "google.golang.org/api/sheets/v4"
	"google.golang.org/api/option"
)

// Client wraps one worksheet of a spreadsheet. Values are read and written
// as strings; the sheet interprets them (USER_ENTERED).
type Client struct {
	svc           *gsheets.Service
	spreadsheetID string
	sheet         string
}

// NewService builds the shared Sheets service from service-account JSON.
func NewService(ctx context.Context, credentialsJSON []byte) (*gsheets.Service, error) {
	svc, err := gsheets.NewService(ctx,
		option.WithCredentialsJSON(credentialsJSON),
		option.WithScopes(gsheets.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return svc, nil
}

// NewClient binds a service to one worksheet.
func NewClient(svc *gsheets.Service, spreadsheetID, sheet string) *Client {
	return &Client{svc: svc, spreadsheetID: spreadsheetID, sheet: sheet}
}

func (c *Client) rng(a1 string) string {
	return fmt.Sprintf("'%s'!%s", c.sheet, a1)
}

// ReadAll returns every data row as a header-label→value map, in sheet
// order. Row N of the result slice corresponds to sheet row N+2.
func (c *Client) ReadAll(ctx context.Context) ([]map[string]string, error) {
	grid, err := c.ReadGrid(ctx)
	if err != nil {
		return nil, err
	}
	if len(grid) == 0 {
		return nil, nil
	}
	headers := grid[0]
	records := make([]map[string]string, 0, len(grid)-1)
	for _, row := range grid[1:] {
		rec := make(map[string]string, len(headers))
		for i, h := range headers {
			if i < len(row) {
				rec[h] = row[i]
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

// ReadGrid returns the whole worksheet, header row included, as strings.
func (c *Client) ReadGrid(ctx context.Context) ([][]string, error) {
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, c.rng("A:Z")).
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", c.sheet, err)
	}
	grid := make([][]string, len(resp.Values))
	for i, row := range resp.Values {
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = strings.TrimSpace(fmt.Sprint(v))
		}
		grid[i] = cells
	}
	return grid, nil
}

// UpdateRow writes only the given fields of one row. Column letters are
// resolved from the header row at write time, so column reordering between
// writes stays safe.
func (c *Client) UpdateRow(ctx context.Context, row int, fields map[string]string) error {
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, c.rng("1:1")).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read headers of %s: %w", c.sheet, err)
	}
	if len(resp.Values) == 0 {
		return fmt.Errorf("sheet %s has no header row", c.sheet)
	}

	index := make(map[string]int, len(resp.Values[0]))
	for i, v := range resp.Values[0] {
		index[strings.TrimSpace(fmt.Sprint(v))] = i + 1
	}

	var data []*gsheets.ValueRange
	for label, value := range fields {
		col, ok := index[label]
		if !ok {
			continue
		}
		data = append(data, &gsheets.ValueRange{
			Range:  c.rng(fmt.Sprintf("%s%d", ColumnLetter(col), row)),
			Values: [][]any{{value}},
		})
	}
	if len(data) == 0 {
		return nil
	}

	_, err = c.svc.Spreadsheets.Values.BatchUpdate(c.spreadsheetID, &gsheets.BatchUpdateValuesRequest{
		ValueInputOption: "USER_ENTERED",
		Data:             data,
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update row %d of %s: %w", row, c.sheet, err)
	}
	return nil
}

// UpdateCell writes a single cell; row and col are 1-based.
func (c *Client) UpdateCell(ctx context.Context, row, col int, value string) error {
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID,
		c.rng(fmt.Sprintf("%s%d", ColumnLetter(col), row)),
		&gsheets.ValueRange{Values: [][]any{{value}}}).
		ValueInputOption("USER_ENTERED").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update cell (%d,%d) of %s: %w", row, col, c.sheet, err)
	}
	return nil
}

// ColumnLetter converts a 1-based column number to its A1 letter form.
func ColumnLetter(col int) string {
	var s string
	for col > 0 {
		col--
		s = string(rune('A'+col%26)) + s
		col /= 26
	}
	return s
}
