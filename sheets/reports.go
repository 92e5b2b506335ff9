package sheets

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// GridAPI is the slice of the sheet client the report updater needs.
type GridAPI interface {
	ReadGrid(ctx context.Context) ([][]string, error)
	UpdateCell(ctx context.Context, row, col int, value string) error
}

// Reports maintains the daily ledger worksheet: one row per date with
// daily issuance totals and month-cumulative totals carried forward from
// the previous day's row.
type Reports struct {
	api GridAPI
	now func() time.Time
}

// NewReports builds a report updater over the given worksheet.
func NewReports(api GridAPI) *Reports {
	return &Reports{api: api, now: time.Now}
}

const reportDateLayout = "02.01.2006"

// Report columns are located by header text, not position. Indices are
// 0-based, -1 when the column is absent.
type reportCols struct {
	date         int
	sum          int
	count        int
	monthlySum   int
	monthlyCount int
}

func locateColumns(headers []string) reportCols {
	cols := reportCols{date: -1, sum: -1, count: -1, monthlySum: -1, monthlyCount: -1}
	for i, h := range headers {
		h = strings.ToLower(strings.TrimSpace(h))
		switch {
		case strings.Contains(h, "дата"):
			cols.date = i
		case strings.Contains(h, "сумма выдачи"):
			cols.sum = i
		case strings.Contains(h, "количество выдач за месяц"):
			cols.monthlyCount = i
		case strings.Contains(h, "количество выдач"):
			cols.count = i
		case strings.Contains(h, "сумма за месяц в кассе"):
			cols.monthlySum = i
		}
	}
	return cols
}

func cellInt(row []string, col int) int {
	if col < 0 || col >= len(row) {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(row[col]))
	if err != nil {
		return 0
	}
	return n
}

// RecordRent adds a new rental to today's row: daily and monthly sums grow
// by the rental amount, daily and monthly issue counts by one.
func (r *Reports) RecordRent(ctx context.Context, sum int) error {
	return r.record(ctx, sum, true)
}

// RecordPayment adds an amount without touching the issue counts. Used for
// extensions and return fees, which are not new rentals.
func (r *Reports) RecordPayment(ctx context.Context, sum int) error {
	return r.record(ctx, sum, false)
}

func (r *Reports) record(ctx context.Context, sum int, countIssue bool) error {
	grid, err := r.api.ReadGrid(ctx)
	if err != nil {
		return fmt.Errorf("read reports: %w", err)
	}
	if len(grid) == 0 {
		return fmt.Errorf("reports sheet is empty")
	}
	cols := locateColumns(grid[0])
	if cols.date < 0 {
		return fmt.Errorf("reports sheet has no date column")
	}

	today := r.now().Format(reportDateLayout)
	yesterday := r.now().AddDate(0, 0, -1).Format(reportDateLayout)

	todayRow := 0 // 1-based sheet row
	var daySum, dayCount, monthSum, monthCount int
	for i, row := range grid[1:] {
		if cols.date < len(row) && row[cols.date] == today {
			todayRow = i + 2
			daySum = cellInt(row, cols.sum)
			dayCount = cellInt(row, cols.count)
			monthSum = cellInt(row, cols.monthlySum)
			monthCount = cellInt(row, cols.monthlyCount)
			break
		}
	}

	if todayRow == 0 {
		// New day: seed the monthly cumulatives from yesterday's row.
		for _, row := range grid[1:] {
			if cols.date < len(row) && row[cols.date] == yesterday {
				monthSum = cellInt(row, cols.monthlySum)
				monthCount = cellInt(row, cols.monthlyCount)
				break
			}
		}
		todayRow = len(grid) + 1
		if err := r.api.UpdateCell(ctx, todayRow, cols.date+1, today); err != nil {
			return err
		}
	}

	daySum += sum
	monthSum += sum
	if countIssue {
		dayCount++
		monthCount++
	}

	writes := []struct {
		col   int
		value int
	}{
		{cols.sum, daySum},
		{cols.count, dayCount},
		{cols.monthlySum, monthSum},
		{cols.monthlyCount, monthCount},
	}
	for _, w := range writes {
		if w.col < 0 {
			continue
		}
		if err := r.api.UpdateCell(ctx, todayRow, w.col+1, strconv.Itoa(w.value)); err != nil {
			return err
		}
	}
	return nil
}

// Today reads back today's issuance sum and count for the report view.
func (r *Reports) Today(ctx context.Context) (sum, count int, err error) {
	grid, err := r.api.ReadGrid(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("read reports: %w", err)
	}
	if len(grid) == 0 {
		return 0, 0, nil
	}
	cols := locateColumns(grid[0])
	if cols.date < 0 {
		return 0, 0, fmt.Errorf("reports sheet has no date column")
	}
	today := r.now().Format(reportDateLayout)
	for _, row := range grid[1:] {
		if cols.date < len(row) && row[cols.date] == today {
			return cellInt(row, cols.sum), cellInt(row, cols.count), nil
		}
	}
	return 0, 0, nil
}
