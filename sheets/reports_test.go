package sheets

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var reportHeaders = []string{
	"Дата", "Сумма выдачи", "Количество выдач", "Сумма за месяц в кассе", "Количество выдач за месяц",
}

type fakeGrid struct {
	grid [][]string
}

func (f *fakeGrid) ReadGrid(context.Context) ([][]string, error) {
	out := make([][]string, len(f.grid))
	for i, row := range f.grid {
		out[i] = append([]string(nil), row...)
	}
	return out, nil
}

func (f *fakeGrid) UpdateCell(_ context.Context, row, col int, value string) error {
	for len(f.grid) < row {
		f.grid = append(f.grid, make([]string, len(reportHeaders)))
	}
	r := f.grid[row-1]
	for len(r) < col {
		r = append(r, "")
	}
	r[col-1] = value
	f.grid[row-1] = r
	return nil
}

func (f *fakeGrid) cell(row, col int) string {
	return f.grid[row-1][col-1]
}

func newReportsAt(grid [][]string, now time.Time) (*Reports, *fakeGrid) {
	api := &fakeGrid{grid: grid}
	r := NewReports(api)
	r.now = func() time.Time { return now }
	return r, api
}

func TestLocateColumns(t *testing.T) {
	cols := locateColumns(reportHeaders)
	assert.Equal(t, 0, cols.date)
	assert.Equal(t, 1, cols.sum)
	assert.Equal(t, 2, cols.count)
	assert.Equal(t, 3, cols.monthlySum)
	assert.Equal(t, 4, cols.monthlyCount)
}

// "Количество выдач за месяц" contains "Количество выдач": header order in
// the sheet must not matter.
func TestLocateColumnsMonthlyCountFirst(t *testing.T) {
	cols := locateColumns([]string{"Количество выдач за месяц", "Количество выдач"})
	assert.Equal(t, 0, cols.monthlyCount)
	assert.Equal(t, 1, cols.count)
}

func TestRecordRentExistingDay(t *testing.T) {
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	r, api := newReportsAt([][]string{
		reportHeaders,
		{"09.03.2026", "500000", "2", "3000000", "12"},
		{"10.03.2026", "200000", "1", "3200000", "13"},
	}, now)

	require.NoError(t, r.RecordRent(context.Background(), 150000))

	assert.Equal(t, "350000", api.cell(3, 2))
	assert.Equal(t, "2", api.cell(3, 3))
	assert.Equal(t, "3350000", api.cell(3, 4))
	assert.Equal(t, "14", api.cell(3, 5))
}

func TestRecordRentNewDayCarriesMonthly(t *testing.T) {
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	r, api := newReportsAt([][]string{
		reportHeaders,
		{"09.03.2026", "500000", "2", "3000000", "12"},
	}, now)

	require.NoError(t, r.RecordRent(context.Background(), 150000))

	assert.Equal(t, "10.03.2026", api.cell(3, 1))
	assert.Equal(t, "150000", api.cell(3, 2))
	assert.Equal(t, "1", api.cell(3, 3))
	assert.Equal(t, "3150000", api.cell(3, 4))
	assert.Equal(t, "13", api.cell(3, 5))
}

func TestRecordRentNewDayNoYesterday(t *testing.T) {
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	r, api := newReportsAt([][]string{reportHeaders}, now)

	require.NoError(t, r.RecordRent(context.Background(), 150000))

	assert.Equal(t, "150000", api.cell(2, 2))
	assert.Equal(t, "1", api.cell(2, 3))
	assert.Equal(t, "150000", api.cell(2, 4))
	assert.Equal(t, "1", api.cell(2, 5))
}

func TestRecordPaymentKeepsCounts(t *testing.T) {
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	r, api := newReportsAt([][]string{
		reportHeaders,
		{"10.03.2026", "200000", "1", "3200000", "13"},
	}, now)

	require.NoError(t, r.RecordPayment(context.Background(), 50000))

	assert.Equal(t, "250000", api.cell(2, 2))
	assert.Equal(t, "1", api.cell(2, 3))
	assert.Equal(t, "3250000", api.cell(2, 4))
	assert.Equal(t, "13", api.cell(2, 5))
}

func TestToday(t *testing.T) {
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	r, _ := newReportsAt([][]string{
		reportHeaders,
		{"10.03.2026", "200000", "3", "3200000", "13"},
	}, now)

	sum, count, err := r.Today(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 200000, sum)
	assert.Equal(t, 3, count)
}

func TestTodayNoRowYet(t *testing.T) {
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	r, _ := newReportsAt([][]string{reportHeaders}, now)

	sum, count, err := r.Today(context.Background())
	require.NoError(t, err)
	assert.Zero(t, sum)
	assert.Zero(t, count)
}

func TestRecordAccumulates(t *testing.T) {
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	r, api := newReportsAt([][]string{reportHeaders}, now)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, r.RecordRent(ctx, 100000))
	}

	assert.Equal(t, strconv.Itoa(300000), api.cell(2, 2))
	assert.Equal(t, "3", api.cell(2, 3))
}
