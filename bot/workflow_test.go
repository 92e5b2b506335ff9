package bot

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/telebot.v3"

	"motorent-bot/audit"
	"motorent-bot/model"
	"motorent-bot/sheets"
)

type fakeTG struct {
	sent    []string
	edited  []string
	deleted int
	nextID  int
}

func (f *fakeTG) Send(to telebot.Recipient, what interface{}, opts ...interface{}) (*telebot.Message, error) {
	f.nextID++
	if s, ok := what.(string); ok {
		f.sent = append(f.sent, s)
	}
	return &telebot.Message{ID: f.nextID, Chat: &telebot.Chat{ID: 1}}, nil
}

func (f *fakeTG) Edit(msg telebot.Editable, what interface{}, opts ...interface{}) (*telebot.Message, error) {
	if s, ok := what.(string); ok {
		f.edited = append(f.edited, s)
	}
	return nil, nil
}

func (f *fakeTG) Delete(msg telebot.Editable) error {
	f.deleted++
	return nil
}

func (f *fakeTG) File(file *telebot.File) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader("")), nil
}

func (f *fakeTG) lastSent() string {
	if len(f.sent) == 0 {
		return ""
	}
	return f.sent[len(f.sent)-1]
}

// testContext fakes only what the handlers touch; anything else panics,
// which in a test is as good as a failure message.
type testContext struct {
	telebot.Context
	text     string
	callback *telebot.Callback
}

func (c *testContext) Text() string                                   { return c.text }
func (c *testContext) Sender() *telebot.User                          { return &telebot.User{ID: 42} }
func (c *testContext) Chat() *telebot.Chat                            { return &telebot.Chat{ID: 1} }
func (c *testContext) Callback() *telebot.Callback                    { return c.callback }
func (c *testContext) Respond(resp ...*telebot.CallbackResponse) error { return nil }
func (c *testContext) Delete() error                                  { return nil }
func (c *testContext) Message() *telebot.Message {
	return &telebot.Message{ID: 5, Chat: &telebot.Chat{ID: 1}}
}

type fleetStub struct {
	rows    []map[string]string
	updates map[int]map[string]string
}

func (f *fleetStub) ReadAll(context.Context) ([]map[string]string, error) {
	return f.rows, nil
}

func (f *fleetStub) UpdateRow(_ context.Context, row int, fields map[string]string) error {
	if f.updates == nil {
		f.updates = map[int]map[string]string{}
	}
	f.updates[row] = fields
	for k, v := range fields {
		f.rows[row-2][k] = v
	}
	return nil
}

var ledgerHeaders = []string{
	"Дата", "Сумма выдачи", "Количество выдач", "Сумма за месяц в кассе", "Количество выдач за месяц",
}

type gridStub struct {
	grid [][]string
}

func newGridStub() *gridStub {
	return &gridStub{grid: [][]string{ledgerHeaders}}
}

func (g *gridStub) ReadGrid(context.Context) ([][]string, error) {
	out := make([][]string, len(g.grid))
	for i, row := range g.grid {
		out[i] = append([]string(nil), row...)
	}
	return out, nil
}

func (g *gridStub) UpdateCell(_ context.Context, row, col int, value string) error {
	for len(g.grid) < row {
		g.grid = append(g.grid, make([]string, len(ledgerHeaders)))
	}
	r := g.grid[row-1]
	for len(r) < col {
		r = append(r, "")
	}
	r[col-1] = value
	g.grid[row-1] = r
	return nil
}

func (g *gridStub) cell(row, col int) string {
	return g.grid[row-1][col-1]
}

func newTestBot(fleet *fleetStub, grid *gridStub) (*Bot, *fakeTG) {
	tg := &fakeTG{}
	b := &Bot{
		tg:       tg,
		Repo:     sheets.NewRepository(fleet, time.Hour),
		sessions: newSessions(),
		now: func() time.Time {
			return time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
		},
	}
	if grid != nil {
		b.Reports = sheets.NewReports(grid)
	}
	return b, tg
}

func availableBike() map[string]string {
	return map[string]string{
		model.ColModel:      "Honda Vision",
		model.ColPlate:      "A1",
		model.ColStatus:     model.StatusAvailable,
		model.ColPriceDay:   "150000",
		model.ColPriceMonth: "2600000",
	}
}

func rentedBike() map[string]string {
	return map[string]string{
		model.ColModel:      "Honda Vision",
		model.ColPlate:      "A1",
		model.ColStatus:     model.StatusRented,
		model.ColPriceDay:   "150000",
		model.ColPriceMonth: "2600000",
		model.ColEndDate:    "10.04.2026 12:00",
		model.ColTerm:       "30",
		model.ColAmount:     "2600000",
	}
}

func TestDaysEnteredDaily(t *testing.T) {
	b, _ := newTestBot(&fleetStub{rows: []map[string]string{availableBike()}}, nil)
	s := b.sessions.get(42)
	s.State = StateEnterDays
	s.Row = 2

	require.NoError(t, b.handleText(&testContext{text: "3"}))

	assert.Equal(t, 3, s.Days)
	assert.Equal(t, 450000, s.Sum)
	assert.Zero(t, s.Months)
	assert.Equal(t, StateEnterDepositType, s.State)
}

func TestDaysEnteredMonthly(t *testing.T) {
	b, tg := newTestBot(&fleetStub{rows: []map[string]string{availableBike()}}, nil)
	s := b.sessions.get(42)
	s.State = StateEnterDays
	s.Row = 2

	require.NoError(t, b.handleText(&testContext{text: "2 месяца"}))

	assert.Equal(t, 2, s.Months)
	assert.Equal(t, 61, s.Days) // March 10 to May 10
	assert.Equal(t, 5200000, s.Sum)
	assert.Equal(t, StateEnterDepositType, s.State)
	assert.Contains(t, tg.lastSent(), "2 мес.")
}

func TestDaysEnteredRejectsGarbage(t *testing.T) {
	b, tg := newTestBot(&fleetStub{rows: []map[string]string{availableBike()}}, nil)
	s := b.sessions.get(42)
	s.State = StateEnterDays
	s.Row = 2

	require.NoError(t, b.handleText(&testContext{text: "abc"}))

	assert.Equal(t, StateEnterDays, s.State, "bad input must not advance")
	assert.Contains(t, tg.lastSent(), "Ошибка")
}

func TestRentFinalRecordsIssue(t *testing.T) {
	fleet := &fleetStub{rows: []map[string]string{availableBike()}}
	grid := newGridStub()
	b, _ := newTestBot(fleet, grid)
	s := b.sessions.get(42)
	s.State = StateConfirmRent
	s.Row = 2
	s.Days = 3
	s.Sum = 450000
	s.Deposit = "100$ Новые"
	s.Contact = "@client"

	require.NoError(t, b.rentFinal(&testContext{callback: &telebot.Callback{}}, s))

	assert.Equal(t, model.StatusRented, fleet.updates[2][model.ColStatus])
	assert.Equal(t, "3", fleet.updates[2][model.ColTerm])
	assert.Equal(t, "450000", grid.cell(2, 2))
	assert.Equal(t, "1", grid.cell(2, 3), "a rental is an issuance")
	assert.Equal(t, StateMenu, b.sessions.get(42).State)
}

func TestExtendTermEnteredMonthly(t *testing.T) {
	b, _ := newTestBot(&fleetStub{rows: []map[string]string{rentedBike()}}, nil)
	s := b.sessions.get(42)
	s.State = StateExtendEnterTerm
	s.Row = 2

	require.NoError(t, b.handleText(&testContext{text: "1 месяц"}))

	// Runs from the planned end 10.04, landing on 10.05.
	assert.Equal(t, 30, s.Days)
	assert.Equal(t, 2600000, s.Sum)
	assert.Equal(t, StateExtendConfirm, s.State)
}

func TestExtendFinalRecordsPaymentOnly(t *testing.T) {
	fleet := &fleetStub{rows: []map[string]string{rentedBike()}}
	grid := newGridStub()
	b, _ := newTestBot(fleet, grid)
	s := b.sessions.get(42)
	s.State = StateExtendConfirm
	s.Row = 2
	s.Days = 30
	s.Sum = 2600000

	require.NoError(t, b.extendFinal(&testContext{callback: &telebot.Callback{}}, s))

	assert.Equal(t, "60", fleet.updates[2][model.ColTerm])
	assert.Equal(t, "5200000", fleet.updates[2][model.ColAmount])
	assert.Equal(t, "2600000", grid.cell(2, 2))
	assert.Equal(t, "0", grid.cell(2, 3), "an extension is not an issuance")
	assert.Equal(t, StateMenu, b.sessions.get(42).State)
}

func TestHandleLog(t *testing.T) {
	store, err := audit.Open(filepath.Join(t.TempDir(), "audit.db"))
	require.NoError(t, err)
	b, tg := newTestBot(&fleetStub{}, nil)
	b.Audit = store
	require.NoError(t, store.Record(1, audit.OpRent, "A1", 450000, ""))

	require.NoError(t, b.handleLog(&testContext{}))

	assert.Contains(t, tg.lastSent(), "A1")
	assert.Contains(t, tg.lastSent(), "выдача")
}

func TestHandleLogNonAdminIgnored(t *testing.T) {
	store, err := audit.Open(filepath.Join(t.TempDir(), "audit.db"))
	require.NoError(t, err)
	b, tg := newTestBot(&fleetStub{}, nil)
	b.Audit = store
	b.adminChat = 99 // test chat is 1

	require.NoError(t, b.handleLog(&testContext{}))
	assert.Empty(t, tg.sent)
}
