package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBikeFromRow(t *testing.T) {
	b := BikeFromRow(5, map[string]string{
		ColModel:      " Honda Vision ",
		ColPlate:      "59X1-123.45",
		ColStatus:     StatusRented,
		ColPriceDay:   "120000",
		ColPriceMonth: "2600000",
		ColDepositUSD: "300",
		ColStartDate:  "01.03.2026 10:00",
		ColEndDate:    "08.03.2026 10:00",
		ColTerm:       "7",
		ColAmount:     "840000",
		ColContact:    "@client",
	})

	assert.Equal(t, 5, b.Row)
	assert.Equal(t, "Honda Vision", b.Model)
	assert.Equal(t, "59X1-123.45", b.Plate)
	assert.Equal(t, 120000, b.PriceDay)
	assert.Equal(t, 2600000, b.PriceMonth)
	assert.Equal(t, 7, b.TermDays)
	assert.Equal(t, 840000, b.Amount)
	assert.Equal(t, "Honda Vision 59X1-123.45", b.FolderName())
}

func TestBikeFromRowBlankNumbers(t *testing.T) {
	b := BikeFromRow(2, map[string]string{
		ColModel:    "Yamaha Nouvo",
		ColPriceDay: "not-a-number",
	})
	assert.Zero(t, b.PriceDay)
	assert.Zero(t, b.Amount)
	assert.Zero(t, b.TermDays)
}

func TestPlannedEnd(t *testing.T) {
	b := Bike{EndDate: "08.03.2026 15:30"}
	end, ok := b.PlannedEnd()
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, time.March, 8, 15, 30, 0, 0, time.Local), end)

	_, ok = Bike{}.PlannedEnd()
	assert.False(t, ok)

	_, ok = Bike{EndDate: "soon"}.PlannedEnd()
	assert.False(t, ok)
}

func TestMatchesBrand(t *testing.T) {
	tests := []struct {
		model string
		brand string
		want  bool
	}{
		{"Honda Vision", "Honda", true},
		{"Honda Vision", "honda", true},
		{"Honda Vision", "Yamaha", false},
		{"YAMAHA Nouvo", "yamaha", true},
		{"Vespa Sprint", "other", true},
		{"Vespa Sprint", "Другие", true},
		{"Honda Vision", "other", false},
		{"SYM Attila", "SYM", true},
	}

	for _, tt := range tests {
		b := Bike{Model: tt.model}
		assert.Equal(t, tt.want, b.MatchesBrand(tt.brand), "%s vs %s", tt.model, tt.brand)
	}
}
