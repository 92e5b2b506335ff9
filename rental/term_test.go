package rental

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTerm(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		quantity int
		unit     Unit
		months   int
		wantErr  bool
	}{
		{name: "bare days", input: "5", quantity: 5, unit: Daily, months: 1},
		{name: "days with spaces", input: "  14 ", quantity: 14, unit: Daily, months: 1},
		{name: "one month ru", input: "1 месяц", quantity: 1, unit: Monthly, months: 1},
		{name: "two months ru", input: "2 месяца", quantity: 2, unit: Monthly, months: 2},
		{name: "months short form", input: "3 мес", quantity: 3, unit: Monthly, months: 3},
		{name: "months english", input: "2 months", quantity: 2, unit: Monthly, months: 2},
		{name: "no space before unit", input: "6мес", quantity: 6, unit: Monthly, months: 6},
		{name: "uppercase", input: "2 МЕСЯЦА", quantity: 2, unit: Monthly, months: 2},
		{name: "garbage", input: "abc", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "zero days", input: "0", wantErr: true},
		{name: "negative days", input: "-3", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quantity, unit, months, err := ParseTerm(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUnparseableTerm)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.quantity, quantity)
			assert.Equal(t, tt.unit, unit)
			assert.Equal(t, tt.months, months)
		})
	}
}
