package rental

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
)

// Unit distinguishes day-priced from month-priced terms.
type Unit int

const (
	Daily Unit = iota
	Monthly
)

// ErrUnparseableTerm is returned for input that is neither a bare number of
// days nor "N месяцев".
var ErrUnparseableTerm = errors.New("unparseable rental term")

var monthRe = regexp.MustCompile(`(\d+)\s*(мес|month|месяц)`)

// ParseTerm parses a rental term typed by the operator. A bare integer is a
// number of days; an integer followed by a month word is a number of
// calendar months.
func ParseTerm(text string) (quantity int, unit Unit, months int, err error) {
	text = strings.ToLower(strings.TrimSpace(text))

	if m := monthRe.FindStringSubmatch(text); m != nil {
		n, convErr := strconv.Atoi(m[1])
		if convErr != nil || n <= 0 {
			return 0, Daily, 0, ErrUnparseableTerm
		}
		return n, Monthly, n, nil
	}

	if n, convErr := strconv.Atoi(text); convErr == nil && n > 0 {
		return n, Daily, 1, nil
	}

	return 0, Daily, 0, ErrUnparseableTerm
}
