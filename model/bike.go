package model

import (
	"strconv"
	"strings"
	"time"
)

// Statuses used in the fleet sheet.
const (
	StatusAvailable = "База"
	StatusRented    = "Аренда"
)

// Column labels of the fleet sheet. Rows are addressed by these labels,
// never by position: the sheet owner is free to reorder columns.
const (
	ColModel       = "МОДЕЛЬ"
	ColPlate       = "Гос. номер"
	ColStatus      = "Статус"
	ColPriceDay    = "Цена сутки"
	ColPriceMonth  = "Цена месяц"
	ColDepositUSD  = "Залог $"
	ColDepositVND  = "Залог VND"
	ColDepositNote = "Залог"
	ColDeposit     = "Депозит"
	ColStartDate   = "Дата начала аренды"
	ColEndDate     = "Дата окончания аренды"
	ColTerm        = "Срок аренды"
	ColAmount      = "Сумма"
	ColContact     = "Контакт клиента"
)

// SheetTimeLayout is the timestamp format stored in the sheet.
const SheetTimeLayout = "02.01.2006 15:04"

// Brands recognized by the brand filter; anything else falls into the
// synthetic "other" bucket.
var Brands = []string{"Honda", "Kawasaki", "Suzuki", "SYM", "Yamaha"}

// Bike is one row of the fleet sheet. Row is the 1-based sheet row number
// (header row is 1, so data rows start at 2) and acts as the record's
// identity for updates.
type Bike struct {
	Row        int
	Model      string
	Plate      string
	Status     string
	PriceDay   int
	PriceMonth int

	DepositUSD  string
	DepositVND  string
	DepositNote string
	Deposit     string

	StartDate string
	EndDate   string
	TermDays  int
	Amount    int
	Contact   string
}

// BikeFromRow builds a Bike from a label→value row map.
func BikeFromRow(row int, m map[string]string) Bike {
	return Bike{
		Row:         row,
		Model:       strings.TrimSpace(m[ColModel]),
		Plate:       strings.TrimSpace(m[ColPlate]),
		Status:      strings.TrimSpace(m[ColStatus]),
		PriceDay:    atoi(m[ColPriceDay]),
		PriceMonth:  atoi(m[ColPriceMonth]),
		DepositUSD:  strings.TrimSpace(m[ColDepositUSD]),
		DepositVND:  strings.TrimSpace(m[ColDepositVND]),
		DepositNote: strings.TrimSpace(m[ColDepositNote]),
		Deposit:     strings.TrimSpace(m[ColDeposit]),
		StartDate:   strings.TrimSpace(m[ColStartDate]),
		EndDate:     strings.TrimSpace(m[ColEndDate]),
		TermDays:    atoi(m[ColTerm]),
		Amount:      atoi(m[ColAmount]),
		Contact:     strings.TrimSpace(m[ColContact]),
	}
}

// PlannedEnd parses the stored rental end timestamp.
func (b Bike) PlannedEnd() (time.Time, bool) {
	if b.EndDate == "" {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(SheetTimeLayout, b.EndDate, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// FolderName is the Drive folder name used for this bike's media.
func (b Bike) FolderName() string {
	return b.Model + " " + b.Plate
}

// MatchesBrand reports whether the bike's model matches the brand token.
// Matching is a case-insensitive substring test; the synthetic token
// "other" matches models containing none of the known brands.
func (b Bike) MatchesBrand(brand string) bool {
	token := strings.ToLower(strings.TrimSpace(brand))
	m := strings.ToLower(b.Model)
	if token == "other" || token == "другие" {
		for _, known := range Brands {
			if strings.Contains(m, strings.ToLower(known)) {
				return false
			}
		}
		return true
	}
	return strings.Contains(m, token)
}

func atoi(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
