package rental

import (
	"fmt"
	"math"
	"time"
)

// WashFee is the flat charge for washing a returned bike, in VND.
const WashFee = 50000

// OverdueTag classifies how late a return is.
type OverdueTag int

const (
	EarlyReturn OverdueTag = iota
	OnTime
	ShortGrace
	MidGrace
	FullDayGrace
	DailyOverdue
	MonthlyOverdue
)

const shortGraceFee = 50000

// AddMonths advances t by n calendar months, clamping to the last day of
// the target month (31 Jan + 1 month is 28/29 Feb, never 2/3 Mar).
func AddMonths(t time.Time, n int) time.Time {
	year, month, day := t.Date()
	first := time.Date(year, month+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if last := daysIn(first.Year(), first.Month()); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Cost computes the rental duration in days and the total cost.
// Daily terms are quantity days at the daily price. Monthly terms run to
// the same calendar day quantity months ahead at the monthly price.
func Cost(unit Unit, quantity, priceDay, priceMonth int, now time.Time) (days, total int) {
	if unit == Monthly {
		end := AddMonths(now, quantity)
		days = int(end.Sub(now).Hours() / 24)
		return days, priceMonth * quantity
	}
	return quantity, priceDay * quantity
}

// OverdueFee applies the return-lateness policy against the planned end.
//
// Same-day returns get a graduated grace: up to 30 minutes free, up to an
// hour a flat fee, up to three hours half a day's price, beyond that a full
// day. Later returns pay per overdue day, switching to monthly billing
// whenever that is strictly cheaper.
func OverdueFee(plannedEnd, now time.Time, priceDay, priceMonth int) (fee int, tag OverdueTag, daysLate int) {
	ny, nm, nd := now.Date()
	py, pm, pd := plannedEnd.Date()
	nowDate := time.Date(ny, nm, nd, 0, 0, 0, 0, time.UTC)
	endDate := time.Date(py, pm, pd, 0, 0, 0, 0, time.UTC)

	if nowDate.Before(endDate) {
		return 0, EarlyReturn, 0
	}

	delta := now.Sub(plannedEnd)
	if nowDate.Equal(endDate) {
		minutes := delta.Minutes()
		switch {
		case minutes <= 30:
			return 0, OnTime, 0
		case minutes <= 60:
			return shortGraceFee, ShortGrace, 0
		case minutes <= 180:
			return priceDay / 2, MidGrace, 0
		default:
			return priceDay, FullDayGrace, 0
		}
	}

	daysLate = int(math.Ceil(delta.Hours() / 24))
	if priceMonth < priceDay*daysLate {
		months := (daysLate + 29) / 30
		return priceMonth * months, MonthlyOverdue, daysLate
	}
	return priceDay * daysLate, DailyOverdue, daysLate
}

// Describe renders the fee classification as an operator-facing line.
func (t OverdueTag) Describe(daysLate int) string {
	switch t {
	case EarlyReturn:
		return "✅ Сдано раньше срока."
	case OnTime:
		return "✅ Сдано вовремя."
	case ShortGrace:
		return "⏱ Просрочка до 1 часа."
	case MidGrace:
		return "⏱ Просрочка до 3 часов."
	case FullDayGrace:
		return "⏱ Просрочка более 3 часов."
	case MonthlyOverdue:
		months := (daysLate + 29) / 30
		return fmt.Sprintf("📅 Просрочка %d дн. Оплата за %d мес.", daysLate, months)
	default:
		return fmt.Sprintf("📅 Просрочка %d дн. Оплата посуточно.", daysLate)
	}
}
