package bot

import (
	"fmt"
	"strings"

	"motorent-bot/model"
)

// formatBike renders one record for list pages.
func formatBike(b model.Bike) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🏍 %s | %s\n", orDash(b.Model), orDash(b.Plate))
	fmt.Fprintf(&sb, "💰 Цена сутки: %d | Месяц: %d\n", b.PriceDay, b.PriceMonth)
	fmt.Fprintf(&sb, "🔐 Залог: %s$ / %s VND\n", orZero(b.DepositUSD), orZero(b.DepositVND))
	if b.Status == model.StatusRented {
		fmt.Fprintf(&sb, "📅 Дата возврата: %s\n", orDash(b.EndDate))
	}
	sb.WriteString("--------------------------\n")
	return sb.String()
}

// termLabel renders a rental term: monthly terms show the month count with
// the day conversion the sheet stores.
func termLabel(days, months int) string {
	if months > 0 {
		return fmt.Sprintf("%d мес. (%d дн.)", months, days)
	}
	return fmt.Sprintf("%d дн.", days)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func orZero(s string) string {
	if s == "" {
		return "0"
	}
	return s
}
