package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"gopkg.in/telebot.v3"

	"motorent-bot/model"
)

// NotifyOverdue messages the admin chat with every rented bike whose planned
// end has passed. Intended to run from a daily cron job; a zero admin chat
// disables it.
func (bot *Bot) NotifyOverdue() {
	if bot.adminChat == 0 {
		return
	}

	bikes, err := bot.Repo.ByStatus(context.Background(), model.StatusRented)
	if err != nil {
		slog.Error("overdue check failed", "error", err)
		return
	}

	now := bot.now()
	var sb strings.Builder
	overdue := 0
	for _, b := range bikes {
		end, ok := b.PlannedEnd()
		if !ok || !end.Before(now) {
			continue
		}
		overdue++
		fmt.Fprintf(&sb, "🏍 %s | %s — до %s, контакт: %s\n",
			b.Model, b.Plate, b.EndDate, orDash(b.Contact))
	}
	if overdue == 0 {
		return
	}

	text := fmt.Sprintf("⏰ Просроченных аренд: %d\n\n%s", overdue, sb.String())
	if _, err := bot.tg.Send(&telebot.Chat{ID: bot.adminChat}, text); err != nil {
		slog.Error("overdue notification failed", "error", err)
	}
}
