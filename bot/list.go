package bot

import (
	"context"
	"fmt"
	"strings"

	"gopkg.in/telebot.v3"

	"motorent-bot/model"
	"motorent-bot/pager"
)

// showFreeBikes lists every bike currently at the base, across all brands.
// It is a read-only view and leaves the workflow state untouched.
func (bot *Bot) showFreeBikes(c telebot.Context, s *Session, page int) error {
	bikes, err := bot.Repo.ByStatus(context.Background(), model.StatusAvailable)
	if err != nil {
		return bot.alert(c, "Не удалось получить список байков. Попробуйте ещё раз.")
	}
	if len(bikes) == 0 {
		return bot.alert(c, "Свободных байков нет")
	}

	pages := pager.Pages(bikes, formatBike)
	page = pager.Clamp(page, len(pages))

	var sb strings.Builder
	fmt.Fprintf(&sb, "🆓 Свободные байки (Стр. %d/%d):\n\n", page+1, len(pages))
	for _, b := range pages[page] {
		sb.WriteString(formatBike(b))
	}

	return bot.showStep(c, s, sb.String(), pageMarkup(cbFreePage, page, len(pages)))
}

func (bot *Bot) showReport(c telebot.Context, s *Session) error {
	sum, count, err := bot.Reports.Today(context.Background())
	if err != nil {
		return bot.alert(c, "Не удалось прочитать отчёт. Попробуйте ещё раз.")
	}

	text := fmt.Sprintf(
		"📊 ОТЧЁТ\n\nСегодня (%s)\n💰 Сумма выдачи: %d VND\n🔢 Количество выдач: %d",
		bot.now().Format("02.01.2006"), sum, count)
	return bot.showStep(c, s, text, backMarkup())
}
