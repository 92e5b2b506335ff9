package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"gopkg.in/telebot.v3"

	"motorent-bot/audit"
	"motorent-bot/model"
	"motorent-bot/pager"
	"motorent-bot/rental"
)

func (bot *Bot) startExtend(c telebot.Context, s *Session) error {
	s.State = StateExtendChooseBrand
	return bot.showStep(c, s, "Продление. Выберите модель:", brandsMarkup(cbExtBrand))
}

func (bot *Bot) showExtendBikes(c telebot.Context, s *Session, page int) error {
	if s.Brand == "" {
		if err := bot.alert(c, "Сессия истекла. Выберите категорию заново."); err != nil {
			return err
		}
		return bot.startExtend(c, s)
	}

	bikes, err := bot.Repo.ByBrand(context.Background(), s.Brand, model.StatusRented)
	if err != nil {
		return bot.alert(c, "Не удалось получить список байков. Попробуйте ещё раз.")
	}
	if len(bikes) == 0 {
		return bot.alert(c, "Нет байков этой модели в аренде")
	}

	pages := pager.Pages(bikes, formatBike)
	page = pager.Clamp(page, len(pages))

	var sb strings.Builder
	fmt.Fprintf(&sb, "🔄 Продление %s (Стр. %d/%d):\n\n", s.Brand, page+1, len(pages))
	for _, b := range pages[page] {
		sb.WriteString(formatBike(b))
	}

	s.State = StateExtendChooseBike
	return bot.showStep(c, s, sb.String(),
		listMarkup(pages[page], cbExtSel, cbExtPage, page, len(pages)))
}

func (bot *Bot) extendBikeSelected(c telebot.Context, s *Session, row int) error {
	if s.State != StateExtendChooseBike || row == 0 {
		return c.Respond()
	}
	s.Row = row
	return bot.promptExtendTerm(c, s)
}

func (bot *Bot) promptExtendTerm(c telebot.Context, s *Session) error {
	s.State = StateExtendEnterTerm
	return bot.showStep(c, s, "Срок продления (дней или 'N месяцев'):", backMarkup())
}

// extendTermEntered computes the added days and cost. Monthly extensions
// run from the current planned end, so the new end lands on the same
// calendar day months later.
func (bot *Bot) extendTermEntered(c telebot.Context, s *Session) error {
	qty, unit, months, err := rental.ParseTerm(c.Text())
	if err != nil {
		return bot.sendTracked(c, s, "❌ Введите корректный срок (например: '5' или '1 месяц')!")
	}

	bike, err := bot.Repo.Get(context.Background(), s.Row)
	if err != nil {
		return bot.sendTracked(c, s, "❌ Не удалось прочитать данные байка. Попробуйте ещё раз.")
	}

	if unit == rental.Monthly {
		base, ok := bike.PlannedEnd()
		if !ok {
			base = bot.now()
		}
		newEnd := rental.AddMonths(base, months)
		s.Days = int(newEnd.Sub(base).Hours() / 24)
		s.Sum = bike.PriceMonth * months
	} else {
		s.Days = qty
		s.Sum = bike.PriceDay * qty
	}

	text := fmt.Sprintf("Продление: %s\n➕ Срок: %s\n💰 К оплате: %d VND",
		bike.Model, strings.TrimSpace(c.Text()), s.Sum)
	s.State = StateExtendConfirm
	return bot.showStep(c, s, text, confirmMarkup("✅ Подтвердить", cbExtFinal))
}

// extendFinal adds to the stored term and accumulated sum. The report gets
// the amount only: an extension is not a new issuance.
func (bot *Bot) extendFinal(c telebot.Context, s *Session) error {
	if s.State != StateExtendConfirm {
		return c.Respond()
	}
	ctx := context.Background()

	bike, err := bot.Repo.Get(ctx, s.Row)
	if err != nil {
		return bot.alert(c, "Не удалось прочитать данные байка. Попробуйте ещё раз.")
	}

	newTerm := bike.TermDays + s.Days
	newSum := bike.Amount + s.Sum
	if err := bot.Repo.Update(ctx, s.Row, map[string]string{
		model.ColTerm:   strconv.Itoa(newTerm),
		model.ColAmount: strconv.Itoa(newSum),
	}); err != nil {
		slog.Error("extend commit failed", "row", s.Row, "error", err)
		return bot.showStep(c, s,
			"❌ Ошибка при обновлении. Попробуйте нажать кнопку еще раз.",
			retryMarkup(cbExtFinal))
	}

	if err := bot.Reports.RecordPayment(ctx, s.Sum); err != nil {
		slog.Error("report update failed", "error", err)
	}
	bot.recordAudit(c, audit.OpExtend, bike, s.Sum, "")

	newEnd := "Не указана"
	if updated, err := bot.Repo.GetAll(ctx, true); err == nil {
		for _, u := range updated {
			if u.Row == s.Row && u.EndDate != "" {
				newEnd = u.EndDate
				break
			}
		}
	}

	text := fmt.Sprintf(
		"✅ Продлено!\n\n🏍 %s\n🔢 %s\n📞 Контакт: %s\n💰 Доплата: %d VND\n💵 Общая сумма: %d VND\n📅 Новая дата окончания: %s",
		bike.Model, bike.Plate, orDash(bike.Contact), s.Sum, newSum, newEnd)
	return bot.finishToMenu(c, s, text)
}
