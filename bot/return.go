package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"gopkg.in/telebot.v3"

	"motorent-bot/audit"
	"motorent-bot/drive"
	"motorent-bot/model"
	"motorent-bot/pager"
	"motorent-bot/rental"
)

func (bot *Bot) startReturn(c telebot.Context, s *Session) error {
	s.State = StateReturnChooseBrand
	return bot.showStep(c, s, "Возврат. Выберите модель:", brandsMarkup(cbRetBrand))
}

func (bot *Bot) showReturnBikes(c telebot.Context, s *Session, page int) error {
	if s.Brand == "" {
		if err := bot.alert(c, "Сессия истекла. Выберите категорию заново."); err != nil {
			return err
		}
		return bot.startReturn(c, s)
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
	fmt.Fprintf(&sb, "🔄 Возврат %s (Стр. %d/%d):\n\n", s.Brand, page+1, len(pages))
	for _, b := range pages[page] {
		sb.WriteString(formatBike(b))
	}

	s.State = StateReturnChooseBike
	return bot.showStep(c, s, sb.String(),
		listMarkup(pages[page], cbRetSel, cbRetPage, page, len(pages)))
}

func (bot *Bot) returnBikeSelected(c telebot.Context, s *Session, row int) error {
	if s.State != StateReturnChooseBike || row == 0 {
		return c.Respond()
	}

	bike, err := bot.Repo.Get(context.Background(), row)
	if err != nil {
		return bot.alert(c, "Не удалось прочитать данные байка. Попробуйте ещё раз.")
	}
	plannedEnd, ok := bike.PlannedEnd()
	if !ok {
		return bot.alert(c, "❌ Нет даты окончания!")
	}

	fee, tag, daysLate := rental.OverdueFee(plannedEnd, bot.now(), bike.PriceDay, bike.PriceMonth)
	s.Row = row
	s.OverdueFee = fee
	s.DaysLate = daysLate
	s.OverdueNote = tag.Describe(daysLate)

	return bot.promptWash(c, s)
}

func (bot *Bot) promptWash(c telebot.Context, s *Session) error {
	s.State = StateReturnWash
	text := fmt.Sprintf("%s\nДоплата: %d VND. Нужна мойка?", s.OverdueNote, s.OverdueFee)
	return bot.showStep(c, s, text, washMarkup())
}

func (bot *Bot) washChosen(c telebot.Context, s *Session, answer string) error {
	if s.State != StateReturnWash {
		return c.Respond()
	}
	if answer == "yes" {
		s.WashFee = rental.WashFee
	} else {
		s.WashFee = 0
	}
	return bot.promptDamage(c, s)
}

// promptDamage asks about damage, linking the inspection folder when one
// exists so the operator can compare against the intake video.
func (bot *Bot) promptDamage(c telebot.Context, s *Session) error {
	bike, err := bot.Repo.Get(context.Background(), s.Row)
	if err != nil {
		return bot.alert(c, "Не удалось прочитать данные байка. Попробуйте ещё раз.")
	}

	total := s.OverdueFee + s.WashFee
	text := fmt.Sprintf("Доплата: %d VND.\n\n", total)
	if id, err := bot.Drive.LookupFolder(context.Background(), bike.FolderName()); err == nil && id != "" {
		text += drive.FolderURL(id) + "\n\n"
	}
	text += "Сравните с видео осмотра, есть повреждения?"

	s.State = StateReturnDamage
	return bot.showStep(c, s, text, damageMarkup())
}

func (bot *Bot) damageChosen(c telebot.Context, s *Session, answer string) error {
	if s.State != StateReturnDamage {
		return c.Respond()
	}
	if answer == "yes" {
		// Deliberate dead end: a damaged bike needs a manager, not a bot.
		return bot.alert(c,
			"⚠️ При наличии повреждений байк нельзя принять автоматически. Обратитесь к менеджеру для оценки ущерба.")
	}
	return bot.showReturnConfirm(c, s)
}

func (bot *Bot) showReturnConfirm(c telebot.Context, s *Session) error {
	bike, err := bot.Repo.Get(context.Background(), s.Row)
	if err != nil {
		return bot.alert(c, "Не удалось прочитать данные байка. Попробуйте ещё раз.")
	}

	total := s.OverdueFee + s.WashFee

	var sb strings.Builder
	fmt.Fprintf(&sb, "⚠️ ПРОВЕРЬТЕ ДАННЫЕ ВОЗВРАТА:\n\n🏍 Байк: %s\n🔢 Гос. номер: %s\n📞 Контакт: %s\n\n",
		bike.Model, bike.Plate, orDash(bike.Contact))
	if s.DaysLate > 0 {
		fmt.Fprintf(&sb, "⏰ Просрочка: %d дн.\n", s.DaysLate)
	}
	if total > 0 {
		fmt.Fprintf(&sb, "💵 ВЗЯТЬ С КЛИЕНТА:\n   • Просрочка: %d VND\n", s.OverdueFee)
		if s.WashFee > 0 {
			fmt.Fprintf(&sb, "   • Мойка: %d VND\n", s.WashFee)
		}
		fmt.Fprintf(&sb, "   • ИТОГО: %d VND\n\n", total)
	} else {
		sb.WriteString("✅ Доплаты не требуется\n\n")
	}
	fmt.Fprintf(&sb, "🔐 ВЕРНУТЬ ЗАЛОГ: %s\n\nПринять возврат?", orDash(bike.Deposit))

	s.State = StateReturnConfirm
	return bot.showStep(c, s, sb.String(), confirmMarkup("✅ Подтвердить возврат", cbRetFinal))
}

func (bot *Bot) returnFinal(c telebot.Context, s *Session) error {
	if s.State != StateReturnConfirm {
		return c.Respond()
	}
	ctx := context.Background()

	bike, err := bot.Repo.Get(ctx, s.Row)
	if err != nil {
		return bot.alert(c, "Не удалось прочитать данные байка. Попробуйте ещё раз.")
	}

	if err := bot.Repo.Update(ctx, s.Row, map[string]string{
		model.ColStatus: model.StatusAvailable,
	}); err != nil {
		slog.Error("return commit failed", "row", s.Row, "error", err)
		return bot.showStep(c, s,
			"❌ Ошибка при обновлении. Попробуйте нажать кнопку еще раз.",
			retryMarkup(cbRetFinal))
	}

	total := s.OverdueFee + s.WashFee
	if total > 0 {
		if err := bot.Reports.RecordPayment(ctx, total); err != nil {
			slog.Error("report update failed", "error", err)
		}
	}
	bot.recordAudit(c, audit.OpReturn, bike, total, s.OverdueNote)

	var sb strings.Builder
	fmt.Fprintf(&sb, "✅ Возврат принят!\n\n🏍 %s | %s\n", bike.Model, bike.Plate)
	if total > 0 {
		fmt.Fprintf(&sb, "💵 Получено с клиента: %d VND\n", total)
	}
	fmt.Fprintf(&sb, "🔐 Возвращён залог: %s", orDash(bike.Deposit))

	return bot.finishToMenu(c, s, sb.String())
}
