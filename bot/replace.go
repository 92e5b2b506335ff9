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
)

func (bot *Bot) startReplace(c telebot.Context, s *Session) error {
	s.RentRow = 0
	s.State = StateReplaceChooseBrand
	return bot.showStep(c, s, "Замена байка. Выберите модель байка в аренде:",
		brandsMarkup(cbRepBrand))
}

func (bot *Bot) showReplaceRentBikes(c telebot.Context, s *Session, page int) error {
	if s.Brand == "" {
		if err := bot.alert(c, "Сессия истекла. Выберите категорию заново."); err != nil {
			return err
		}
		return bot.startReplace(c, s)
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
	fmt.Fprintf(&sb, "🔁 Замена: байк в аренде, %s (Стр. %d/%d):\n\n", s.Brand, page+1, len(pages))
	for _, b := range pages[page] {
		sb.WriteString(formatBike(b))
	}

	s.State = StateReplaceChooseRentBike
	return bot.showStep(c, s, sb.String(),
		listMarkup(pages[page], cbRepRentSel, cbRepRentPage, page, len(pages)))
}

// replaceRentBikeSelected remembers the outgoing bike and restarts the brand
// menu for the incoming one. The second brand pick is routed separately
// because RentRow is already set.
func (bot *Bot) replaceRentBikeSelected(c telebot.Context, s *Session, row int) error {
	if s.State != StateReplaceChooseRentBike || row == 0 {
		return c.Respond()
	}
	s.RentRow = row
	s.State = StateReplaceChooseBrand
	return bot.showStep(c, s, "Теперь выберите модель байка на замену (на базе):",
		brandsMarkup(cbRepBaseBrand))
}

func (bot *Bot) showReplaceBaseBikes(c telebot.Context, s *Session, page int) error {
	if s.BaseBrand == "" {
		if err := bot.alert(c, "Сессия истекла. Выберите категорию заново."); err != nil {
			return err
		}
		return bot.startReplace(c, s)
	}

	bikes, err := bot.Repo.ByBrand(context.Background(), s.BaseBrand, model.StatusAvailable)
	if err != nil {
		return bot.alert(c, "Не удалось получить список байков. Попробуйте ещё раз.")
	}
	if len(bikes) == 0 {
		return bot.alert(c, "Нет свободных байков этой модели")
	}

	pages := pager.Pages(bikes, formatBike)
	page = pager.Clamp(page, len(pages))

	var sb strings.Builder
	fmt.Fprintf(&sb, "🔁 Замена: свободные %s (Стр. %d/%d):\n\n", s.BaseBrand, page+1, len(pages))
	for _, b := range pages[page] {
		sb.WriteString(formatBike(b))
	}

	s.State = StateReplaceChooseBaseBike
	return bot.showStep(c, s, sb.String(),
		listMarkup(pages[page], cbRepBaseSel, cbRepBasePage, page, len(pages)))
}

// replaceExecute moves the rental record from the outgoing bike to the
// incoming one. Deposit amounts in $ and VND stay with each bike: those are
// properties of the vehicle, not of the rental.
func (bot *Bot) replaceExecute(c telebot.Context, s *Session, row int) error {
	if s.State != StateReplaceChooseBaseBike || row == 0 || s.RentRow == 0 {
		return c.Respond()
	}
	ctx := context.Background()

	outgoing, err := bot.Repo.Get(ctx, s.RentRow)
	if err != nil {
		return bot.alert(c, "Не удалось прочитать данные байка. Попробуйте ещё раз.")
	}
	incoming, err := bot.Repo.Get(ctx, row)
	if err != nil {
		return bot.alert(c, "Не удалось прочитать данные байка. Попробуйте ещё раз.")
	}

	if err := bot.Repo.Update(ctx, incoming.Row, map[string]string{
		model.ColStatus:      model.StatusRented,
		model.ColStartDate:   outgoing.StartDate,
		model.ColTerm:        strconv.Itoa(outgoing.TermDays),
		model.ColAmount:      strconv.Itoa(outgoing.Amount),
		model.ColContact:     outgoing.Contact,
		model.ColDeposit:     outgoing.Deposit,
		model.ColDepositNote: outgoing.DepositNote,
	}); err != nil {
		slog.Error("replace commit failed", "row", incoming.Row, "error", err)
		return bot.showStep(c, s,
			"❌ Ошибка при обновлении. Попробуйте нажать кнопку еще раз.",
			retryMarkup(cbRepBaseSel, strconv.Itoa(row)))
	}

	if err := bot.Repo.Update(ctx, outgoing.Row, map[string]string{
		model.ColStatus:      model.StatusAvailable,
		model.ColStartDate:   "",
		model.ColTerm:        "",
		model.ColAmount:      "",
		model.ColContact:     "",
		model.ColDeposit:     "",
		model.ColDepositNote: "",
	}); err != nil {
		slog.Error("replace cleanup failed", "row", outgoing.Row, "error", err)
		return bot.showStep(c, s,
			"❌ Ошибка при обновлении. Попробуйте нажать кнопку еще раз.",
			retryMarkup(cbRepBaseSel, strconv.Itoa(row)))
	}

	bot.recordAudit(c, audit.OpReplace, incoming, 0,
		fmt.Sprintf("вместо %s %s", outgoing.Model, outgoing.Plate))

	text := fmt.Sprintf(
		"✅ Произведена замена!\n\n⬅️ Снят: %s (%s)\n➡️ Выдан: %s (%s)\n📞 Контакт: %s",
		outgoing.Model, outgoing.Plate, incoming.Model, incoming.Plate,
		orDash(outgoing.Contact))
	return bot.finishToMenu(c, s, text)
}
