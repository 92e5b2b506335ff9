package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"gopkg.in/telebot.v3"

	"motorent-bot/audit"
	"motorent-bot/drive"
	"motorent-bot/model"
	"motorent-bot/pager"
	"motorent-bot/rental"
)

func (bot *Bot) startRent(c telebot.Context, s *Session) error {
	s.State = StateChooseBrand
	return bot.showStep(c, s, "Выберите модель:", brandsMarkup(cbBrand))
}

func (bot *Bot) showRentBikes(c telebot.Context, s *Session, page int) error {
	if s.Brand == "" {
		// Session lost its brand: fall back to the nearest safe step.
		if err := bot.alert(c, "Ошибка данных. Выберите марку снова."); err != nil {
			return err
		}
		return bot.startRent(c, s)
	}

	bikes, err := bot.Repo.ByBrand(context.Background(), s.Brand, model.StatusAvailable)
	if err != nil {
		return bot.alert(c, "Не удалось получить список байков. Попробуйте ещё раз.")
	}
	if len(bikes) == 0 {
		return bot.alert(c, "Нет доступных байков этой марки")
	}

	pages := pager.Pages(bikes, formatBike)
	page = pager.Clamp(page, len(pages))

	var sb strings.Builder
	fmt.Fprintf(&sb, "🔍 Доступные %s (Стр. %d/%d):\n\n", s.Brand, page+1, len(pages))
	for _, b := range pages[page] {
		sb.WriteString(formatBike(b))
	}

	s.State = StateChooseBike
	return bot.showStep(c, s, sb.String(),
		listMarkup(pages[page], cbRentSel, cbRentPage, page, len(pages)))
}

func (bot *Bot) rentBikeSelected(c telebot.Context, s *Session, row int) error {
	if s.State != StateChooseBike || row == 0 {
		return c.Respond()
	}
	s.Row = row
	return bot.promptDays(c, s)
}

func (bot *Bot) promptDays(c telebot.Context, s *Session) error {
	s.State = StateEnterDays
	return bot.showStep(c, s, "Введите срок аренды (дней или 'N месяцев'):", backMarkup())
}

func (bot *Bot) daysEntered(c telebot.Context, s *Session) error {
	qty, unit, months, err := rental.ParseTerm(c.Text())
	if err != nil {
		return bot.sendTracked(c, s, "❌ Ошибка! Введите число дней или '1 месяц', '2 месяца' и т.д.")
	}

	bike, err := bot.Repo.Get(context.Background(), s.Row)
	if err != nil {
		return bot.sendTracked(c, s, "❌ Не удалось прочитать данные байка. Попробуйте ещё раз.")
	}

	days, total := rental.Cost(unit, qty, bike.PriceDay, bike.PriceMonth, bot.now())
	s.Days = days
	s.Sum = total
	if unit == rental.Monthly {
		s.Months = months
	} else {
		s.Months = 0
	}

	return bot.promptDepositType(c, s)
}

func (bot *Bot) promptDepositType(c telebot.Context, s *Session) error {
	s.State = StateEnterDepositType
	text := fmt.Sprintf("Срок: %s Сумма: %d VND\nВыберите тип депозита:", termLabel(s.Days, s.Months), s.Sum)
	return bot.showStep(c, s, text, depositMarkup())
}

func (bot *Bot) depositChosen(c telebot.Context, s *Session, kind string) error {
	if s.State != StateEnterDepositType {
		return c.Respond()
	}
	switch kind {
	case "usd":
		return bot.promptUSDCondition(c, s)
	case "vnd":
		bike, err := bot.Repo.Get(context.Background(), s.Row)
		if err != nil {
			return bot.alert(c, "Не удалось прочитать залог. Попробуйте ещё раз.")
		}
		s.Deposit = orZero(bike.DepositVND) + " VND"
		return bot.promptContact(c, s)
	case "other":
		return bot.promptDepositOther(c, s)
	}
	return c.Respond()
}

func (bot *Bot) promptUSDCondition(c telebot.Context, s *Session) error {
	s.State = StateEnterDepositCurrency
	return bot.showStep(c, s, "Состояние $:", usdConditionMarkup())
}

func (bot *Bot) usdCondition(c telebot.Context, s *Session, condition string) error {
	if s.State != StateEnterDepositCurrency {
		return c.Respond()
	}
	bike, err := bot.Repo.Get(context.Background(), s.Row)
	if err != nil {
		return bot.alert(c, "Не удалось прочитать залог. Попробуйте ещё раз.")
	}
	s.Deposit = fmt.Sprintf("%s$ %s", orZero(bike.DepositUSD), condition)
	return bot.promptContact(c, s)
}

func (bot *Bot) promptDepositOther(c telebot.Context, s *Session) error {
	s.State = StateEnterDepositOther
	return bot.showStep(c, s, "Введите залог текстом:", backMarkup())
}

func (bot *Bot) depositOtherEntered(c telebot.Context, s *Session) error {
	s.Deposit = c.Text()
	return bot.promptContact(c, s)
}

func (bot *Bot) promptContact(c telebot.Context, s *Session) error {
	s.State = StateEnterContact
	return bot.showStep(c, s, "Введите контакт клиента (Телефон/WA/TG):", backMarkup())
}

func (bot *Bot) contactEntered(c telebot.Context, s *Session) error {
	// The raw contact message is removed right away so the customer's
	// details don't linger in the transcript.
	if err := c.Delete(); err != nil {
		slog.Debug("delete contact message failed", "error", err)
	}
	s.Contact = c.Text()
	return bot.verifyFolder(c, s)
}

func (bot *Bot) rentSummary(s *Session, bike model.Bike) string {
	end := bot.now().AddDate(0, 0, s.Days)
	return fmt.Sprintf(
		"Проверка:\n🏍 %s\n🔢 %s\n📅 %s\n💰 %d VND\n🔐 %s\n📞 %s\n⏳ До: %s",
		bike.Model, bike.Plate, termLabel(s.Days, s.Months), s.Sum, s.Deposit, s.Contact,
		end.Format("02.01.2006"))
}

// verifyFolder looks up or creates the bike's inspection folder. Both
// outcomes lead to a continue affordance: a missing folder must not block
// the rental.
func (bot *Bot) verifyFolder(c telebot.Context, s *Session) error {
	bike, err := bot.Repo.Get(context.Background(), s.Row)
	if err != nil {
		return bot.sendTracked(c, s, "❌ Не удалось прочитать данные байка. Попробуйте ещё раз.")
	}

	text := bot.rentSummary(s, bike)

	folderID := s.FolderID
	if folderID == "" {
		folderID, err = bot.Drive.EnsureFolder(context.Background(), bike.FolderName())
		if err != nil {
			slog.Warn("inspection folder unavailable", "bike", bike.FolderName(), "error", err)
			folderID = ""
		}
		s.FolderID = folderID
	}

	m := &telebot.ReplyMarkup{}
	if folderID != "" {
		text += fmt.Sprintf(
			"\n\n📂 Папка для байка: %s\nЗагрузите видео в эту папку: %s\n\nПосле загрузки видео нажмите кнопку ниже.",
			bike.FolderName(), drive.FolderURL(folderID))
		m.Inline(
			m.Row(m.Data("✅ Я загрузил видео, продолжить", cbFolderOK)),
			m.Row(backBtn(m)),
		)
	} else {
		text += "\n\n⚠️ Не удалось создать папку для байка. Продолжите выдачу."
		m.Inline(
			m.Row(m.Data("✅ Продолжить без папки", cbFolderOK)),
			m.Row(backBtn(m)),
		)
	}

	s.State = StateVerifyFolder
	return bot.showStep(c, s, text, m)
}

func (bot *Bot) folderConfirmed(c telebot.Context, s *Session) error {
	if s.State != StateVerifyFolder {
		return c.Respond()
	}
	return bot.promptContractPhoto(c, s)
}

func (bot *Bot) promptContractPhoto(c telebot.Context, s *Session) error {
	s.State = StateUploadContractPhoto
	return bot.showStep(c, s, "📄 Загрузите фото договора (можно несколько).", backMarkup())
}

// handlePhoto consumes contract photos; any photo outside the upload step
// is ignored.
func (bot *Bot) handlePhoto(c telebot.Context) error {
	s := bot.sessions.get(c.Sender().ID)
	if s.State != StateUploadContractPhoto {
		return nil
	}
	if err := c.Delete(); err != nil {
		slog.Debug("delete photo message failed", "error", err)
	}

	bike, err := bot.Repo.Get(context.Background(), s.Row)
	if err != nil {
		return bot.sendTracked(c, s, "❌ Не удалось прочитать данные байка. Попробуйте ещё раз.")
	}

	photo := c.Message().Photo
	if photo == nil {
		return nil
	}
	rc, err := bot.tg.File(&photo.File)
	if err != nil {
		slog.Error("photo download failed", "error", err)
		return bot.sendTracked(c, s, "❌ Фото не скачано. Попробуйте снова.")
	}
	defer rc.Close()

	filename := fmt.Sprintf("%s, %s, %s.jpg", bike.Model, bike.Plate,
		bot.now().Format(model.SheetTimeLayout))
	folderID, err := bot.Drive.UploadContractPhoto(context.Background(), rc, filename,
		bike.FolderName(), s.ContractFolderID)
	if err != nil {
		slog.Error("contract photo upload failed", "error", err)
		return bot.sendTracked(c, s, "❌ Ошибка загрузки фото. Попробуйте снова.")
	}
	s.ContractFolderID = folderID

	return bot.showConfirmRent(c, s, bike)
}

func (bot *Bot) showConfirmRent(c telebot.Context, s *Session, bike model.Bike) error {
	end := bot.now().AddDate(0, 0, s.Days)
	text := fmt.Sprintf(
		"⚠️ ПРОВЕРЬТЕ ДАННЫЕ ПЕРЕД ПОДТВЕРЖДЕНИЕМ:\n\n"+
			"🏍 Байк: %s\n🔢 Гос. номер: %s\n📅 Срок: %s\n💰 Сумма: %d VND\n"+
			"🔐 Залог: %s\n📞 Контакт: %s\n⏳ Дата окончания: %s\nВсё верно?",
		bike.Model, bike.Plate, termLabel(s.Days, s.Months), s.Sum, s.Deposit, s.Contact,
		end.Format("02.01.2006"))

	s.State = StateConfirmRent
	return bot.showStep(c, s, text, confirmMarkup("✅ Подтвердить выдачу", cbRentFinal))
}

// rentFinal commits the rental: the record is marked rented, the report
// and audit ledgers get their best-effort entries, and the cache is
// refreshed so the result shows the sheet-computed end date. On failure
// the user stays here with a retry button.
func (bot *Bot) rentFinal(c telebot.Context, s *Session) error {
	if s.State != StateConfirmRent {
		return c.Respond()
	}
	ctx := context.Background()

	bike, err := bot.Repo.Get(ctx, s.Row)
	if err != nil {
		return bot.alert(c, "❌ Не удалось прочитать данные байка. Попробуйте ещё раз.")
	}

	wait, _ := bot.tg.Send(c.Chat(), "⏳ Обновляю таблицу... Пожалуйста, не нажимайте ничего.")

	err = bot.Repo.Update(ctx, s.Row, map[string]string{
		model.ColTerm:      strconv.Itoa(s.Days),
		model.ColAmount:    strconv.Itoa(s.Sum),
		model.ColDeposit:   s.Deposit,
		model.ColContact:   s.Contact,
		model.ColStatus:    model.StatusRented,
		model.ColStartDate: bot.now().Format(model.SheetTimeLayout),
	})
	if err != nil {
		slog.Error("rent commit failed", "row", s.Row, "error", err)
		if wait != nil {
			bot.tg.Edit(wait, "❌ Ошибка при обновлении. Попробуйте нажать кнопку еще раз.\nЕсли ошибка повторится, проверьте интернет.",
				retryMarkup(cbRentFinal))
			s.track(wait.ID)
		}
		return c.Respond()
	}

	if err := bot.Reports.RecordRent(ctx, s.Sum); err != nil {
		slog.Error("report update failed", "error", err)
	}
	bot.recordAudit(c, audit.OpRent, bike, s.Sum, s.Contact)

	endDate := "-"
	if updated, err := bot.Repo.GetAll(ctx, true); err == nil {
		for _, u := range updated {
			if u.Row == s.Row {
				endDate = orDash(u.EndDate)
				break
			}
		}
	}

	if wait != nil {
		bot.tg.Delete(wait)
	}
	text := fmt.Sprintf(
		"✅ Байк выдан!\n\n🏍 %s\n🔢 %s\n💰 Оплачено: %d VND\n🔐 Залог: %s\n📞 Контакт: %s\n📅 Дата окончания: %s",
		bike.Model, bike.Plate, s.Sum, s.Deposit, s.Contact, endDate)
	return bot.finishToMenu(c, s, text)
}
