package bot

import (
	"fmt"
	"strconv"

	"gopkg.in/telebot.v3"

	"motorent-bot/model"
)

func menuMarkup() *telebot.ReplyMarkup {
	m := &telebot.ReplyMarkup{}
	m.Inline(
		m.Row(m.Data("Выдать байк", cbRent)),
		m.Row(m.Data("Возврат байка", cbReturn)),
		m.Row(m.Data("Продление аренды", cbExtend)),
		m.Row(m.Data("Замена байка", cbReplace)),
		m.Row(m.Data("Свободные байки", cbFree)),
		m.Row(m.Data("Отчёт", cbReport)),
	)
	return m
}

// brandsMarkup lists the known brands plus the catch-all bucket; the
// action decides which workflow consumes the choice.
func brandsMarkup(action string) *telebot.ReplyMarkup {
	m := &telebot.ReplyMarkup{}
	rows := make([]telebot.Row, 0, len(model.Brands)+2)
	for _, b := range model.Brands {
		rows = append(rows, m.Row(m.Data(b, action, b)))
	}
	rows = append(rows, m.Row(m.Data("Другие", action, "other")))
	rows = append(rows, m.Row(backBtn(m)))
	m.Inline(rows...)
	return m
}

func backBtn(m *telebot.ReplyMarkup) telebot.Btn {
	return m.Data("⬅ Назад", cbBack)
}

func backMarkup() *telebot.ReplyMarkup {
	m := &telebot.ReplyMarkup{}
	m.Inline(m.Row(backBtn(m)))
	return m
}

// listMarkup renders one page of bikes: a selection button per bike, a
// navigation row when there are several pages, and a back button.
// Selection buttons carry the bike's sheet row number.
func listMarkup(bikes []model.Bike, selAction, pageAction string, page, totalPages int) *telebot.ReplyMarkup {
	m := &telebot.ReplyMarkup{}
	var rows []telebot.Row
	for _, b := range bikes {
		label := fmt.Sprintf("%s | %s", b.Model, b.Plate)
		rows = append(rows, m.Row(m.Data(label, selAction, strconv.Itoa(b.Row))))
	}
	if nav, ok := navRow(m, pageAction, page, totalPages); ok {
		rows = append(rows, nav)
	}
	rows = append(rows, m.Row(backBtn(m)))
	m.Inline(rows...)
	return m
}

// pageMarkup is listMarkup without selection buttons, for read-only lists.
func pageMarkup(pageAction string, page, totalPages int) *telebot.ReplyMarkup {
	m := &telebot.ReplyMarkup{}
	var rows []telebot.Row
	if nav, ok := navRow(m, pageAction, page, totalPages); ok {
		rows = append(rows, nav)
	}
	rows = append(rows, m.Row(backBtn(m)))
	m.Inline(rows...)
	return m
}

func navRow(m *telebot.ReplyMarkup, pageAction string, page, totalPages int) (telebot.Row, bool) {
	if totalPages <= 1 {
		return telebot.Row{}, false
	}
	var btns []telebot.Btn
	if page > 0 {
		btns = append(btns, m.Data("⬅️", pageAction, strconv.Itoa(page-1)))
	}
	btns = append(btns, m.Data(fmt.Sprintf("%d/%d", page+1, totalPages), cbNoop))
	if page < totalPages-1 {
		btns = append(btns, m.Data("➡️", pageAction, strconv.Itoa(page+1)))
	}
	return m.Row(btns...), true
}

func depositMarkup() *telebot.ReplyMarkup {
	m := &telebot.ReplyMarkup{}
	m.Inline(
		m.Row(m.Data("$", cbDeposit, "usd"), m.Data("VND", cbDeposit, "vnd")),
		m.Row(m.Data("Другое", cbDeposit, "other")),
		m.Row(backBtn(m)),
	)
	return m
}

func usdConditionMarkup() *telebot.ReplyMarkup {
	m := &telebot.ReplyMarkup{}
	m.Inline(
		m.Row(m.Data("New", cbUSD, "new"), m.Data("Old", cbUSD, "old")),
		m.Row(backBtn(m)),
	)
	return m
}

func confirmMarkup(label, action string) *telebot.ReplyMarkup {
	m := &telebot.ReplyMarkup{}
	m.Inline(
		m.Row(m.Data(label, action)),
		m.Row(backBtn(m)),
	)
	return m
}

func retryMarkup(action string, args ...string) *telebot.ReplyMarkup {
	m := &telebot.ReplyMarkup{}
	m.Inline(m.Row(m.Data("✅ Попробовать снова", action, args...)))
	return m
}

func washMarkup() *telebot.ReplyMarkup {
	m := &telebot.ReplyMarkup{}
	m.Inline(
		m.Row(m.Data("🧼 Да (50к)", cbWash, "yes"), m.Data("❌ Нет", cbWash, "no")),
		m.Row(backBtn(m)),
	)
	return m
}

func damageMarkup() *telebot.ReplyMarkup {
	m := &telebot.ReplyMarkup{}
	m.Inline(
		m.Row(m.Data("✅ Нет", cbDamage, "no"), m.Data("🛠 Да", cbDamage, "yes")),
		m.Row(backBtn(m)),
	)
	return m
}
