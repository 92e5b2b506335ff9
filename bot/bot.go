// Package bot is the dialogue controller: it advances each conversation
// through the rent, return, extend and replace workflows.
package bot

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"gopkg.in/telebot.v3"

	"motorent-bot/audit"
	"motorent-bot/config"
	"motorent-bot/drive"
	"motorent-bot/model"
	"motorent-bot/sheets"
)

// Callback actions. Buttons carry `action|argument` payloads; page
// navigation uses the dedicated `*_page` actions with the page number as
// the argument.
const (
	cbRent    = "rent"
	cbReturn  = "return"
	cbExtend  = "extend"
	cbReplace = "replace"
	cbFree    = "free"
	cbReport  = "report"

	cbBrand        = "brand"
	cbRetBrand     = "ret_brand"
	cbExtBrand     = "ext_brand"
	cbRepBrand     = "rep_brand"
	cbRepBaseBrand = "rep_base_brand"

	cbRentPage    = "rent_page"
	cbRetPage     = "ret_page"
	cbExtPage     = "ext_page"
	cbFreePage    = "free_page"
	cbRepRentPage = "rep_rent_page"
	cbRepBasePage = "rep_base_page"

	cbRentSel    = "rent_sel"
	cbRetSel     = "ret_sel"
	cbExtSel     = "ext_sel"
	cbRepRentSel = "rep_rent_sel"
	cbRepBaseSel = "rep_base_sel"

	cbDeposit  = "dep"
	cbUSD      = "usd"
	cbWash     = "wash"
	cbDamage   = "dmg"
	cbFolderOK = "folder_ok"

	cbRentFinal = "rent_final"
	cbRetFinal  = "ret_final"
	cbExtFinal  = "ext_final"

	cbBack = "back"
	cbNoop = "noop"
)

// api is the slice of the telebot client the handlers go through, so
// they can run without a live transport.
type api interface {
	Send(to telebot.Recipient, what interface{}, opts ...interface{}) (*telebot.Message, error)
	Edit(msg telebot.Editable, what interface{}, opts ...interface{}) (*telebot.Message, error)
	Delete(msg telebot.Editable) error
	File(file *telebot.File) (io.ReadCloser, error)
}

// Bot ties the transport to the repository, the calculators and the
// session store.
type Bot struct {
	B        *telebot.Bot
	tg       api
	Repo     *sheets.Repository
	Reports  *sheets.Reports
	Drive    *drive.Client
	Audit    *audit.Store
	sessions *sessions

	adminChat int64
	now       func() time.Time
}

// New builds the bot. Webhook delivery is used when a public host is
// configured, long polling otherwise.
func New(cfg *config.Config, repo *sheets.Repository, reports *sheets.Reports, driveClient *drive.Client, auditStore *audit.Store) (*Bot, error) {
	var poller telebot.Poller
	if cfg.WebhookHost != "" {
		poller = &telebot.Webhook{
			Listen:      fmt.Sprintf(":%d", cfg.Port),
			SecretToken: cfg.WebhookSecret,
			Endpoint: &telebot.WebhookEndpoint{
				PublicURL: fmt.Sprintf("https://%s/webhook", cfg.WebhookHost),
			},
		}
	} else {
		poller = &telebot.LongPoller{Timeout: 10 * time.Second}
	}

	b, err := telebot.NewBot(telebot.Settings{
		Token:  cfg.BotToken,
		Poller: poller,
	})
	if err != nil {
		return nil, err
	}

	bot := &Bot{
		B:         b,
		tg:        b,
		Repo:      repo,
		Reports:   reports,
		Drive:     driveClient,
		Audit:     auditStore,
		sessions:  newSessions(),
		adminChat: cfg.AdminChatID,
		now:       time.Now,
	}
	bot.registerHandlers()
	return bot, nil
}

// Start blocks serving updates.
func (bot *Bot) Start() {
	bot.B.Start()
}

func (bot *Bot) registerHandlers() {
	bot.B.Handle("/start", bot.handleStart)
	bot.B.Handle("/log", bot.handleLog)
	bot.B.Handle(telebot.OnText, bot.handleText)
	bot.B.Handle(telebot.OnPhoto, bot.handlePhoto)
	bot.B.Handle(telebot.OnCallback, bot.handleCallback)
}

func (bot *Bot) handleStart(c telebot.Context) error {
	s := bot.sessions.reset(c.Sender().ID)
	return bot.showMenu(c, s)
}

// handleLog shows the latest ledger entries. Restricted to the admin chat
// when one is configured.
func (bot *Bot) handleLog(c telebot.Context) error {
	if bot.Audit == nil {
		return nil
	}
	if bot.adminChat != 0 && c.Chat().ID != bot.adminChat {
		return nil
	}

	entries, err := bot.Audit.Recent(10)
	if err != nil {
		slog.Error("audit read failed", "error", err)
		return nil
	}
	if len(entries) == 0 {
		_, err := bot.tg.Send(c.Chat(), "Операций пока нет.")
		return err
	}

	var sb strings.Builder
	sb.WriteString("🗒 Последние операции:\n\n")
	for _, e := range entries {
		fmt.Fprintf(&sb, "%s  %s  %s  %d VND\n",
			e.CreatedAt.Format("02.01 15:04"), opLabel(e.Op), e.Plate, e.Amount)
	}
	_, err = bot.tg.Send(c.Chat(), sb.String())
	return err
}

func opLabel(op string) string {
	switch op {
	case audit.OpRent:
		return "выдача"
	case audit.OpReturn:
		return "возврат"
	case audit.OpExtend:
		return "продление"
	case audit.OpReplace:
		return "замена"
	}
	return op
}

// handleCallback is the single dispatch point: (state, action) decides the
// transition, anything else is ignored.
func (bot *Bot) handleCallback(c telebot.Context) error {
	cb := c.Callback()
	if cb == nil {
		return nil
	}
	action := strings.TrimSpace(cb.Unique)
	arg := strings.TrimSpace(cb.Data)
	s := bot.sessions.get(c.Sender().ID)

	switch action {
	case cbNoop:
		return c.Respond()
	case cbBack:
		return bot.goBack(c, s)

	// Main menu entries are accepted from any state: the menu message may
	// outlive a completed workflow.
	case cbRent:
		return bot.startRent(c, s)
	case cbReturn:
		return bot.startReturn(c, s)
	case cbExtend:
		return bot.startExtend(c, s)
	case cbReplace:
		return bot.startReplace(c, s)
	case cbFree:
		return bot.showFreeBikes(c, s, 0)
	case cbFreePage:
		return bot.showFreeBikes(c, s, atoi(arg))
	case cbReport:
		return bot.showReport(c, s)

	case cbBrand:
		if s.State != StateChooseBrand && s.State != StateChooseBike {
			return c.Respond()
		}
		s.Brand = arg
		return bot.showRentBikes(c, s, 0)
	case cbRentPage:
		if s.State != StateChooseBike {
			return c.Respond()
		}
		return bot.showRentBikes(c, s, atoi(arg))
	case cbRentSel:
		return bot.rentBikeSelected(c, s, atoi(arg))
	case cbDeposit:
		return bot.depositChosen(c, s, arg)
	case cbUSD:
		return bot.usdCondition(c, s, arg)
	case cbFolderOK:
		return bot.folderConfirmed(c, s)
	case cbRentFinal:
		return bot.rentFinal(c, s)

	case cbRetBrand:
		if s.State != StateReturnChooseBrand && s.State != StateReturnChooseBike {
			return c.Respond()
		}
		s.Brand = arg
		return bot.showReturnBikes(c, s, 0)
	case cbRetPage:
		if s.State != StateReturnChooseBike {
			return c.Respond()
		}
		return bot.showReturnBikes(c, s, atoi(arg))
	case cbRetSel:
		return bot.returnBikeSelected(c, s, atoi(arg))
	case cbWash:
		return bot.washChosen(c, s, arg)
	case cbDamage:
		return bot.damageChosen(c, s, arg)
	case cbRetFinal:
		return bot.returnFinal(c, s)

	case cbExtBrand:
		if s.State != StateExtendChooseBrand && s.State != StateExtendChooseBike {
			return c.Respond()
		}
		s.Brand = arg
		return bot.showExtendBikes(c, s, 0)
	case cbExtPage:
		if s.State != StateExtendChooseBike {
			return c.Respond()
		}
		return bot.showExtendBikes(c, s, atoi(arg))
	case cbExtSel:
		return bot.extendBikeSelected(c, s, atoi(arg))
	case cbExtFinal:
		return bot.extendFinal(c, s)

	case cbRepBrand:
		if s.State != StateReplaceChooseBrand && s.State != StateReplaceChooseRentBike {
			return c.Respond()
		}
		s.Brand = arg
		return bot.showReplaceRentBikes(c, s, 0)
	case cbRepRentPage:
		if s.State != StateReplaceChooseRentBike {
			return c.Respond()
		}
		return bot.showReplaceRentBikes(c, s, atoi(arg))
	case cbRepRentSel:
		return bot.replaceRentBikeSelected(c, s, atoi(arg))
	case cbRepBaseBrand:
		if s.State != StateReplaceChooseBrand || s.RentRow == 0 {
			return c.Respond()
		}
		s.BaseBrand = arg
		return bot.showReplaceBaseBikes(c, s, 0)
	case cbRepBasePage:
		if s.State != StateReplaceChooseBaseBike {
			return c.Respond()
		}
		return bot.showReplaceBaseBikes(c, s, atoi(arg))
	case cbRepBaseSel:
		return bot.replaceExecute(c, s, atoi(arg))
	}

	return c.Respond()
}

// handleText routes free-text input by state. Text arriving outside a
// text-accepting state is swept with the next step.
func (bot *Bot) handleText(c telebot.Context) error {
	s := bot.sessions.get(c.Sender().ID)
	s.track(c.Message().ID)

	switch s.State {
	case StateEnterDays:
		return bot.daysEntered(c, s)
	case StateEnterDepositOther:
		return bot.depositOtherEntered(c, s)
	case StateEnterContact:
		return bot.contactEntered(c, s)
	case StateExtendEnterTerm:
		return bot.extendTermEntered(c, s)
	case StateUploadContractPhoto:
		return bot.sendTracked(c, s, "😐 Всё нормально? Нужно ФОТО договора.")
	}
	return nil
}

func (bot *Bot) goBack(c telebot.Context, s *Session) error {
	prev, ok := backTarget[s.State]
	if !ok {
		return bot.showMenu(c, s)
	}
	return bot.enter(c, s, prev)
}

// enter re-renders a state's prompt from the session. Used by the generic
// back handler and by session-consistency recovery.
func (bot *Bot) enter(c telebot.Context, s *Session, st State) error {
	switch st {
	case StateMenu:
		return bot.showMenu(c, s)
	case StateChooseBrand:
		return bot.startRent(c, s)
	case StateChooseBike:
		return bot.showRentBikes(c, s, 0)
	case StateEnterDays:
		return bot.promptDays(c, s)
	case StateEnterDepositType:
		return bot.promptDepositType(c, s)
	case StateEnterDepositCurrency:
		return bot.promptUSDCondition(c, s)
	case StateEnterDepositOther:
		return bot.promptDepositOther(c, s)
	case StateEnterContact:
		return bot.promptContact(c, s)
	case StateVerifyFolder:
		return bot.verifyFolder(c, s)
	case StateUploadContractPhoto:
		return bot.promptContractPhoto(c, s)
	case StateReturnChooseBrand:
		return bot.startReturn(c, s)
	case StateReturnChooseBike:
		return bot.showReturnBikes(c, s, 0)
	case StateReturnWash:
		return bot.promptWash(c, s)
	case StateReturnDamage:
		return bot.promptDamage(c, s)
	case StateExtendChooseBrand:
		return bot.startExtend(c, s)
	case StateExtendChooseBike:
		return bot.showExtendBikes(c, s, 0)
	case StateExtendEnterTerm:
		return bot.promptExtendTerm(c, s)
	case StateReplaceChooseBrand:
		s.RentRow = 0
		return bot.startReplace(c, s)
	case StateReplaceChooseRentBike:
		return bot.showReplaceRentBikes(c, s, 0)
	default:
		return bot.showMenu(c, s)
	}
}

func (bot *Bot) showMenu(c telebot.Context, s *Session) error {
	bot.sessions.reset(c.Sender().ID)
	s = bot.sessions.get(c.Sender().ID)
	return bot.showStep(c, s, "Выберите действие:", menuMarkup())
}

// showStep sweeps the previous step's messages, sends the new prompt and
// remembers it for the next sweep. This keeps the transcript at one step.
func (bot *Bot) showStep(c telebot.Context, s *Session, text string, markup *telebot.ReplyMarkup) error {
	bot.deleteTracked(c.Chat().ID, s)
	msg, err := bot.tg.Send(c.Chat(), text, markup)
	if err != nil {
		return err
	}
	s.track(msg.ID)
	if c.Callback() != nil {
		return c.Respond()
	}
	return nil
}

// sendTracked sends an auxiliary message (errors, re-prompts) that will be
// swept with the next step.
func (bot *Bot) sendTracked(c telebot.Context, s *Session, text string) error {
	msg, err := bot.tg.Send(c.Chat(), text)
	if err != nil {
		return err
	}
	s.track(msg.ID)
	return nil
}

// deleteTracked deletes every pending message, swallowing failures:
// already-deleted messages are not errors worth surfacing.
func (bot *Bot) deleteTracked(chatID int64, s *Session) {
	for _, id := range s.Cleanup {
		err := bot.tg.Delete(&telebot.StoredMessage{
			MessageID: strconv.Itoa(id),
			ChatID:    chatID,
		})
		if err != nil {
			slog.Debug("delete message failed", "message_id", id, "error", err)
		}
	}
	s.Cleanup = s.Cleanup[:0]
}

func (bot *Bot) alert(c telebot.Context, text string) error {
	return c.Respond(&telebot.CallbackResponse{Text: text, ShowAlert: true})
}

// finishToMenu renders a workflow result and resets the conversation.
func (bot *Bot) finishToMenu(c telebot.Context, s *Session, text string) error {
	bot.deleteTracked(c.Chat().ID, s)
	bot.sessions.reset(c.Sender().ID)
	if _, err := bot.tg.Send(c.Chat(), text, menuMarkup()); err != nil {
		return err
	}
	if c.Callback() != nil {
		return c.Respond()
	}
	return nil
}

func (bot *Bot) recordAudit(c telebot.Context, op string, bike model.Bike, amount int, note string) {
	if bot.Audit == nil {
		return
	}
	if err := bot.Audit.Record(c.Chat().ID, op, bike.Plate, amount, note); err != nil {
		slog.Error("audit record failed", "op", op, "error", err)
	}
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
