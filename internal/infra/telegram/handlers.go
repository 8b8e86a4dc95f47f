package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"deal_followup_bot/internal/app"
	"deal_followup_bot/internal/domain/preference"
	"deal_followup_bot/internal/domain/timeline"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

const (
	msgUnauthorized = "Ошибка: у вас нет доступа к сделкам."
	msgDealNotFound = "Сделка не найдена."
	msgInternal     = "Произошла ошибка. Пожалуйста, попробуйте позже."
	msgInFlight     = "Сохраняем изменения, подождите…"
)

var toggleKeys = map[string]string{
	toggleCodePast:     preference.KeyPastEventsExpanded,
	toggleCodePolicies: preference.KeyPoliciesExpanded,
	toggleCodePayments: preference.KeyPaymentsExpanded,
}

// Handlers is the Telegram rendering layer over the deal workflows.
type Handlers struct {
	ctx          context.Context
	deals        *app.DealService
	sessions     *app.SessionManager
	formatAmount timeline.AmountFormatter
	logger       *logrus.Entry
	today        func() time.Time
}

func NewHandlers(
	ctx context.Context,
	deals *app.DealService,
	sessions *app.SessionManager,
	formatAmount timeline.AmountFormatter,
	baseLogger *logrus.Entry,
) *Handlers {
	return &Handlers{
		ctx:          ctx,
		deals:        deals,
		sessions:     sessions,
		formatAmount: formatAmount,
		logger:       baseLogger,
		today:        timeline.Today,
	}
}

// Register wires every command and callback onto the bot.
func (h *Handlers) Register(b *telebot.Bot) {
	b.Handle("/start", h.handleStart)
	b.Handle("/help", h.handleHelp, h.requireManager)

	b.Handle("/deals", h.handleDeals, h.requireManager)
	b.Handle("/deal", h.handleDeal, h.requireManager)
	b.Handle(&btnDealOpen, h.handleDealOpen, h.requireManager)
	b.Handle(&btnDealToggle, h.handleDealToggle, h.requireManager)

	b.Handle("/delay", h.handleDelay, h.requireManager)
	b.Handle(&btnDealDelay, h.handleDelayButton, h.requireManager)
	b.Handle(&btnDelaySelect, h.handleDelaySelect, h.requireManager)
	b.Handle(&btnDelayPast, h.handleDelayPast, h.requireManager)
	b.Handle(&btnDelayConfirm, h.handleDelayConfirm, h.requireManager)
	b.Handle(&btnDelayCancel, h.handleDelayCancel, h.requireManager)

	b.Handle("/edit", h.handleEdit, h.requireManager)
	b.Handle("/next_contact", h.dateFieldHandler(app.FieldNextContact), h.requireManager)
	b.Handle("/deadline", h.dateFieldHandler(app.FieldExpectedClose), h.requireManager)
	b.Handle("/shift", h.handleShift, h.requireManager)
	b.Handle(&btnQuickShift, h.handleQuickShiftButton, h.requireManager)
}

func (h *Handlers) requireManager(next telebot.HandlerFunc) telebot.HandlerFunc {
	return func(c telebot.Context) error {
		if err := h.deals.Authorize(c.Sender().ID); err != nil {
			h.logger.WithField("sender_id", c.Sender().ID).Warn("Unauthorized access attempt")
			if c.Callback() != nil {
				return c.Respond(&telebot.CallbackResponse{Text: msgUnauthorized})
			}
			return c.Send(msgUnauthorized)
		}
		return next(c)
	}
}

func (h *Handlers) logFor(c telebot.Context, handler string) *logrus.Entry {
	return h.logger.WithFields(logrus.Fields{
		"handler":   handler,
		"sender_id": c.Sender().ID,
		"chat_id":   c.Chat().ID,
	})
}

// reply edits the message behind a callback, or sends a new one for commands.
func reply(c telebot.Context, text string, markup *telebot.ReplyMarkup) error {
	if c.Callback() != nil {
		if err := c.Edit(text, markup); err != nil && !errors.Is(err, telebot.ErrSameMessageContent) {
			return err
		}
		return c.Respond()
	}
	return c.Send(text, markup)
}

// userError maps an application error onto a message for the manager.
func userError(err error) string {
	switch {
	case errors.Is(err, app.ErrNotAuthorized):
		return msgUnauthorized
	case errors.Is(err, app.ErrDealNotFound):
		return msgDealNotFound
	case errors.Is(err, app.ErrCommitInFlight):
		return msgInFlight
	case errors.Is(err, app.ErrInvalidDate):
		return "Дата должна быть в формате ГГГГ-ММ-ДД, например 2026-11-23."
	case errors.Is(err, app.ErrNoDealSelected):
		return "Сначала выберите сделку командой /edit <ID сделки>."
	case errors.Is(err, app.ErrWorkflowClosed):
		return "Окно переноса уже закрыто. Откройте его снова командой /delay <ID сделки>."
	case errors.Is(err, app.ErrNoSelection):
		return "Выберите событие для переноса."
	case errors.Is(err, app.ErrUnknownEvent):
		return "Это событие больше не относится к сделке."
	default:
		return msgInternal
	}
}

func (h *Handlers) fail(c telebot.Context, err error) error {
	text := userError(err)
	if c.Callback() != nil {
		return c.Respond(&telebot.CallbackResponse{Text: text, ShowAlert: text == msgInternal})
	}
	return c.Send(text)
}

func (h *Handlers) handleStart(c telebot.Context) error {
	logCtx := h.logFor(c, "/start")
	if err := h.deals.Authorize(c.Sender().ID); err != nil {
		logCtx.Info("Unknown user")
		return c.Send("Привет! Я помогаю менеджерам планировать контакты по сделкам. Попросите администратора добавить вас в список менеджеров.")
	}
	logCtx.Info("Manager started the bot")
	return c.Send(fmt.Sprintf("Привет, %s! Используйте /deals, чтобы увидеть сделки по срочности, или /help для списка команд.", c.Sender().FirstName))
}

func (h *Handlers) handleHelp(c telebot.Context) error {
	var helpText strings.Builder
	helpText.WriteString("Доступные команды:\n\n")
	helpText.WriteString("`/deals`\n - Сделки по срочности.\n\n")
	helpText.WriteString("`/deal <ID>`\n - Карточка сделки с ближайшими событиями и рекомендуемой датой контакта.\n\n")
	helpText.WriteString("`/delay <ID>`\n - Перенести сделку по событию полиса или платежа.\n\n")
	helpText.WriteString("`/edit <ID>`\n - Выбрать сделку для правки дат.\n\n")
	helpText.WriteString("`/next_contact <ГГГГ-ММ-ДД|->`\n - Дата следующего контакта (\"-\" очищает).\n\n")
	helpText.WriteString("`/deadline <ГГГГ-ММ-ДД|->`\n - Ожидаемая дата закрытия.\n\n")
	helpText.WriteString("`/shift <дни>`\n - Сдвинуть дату контакта и перейти к самой срочной сделке.")
	return c.Send(helpText.String(), &telebot.SendOptions{ParseMode: telebot.ModeMarkdown})
}
