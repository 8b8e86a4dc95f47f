package telegram

import (
	"strconv"

	"deal_followup_bot/internal/app"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

func (h *Handlers) handleEdit(c telebot.Context) error {
	args := c.Args()
	if len(args) != 1 {
		return c.Send("Неверный формат команды. Используйте: /edit <ID сделки>")
	}
	d, err := h.deals.GetDeal(h.ctx, c.Sender().ID, args[0])
	if err != nil {
		h.logFor(c, "/edit").WithError(err).Warn("Failed to select deal for editing")
		return h.fail(c, err)
	}

	editor := h.sessions.Get(c.Chat().ID).Editor
	editor.Select(d)
	return c.Send("Редактируется сделка «" + d.Title + "».\n" +
		"Контакт: " + displayOrUnset(editor.Value(app.FieldNextContact)) + "\n" +
		"Закрытие: " + displayOrUnset(editor.Value(app.FieldExpectedClose)) + "\n\n" +
		"Измените даты командами /next_contact и /deadline или сдвиньте контакт: /shift <дни>.")
}

func displayOrUnset(iso string) string {
	if iso == "" {
		return "не задано"
	}
	return displayDate(iso)
}

// dateFieldHandler sets the field buffer from the command argument and
// commits it, the chat equivalent of typing into the field and leaving it.
func (h *Handlers) dateFieldHandler(field app.DateField) telebot.HandlerFunc {
	return func(c telebot.Context) error {
		logCtx := h.logFor(c, "date_field").WithField("field", field.String())
		args := c.Args()
		if len(args) != 1 {
			return c.Send("Укажите дату в формате ГГГГ-ММ-ДД или \"-\", чтобы очистить.")
		}
		value := args[0]
		if value == "-" {
			value = ""
		}

		editor := h.sessions.Get(c.Chat().ID).Editor
		editor.Change(field, value)
		committed, err := editor.Blur(h.ctx, field)
		if err != nil {
			logCtx.WithError(err).Warn("Date field commit failed")
			return h.fail(c, err)
		}
		if !committed {
			return c.Send("Дата не изменилась.")
		}
		return c.Send("Сохранено: " + displayOrUnset(editor.Value(field)))
	}
}

func (h *Handlers) handleShift(c telebot.Context) error {
	args := c.Args()
	if len(args) != 1 {
		return c.Send("Неверный формат команды. Используйте: /shift <дни>")
	}
	days, err := strconv.Atoi(args[0])
	if err != nil {
		return c.Send("Ошибка: количество дней должно быть числом.")
	}
	return h.quickShift(c, h.sessions.Get(c.Chat().ID).Editor, days)
}

// handleQuickShiftButton shifts the deal shown on a card. Payload: dealID|days.
func (h *Handlers) handleQuickShiftButton(c telebot.Context) error {
	args := c.Args()
	if len(args) != 2 {
		return c.Respond(&telebot.CallbackResponse{Text: "Неизвестное действие."})
	}
	days, err := strconv.Atoi(args[1])
	if err != nil {
		return c.Respond(&telebot.CallbackResponse{Text: "Неизвестное действие."})
	}
	d, err := h.deals.GetDeal(h.ctx, c.Sender().ID, args[0])
	if err != nil {
		return h.fail(c, err)
	}

	editor := h.sessions.Get(c.Chat().ID).Editor
	editor.Select(d)
	if err := h.quickShift(c, editor, days); err != nil {
		return err
	}
	return c.Respond()
}

func (h *Handlers) quickShift(c telebot.Context, editor *app.DateEditor, days int) error {
	logCtx := h.logFor(c, "quick_shift").WithField("days", days)

	res, err := editor.QuickShift(h.ctx, days)
	if err != nil {
		logCtx.WithError(err).Warn("Quick shift failed")
		return c.Send(userError(err))
	}
	logCtx.WithFields(logrus.Fields{"next_contact_date": res.NextContactDate, "moved": res.MovedTo != nil}).Info("Quick shift applied")

	text := "Следующий контакт перенесён на " + displayDate(res.NextContactDate) + "."
	if res.MovedTo != nil {
		text += "\nСамая срочная сделка теперь «" + res.MovedTo.Title + "» (контакт: " +
			displayNullDate(res.MovedTo.NextContactDate) + "). Она выбрана для правки."
	}
	return c.Send(text)
}
