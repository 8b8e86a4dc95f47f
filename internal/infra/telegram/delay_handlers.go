package telegram

import (
	"errors"

	"deal_followup_bot/internal/app"
	"deal_followup_bot/internal/domain/preference"

	"gopkg.in/telebot.v3"
)

func (h *Handlers) handleDelay(c telebot.Context) error {
	args := c.Args()
	if len(args) != 1 {
		return c.Send("Неверный формат команды. Используйте: /delay <ID сделки>")
	}
	return h.openDelay(c, args[0])
}

func (h *Handlers) handleDelayButton(c telebot.Context) error {
	return h.openDelay(c, c.Data())
}

func (h *Handlers) openDelay(c telebot.Context, dealID string) error {
	logCtx := h.logFor(c, "delay_open").WithField("deal_id", dealID)
	session := h.sessions.Get(c.Chat().ID)
	if session.Delay.State() == app.DelayCommitting {
		return h.fail(c, app.ErrCommitInFlight)
	}

	today := h.today()
	tl, err := h.deals.LoadTimeline(h.ctx, c.Sender().ID, dealID, today)
	if err != nil {
		logCtx.WithError(err).Warn("Failed to load deal for delay")
		return h.fail(c, err)
	}

	session.Delay.Open(tl.Deal, tl.Events, today)
	logCtx.WithField("selected_id", session.Delay.SelectedID()).Info("Delay workflow opened")
	return h.redrawDelay(c, session.Delay)
}

func (h *Handlers) redrawDelay(c telebot.Context, w *app.DelayWorkflow) error {
	expanded, err := h.pastExpanded(c)
	if err != nil {
		h.logFor(c, "delay").WithError(err).Warn("Failed to read past list flag")
	}
	text, markup := renderDelay(w, expanded)
	return reply(c, text, markup)
}

func (h *Handlers) pastExpanded(c telebot.Context) (bool, error) {
	flags, err := h.deals.ViewFlags(h.ctx, c.Sender().ID)
	return flags.PastExpanded, err
}

// activeDelay returns the chat's delay workflow if it is open.
func (h *Handlers) activeDelay(c telebot.Context) (*app.DelayWorkflow, error) {
	w := h.sessions.Get(c.Chat().ID).Delay
	if w.State() == app.DelayClosed {
		return nil, app.ErrWorkflowClosed
	}
	return w, nil
}

func (h *Handlers) handleDelaySelect(c telebot.Context) error {
	w, err := h.activeDelay(c)
	if err != nil {
		return h.fail(c, err)
	}
	if err := w.Select(c.Data()); err != nil {
		return h.fail(c, err)
	}
	return h.redrawDelay(c, w)
}

func (h *Handlers) handleDelayPast(c telebot.Context) error {
	w, err := h.activeDelay(c)
	if err != nil {
		return h.fail(c, err)
	}
	if _, err := h.deals.ToggleFlag(h.ctx, c.Sender().ID, preference.KeyPastEventsExpanded); err != nil {
		h.logFor(c, "delay_past").WithError(err).Error("Failed to toggle past list")
		return h.fail(c, err)
	}
	return h.redrawDelay(c, w)
}

func (h *Handlers) handleDelayConfirm(c telebot.Context) error {
	logCtx := h.logFor(c, "delay_confirm")
	w, err := h.activeDelay(c)
	if err != nil {
		return h.fail(c, err)
	}
	d := w.Deal()
	suggestion, _ := w.Suggestion()
	selected, _ := w.Selected()

	if err := w.Confirm(h.ctx); err != nil {
		if confirmRejected(err) {
			return h.fail(c, err)
		}
		logCtx.WithError(err).Error("Delay commit failed")
		_ = c.Respond(&telebot.CallbackResponse{Text: "Не удалось сохранить перенос. Попробуйте ещё раз.", ShowAlert: true})
		// The workflow is still open with the same selection.
		expanded, _ := h.pastExpanded(c)
		text, markup := renderDelay(w, expanded)
		return c.Edit(text, markup)
	}

	logCtx.WithField("deal_id", d.ID).Info("Deal postponed via delay workflow")
	text := "Сделка «" + d.Title + "» перенесена."
	if selected != nil {
		text += "\nСледующий контакт: " + displayDate(suggestion) + "\nОжидаемое закрытие: " + displayDate(selected.Date)
	}
	if err := c.Edit(text); err != nil {
		return err
	}
	return c.Respond(&telebot.CallbackResponse{Text: "Сохранено"})
}

// confirmRejected reports errors raised before any update was attempted,
// including a workflow closed by a concurrent confirm.
func confirmRejected(err error) bool {
	return errors.Is(err, app.ErrCommitInFlight) ||
		errors.Is(err, app.ErrNoSelection) ||
		errors.Is(err, app.ErrWorkflowClosed)
}

func (h *Handlers) handleDelayCancel(c telebot.Context) error {
	w := h.sessions.Get(c.Chat().ID).Delay
	if w.State() == app.DelayCommitting {
		return h.fail(c, app.ErrCommitInFlight)
	}
	w.Close()
	if err := c.Edit("Перенос отменён."); err != nil && !errors.Is(err, telebot.ErrSameMessageContent) {
		return err
	}
	return c.Respond()
}
