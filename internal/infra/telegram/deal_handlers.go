package telegram

import (
	"gopkg.in/telebot.v3"
)

func (h *Handlers) handleDeals(c telebot.Context) error {
	logCtx := h.logFor(c, "/deals")

	deals, err := h.deals.ListDeals(h.ctx, c.Sender().ID, h.today())
	if err != nil {
		logCtx.WithError(err).Error("Failed to list deals")
		return h.fail(c, err)
	}
	if len(deals) == 0 {
		return c.Send("Сделок пока нет.")
	}

	logCtx.WithField("deals_count", len(deals)).Info("Deal list sent")
	text, markup := renderDealList(deals)
	return c.Send(text, markup)
}

func (h *Handlers) handleDeal(c telebot.Context) error {
	args := c.Args()
	if len(args) != 1 {
		return c.Send("Неверный формат команды. Используйте: /deal <ID сделки>")
	}
	return h.showDeal(c, args[0])
}

func (h *Handlers) handleDealOpen(c telebot.Context) error {
	return h.showDeal(c, c.Data())
}

func (h *Handlers) showDeal(c telebot.Context, dealID string) error {
	logCtx := h.logFor(c, "deal_card").WithField("deal_id", dealID)

	tl, err := h.deals.LoadTimeline(h.ctx, c.Sender().ID, dealID, h.today())
	if err != nil {
		logCtx.WithError(err).Warn("Failed to load deal timeline")
		return h.fail(c, err)
	}
	flags, err := h.deals.ViewFlags(h.ctx, c.Sender().ID)
	if err != nil {
		logCtx.WithError(err).Warn("Failed to read view flags, using defaults")
	}

	text, markup := renderDealCard(tl, flags, h.formatAmount)
	return reply(c, text, markup)
}

// handleDealToggle flips an expansion flag and redraws the card. Payload: code|dealID.
func (h *Handlers) handleDealToggle(c telebot.Context) error {
	args := c.Args()
	if len(args) != 2 {
		return c.Respond(&telebot.CallbackResponse{Text: "Неизвестное действие."})
	}
	key, ok := toggleKeys[args[0]]
	if !ok {
		return c.Respond(&telebot.CallbackResponse{Text: "Неизвестное действие."})
	}
	if _, err := h.deals.ToggleFlag(h.ctx, c.Sender().ID, key); err != nil {
		h.logFor(c, "deal_toggle").WithError(err).Error("Failed to toggle view flag")
		return h.fail(c, err)
	}
	return h.showDeal(c, args[1])
}
