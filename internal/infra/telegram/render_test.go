package telegram

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"testing"
	"time"

	"deal_followup_bot/internal/app"
	"deal_followup_bot/internal/domain/deal"
	"deal_followup_bot/internal/domain/timeline"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/telebot.v3"
)

func date(s string) sql.NullString { return sql.NullString{String: s, Valid: true} }

func sampleTimeline(t *testing.T) *app.DealTimeline {
	t.Helper()
	d := &deal.Deal{
		ID:              "d1",
		Title:           "КАСКО автопарк",
		ClientName:      "ООО Ромашка",
		NextContactDate: date("2026-10-05"),
	}
	policies := []timeline.PolicySource{{ID: "p1", Number: "08025/046/020146/25", Company: "АльфаСтрахование", EndDate: date("2026-11-23")}}
	payments := []timeline.PaymentSource{
		{ID: "old", ActualDate: date("2026-03-01"), Amount: "500"},
		{ID: "pay1", ScheduledDate: date("2026-11-23"), Amount: "1200"},
	}
	events := timeline.BuildEvents(policies, payments)
	return &app.DealTimeline{
		Deal:     d,
		Policies: policies,
		Payments: payments,
		Events:   events,
		Window:   timeline.ComputeWindow(events, testToday()),
	}
}

func testToday() time.Time { return time.Date(2026, 10, 1, 0, 0, 0, 0, time.Local) }

func buttons(m *telebot.ReplyMarkup) []telebot.InlineButton {
	var out []telebot.InlineButton
	for _, row := range m.InlineKeyboard {
		out = append(out, row...)
	}
	return out
}

func TestDisplayDate(t *testing.T) {
	assert.Equal(t, "23.11.2026", displayDate("2026-11-23"))
	assert.Equal(t, "garbage", displayDate("garbage"))
	assert.Equal(t, "не задано", displayNullDate(sql.NullString{}))
}

func TestRenderDealCard(t *testing.T) {
	tl := sampleTimeline(t)

	text, markup := renderDealCard(tl, app.ViewFlags{}, timeline.DefaultAmountFormatter)
	assert.Contains(t, text, "КАСКО автопарк")
	assert.Contains(t, text, "Рекомендуемая дата контакта: 09.10.2026")
	assert.Contains(t, text, "Предстоящие события (2)")
	assert.Contains(t, text, "Прошедшие события (1) — свернуто")
	assert.NotContains(t, text, "01.03.2026")
	assert.Len(t, buttons(markup), 3+len(quickShiftDays)+1)

	expanded, _ := renderDealCard(tl, app.ViewFlags{PastExpanded: true, PaymentsExpanded: true}, timeline.DefaultAmountFormatter)
	assert.Contains(t, expanded, "01.03.2026")
	assert.Contains(t, expanded, "₽")
}

func TestRenderDelay(t *testing.T) {
	tl := sampleTimeline(t)
	l := logrus.New()
	l.SetOutput(io.Discard)
	w := app.NewDelayWorkflow(nil, timeline.DefaultRule, logrus.NewEntry(l))
	w.Open(tl.Deal, tl.Events, testToday())

	text, markup := renderDelay(w, false)
	assert.Contains(t, text, "Новая дата контакта: 09.10.2026")
	assert.Contains(t, text, "Новая дата закрытия: 23.11.2026")

	btns := buttons(markup)
	// two upcoming events, the past toggle, confirm and cancel
	require.Len(t, btns, 5)
	assert.Contains(t, btns[0].Text, "✅")

	_, markup = renderDelay(w, true)
	assert.Len(t, buttons(markup), 6)
}

type blockingUpdater struct {
	started chan struct{}
	release chan struct{}
}

func (u *blockingUpdater) Update(context.Context, string, deal.EditableFields) error {
	close(u.started)
	<-u.release
	return nil
}

func TestDelayConfirm_SecondTapAfterCommitClosed(t *testing.T) {
	ctx := context.Background()
	tl := sampleTimeline(t)
	l := logrus.New()
	l.SetOutput(io.Discard)
	updater := &blockingUpdater{started: make(chan struct{}), release: make(chan struct{})}
	w := app.NewDelayWorkflow(updater, timeline.DefaultRule, logrus.NewEntry(l))
	w.Open(tl.Deal, tl.Events, testToday())

	done := make(chan error, 1)
	go func() { done <- w.Confirm(ctx) }()
	<-updater.started

	// The second tap saw a committing workflow; the first commit finishes
	// before its own Confirm runs.
	assert.NotEqual(t, app.DelayClosed, w.State())
	close(updater.release)
	require.NoError(t, <-done)

	err := w.Confirm(ctx)
	assert.ErrorIs(t, err, app.ErrWorkflowClosed)
	assert.True(t, confirmRejected(err))
	assert.Nil(t, w.Deal())

	assert.NotPanics(t, func() {
		text, markup := renderDelay(w, false)
		assert.Equal(t, "Окно переноса закрыто.", text)
		assert.Empty(t, buttons(markup))
	})
}

func TestConfirmRejected(t *testing.T) {
	assert.True(t, confirmRejected(app.ErrCommitInFlight))
	assert.True(t, confirmRejected(app.ErrNoSelection))
	assert.True(t, confirmRejected(app.ErrWorkflowClosed))
	assert.False(t, confirmRejected(errors.New("connection reset")))
}
