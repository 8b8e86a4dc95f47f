package telegram

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"deal_followup_bot/internal/app"
	"deal_followup_bot/internal/domain/timeline"

	"gopkg.in/telebot.v3"
)

const displayDateLayout = "02.01.2006"

// Callback endpoints. Payloads are joined with "|" by telebot.
var (
	btnDealOpen     = telebot.Btn{Unique: "deal_open"}
	btnDealToggle   = telebot.Btn{Unique: "deal_tgl"}
	btnDealDelay    = telebot.Btn{Unique: "deal_delay"}
	btnQuickShift   = telebot.Btn{Unique: "ed_shift"}
	btnDelaySelect  = telebot.Btn{Unique: "dly_sel"}
	btnDelayPast    = telebot.Btn{Unique: "dly_past"}
	btnDelayConfirm = telebot.Btn{Unique: "dly_ok"}
	btnDelayCancel  = telebot.Btn{Unique: "dly_cancel"}
)

// Short codes of expansion flags used in callback payloads.
const (
	toggleCodePast     = "past"
	toggleCodePolicies = "pol"
	toggleCodePayments = "pay"
)

var quickShiftDays = []int{1, 3, 7, 14}

func displayDate(iso string) string {
	t, ok := timeline.ParseDate(iso)
	if !ok {
		return iso
	}
	return t.Format(displayDateLayout)
}

func displayNullDate(v sql.NullString) string {
	if !v.Valid || v.String == "" {
		return "не задано"
	}
	return displayDate(v.String)
}

func eventLine(ev timeline.Event) string {
	return fmt.Sprintf("• %s %s — %s", displayDate(ev.Date), ev.Title, ev.Description)
}

// renderDealList renders the priority-ordered deal list.
func renderDealList(deals []app.DealTimeline) (string, *telebot.ReplyMarkup) {
	var sb strings.Builder
	markup := &telebot.ReplyMarkup{}
	rows := make([]telebot.Row, 0, len(deals))

	sb.WriteString("---\tСделки по срочности\t---\n")
	for i, tl := range deals {
		d := tl.Deal
		sb.WriteString(fmt.Sprintf("%d. %s (%s)\n   Контакт: %s, закрытие: %s\n",
			i+1, d.Title, d.ClientName, displayNullDate(d.NextContactDate), displayNullDate(d.ExpectedClose)))
		if next := tl.Window.NextEvent; next != nil {
			sb.WriteString(fmt.Sprintf("   Ближайшее: %s %s\n", displayDate(next.Date), next.Title))
		}
		rows = append(rows, markup.Row(markup.Data(fmt.Sprintf("%d. %s", i+1, d.Title), btnDealOpen.Unique, d.ID)))
	}
	markup.Inline(rows...)
	return sb.String(), markup
}

// renderDealCard renders one deal with its timeline window.
func renderDealCard(tl *app.DealTimeline, flags app.ViewFlags, formatAmount timeline.AmountFormatter) (string, *telebot.ReplyMarkup) {
	d := tl.Deal
	w := tl.Window
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("📁 %s — %s\n", d.Title, d.ClientName))
	if d.Stage != "" {
		sb.WriteString(fmt.Sprintf("Стадия: %s\n", d.Stage))
	}
	sb.WriteString(fmt.Sprintf("Следующий контакт: %s\n", displayNullDate(d.NextContactDate)))
	sb.WriteString(fmt.Sprintf("Ожидаемое закрытие: %s\n\n", displayNullDate(d.ExpectedClose)))

	if w.NextEvent == nil {
		sb.WriteString("Событий по полисам и платежам нет.\n")
	} else {
		sb.WriteString(fmt.Sprintf("Ближайшее событие: %s\n", strings.TrimPrefix(eventLine(*w.NextEvent), "• ")))
		if w.SuggestedNextContact != "" {
			sb.WriteString(fmt.Sprintf("Рекомендуемая дата контакта: %s\n", displayDate(w.SuggestedNextContact)))
		}
	}

	if len(w.Upcoming) > 0 {
		sb.WriteString(fmt.Sprintf("\nПредстоящие события (%d):\n", len(w.Upcoming)))
		for _, ev := range w.Upcoming {
			sb.WriteString(eventLine(ev) + "\n")
		}
	}
	if len(w.Past) > 0 {
		sb.WriteString(fmt.Sprintf("\nПрошедшие события (%d)", len(w.Past)))
		if flags.PastExpanded {
			sb.WriteString(":\n")
			for _, ev := range w.Past {
				sb.WriteString(eventLine(ev) + "\n")
			}
		} else {
			sb.WriteString(" — свернуто\n")
		}
	}

	sb.WriteString(fmt.Sprintf("\nПолисы (%d)", len(tl.Policies)))
	if flags.PoliciesExpanded {
		sb.WriteString(":\n")
		for _, p := range tl.Policies {
			sb.WriteString(fmt.Sprintf("• %s %s, до %s\n", p.Number, p.Company, displayNullDate(p.EndDate)))
		}
	} else {
		sb.WriteString("\n")
	}

	sb.WriteString(fmt.Sprintf("Платежи (%d)", len(tl.Payments)))
	if flags.PaymentsExpanded {
		sb.WriteString(":\n")
		for _, p := range tl.Payments {
			amount := p.Amount
			if v, ok := timeline.ParseAmount(p.Amount); ok {
				amount = formatAmount(v)
			}
			sb.WriteString(fmt.Sprintf("• план %s, факт %s — %s\n", displayNullDate(p.ScheduledDate), displayNullDate(p.ActualDate), amount))
		}
	} else {
		sb.WriteString("\n")
	}

	markup := &telebot.ReplyMarkup{}
	shiftRow := make(telebot.Row, 0, len(quickShiftDays))
	for _, days := range quickShiftDays {
		shiftRow = append(shiftRow, markup.Data(fmt.Sprintf("+%d дн.", days), btnQuickShift.Unique, d.ID, strconv.Itoa(days)))
	}
	markup.Inline(
		markup.Row(
			markup.Data(toggleLabel("Прошедшие", flags.PastExpanded), btnDealToggle.Unique, toggleCodePast, d.ID),
			markup.Data(toggleLabel("Полисы", flags.PoliciesExpanded), btnDealToggle.Unique, toggleCodePolicies, d.ID),
			markup.Data(toggleLabel("Платежи", flags.PaymentsExpanded), btnDealToggle.Unique, toggleCodePayments, d.ID),
		),
		shiftRow,
		markup.Row(markup.Data("Перенести по событию", btnDealDelay.Unique, d.ID)),
	)
	return sb.String(), markup
}

func toggleLabel(name string, expanded bool) string {
	if expanded {
		return "▾ " + name
	}
	return "▸ " + name
}

// renderDelay renders the delay workflow: event buttons, the prospective
// follow-up date and the confirm/cancel controls.
func renderDelay(w *app.DelayWorkflow, pastExpanded bool) (string, *telebot.ReplyMarkup) {
	d := w.Deal()
	if d == nil {
		return "Окно переноса закрыто.", &telebot.ReplyMarkup{}
	}
	window := w.Window()
	selectedID := w.SelectedID()

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Перенос сделки «%s»\n", d.Title))
	sb.WriteString(fmt.Sprintf("Сейчас: контакт %s, закрытие %s\n\n", displayNullDate(d.NextContactDate), displayNullDate(d.ExpectedClose)))

	if ev, ok := w.Selected(); ok {
		sb.WriteString(fmt.Sprintf("Выбрано: %s\n", strings.TrimPrefix(eventLine(*ev), "• ")))
		if s, ok := w.Suggestion(); ok {
			sb.WriteString(fmt.Sprintf("Новая дата контакта: %s\nНовая дата закрытия: %s\n", displayDate(s), displayDate(ev.Date)))
		} else {
			sb.WriteString("Рекомендация недоступна.\n")
		}
	} else {
		sb.WriteString("Нет событий для переноса.\n")
	}

	markup := &telebot.ReplyMarkup{}
	rows := make([]telebot.Row, 0, len(window.Upcoming)+len(window.Past)+2)
	eventButton := func(ev timeline.Event) telebot.Row {
		label := fmt.Sprintf("%s %s", displayDate(ev.Date), ev.Title)
		if ev.ID == selectedID {
			label = "✅ " + label
		}
		return markup.Row(markup.Data(label, btnDelaySelect.Unique, ev.ID))
	}
	for _, ev := range window.Upcoming {
		rows = append(rows, eventButton(ev))
	}
	if len(window.Past) > 0 {
		rows = append(rows, markup.Row(markup.Data(
			fmt.Sprintf("%s (%d)", toggleLabel("Прошедшие", pastExpanded), len(window.Past)), btnDelayPast.Unique)))
		if pastExpanded {
			for _, ev := range window.Past {
				rows = append(rows, eventButton(ev))
			}
		}
	}

	controls := markup.Row(markup.Data("Отмена", btnDelayCancel.Unique))
	if selectedID != "" && w.State() == app.DelayOpen {
		controls = markup.Row(markup.Data("Подтвердить", btnDelayConfirm.Unique), markup.Data("Отмена", btnDelayCancel.Unique))
	}
	rows = append(rows, controls)
	markup.Inline(rows...)
	return sb.String(), markup
}
