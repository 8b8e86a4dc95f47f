package timeline

import (
	"sort"
	"strings"
)

// Fallback descriptions used when an event has no describable parts.
const (
	FallbackPolicyDescription  = "Policy details unavailable"
	FallbackPaymentDescription = "Payment"
)

// Builder turns a deal's policies and payments into timeline events.
type Builder struct {
	formatAmount AmountFormatter
}

// NewBuilder returns a Builder that renders payment amounts with f.
// A nil f falls back to DefaultAmountFormatter.
func NewBuilder(f AmountFormatter) *Builder {
	if f == nil {
		f = DefaultAmountFormatter
	}
	return &Builder{formatAmount: f}
}

var defaultBuilder = NewBuilder(nil)

// BuildEvents builds the timeline of one deal with the default amount format.
func BuildEvents(policies []PolicySource, payments []PaymentSource) []Event {
	return defaultBuilder.Build(policies, payments)
}

// Build returns one event per dated policy and payment, sorted ascending by
// date. The sort is stable: on equal dates policies stay ahead of payments and
// each group keeps its input order. Sources without a usable date are skipped.
func (b *Builder) Build(policies []PolicySource, payments []PaymentSource) []Event {
	events := make([]Event, 0, len(policies)+len(payments))
	for _, p := range policies {
		if ev, ok := policyEvent(p); ok {
			events = append(events, ev)
		}
	}
	for _, p := range payments {
		if ev, ok := b.paymentEvent(p); ok {
			events = append(events, ev)
		}
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Date < events[j].Date
	})
	return events
}

func policyEvent(p PolicySource) (Event, bool) {
	if !p.EndDate.Valid {
		return Event{}, false
	}
	date, ok := ParseDate(p.EndDate.String)
	if !ok {
		return Event{}, false
	}

	var numberPart string
	if n := strings.TrimSpace(p.Number); n != "" {
		numberPart = "Policy " + n
	}

	return Event{
		ID:           policyEventID(p.ID),
		Type:         EventTypePolicyExpiration,
		Date:         FormatDate(date),
		Title:        TitlePolicyExpiration,
		Description:  JoinParts(FallbackPolicyDescription, numberPart, p.Company),
		PolicyNumber: strings.TrimSpace(p.Number),
	}, true
}

func (b *Builder) paymentEvent(p PaymentSource) (Event, bool) {
	raw := p.ScheduledDate
	if !raw.Valid || strings.TrimSpace(raw.String) == "" {
		raw = p.ActualDate
	}
	if !raw.Valid {
		return Event{}, false
	}
	date, ok := ParseDate(raw.String)
	if !ok {
		return Event{}, false
	}

	var descPart, policyPart, amountPart string
	if p.Description.Valid {
		descPart = p.Description.String
	}
	var policyNumber string
	if p.PolicyNumber.Valid && strings.TrimSpace(p.PolicyNumber.String) != "" {
		policyNumber = strings.TrimSpace(p.PolicyNumber.String)
		policyPart = "for policy " + policyNumber
	}

	ev := Event{
		ID:           paymentEventID(p.ID),
		Type:         EventTypePayment,
		Date:         FormatDate(date),
		Title:        TitlePayment,
		PolicyNumber: policyNumber,
	}
	if amount, ok := ParseAmount(p.Amount); ok {
		ev.Amount = &amount
		amountPart = "Amount " + b.formatAmount(amount)
	}
	ev.Description = JoinParts(FallbackPaymentDescription, descPart, policyPart, amountPart)
	return ev, true
}
