package timeline

import "time"

// Default lead times, in days before the event.
const (
	DefaultPaymentLeadDays = 30
	DefaultPolicyLeadDays  = 45
)

// Rule is the follow-up recommendation policy: contact the client a
// type-specific number of days before an event, but never before today.
type Rule struct {
	PaymentLeadDays int
	PolicyLeadDays  int
}

// DefaultRule uses the default lead times.
var DefaultRule = Rule{
	PaymentLeadDays: DefaultPaymentLeadDays,
	PolicyLeadDays:  DefaultPolicyLeadDays,
}

// LeadDays returns the lead time for an event type.
func (r Rule) LeadDays(t EventType) int {
	switch t {
	case EventTypePayment:
		return r.PaymentLeadDays
	case EventTypePolicyExpiration:
		return r.PolicyLeadDays
	default:
		return 0
	}
}

// Recommend returns the suggested next-contact date for ev as YYYY-MM-DD.
// The result is never earlier than today. It reports false for a nil event or
// a date that cannot be computed.
func (r Rule) Recommend(ev *Event, today time.Time) (string, bool) {
	if ev == nil {
		return "", false
	}
	return r.RecommendWithLead(ev, today, r.LeadDays(ev.Type))
}

// RecommendWithLead is Recommend with an explicit lead time.
func (r Rule) RecommendWithLead(ev *Event, today time.Time, leadDays int) (string, bool) {
	if ev == nil {
		return "", false
	}
	date, ok := ParseDate(ev.Date)
	if !ok {
		return "", false
	}
	floor := referenceDay(today)

	suggested := AddDays(date, -leadDays)
	if suggested.Before(floor) {
		suggested = floor
	}
	if !representable(suggested) {
		return "", false
	}
	return FormatDate(suggested), true
}

// RecommendFollowUp applies DefaultRule.
func RecommendFollowUp(ev *Event, today time.Time) (string, bool) {
	return DefaultRule.Recommend(ev, today)
}
