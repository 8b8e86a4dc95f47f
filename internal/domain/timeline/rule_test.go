package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecommendFollowUp_LeadTimes(t *testing.T) {
	today := day(2026, 1, 1)

	payment := ev("pay", EventTypePayment, "2026-11-23")
	got, ok := RecommendFollowUp(&payment, today)
	require.True(t, ok)
	assert.Equal(t, "2026-10-24", got)

	policy := ev("pol", EventTypePolicyExpiration, "2026-11-23")
	got, ok = RecommendFollowUp(&policy, today)
	require.True(t, ok)
	assert.Equal(t, "2026-10-09", got)
}

func TestRecommendFollowUp_ClampsToToday(t *testing.T) {
	today := day(2026, 10, 1)

	nearTerm := ev("near", EventTypePayment, "2026-10-15")
	got, ok := RecommendFollowUp(&nearTerm, today)
	require.True(t, ok)
	assert.Equal(t, "2026-10-01", got)

	overdue := ev("overdue", EventTypePolicyExpiration, "2025-03-01")
	got, ok = RecommendFollowUp(&overdue, today)
	require.True(t, ok)
	assert.Equal(t, "2026-10-01", got)
}

func TestRecommendFollowUp_NoSuggestion(t *testing.T) {
	_, ok := RecommendFollowUp(nil, day(2026, 1, 1))
	assert.False(t, ok)

	broken := ev("x", EventTypePayment, "tomorrow")
	_, ok = RecommendFollowUp(&broken, day(2026, 1, 1))
	assert.False(t, ok)
}

func TestRule_RecommendWithLead(t *testing.T) {
	e := ev("pay", EventTypePayment, "2026-11-23")

	got, ok := DefaultRule.RecommendWithLead(&e, day(2026, 1, 1), 7)
	require.True(t, ok)
	assert.Equal(t, "2026-11-16", got)

	got, ok = DefaultRule.RecommendWithLead(&e, day(2026, 1, 1), 0)
	require.True(t, ok)
	assert.Equal(t, "2026-11-23", got)
}

func TestRule_CustomLeadDays(t *testing.T) {
	r := Rule{PaymentLeadDays: 10, PolicyLeadDays: 60}
	assert.Equal(t, 10, r.LeadDays(EventTypePayment))
	assert.Equal(t, 60, r.LeadDays(EventTypePolicyExpiration))
	assert.Equal(t, 0, r.LeadDays("unknown"))

	e := ev("pol", EventTypePolicyExpiration, "2026-03-01")
	got, ok := r.Recommend(&e, day(2025, 1, 1))
	require.True(t, ok)
	assert.Equal(t, "2025-12-31", got)
}

func TestRecommendFollowUp_NeverBeforeToday(t *testing.T) {
	dates := []string{"2024-02-29", "2025-12-31", "2026-01-01", "2026-01-30", "2026-02-14", "2026-02-15", "2027-07-04"}
	todays := []string{"2025-01-01", "2026-01-01", "2026-01-15", "2026-06-30"}

	for _, typ := range []EventType{EventTypePayment, EventTypePolicyExpiration} {
		for _, d := range dates {
			for _, td := range todays {
				today, _ := ParseDate(td)
				e := ev("e", typ, d)
				got, ok := RecommendFollowUp(&e, today)
				require.True(t, ok)
				assert.GreaterOrEqual(t, got, td, "%s %s today=%s", typ, d, td)
			}
		}
	}
}

func TestRecommendFollowUp_MatchesWindowSuggestion(t *testing.T) {
	fixtures := [][]Event{
		{ev("a", EventTypePayment, "2026-11-23")},
		{ev("b", EventTypePolicyExpiration, "2026-10-20")},
		{ev("c", EventTypePayment, "2025-01-01"), ev("d", EventTypePolicyExpiration, "2025-06-01")},
		{ev("e", EventTypePayment, "2026-09-30"), ev("f", EventTypePolicyExpiration, "2027-01-01")},
	}
	today := day(2026, 10, 1)

	for _, events := range fixtures {
		w := ComputeWindow(events, today)
		require.NotNil(t, w.NextEvent)
		direct, ok := RecommendFollowUp(w.NextEvent, today)
		require.True(t, ok)
		assert.Equal(t, direct, w.SuggestedNextContact)
	}
}
