package timeline

import (
	"database/sql"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func valid(s string) sql.NullString { return sql.NullString{String: s, Valid: true} }

func testBuilder(t *testing.T) *Builder {
	t.Helper()
	f, err := NewAmountFormatter("en", "RUB")
	require.NoError(t, err)
	return NewBuilder(f)
}

func TestBuild_PolicyExpiration(t *testing.T) {
	policies := []PolicySource{{
		ID:      "p1",
		Number:  "08025/046/020146/25",
		Company: "АльфаСтрахование",
		EndDate: valid("2026-11-23"),
	}}

	events := BuildEvents(policies, nil)

	require.Len(t, events, 1)
	ev := events[0]
	assert.Equal(t, "policy-p1", ev.ID)
	assert.Equal(t, EventTypePolicyExpiration, ev.Type)
	assert.Equal(t, TitlePolicyExpiration, ev.Title)
	assert.Equal(t, "2026-11-23", ev.Date)
	assert.Contains(t, ev.Description, "08025/046/020146/25")
	assert.Contains(t, ev.Description, "АльфаСтрахование")
	assert.Equal(t, "Policy 08025/046/020146/25 · АльфаСтрахование", ev.Description)
	assert.Equal(t, "08025/046/020146/25", ev.PolicyNumber)
	assert.Nil(t, ev.Amount)
}

func TestBuild_PolicyDescriptionVariants(t *testing.T) {
	events := BuildEvents([]PolicySource{
		{ID: "a", Number: "N-1", EndDate: valid("2026-01-01")},
		{ID: "b", Company: "Ингосстрах", EndDate: valid("2026-01-02")},
		{ID: "c", EndDate: valid("2026-01-03")},
	}, nil)

	require.Len(t, events, 3)
	assert.Equal(t, "Policy N-1", events[0].Description)
	assert.Equal(t, "Ингосстрах", events[1].Description)
	assert.Equal(t, FallbackPolicyDescription, events[2].Description)
}

func TestBuild_SkipsPoliciesWithoutUsableEndDate(t *testing.T) {
	events := BuildEvents([]PolicySource{
		{ID: "none", Number: "1"},
		{ID: "garbage", Number: "2", EndDate: valid("someday")},
		{ID: "ok", Number: "3", EndDate: valid("2026-05-05")},
	}, nil)

	require.Len(t, events, 1)
	assert.Equal(t, "policy-ok", events[0].ID)
}

func TestBuild_Payment(t *testing.T) {
	b := testBuilder(t)
	events := b.Build(nil, []PaymentSource{{
		ID:            "pay1",
		ScheduledDate: valid("2026-11-23"),
		PolicyNumber:  valid("08025/046/020146/25"),
		Amount:        "1200",
	}})

	require.Len(t, events, 1)
	ev := events[0]
	assert.Equal(t, "payment-pay1", ev.ID)
	assert.Equal(t, EventTypePayment, ev.Type)
	assert.Equal(t, TitlePayment, ev.Title)
	assert.Equal(t, "for policy 08025/046/020146/25 · Amount 1,200 RUB", ev.Description)
	require.NotNil(t, ev.Amount)
	assert.True(t, ev.Amount.Equal(decimal.NewFromInt(1200)))
}

func TestBuild_PaymentDateResolution(t *testing.T) {
	events := testBuilder(t).Build(nil, []PaymentSource{
		{ID: "scheduled", ScheduledDate: valid("2026-03-01"), ActualDate: valid("2026-02-01"), Amount: "1"},
		{ID: "actual", ActualDate: valid("2026-02-15"), Amount: "1"},
		{ID: "undated", Amount: "1"},
		{ID: "broken", ScheduledDate: valid("31/12/2026"), Amount: "1"},
	})

	require.Len(t, events, 2)
	assert.Equal(t, "payment-actual", events[0].ID)
	assert.Equal(t, "2026-02-15", events[0].Date)
	assert.Equal(t, "payment-scheduled", events[1].ID)
	assert.Equal(t, "2026-03-01", events[1].Date)
}

func TestBuild_PaymentDescriptionParts(t *testing.T) {
	b := testBuilder(t)
	tests := []struct {
		name       string
		payment    PaymentSource
		want       string
		wantAmount bool
	}{
		{
			name:       "all parts",
			payment:    PaymentSource{Description: valid("Second installment"), PolicyNumber: valid("P-7"), Amount: "2500.5"},
			want:       "Second installment · for policy P-7 · Amount 2,500.5 RUB",
			wantAmount: true,
		},
		{
			name:    "unparseable amount keeps other parts",
			payment: PaymentSource{Description: valid("Deposit"), Amount: "n/a"},
			want:    "Deposit",
		},
		{
			name:    "nothing describable",
			payment: PaymentSource{Amount: ""},
			want:    FallbackPaymentDescription,
		},
		{
			name:       "amount only",
			payment:    PaymentSource{Amount: "0"},
			want:       "Amount 0 RUB",
			wantAmount: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.payment.ID = "x"
			tt.payment.ScheduledDate = valid("2026-01-01")
			events := b.Build(nil, []PaymentSource{tt.payment})
			require.Len(t, events, 1)
			assert.Equal(t, tt.want, events[0].Description)
			assert.Equal(t, tt.wantAmount, events[0].Amount != nil)
		})
	}
}

func TestBuild_StableSort(t *testing.T) {
	events := BuildEvents(
		[]PolicySource{
			{ID: "late", EndDate: valid("2026-06-01")},
			{ID: "same-a", EndDate: valid("2026-04-01")},
			{ID: "same-b", EndDate: valid("2026-04-01")},
		},
		[]PaymentSource{
			{ID: "same-c", ScheduledDate: valid("2026-04-01"), Amount: "1"},
			{ID: "early", ScheduledDate: valid("2026-01-01"), Amount: "1"},
		},
	)

	ids := make([]string, 0, len(events))
	for _, ev := range events {
		ids = append(ids, ev.ID)
	}
	assert.Equal(t, []string{
		"payment-early",
		"policy-same-a",
		"policy-same-b",
		"payment-same-c",
		"policy-late",
	}, ids)

	for i := 1; i < len(events); i++ {
		assert.LessOrEqual(t, events[i-1].Date, events[i].Date)
	}
}

func TestBuild_EmptyInputs(t *testing.T) {
	events := BuildEvents(nil, nil)
	assert.NotNil(t, events)
	assert.Empty(t, events)
}
