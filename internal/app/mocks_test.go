package app

import (
	"context"
	"database/sql"
	"io"
	"time"

	"deal_followup_bot/internal/domain/deal"
	"deal_followup_bot/internal/domain/timeline"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
)

type mockDealRepository struct {
	mock.Mock
}

func (m *mockDealRepository) GetByID(ctx context.Context, id string) (*deal.Deal, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*deal.Deal), args.Error(1)
}

func (m *mockDealRepository) ListByPriority(ctx context.Context, ownerTelegramID int64, limit int) ([]*deal.Deal, error) {
	args := m.Called(ctx, ownerTelegramID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*deal.Deal), args.Error(1)
}

func (m *mockDealRepository) Update(ctx context.Context, id string, fields deal.EditableFields) error {
	args := m.Called(ctx, id, fields)
	return args.Error(0)
}

type mockSourceRepository struct {
	mock.Mock
}

func (m *mockSourceRepository) ListPolicies(ctx context.Context, dealIDs []string) (map[string][]timeline.PolicySource, error) {
	args := m.Called(ctx, dealIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string][]timeline.PolicySource), args.Error(1)
}

func (m *mockSourceRepository) ListPayments(ctx context.Context, dealIDs []string) (map[string][]timeline.PaymentSource, error) {
	args := m.Called(ctx, dealIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string][]timeline.PaymentSource), args.Error(1)
}

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func nullString(s string) sql.NullString {
	return deal.NullDate(s)
}

func testDay(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func testDeal(id string) *deal.Deal {
	return &deal.Deal{
		ID:              id,
		OwnerTelegramID: 42,
		Title:           "Fleet insurance",
		ClientName:      "ООО Ромашка",
		Stage:           "negotiation",
		Description:     nullString("renewal of 12 vehicles"),
		NextContactDate: nullString("2026-10-05"),
		ExpectedClose:   nullString("2026-12-01"),
	}
}
