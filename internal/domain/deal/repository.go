package deal

import (
	"context"
	"errors"

	"deal_followup_bot/internal/domain/timeline"
)

// Repository defines the operations for reading and updating deals.
type Repository interface {
	GetByID(ctx context.Context, id string) (*Deal, error)
	// ListByPriority returns the owner's deals, most urgent first:
	// next contact date ascending (unset last), then expected close, then age.
	ListByPriority(ctx context.Context, ownerTelegramID int64, limit int) ([]*Deal, error)
	// Update replaces every editable field of the deal.
	Update(ctx context.Context, id string, fields EditableFields) error
}

// SourceRepository loads the policies and payments a deal's timeline is built from.
// Rows come back in their stable source order.
type SourceRepository interface {
	ListPolicies(ctx context.Context, dealIDs []string) (map[string][]timeline.PolicySource, error)
	ListPayments(ctx context.Context, dealIDs []string) (map[string][]timeline.PaymentSource, error)
}

// ErrNotFound is returned by repositories when no deal matches.
var ErrNotFound = errors.New("deal not found")
