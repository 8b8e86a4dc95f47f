package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"deal_followup_bot/internal/domain/deal"
	"deal_followup_bot/internal/domain/preference"
	"deal_followup_bot/internal/domain/timeline"
)

// DealTimeline is a deal together with the timeline derived from its sources.
type DealTimeline struct {
	Deal     *deal.Deal
	Policies []timeline.PolicySource
	Payments []timeline.PaymentSource
	Events   []timeline.Event
	Window   timeline.Window
}

// ViewFlags are the expansion states of the collapsible lists of a deal card.
type ViewFlags struct {
	PastExpanded     bool
	PoliciesExpanded bool
	PaymentsExpanded bool
}

// DealService reads deals for authorized managers and derives their timelines.
type DealService struct {
	deals    deal.Repository
	sources  deal.SourceRepository
	prefs    preference.Store
	builder  *timeline.Builder
	rule     timeline.Rule
	managers map[int64]struct{}
	pageSize int
}

func NewDealService(
	deals deal.Repository,
	sources deal.SourceRepository,
	prefs preference.Store,
	builder *timeline.Builder,
	rule timeline.Rule,
	managerIDs []int64,
	pageSize int,
) *DealService {
	managers := make(map[int64]struct{}, len(managerIDs))
	for _, id := range managerIDs {
		managers[id] = struct{}{}
	}
	return &DealService{
		deals:    deals,
		sources:  sources,
		prefs:    prefs,
		builder:  builder,
		rule:     rule,
		managers: managers,
		pageSize: pageSize,
	}
}

// Rule is the recommendation rule every derivation of the service uses.
func (s *DealService) Rule() timeline.Rule { return s.rule }

// Authorize checks the user against the manager allow-list.
func (s *DealService) Authorize(userID int64) error {
	if _, ok := s.managers[userID]; !ok {
		return ErrNotAuthorized
	}
	return nil
}

// GetDeal loads a deal owned by userID.
func (s *DealService) GetDeal(ctx context.Context, userID int64, dealID string) (*deal.Deal, error) {
	if err := s.Authorize(userID); err != nil {
		return nil, err
	}
	d, err := s.deals.GetByID(ctx, dealID)
	if err != nil {
		if errors.Is(err, deal.ErrNotFound) {
			return nil, ErrDealNotFound
		}
		return nil, fmt.Errorf("failed to get deal %s: %w", dealID, err)
	}
	if d.OwnerTelegramID != userID {
		return nil, ErrDealNotFound
	}
	return d, nil
}

// ListDeals returns the user's deals in priority order, each with its window.
func (s *DealService) ListDeals(ctx context.Context, userID int64, today time.Time) ([]DealTimeline, error) {
	if err := s.Authorize(userID); err != nil {
		return nil, err
	}
	deals, err := s.deals.ListByPriority(ctx, userID, s.pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list deals: %w", err)
	}
	return s.withTimelines(ctx, deals, today)
}

// LoadTimeline loads one deal and derives its timeline window for today.
func (s *DealService) LoadTimeline(ctx context.Context, userID int64, dealID string, today time.Time) (*DealTimeline, error) {
	d, err := s.GetDeal(ctx, userID, dealID)
	if err != nil {
		return nil, err
	}
	timelines, err := s.withTimelines(ctx, []*deal.Deal{d}, today)
	if err != nil {
		return nil, err
	}
	return &timelines[0], nil
}

func (s *DealService) withTimelines(ctx context.Context, deals []*deal.Deal, today time.Time) ([]DealTimeline, error) {
	if len(deals) == 0 {
		return []DealTimeline{}, nil
	}
	ids := make([]string, 0, len(deals))
	for _, d := range deals {
		ids = append(ids, d.ID)
	}

	policies, err := s.sources.ListPolicies(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load policies: %w", err)
	}
	payments, err := s.sources.ListPayments(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load payments: %w", err)
	}

	out := make([]DealTimeline, 0, len(deals))
	for _, d := range deals {
		events := s.builder.Build(policies[d.ID], payments[d.ID])
		out = append(out, DealTimeline{
			Deal:     d,
			Policies: policies[d.ID],
			Payments: payments[d.ID],
			Events:   events,
			Window:   s.rule.Window(events, today),
		})
	}
	return out, nil
}

// ViewFlags reads the user's expansion flags.
func (s *DealService) ViewFlags(ctx context.Context, userID int64) (ViewFlags, error) {
	var flags ViewFlags
	targets := []struct {
		key string
		dst *bool
	}{
		{preference.KeyPastEventsExpanded, &flags.PastExpanded},
		{preference.KeyPoliciesExpanded, &flags.PoliciesExpanded},
		{preference.KeyPaymentsExpanded, &flags.PaymentsExpanded},
	}
	for _, t := range targets {
		v, err := s.prefs.Get(ctx, userID, t.key)
		if err != nil {
			return ViewFlags{}, fmt.Errorf("failed to read preference %s: %w", t.key, err)
		}
		*t.dst = v
	}
	return flags, nil
}

// ToggleFlag flips one expansion flag and returns its new value.
func (s *DealService) ToggleFlag(ctx context.Context, userID int64, key string) (bool, error) {
	current, err := s.prefs.Get(ctx, userID, key)
	if err != nil {
		return false, fmt.Errorf("failed to read preference %s: %w", key, err)
	}
	if err := s.prefs.Set(ctx, userID, key, !current); err != nil {
		return false, fmt.Errorf("failed to save preference %s: %w", key, err)
	}
	return !current, nil
}
