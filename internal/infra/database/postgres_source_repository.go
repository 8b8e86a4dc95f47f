package database

import (
	"context"
	"database/sql"
	"fmt"

	"deal_followup_bot/internal/domain/timeline"

	"github.com/lib/pq" // For pq.Array
)

// PostgresSourceRepository reads the policies and payments timelines are built from.
type PostgresSourceRepository struct {
	db *sql.DB
}

func NewPostgresSourceRepository(db *sql.DB) *PostgresSourceRepository {
	return &PostgresSourceRepository{db: db}
}

// ListPolicies returns the policies of each deal keyed by deal ID, in creation order.
func (r *PostgresSourceRepository) ListPolicies(ctx context.Context, dealIDs []string) (map[string][]timeline.PolicySource, error) {
	query := `SELECT deal_id, id, number, insurance_company, to_char(end_date, 'YYYY-MM-DD')
               FROM policies
               WHERE deal_id = ANY($1::uuid[])
               ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(dealIDs))
	if err != nil {
		return nil, fmt.Errorf("error listing policies: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]timeline.PolicySource, len(dealIDs))
	for rows.Next() {
		var dealID string
		var p timeline.PolicySource
		if err := rows.Scan(&dealID, &p.ID, &p.Number, &p.Company, &p.EndDate); err != nil {
			return nil, fmt.Errorf("error scanning policy: %w", err)
		}
		out[dealID] = append(out[dealID], p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating policies: %w", err)
	}
	return out, nil
}

// ListPayments returns the payments of each deal keyed by deal ID, in creation
// order, with the number of the linked policy when there is one.
func (r *PostgresSourceRepository) ListPayments(ctx context.Context, dealIDs []string) (map[string][]timeline.PaymentSource, error) {
	query := `SELECT pay.deal_id, pay.id,
                      to_char(pay.scheduled_date, 'YYYY-MM-DD'), to_char(pay.actual_date, 'YYYY-MM-DD'),
                      NULLIF(pol.number, ''), pay.amount::text, pay.description
               FROM payments pay
               LEFT JOIN policies pol ON pol.id = pay.policy_id
               WHERE pay.deal_id = ANY($1::uuid[])
               ORDER BY pay.created_at, pay.id`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(dealIDs))
	if err != nil {
		return nil, fmt.Errorf("error listing payments: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]timeline.PaymentSource, len(dealIDs))
	for rows.Next() {
		var dealID string
		var p timeline.PaymentSource
		if err := rows.Scan(&dealID, &p.ID, &p.ScheduledDate, &p.ActualDate, &p.PolicyNumber, &p.Amount, &p.Description); err != nil {
			return nil, fmt.Errorf("error scanning payment: %w", err)
		}
		out[dealID] = append(out[dealID], p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating payments: %w", err)
	}
	return out, nil
}
