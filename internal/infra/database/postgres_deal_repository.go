package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"deal_followup_bot/internal/domain/deal"

	"github.com/lib/pq"
)

// ErrInvalidDealDate is returned when PostgreSQL rejects a date value.
var ErrInvalidDealDate = fmt.Errorf("invalid deal date")

const dealColumns = `id, owner_telegram_id, title, client_name, stage, description,
       to_char(next_contact_date, 'YYYY-MM-DD'), to_char(expected_close, 'YYYY-MM-DD'),
       created_at, updated_at`

type PostgresDealRepository struct {
	db *sql.DB
}

func NewPostgresDealRepository(db *sql.DB) *PostgresDealRepository {
	return &PostgresDealRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDeal(row rowScanner) (*deal.Deal, error) {
	d := &deal.Deal{}
	err := row.Scan(&d.ID, &d.OwnerTelegramID, &d.Title, &d.ClientName, &d.Stage, &d.Description,
		&d.NextContactDate, &d.ExpectedClose, &d.CreatedAt, &d.UpdatedAt)
	return d, err
}

func (r *PostgresDealRepository) GetByID(ctx context.Context, id string) (*deal.Deal, error) {
	query := `SELECT ` + dealColumns + ` FROM deals WHERE id = $1`
	d, err := scanDeal(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, deal.ErrNotFound
		}
		if isInvalidText(err) { // malformed UUID
			return nil, deal.ErrNotFound
		}
		return nil, fmt.Errorf("error getting deal by ID: %w", err)
	}
	return d, nil
}

func (r *PostgresDealRepository) ListByPriority(ctx context.Context, ownerTelegramID int64, limit int) ([]*deal.Deal, error) {
	query := `SELECT ` + dealColumns + `
               FROM deals
               WHERE owner_telegram_id = $1
               ORDER BY next_contact_date ASC NULLS LAST, expected_close ASC NULLS LAST, created_at ASC
               LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, ownerTelegramID, limit)
	if err != nil {
		return nil, fmt.Errorf("error listing deals: %w", err)
	}
	defer rows.Close()

	deals := make([]*deal.Deal, 0)
	for rows.Next() {
		d, err := scanDeal(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning deal: %w", err)
		}
		deals = append(deals, d)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating deals: %w", err)
	}
	return deals, nil
}

// Update replaces all editable columns. Concurrent writers are last-write-wins.
func (r *PostgresDealRepository) Update(ctx context.Context, id string, f deal.EditableFields) error {
	query := `UPDATE deals
               SET title = $1, client_name = $2, stage = $3, description = $4,
                   next_contact_date = $5::date, expected_close = $6::date, updated_at = NOW()
               WHERE id = $7`

	res, err := r.db.ExecContext(ctx, query, f.Title, f.ClientName, f.Stage, f.Description,
		f.NextContactDate, f.ExpectedClose, id)
	if err != nil {
		if isInvalidDatetime(err) {
			return fmt.Errorf("%w: %v", ErrInvalidDealDate, err)
		}
		return fmt.Errorf("error updating deal: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading updated rows: %w", err)
	}
	if n == 0 {
		return deal.ErrNotFound
	}
	return nil
}

// PostgreSQL error codes the repositories translate.
const (
	codeInvalidTextRepresentation = "22P02"
	codeInvalidDatetimeFormat     = "22007"
	codeDatetimeFieldOverflow     = "22008"
)

func pqCode(err error) pq.ErrorCode {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code
	}
	return ""
}

func isInvalidText(err error) bool {
	return pqCode(err) == codeInvalidTextRepresentation
}

func isInvalidDatetime(err error) bool {
	code := pqCode(err)
	return code == codeInvalidDatetimeFormat || code == codeDatetimeFieldOverflow
}
