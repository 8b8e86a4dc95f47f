package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// PostgresPreferenceRepository stores per-user view flags in ui_preferences.
type PostgresPreferenceRepository struct {
	db *sql.DB
}

func NewPostgresPreferenceRepository(db *sql.DB) *PostgresPreferenceRepository {
	return &PostgresPreferenceRepository{db: db}
}

func (r *PostgresPreferenceRepository) Get(ctx context.Context, userID int64, key string) (bool, error) {
	query := `SELECT value FROM ui_preferences WHERE telegram_user_id = $1 AND key = $2`
	var value bool
	err := r.db.QueryRowContext(ctx, query, userID, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("error getting preference %s: %w", key, err)
	}
	return value, nil
}

func (r *PostgresPreferenceRepository) Set(ctx context.Context, userID int64, key string, value bool) error {
	query := `INSERT INTO ui_preferences (telegram_user_id, key, value)
               VALUES ($1, $2, $3)
               ON CONFLICT (telegram_user_id, key)
               DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`
	if _, err := r.db.ExecContext(ctx, query, userID, key, value); err != nil {
		return fmt.Errorf("error saving preference %s: %w", key, err)
	}
	return nil
}
