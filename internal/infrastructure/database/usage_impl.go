package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"optimo-ai/internal/domain/repositories"
)

type usageRepository struct {
	db *PostgresDB
}

func NewUsageRepository(db *PostgresDB) repositories.UsageRepository {
	return &usageRepository{db: db}
}

// IncrementIfUnderLimit performs the quota commit as one atomic statement:
// the WHERE on the conflict arm makes Postgres enforce the ceiling, so
// concurrent requests for the same (user, day) can never push the counter
// past the limit.
func (r *usageRepository) IncrementIfUnderLimit(ctx context.Context, userID, day string, limit int) (int, bool, error) {
	if limit == 0 {
		return 0, false, nil
	}

	var query string
	args := []any{userID, day}
	if limit < 0 {
		query = `INSERT INTO usage_counters (user_id, day, count)
		         VALUES ($1, $2, 1)
		         ON CONFLICT (user_id, day)
		         DO UPDATE SET count = usage_counters.count + 1
		         RETURNING count`
	} else {
		query = `INSERT INTO usage_counters (user_id, day, count)
		         VALUES ($1, $2, 1)
		         ON CONFLICT (user_id, day)
		         DO UPDATE SET count = usage_counters.count + 1
		         WHERE usage_counters.count < $3
		         RETURNING count`
		args = append(args, limit)
	}

	var count int
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&count)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Conflict arm rejected the update: the ceiling is already hit.
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to increment usage counter: %w", err)
	}
	return count, true, nil
}

func (r *usageRepository) CountFor(ctx context.Context, userID, day string) (int, error) {
	var count int
	query := `SELECT count FROM usage_counters WHERE user_id = $1 AND day = $2`

	err := r.db.GetContext(ctx, &count, query, userID, day)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read usage counter: %w", err)
	}
	return count, nil
}
