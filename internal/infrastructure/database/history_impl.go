package database

import (
	"context"
	"fmt"

	"optimo-ai/internal/domain/models"
	"optimo-ai/internal/domain/repositories"
)

type historyRepository struct {
	db *PostgresDB
}

func NewHistoryRepository(db *PostgresDB) repositories.HistoryRepository {
	return &historyRepository{db: db}
}

func (r *historyRepository) Append(ctx context.Context, entry *models.HistoryEntry, retain int) error {
	insert := `INSERT INTO optimization_history (user_id, original_prompt, optimized_prompt, options_used)
	           VALUES ($1, $2, $3, $4)
	           RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, insert,
		entry.UserID, entry.OriginalPrompt, entry.OptimizedPrompt, entry.OptionsUsed,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to append history entry: %w", err)
	}

	if retain < 0 {
		return nil
	}

	trim := `DELETE FROM optimization_history
	         WHERE user_id = $1 AND id NOT IN (
	             SELECT id FROM optimization_history
	             WHERE user_id = $1
	             ORDER BY created_at DESC, id DESC
	             LIMIT $2
	         )`
	if _, err := r.db.ExecContext(ctx, trim, entry.UserID, retain); err != nil {
		return fmt.Errorf("failed to trim history: %w", err)
	}
	return nil
}

func (r *historyRepository) List(ctx context.Context, userID string, limit int) ([]*models.HistoryEntry, error) {
	var entries []*models.HistoryEntry
	query := `SELECT id, user_id, original_prompt, optimized_prompt, options_used, created_at
	          FROM optimization_history
	          WHERE user_id = $1
	          ORDER BY created_at DESC, id DESC
	          LIMIT $2`

	if err := r.db.SelectContext(ctx, &entries, query, userID, limit); err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	return entries, nil
}
