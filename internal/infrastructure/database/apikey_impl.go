package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"optimo-ai/internal/domain/models"
	"optimo-ai/internal/domain/repositories"
)

type apiKeyRepository struct {
	db *PostgresDB
}

func NewAPIKeyRepository(db *PostgresDB) repositories.APIKeyRepository {
	return &apiKeyRepository{db: db}
}

const apiKeyColumns = `id, user_id, provider, encrypted_api_key, custom_endpoint,
	model_name, status, is_active, created_at`

func (r *apiKeyRepository) Save(ctx context.Context, key *models.APIKey) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	deactivate := `UPDATE user_api_keys SET is_active = FALSE
	               WHERE user_id = $1 AND provider = $2 AND is_active`
	if _, err := tx.ExecContext(ctx, deactivate, key.UserID, key.Provider); err != nil {
		return fmt.Errorf("failed to deactivate previous key: %w", err)
	}

	insert := `INSERT INTO user_api_keys
	               (user_id, provider, encrypted_api_key, custom_endpoint, model_name, status, is_active)
	           VALUES ($1, $2, $3, $4, $5, $6, TRUE)
	           RETURNING id, created_at`
	err = tx.QueryRowContext(ctx, insert,
		key.UserID, key.Provider, key.EncryptedAPIKey, key.CustomEndpoint, key.ModelName, key.Status,
	).Scan(&key.ID, &key.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert API key: %w", err)
	}
	key.IsActive = true

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit API key: %w", err)
	}
	return nil
}

func (r *apiKeyRepository) ActiveKey(ctx context.Context, userID string) (*models.APIKey, error) {
	var key models.APIKey
	query := fmt.Sprintf(`SELECT %s FROM user_api_keys
	                      WHERE user_id = $1 AND is_active
	                      ORDER BY created_at DESC, id DESC
	                      LIMIT 1`, apiKeyColumns)

	err := r.db.GetContext(ctx, &key, query, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("active key for user %s: %w", userID, repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get active API key: %w", err)
	}
	return &key, nil
}

func (r *apiKeyRepository) ActiveKeys(ctx context.Context, userID string) ([]*models.APIKey, error) {
	var keys []*models.APIKey
	query := fmt.Sprintf(`SELECT %s FROM user_api_keys
	                      WHERE user_id = $1 AND is_active
	                      ORDER BY created_at DESC, id DESC`, apiKeyColumns)

	if err := r.db.SelectContext(ctx, &keys, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list API keys: %w", err)
	}
	return keys, nil
}

func (r *apiKeyRepository) SetStatus(ctx context.Context, id int64, status models.KeyStatus) error {
	result, err := r.db.ExecContext(ctx, `UPDATE user_api_keys SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("failed to update key status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("API key %d: %w", id, repositories.ErrNotFound)
	}
	return nil
}
