package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"optimo-ai/internal/domain/models"
	"optimo-ai/internal/domain/repositories"
)

type userRepository struct {
	db *PostgresDB
}

func NewUserRepository(db *PostgresDB) repositories.UserRepository {
	return &userRepository{db: db}
}

const userColumns = `user_id, subscription_status, paddle_subscription_id,
	paddle_customer_id, unlimited_trial_ends_at, created_at, updated_at`

func (r *userRepository) GetOrCreate(ctx context.Context, userID string) (*models.User, error) {
	query := `INSERT INTO users (user_id, subscription_status)
	          VALUES ($1, $2)
	          ON CONFLICT (user_id) DO NOTHING`

	if _, err := r.db.ExecContext(ctx, query, userID, models.StatusFreemium); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return r.Get(ctx, userID)
}

func (r *userRepository) Get(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	query := fmt.Sprintf(`SELECT %s FROM users WHERE user_id = $1`, userColumns)

	err := r.db.GetContext(ctx, &user, query, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %s: %w", userID, repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (r *userRepository) GetByPaddleSubscriptionID(ctx context.Context, subscriptionID string) (*models.User, error) {
	var user models.User
	query := fmt.Sprintf(`SELECT %s FROM users WHERE paddle_subscription_id = $1`, userColumns)

	err := r.db.GetContext(ctx, &user, query, subscriptionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("paddle subscription %s: %w", subscriptionID, repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by paddle subscription: %w", err)
	}
	return &user, nil
}

func (r *userRepository) UpdateSubscription(ctx context.Context, userID string, status models.SubscriptionStatus,
	paddleSubscriptionID, paddleCustomerID *string, trialEndsAt *time.Time) error {

	query := `INSERT INTO users (user_id, subscription_status, paddle_subscription_id,
	                             paddle_customer_id, unlimited_trial_ends_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, now())
	          ON CONFLICT (user_id) DO UPDATE SET
	              subscription_status = excluded.subscription_status,
	              paddle_subscription_id = excluded.paddle_subscription_id,
	              paddle_customer_id = excluded.paddle_customer_id,
	              unlimited_trial_ends_at = excluded.unlimited_trial_ends_at,
	              updated_at = now()`

	if _, err := r.db.ExecContext(ctx, query, userID, status, paddleSubscriptionID, paddleCustomerID, trialEndsAt); err != nil {
		return fmt.Errorf("failed to update subscription: %w", err)
	}
	return nil
}
