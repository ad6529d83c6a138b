package repositories

import (
	"context"
	"errors"
	"time"

	"optimo-ai/internal/domain/models"
)

// ErrNotFound is returned (wrapped) when a requested row does not exist.
var ErrNotFound = errors.New("not found")

type UserRepository interface {
	// GetOrCreate returns the user, inserting a fresh freemium row on first
	// contact.
	GetOrCreate(ctx context.Context, userID string) (*models.User, error)

	Get(ctx context.Context, userID string) (*models.User, error)
	GetByPaddleSubscriptionID(ctx context.Context, subscriptionID string) (*models.User, error)

	// UpdateSubscription upserts the billing state for a user.
	UpdateSubscription(ctx context.Context, userID string, status models.SubscriptionStatus,
		paddleSubscriptionID, paddleCustomerID *string, trialEndsAt *time.Time) error
}
