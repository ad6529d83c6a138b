package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"optimo-ai/internal/domain/models"
	"optimo-ai/internal/domain/repositories"
	"optimo-ai/internal/infrastructure/cache"
)

// SubscriptionService reconciles the effective subscription status with the
// store of record. The redis cache is a stale-read fallback and UI
// convenience, never the authority.
type SubscriptionService struct {
	users  repositories.UserRepository
	cache  *cache.RedisClient
	logger *slog.Logger
	now    func() time.Time
}

func NewSubscriptionService(users repositories.UserRepository, redis *cache.RedisClient, logger *slog.Logger) *SubscriptionService {
	return &SubscriptionService{
		users:  users,
		cache:  redis,
		logger: logger,
		now:    time.Now,
	}
}

// Sync resolves the user's effective status from the store, creating the
// user on first contact, and refreshes the cached copy. When the store is
// unreachable the cached status is served stale rather than failing the
// request.
func (s *SubscriptionService) Sync(ctx context.Context, userID string) (models.SubscriptionStatus, error) {
	user, err := s.users.GetOrCreate(ctx, userID)
	if err != nil {
		if status, ok := s.cachedStatus(ctx, userID); ok {
			s.logger.Warn("subscription store unreachable, serving cached status",
				"user_id", userID, "error", err)
			return status, nil
		}
		return "", fmt.Errorf("failed to resolve subscription status: %w", err)
	}

	status := user.EffectiveStatus(s.now())
	s.cacheStatus(ctx, userID, status)
	return status, nil
}

// UserStatus returns the stored user row together with the resolved
// effective status.
func (s *SubscriptionService) UserStatus(ctx context.Context, userID string) (*models.User, models.SubscriptionStatus, error) {
	user, err := s.users.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load user: %w", err)
	}
	status := user.EffectiveStatus(s.now())
	s.cacheStatus(ctx, userID, status)
	return user, status, nil
}

// UpdateSubscription writes a new billing state and drops the cached status
// so the next entitlement check sees it.
func (s *SubscriptionService) UpdateSubscription(ctx context.Context, userID string, status models.SubscriptionStatus,
	paddleSubscriptionID, paddleCustomerID *string, trialEndsAt *time.Time) error {

	if err := s.users.UpdateSubscription(ctx, userID, status, paddleSubscriptionID, paddleCustomerID, trialEndsAt); err != nil {
		return fmt.Errorf("failed to update subscription: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.InvalidateSubscriptionStatus(ctx, userID); err != nil {
			s.logger.Warn("failed to invalidate cached subscription status",
				"user_id", userID, "error", err)
		}
	}
	return nil
}

// UserIDForSubscription resolves the owner of a Paddle subscription, for
// webhook events that arrive without the user id in custom data.
func (s *SubscriptionService) UserIDForSubscription(ctx context.Context, subscriptionID string) (string, error) {
	user, err := s.users.GetByPaddleSubscriptionID(ctx, subscriptionID)
	if err != nil {
		return "", err
	}
	return user.UserID, nil
}

func (s *SubscriptionService) cachedStatus(ctx context.Context, userID string) (models.SubscriptionStatus, bool) {
	if s.cache == nil {
		return "", false
	}
	return s.cache.SubscriptionStatus(ctx, userID)
}

func (s *SubscriptionService) cacheStatus(ctx context.Context, userID string, status models.SubscriptionStatus) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetSubscriptionStatus(ctx, userID, status); err != nil {
		s.logger.Warn("failed to cache subscription status", "user_id", userID, "error", err)
	}
}
