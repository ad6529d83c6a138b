package cache

import (
	"context"
	"fmt"
	"time"

	"optimo-ai/internal/domain/models"
)

// Cached subscription statuses and usage counts are short-lived mirrors;
// Postgres stays authoritative for every entitlement-sensitive decision.
const statusTTL = 5 * time.Minute

func statusKey(userID string) string {
	return "subscription:" + userID
}

func usageKey(userID, day string) string {
	return fmt.Sprintf("usage:%s:%s", userID, day)
}

// SubscriptionStatus returns the cached effective status, if present.
func (r *RedisClient) SubscriptionStatus(ctx context.Context, userID string) (models.SubscriptionStatus, bool) {
	val, err := r.Get(ctx, statusKey(userID)).Result()
	if err != nil || val == "" {
		return "", false
	}
	return models.SubscriptionStatus(val), true
}

func (r *RedisClient) SetSubscriptionStatus(ctx context.Context, userID string, status models.SubscriptionStatus) error {
	return r.Set(ctx, statusKey(userID), string(status), statusTTL).Err()
}

func (r *RedisClient) InvalidateSubscriptionStatus(ctx context.Context, userID string) error {
	return r.Del(ctx, statusKey(userID)).Err()
}

// SetDailyCount mirrors today's ledger count for cheap UI reads. The key
// expires on its own well after the day rolls over.
func (r *RedisClient) SetDailyCount(ctx context.Context, userID, day string, count int) error {
	return r.Set(ctx, usageKey(userID, day), count, 48*time.Hour).Err()
}
