package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"optimo-ai/internal/domain/models"
	"optimo-ai/internal/infrastructure/memstore"
)

func newSubscriptionFixture(t *testing.T) (*SubscriptionService, *memstore.UserStore) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	users := memstore.NewUserStore()
	return NewSubscriptionService(users, nil, logger), users
}

func TestSync_FirstContactCreatesFreemiumUser(t *testing.T) {
	service, users := newSubscriptionFixture(t)

	status, err := service.Sync(context.Background(), "user-new")
	require.NoError(t, err)
	assert.Equal(t, models.StatusFreemium, status)

	user, err := users.Get(context.Background(), "user-new")
	require.NoError(t, err)
	assert.Equal(t, models.StatusFreemium, user.SubscriptionStatus)
}

func TestSync_TrialOverridesStoredStatus(t *testing.T) {
	service, users := newSubscriptionFixture(t)

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return now }

	trialEnd := now.Add(48 * time.Hour)
	require.NoError(t, users.UpdateSubscription(context.Background(), "user-1",
		models.StatusFreemium, nil, nil, &trialEnd))

	status, err := service.Sync(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusTrialingUnlimited, status)
}

func TestSync_ExpiredTrialDowngradesToFreemium(t *testing.T) {
	service, users := newSubscriptionFixture(t)

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return now }

	trialEnd := now.Add(-time.Minute)
	require.NoError(t, users.UpdateSubscription(context.Background(), "user-1",
		models.StatusTrialingUnlimited, nil, nil, &trialEnd))

	status, err := service.Sync(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusFreemium, status)
}

func TestSync_ExpiredTrialKeepsPaidTier(t *testing.T) {
	service, users := newSubscriptionFixture(t)

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return now }

	// A user who subscribed during the trial keeps the paid tier once the
	// trial window has passed.
	trialEnd := now.Add(-time.Hour)
	require.NoError(t, users.UpdateSubscription(context.Background(), "user-1",
		models.StatusPremium, nil, nil, &trialEnd))

	status, err := service.Sync(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPremium, status)
}

func TestSync_TrialExpiryFlipsAtBoundary(t *testing.T) {
	service, users := newSubscriptionFixture(t)

	trialEnd := time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC)
	require.NoError(t, users.UpdateSubscription(context.Background(), "user-1",
		models.StatusTrialingUnlimited, nil, nil, &trialEnd))

	service.now = func() time.Time { return trialEnd.Add(-time.Second) }
	status, err := service.Sync(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusTrialingUnlimited, status)

	service.now = func() time.Time { return trialEnd }
	status, err = service.Sync(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusFreemium, status)
}

func TestUserStatus_ReturnsRowAndEffectiveStatus(t *testing.T) {
	service, users := newSubscriptionFixture(t)

	trialEnd := time.Now().Add(time.Hour)
	subID := "sub_9"
	require.NoError(t, users.UpdateSubscription(context.Background(), "user-1",
		models.StatusFreemium, &subID, nil, &trialEnd))

	user, status, err := service.UserStatus(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusTrialingUnlimited, status)
	assert.Equal(t, models.StatusFreemium, user.SubscriptionStatus)
	require.NotNil(t, user.PaddleSubscriptionID)
	assert.Equal(t, "sub_9", *user.PaddleSubscriptionID)
}
