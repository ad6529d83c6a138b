package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"optimo-ai/internal/domain/models"
	"optimo-ai/internal/infrastructure/memstore"
)

const testWebhookSecret = "whsec_test"

func signWebhook(body []byte, secret string, ts string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(ts))
	mac.Write([]byte(":"))
	mac.Write(body)
	return fmt.Sprintf("ts=%s;h1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func newPaddleFixture(t *testing.T) (*PaddleService, *memstore.UserStore) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	users := memstore.NewUserStore()
	subscriptions := NewSubscriptionService(users, nil, logger)
	paddle, err := NewPaddleService(subscriptions, testWebhookSecret, logger)
	require.NoError(t, err)
	return paddle, users
}

func TestNewPaddleService_RequiresSecret(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	subscriptions := NewSubscriptionService(memstore.NewUserStore(), nil, logger)
	_, err := NewPaddleService(subscriptions, "", logger)
	assert.Error(t, err)
}

func TestVerifySignature(t *testing.T) {
	body := []byte(`{"event_type":"subscription.created"}`)
	header := signWebhook(body, testWebhookSecret, "1700000000")

	assert.True(t, VerifySignature(body, header, testWebhookSecret))

	t.Run("wrong secret", func(t *testing.T) {
		assert.False(t, VerifySignature(body, header, "whsec_other"))
	})

	t.Run("tampered body", func(t *testing.T) {
		assert.False(t, VerifySignature([]byte(`{"event_type":"subscription.canceled"}`), header, testWebhookSecret))
	})

	t.Run("tampered timestamp", func(t *testing.T) {
		tampered := signWebhook(body, testWebhookSecret, "1700000000")
		tampered = "ts=1799999999;" + tampered[len("ts=1700000000;"):]
		assert.False(t, VerifySignature(body, tampered, testWebhookSecret))
	})

	t.Run("malformed header", func(t *testing.T) {
		assert.False(t, VerifySignature(body, "", testWebhookSecret))
		assert.False(t, VerifySignature(body, "h1=abc", testWebhookSecret))
		assert.False(t, VerifySignature(body, "ts=123", testWebhookSecret))
	})
}

func TestHandleWebhook_RejectsBadSignature(t *testing.T) {
	paddle, _ := newPaddleFixture(t)

	body := []byte(`{"event_type":"subscription.created","data":{"custom_data":{"userId":"user-1"}}}`)
	err := paddle.HandleWebhook(context.Background(), body, "ts=1;h1=deadbeef")
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestHandleWebhook_AppliesEvent(t *testing.T) {
	paddle, users := newPaddleFixture(t)

	body := []byte(`{
		"event_type": "subscription.created",
		"data": {
			"subscription_id": "sub_123",
			"customer_id": "ctm_456",
			"custom_data": {"userId": "user-1"},
			"items": [{"product_id": "premium_monthly"}]
		}
	}`)
	header := signWebhook(body, testWebhookSecret, "1700000000")

	require.NoError(t, paddle.HandleWebhook(context.Background(), body, header))

	user, err := users.Get(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPremium, user.SubscriptionStatus)
	require.NotNil(t, user.PaddleSubscriptionID)
	assert.Equal(t, "sub_123", *user.PaddleSubscriptionID)
	require.NotNil(t, user.PaddleCustomerID)
	assert.Equal(t, "ctm_456", *user.PaddleCustomerID)
}

func TestHandleEvent_TierMapping(t *testing.T) {
	tests := []struct {
		name       string
		eventType  string
		productID  string
		wantStatus models.SubscriptionStatus
	}{
		{"premium monthly", "subscription.created", "premium_monthly", models.StatusPremium},
		{"premium yearly", "subscription.updated", "premium_yearly", models.StatusPremium},
		{"unlimited monthly", "subscription.created", "unlimited_monthly", models.StatusUnlimited},
		{"unlimited yearly", "subscription.updated", "unlimited_yearly", models.StatusUnlimited},
		{"unknown product falls back to freemium", "subscription.created", "legacy_plan", models.StatusFreemium},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			paddle, users := newPaddleFixture(t)

			event := &PaddleEvent{EventType: tt.eventType}
			event.Data.CustomData.UserID = "user-1"
			event.Data.Items = []struct {
				ProductID string `json:"product_id"`
			}{{ProductID: tt.productID}}

			require.NoError(t, paddle.HandleEvent(context.Background(), event))

			user, err := users.Get(context.Background(), "user-1")
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, user.SubscriptionStatus)
		})
	}
}

func TestHandleEvent_CancellationDowngrades(t *testing.T) {
	paddle, users := newPaddleFixture(t)

	subID := "sub_123"
	require.NoError(t, users.UpdateSubscription(context.Background(), "user-1",
		models.StatusUnlimited, &subID, nil, nil))

	event := &PaddleEvent{EventType: "subscription.canceled"}
	event.Data.CustomData.UserID = "user-1"
	require.NoError(t, paddle.HandleEvent(context.Background(), event))

	user, err := users.Get(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusFreemium, user.SubscriptionStatus)
	assert.Nil(t, user.PaddleSubscriptionID)
}

func TestHandleEvent_TrialGrantsUnlimited(t *testing.T) {
	paddle, users := newPaddleFixture(t)

	trialEnd := time.Now().Add(14 * 24 * time.Hour).UTC().Truncate(time.Second)
	event := &PaddleEvent{EventType: "subscription.trialed"}
	event.Data.CustomData.UserID = "user-1"
	event.Data.SubscriptionID = "sub_trial"
	event.Data.TrialEndsAt = &trialEnd

	require.NoError(t, paddle.HandleEvent(context.Background(), event))

	user, err := users.Get(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusTrialingUnlimited, user.SubscriptionStatus)
	require.NotNil(t, user.UnlimitedTrialEndsAt)
	assert.True(t, user.UnlimitedTrialEndsAt.Equal(trialEnd))
}

func TestHandleEvent_ResolvesUserBySubscriptionID(t *testing.T) {
	paddle, users := newPaddleFixture(t)

	subID := "sub_known"
	require.NoError(t, users.UpdateSubscription(context.Background(), "user-1",
		models.StatusPremium, &subID, nil, nil))

	// Lifecycle event without custom data, keyed only by subscription id.
	event := &PaddleEvent{EventType: "subscription.expired"}
	event.Data.SubscriptionID = subID
	require.NoError(t, paddle.HandleEvent(context.Background(), event))

	user, err := users.Get(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusFreemium, user.SubscriptionStatus)
}

func TestHandleEvent_MissingUserID(t *testing.T) {
	paddle, _ := newPaddleFixture(t)

	event := &PaddleEvent{EventType: "subscription.created"}
	err := paddle.HandleEvent(context.Background(), event)
	assert.Error(t, err)
}

func TestHandleEvent_UnknownTypeIgnored(t *testing.T) {
	paddle, _ := newPaddleFixture(t)

	event := &PaddleEvent{EventType: "transaction.completed"}
	event.Data.CustomData.UserID = "user-1"
	assert.NoError(t, paddle.HandleEvent(context.Background(), event))
}
