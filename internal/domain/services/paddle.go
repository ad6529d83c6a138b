package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"optimo-ai/internal/domain/models"
)

// ErrInvalidSignature is returned when a webhook body does not match its
// Paddle-Signature header.
var ErrInvalidSignature = errors.New("invalid webhook signature")

// PaddleEvent is the subset of the Paddle webhook envelope this service
// consumes.
type PaddleEvent struct {
	EventType string          `json:"event_type"`
	Data      PaddleEventData `json:"data"`
}

type PaddleEventData struct {
	SubscriptionID string     `json:"subscription_id"`
	CustomerID     string     `json:"customer_id"`
	TrialEndsAt    *time.Time `json:"trial_ends_at"`
	CustomData     struct {
		UserID string `json:"userId"`
	} `json:"custom_data"`
	Items []struct {
		ProductID string `json:"product_id"`
	} `json:"items"`
}

// PaddleService turns verified webhook events into subscription-tier
// transitions.
type PaddleService struct {
	subscriptions *SubscriptionService
	webhookSecret string
	logger        *slog.Logger
}

func NewPaddleService(subscriptions *SubscriptionService, webhookSecret string, logger *slog.Logger) (*PaddleService, error) {
	if webhookSecret == "" {
		return nil, fmt.Errorf("webhook secret is required")
	}
	return &PaddleService{
		subscriptions: subscriptions,
		webhookSecret: webhookSecret,
		logger:        logger,
	}, nil
}

// VerifySignature checks a Paddle-Signature header ("ts=<unix>;h1=<hex>")
// against HMAC-SHA256 over "<ts>:<raw body>" with the shared secret.
func VerifySignature(rawBody []byte, header, secret string) bool {
	var ts, h1 string
	for _, part := range strings.Split(header, ";") {
		key, value, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch key {
		case "ts":
			ts = value
		case "h1":
			h1 = value
		}
	}
	if ts == "" || h1 == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(ts))
	mac.Write([]byte(":"))
	mac.Write(rawBody)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(h1))
}

// HandleWebhook verifies and applies one raw webhook delivery.
func (p *PaddleService) HandleWebhook(ctx context.Context, rawBody []byte, signatureHeader string) error {
	if !VerifySignature(rawBody, signatureHeader, p.webhookSecret) {
		return ErrInvalidSignature
	}

	var event PaddleEvent
	if err := json.Unmarshal(rawBody, &event); err != nil {
		return fmt.Errorf("failed to decode webhook event: %w", err)
	}

	return p.HandleEvent(ctx, &event)
}

// HandleEvent maps a subscription event onto the user's stored tier.
func (p *PaddleService) HandleEvent(ctx context.Context, event *PaddleEvent) error {
	userID := event.Data.CustomData.UserID
	if userID == "" && event.Data.SubscriptionID != "" {
		// Lifecycle events for existing subscriptions may omit custom data.
		resolved, err := p.subscriptions.UserIDForSubscription(ctx, event.Data.SubscriptionID)
		if err == nil {
			userID = resolved
		}
	}
	if userID == "" {
		p.logger.Error("webhook event carries no user id", "event_type", event.EventType)
		return fmt.Errorf("no user id in subscription data")
	}

	switch event.EventType {
	case "subscription.created", "subscription.updated":
		status := statusForProduct(firstProductID(event))
		return p.subscriptions.UpdateSubscription(ctx, userID, status,
			optional(event.Data.SubscriptionID), optional(event.Data.CustomerID), nil)

	case "subscription.canceled", "subscription.expired":
		return p.subscriptions.UpdateSubscription(ctx, userID, models.StatusFreemium, nil, nil, nil)

	case "subscription.trialed":
		return p.subscriptions.UpdateSubscription(ctx, userID, models.StatusTrialingUnlimited,
			optional(event.Data.SubscriptionID), optional(event.Data.CustomerID), event.Data.TrialEndsAt)

	default:
		p.logger.Info("unhandled webhook event type", "event_type", event.EventType)
		return nil
	}
}

func firstProductID(event *PaddleEvent) string {
	if len(event.Data.Items) == 0 {
		return ""
	}
	return event.Data.Items[0].ProductID
}

func statusForProduct(productID string) models.SubscriptionStatus {
	switch productID {
	case "premium_monthly", "premium_yearly":
		return models.StatusPremium
	case "unlimited_monthly", "unlimited_yearly":
		return models.StatusUnlimited
	default:
		return models.StatusFreemium
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
