package models

import (
	"time"
)

type SubscriptionStatus string

const (
	StatusFreemium          SubscriptionStatus = "freemium"
	StatusPremium           SubscriptionStatus = "premium"
	StatusUnlimited         SubscriptionStatus = "unlimited"
	StatusTrialingUnlimited SubscriptionStatus = "trialing_unlimited"
)

// Unlimited reports whether the status grants unlimited-tier features.
func (s SubscriptionStatus) Unlimited() bool {
	return s == StatusUnlimited || s == StatusTrialingUnlimited
}

// AtLeastPremium reports whether the status grants premium-tier features.
func (s SubscriptionStatus) AtLeastPremium() bool {
	return s == StatusPremium || s.Unlimited()
}

// DailyLimit returns the number of optimizations allowed per calendar day,
// or -1 when the tier is unmetered.
func (s SubscriptionStatus) DailyLimit() int {
	switch s {
	case StatusPremium:
		return 50
	case StatusUnlimited, StatusTrialingUnlimited:
		return -1
	default:
		return 15
	}
}

// HistoryRetention returns how many history entries the tier keeps,
// or -1 for unbounded retention.
func (s SubscriptionStatus) HistoryRetention() int {
	switch s {
	case StatusPremium:
		return 100
	case StatusUnlimited, StatusTrialingUnlimited:
		return -1
	default:
		return 30
	}
}

type User struct {
	UserID               string             `json:"user_id" db:"user_id"`
	SubscriptionStatus   SubscriptionStatus `json:"subscription_status" db:"subscription_status"`
	PaddleSubscriptionID *string            `json:"paddle_subscription_id" db:"paddle_subscription_id"`
	PaddleCustomerID     *string            `json:"paddle_customer_id" db:"paddle_customer_id"`
	UnlimitedTrialEndsAt *time.Time         `json:"unlimited_trial_ends_at" db:"unlimited_trial_ends_at"`
	CreatedAt            time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time          `json:"updated_at" db:"updated_at"`
}

// EffectiveStatus resolves the status the user actually holds right now.
// An unlimited trial overrides the stored status only while it is running;
// once the trial window has passed, a row still marked trialing_unlimited
// downgrades to freemium rather than keeping unlimited access.
func (u *User) EffectiveStatus(now time.Time) SubscriptionStatus {
	if u.UnlimitedTrialEndsAt != nil && now.Before(*u.UnlimitedTrialEndsAt) {
		return StatusTrialingUnlimited
	}
	if u.SubscriptionStatus == StatusTrialingUnlimited {
		return StatusFreemium
	}
	return u.SubscriptionStatus
}
