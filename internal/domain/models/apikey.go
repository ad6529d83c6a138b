package models

import (
	"time"
)

type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderGoogle    Provider = "google"
	ProviderCustom    Provider = "custom"
)

type KeyStatus string

const (
	KeyStatusUntested     KeyStatus = "untested"
	KeyStatusConnected    KeyStatus = "connected"
	KeyStatusDisconnected KeyStatus = "disconnected"
)

// APIKey is a stored provider credential. The key material lives encrypted
// at rest and is never serialized back to callers.
type APIKey struct {
	ID              int64     `json:"id" db:"id"`
	UserID          string    `json:"-" db:"user_id"`
	Provider        Provider  `json:"provider" db:"provider"`
	EncryptedAPIKey string    `json:"-" db:"encrypted_api_key"`
	CustomEndpoint  *string   `json:"custom_endpoint,omitempty" db:"custom_endpoint"`
	ModelName       string    `json:"model_name" db:"model_name"`
	Status          KeyStatus `json:"status" db:"status"`
	IsActive        bool      `json:"is_active" db:"is_active"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}
