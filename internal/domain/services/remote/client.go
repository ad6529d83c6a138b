// Package remote is the HTTP client for the hosted backend, used by the
// extension-side orchestrator. It distinguishes deliberate denials (quota,
// feature gating) from availability failures so callers can fall back only
// on the latter.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"optimo-ai/internal/domain/models"
)

// ErrUnreachable marks transport failures and backend 5xx responses: the
// backend itself is unavailable, not refusing the request.
var ErrUnreachable = errors.New("backend unreachable")

// DenialError is a deliberate backend refusal (429 quota, 403 feature,
// 400 validation). It must never trigger a direct-provider fallback.
type DenialError struct {
	StatusCode int
	Message    string
}

func (e *DenialError) Error() string {
	return e.Message
}

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

type StatusResponse struct {
	Success              bool       `json:"success"`
	UserID               string     `json:"user_id"`
	SubscriptionStatus   string     `json:"subscription_status"`
	UnlimitedTrialEndsAt *time.Time `json:"unlimited_trial_ends_at"`
}

type OptimizeResponse struct {
	Success         bool   `json:"success"`
	OptimizedPrompt string `json:"optimized_prompt"`
	UsageRemaining  int    `json:"usage_remaining"`
	Error           string `json:"error"`
}

// UserStatus fetches the trusted subscription status for the user.
func (c *Client) UserStatus(ctx context.Context, userID string) (*StatusResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/user-status", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-User-ID", userID)

	var status StatusResponse
	if err := c.do(req, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// Optimize submits the prompt to the backend optimization endpoint.
func (c *Client) Optimize(ctx context.Context, userID, promptText string, opts models.OptimizationOptions) (*OptimizeResponse, error) {
	payload := map[string]any{
		"prompt_text": promptText,
		"options":     opts,
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode optimize request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/optimize-prompt", bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", userID)

	var result OptimizeResponse
	if err := c.do(req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SaveKey stores a provider credential with the backend.
func (c *Client) SaveKey(ctx context.Context, userID string, provider models.Provider, apiKey, customEndpoint, modelName string) error {
	payload := map[string]any{
		"provider":        provider,
		"api_key":         apiKey,
		"custom_endpoint": customEndpoint,
		"model":           modelName,
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode save-key request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/save-key", bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", userID)

	return c.do(req, &struct{}{})
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return fmt.Errorf("%w: backend returned status %d", ErrUnreachable, resp.StatusCode)
	}

	if resp.StatusCode >= 400 {
		var denial struct {
			Error string `json:"error"`
		}
		message := fmt.Sprintf("backend returned status %d", resp.StatusCode)
		if err := json.NewDecoder(resp.Body).Decode(&denial); err == nil && denial.Error != "" {
			message = denial.Error
		}
		return &DenialError{StatusCode: resp.StatusCode, Message: message}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: malformed backend response", ErrUnreachable)
	}
	return nil
}
