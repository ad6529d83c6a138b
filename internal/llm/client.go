package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"optimo-ai/internal/domain/models"
)

// CallConfig identifies the credential and model a call should use.
// Endpoint is only meaningful for the custom provider.
type CallConfig struct {
	Provider models.Provider
	APIKey   string
	Endpoint string
	Model    string
}

// Adapter translates the canonical call into a provider-specific HTTP
// request and extracts the generated text from the provider's response
// shape. Adding a provider means adding an Adapter, not editing a switch.
type Adapter interface {
	Name() models.Provider
	BuildRequest(ctx context.Context, cfg CallConfig, prompt string) (*http.Request, error)
	ParseResponse(body []byte) (string, error)
}

type Client struct {
	http     *http.Client
	adapters map[models.Provider]Adapter
}

func NewClient() *Client {
	c := &Client{
		http: &http.Client{Timeout: 30 * time.Second},
	}
	c.adapters = map[models.Provider]Adapter{}
	c.Register(&OpenAIAdapter{BaseURL: openAIBaseURL})
	c.Register(&AnthropicAdapter{BaseURL: anthropicBaseURL})
	c.Register(&GoogleAdapter{BaseURL: googleBaseURL})
	c.Register(&CustomAdapter{})
	return c
}

// Register installs (or replaces) the adapter for its provider.
func (c *Client) Register(a Adapter) {
	c.adapters[a.Name()] = a
}

// Call sends the composed prompt to the configured provider and returns the
// trimmed generated text, or a classified *ProviderError.
func (c *Client) Call(ctx context.Context, cfg CallConfig, prompt string) (string, error) {
	adapter, ok := c.adapters[cfg.Provider]
	if !ok {
		return "", fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}

	req, err := adapter.BuildRequest(ctx, cfg, prompt)
	if err != nil {
		return "", err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", &ProviderError{Kind: KindNetwork,
			Message: "Network connection failed. Please check your internet connection."}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &ProviderError{Kind: KindNetwork,
			Message: "Network connection failed. Please check your internet connection."}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", classifyStatus(resp.StatusCode, redact(errorMessage(body), cfg.APIKey))
	}

	text, err := adapter.ParseResponse(body)
	if err != nil {
		return "", err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", &ProviderError{Kind: KindEmptyResponse, Status: resp.StatusCode,
			Message: "Empty response from AI model. Please try again."}
	}
	return text, nil
}

// errorMessage pulls the human-readable message out of the common provider
// error envelopes, tolerating both {"error":{"message":...}} and
// {"message":...}.
func errorMessage(body []byte) string {
	var envelope struct {
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return ""
	}
	if envelope.Error != nil && envelope.Error.Message != "" {
		return envelope.Error.Message
	}
	return envelope.Message
}

// redact scrubs the credential from provider-supplied text before it can
// reach a log line or the caller.
func redact(message, apiKey string) string {
	if apiKey == "" || message == "" {
		return message
	}
	return strings.ReplaceAll(message, apiKey, "[redacted]")
}

func jsonBody(v any) (io.Reader, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request body: %w", err)
	}
	return bytes.NewReader(raw), nil
}
