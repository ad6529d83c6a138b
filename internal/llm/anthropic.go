package llm

import (
	"context"
	"encoding/json"
	"net/http"

	"optimo-ai/internal/domain/models"
)

const (
	anthropicBaseURL      = "https://api.anthropic.com/v1"
	anthropicVersion      = "2023-06-01"
	defaultAnthropicModel = "claude-3-sonnet-20240229"
)

type AnthropicAdapter struct {
	BaseURL string
}

func (a *AnthropicAdapter) Name() models.Provider {
	return models.ProviderAnthropic
}

func (a *AnthropicAdapter) BuildRequest(ctx context.Context, cfg CallConfig, prompt string) (*http.Request, error) {
	model := cfg.Model
	if model == "" {
		model = defaultAnthropicModel
	}

	payload := map[string]any{
		"model":      model,
		"max_tokens": chatMaxTokens,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
	}

	body, err := jsonBody(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.BaseURL+"/messages", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", cfg.APIKey)
	req.Header.Set("anthropic-version", anthropicVersion)
	return req, nil
}

func (a *AnthropicAdapter) ParseResponse(body []byte) (string, error) {
	var response struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
	}

	if err := json.Unmarshal(body, &response); err != nil {
		return "", &ProviderError{Kind: KindEmptyResponse,
			Message: "Invalid response format from AI model."}
	}
	if len(response.Content) == 0 {
		return "", &ProviderError{Kind: KindEmptyResponse,
			Message: "No response from AI model. Please try again."}
	}
	return response.Content[0].Text, nil
}
