package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"optimo-ai/internal/domain/models"
)

const (
	googleBaseURL      = "https://generativelanguage.googleapis.com/v1beta"
	defaultGoogleModel = "gemini-pro"
)

type GoogleAdapter struct {
	BaseURL string
}

func (a *GoogleAdapter) Name() models.Provider {
	return models.ProviderGoogle
}

func (a *GoogleAdapter) BuildRequest(ctx context.Context, cfg CallConfig, prompt string) (*http.Request, error) {
	model := cfg.Model
	if model == "" {
		model = defaultGoogleModel
	}

	payload := map[string]any{
		"contents": []map[string]any{
			{
				"parts": []map[string]string{
					{"text": prompt},
				},
			},
		},
		"generationConfig": map[string]any{
			"temperature":     chatTemperature,
			"topK":            40,
			"topP":            0.95,
			"maxOutputTokens": chatMaxTokens,
		},
	}

	body, err := jsonBody(payload)
	if err != nil {
		return nil, err
	}

	// Google authenticates via a query parameter, not a header.
	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		a.BaseURL, model, url.QueryEscape(cfg.APIKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func (a *GoogleAdapter) ParseResponse(body []byte) (string, error) {
	var response struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}

	if err := json.Unmarshal(body, &response); err != nil {
		return "", &ProviderError{Kind: KindEmptyResponse,
			Message: "Invalid response format from AI model."}
	}
	if len(response.Candidates) == 0 || len(response.Candidates[0].Content.Parts) == 0 {
		return "", &ProviderError{Kind: KindEmptyResponse,
			Message: "No response from AI model. Please try again."}
	}
	return response.Candidates[0].Content.Parts[0].Text, nil
}
