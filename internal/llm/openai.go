package llm

import (
	"context"
	"encoding/json"
	"net/http"

	"optimo-ai/internal/domain/models"
)

const (
	openAIBaseURL      = "https://api.openai.com/v1"
	defaultOpenAIModel = "gpt-4"

	// Generation defaults shared by the chat-completions style providers.
	chatTemperature = 0.7
	chatMaxTokens   = 2048
)

type OpenAIAdapter struct {
	BaseURL string
}

func (a *OpenAIAdapter) Name() models.Provider {
	return models.ProviderOpenAI
}

func (a *OpenAIAdapter) BuildRequest(ctx context.Context, cfg CallConfig, prompt string) (*http.Request, error) {
	model := cfg.Model
	if model == "" {
		model = defaultOpenAIModel
	}
	return buildChatCompletionsRequest(ctx, a.BaseURL+"/chat/completions", cfg.APIKey, model, prompt)
}

func (a *OpenAIAdapter) ParseResponse(body []byte) (string, error) {
	return parseChatCompletionsResponse(body)
}

// buildChatCompletionsRequest covers the OpenAI wire format, which the
// custom provider reuses against a caller-supplied endpoint.
func buildChatCompletionsRequest(ctx context.Context, url, apiKey, model, prompt string) (*http.Request, error) {
	payload := map[string]any{
		"model": model,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
		"temperature": chatTemperature,
		"max_tokens":  chatMaxTokens,
	}

	body, err := jsonBody(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)
	return req, nil
}

func parseChatCompletionsResponse(body []byte) (string, error) {
	var response struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}

	if err := json.Unmarshal(body, &response); err != nil {
		return "", &ProviderError{Kind: KindEmptyResponse,
			Message: "Invalid response format from AI model."}
	}
	if len(response.Choices) == 0 {
		return "", &ProviderError{Kind: KindEmptyResponse,
			Message: "No response from AI model. Please try again."}
	}
	return response.Choices[0].Message.Content, nil
}
