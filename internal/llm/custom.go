package llm

import (
	"context"
	"net/http"

	"optimo-ai/internal/domain/models"
)

// CustomAdapter speaks the OpenAI chat-completions format against a
// caller-supplied endpoint (self-hosted gateways, proxies, compatible APIs).
type CustomAdapter struct{}

func (a *CustomAdapter) Name() models.Provider {
	return models.ProviderCustom
}

func (a *CustomAdapter) BuildRequest(ctx context.Context, cfg CallConfig, prompt string) (*http.Request, error) {
	if cfg.Endpoint == "" {
		return nil, ErrMissingEndpoint
	}
	return buildChatCompletionsRequest(ctx, cfg.Endpoint, cfg.APIKey, cfg.Model, prompt)
}

func (a *CustomAdapter) ParseResponse(body []byte) (string, error) {
	return parseChatCompletionsResponse(body)
}
