package llm

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"optimo-ai/internal/domain/models"
)

func TestCall_OpenAI(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"  optimized text \n"}}]}`))
	}))
	defer server.Close()

	client := NewClient()
	client.Register(&OpenAIAdapter{BaseURL: server.URL})

	text, err := client.Call(context.Background(),
		CallConfig{Provider: models.ProviderOpenAI, APIKey: "sk-test"}, "hello")
	require.NoError(t, err)
	assert.Equal(t, "optimized text", text)
}

func TestCall_Anthropic(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/messages", r.URL.Path)
		assert.Equal(t, "sk-ant", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))

		w.Write([]byte(`{"content":[{"text":"refined"}]}`))
	}))
	defer server.Close()

	client := NewClient()
	client.Register(&AnthropicAdapter{BaseURL: server.URL})

	text, err := client.Call(context.Background(),
		CallConfig{Provider: models.ProviderAnthropic, APIKey: "sk-ant"}, "hello")
	require.NoError(t, err)
	assert.Equal(t, "refined", text)
}

func TestCall_Google(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/gemini-pro:generateContent", r.URL.Path)
		assert.Equal(t, "g-key", r.URL.Query().Get("key"))

		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"polished"}]}}]}`))
	}))
	defer server.Close()

	client := NewClient()
	client.Register(&GoogleAdapter{BaseURL: server.URL})

	text, err := client.Call(context.Background(),
		CallConfig{Provider: models.ProviderGoogle, APIKey: "g-key"}, "hello")
	require.NoError(t, err)
	assert.Equal(t, "polished", text)
}

func TestCall_CustomEndpoint(t *testing.T) {
	t.Run("uses the configured endpoint", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/chat/completions", r.URL.Path)
			w.Write([]byte(`{"choices":[{"message":{"content":"from proxy"}}]}`))
		}))
		defer server.Close()

		client := NewClient()
		text, err := client.Call(context.Background(), CallConfig{
			Provider: models.ProviderCustom,
			APIKey:   "k",
			Endpoint: server.URL + "/v1/chat/completions",
			Model:    "local-model",
		}, "hello")
		require.NoError(t, err)
		assert.Equal(t, "from proxy", text)
	})

	t.Run("missing endpoint fails before any I/O", func(t *testing.T) {
		var hits int
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits++
		}))
		defer server.Close()

		client := NewClient()
		_, err := client.Call(context.Background(),
			CallConfig{Provider: models.ProviderCustom, APIKey: "k"}, "hello")
		assert.ErrorIs(t, err, ErrMissingEndpoint)
		assert.Zero(t, hits)
	})
}

func TestCall_StatusClassification(t *testing.T) {
	tests := []struct {
		status      int
		wantKind    ErrorKind
		wantMessage string
	}{
		{400, KindInvalidRequest, "Invalid API request. Please check your configuration."},
		{401, KindAuthDenied, "API key access denied. Please verify your API key."},
		{403, KindAuthDenied, "API key access denied. Please verify your API key."},
		{429, KindRateLimited, "API rate limit exceeded. Please try again later."},
	}

	for _, tt := range tests {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
			w.Write([]byte(`{"error":{"message":"provider detail"}}`))
		}))

		client := NewClient()
		client.Register(&OpenAIAdapter{BaseURL: server.URL})

		_, err := client.Call(context.Background(),
			CallConfig{Provider: models.ProviderOpenAI, APIKey: "sk-test"}, "hello")
		server.Close()

		var provider *ProviderError
		require.ErrorAs(t, err, &provider, "status %d", tt.status)
		assert.Equal(t, tt.wantKind, provider.Kind)
		assert.Equal(t, tt.status, provider.Status)
		assert.Equal(t, tt.wantMessage, provider.Message)
	}
}

func TestCall_UnknownStatusCarriesRedactedMessage(t *testing.T) {
	const apiKey = "sk-super-secret"

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		w.Write([]byte(`{"error":{"message":"billing problem for key ` + apiKey + `"}}`))
	}))
	defer server.Close()

	client := NewClient()
	client.Register(&OpenAIAdapter{BaseURL: server.URL})

	_, err := client.Call(context.Background(),
		CallConfig{Provider: models.ProviderOpenAI, APIKey: apiKey}, "hello")

	var provider *ProviderError
	require.ErrorAs(t, err, &provider)
	assert.Equal(t, KindUnknown, provider.Kind)
	assert.NotContains(t, provider.Message, apiKey)
	assert.Contains(t, provider.Message, "[redacted]")
	assert.True(t, strings.HasPrefix(provider.Message, "API error:"))
}

func TestCall_EmptyResponse(t *testing.T) {
	t.Run("whitespace-only content", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"choices":[{"message":{"content":"   \n  "}}]}`))
		}))
		defer server.Close()

		client := NewClient()
		client.Register(&OpenAIAdapter{BaseURL: server.URL})

		_, err := client.Call(context.Background(),
			CallConfig{Provider: models.ProviderOpenAI, APIKey: "k"}, "hello")

		var provider *ProviderError
		require.ErrorAs(t, err, &provider)
		assert.Equal(t, KindEmptyResponse, provider.Kind)
	})

	t.Run("no choices", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"choices":[]}`))
		}))
		defer server.Close()

		client := NewClient()
		client.Register(&OpenAIAdapter{BaseURL: server.URL})

		_, err := client.Call(context.Background(),
			CallConfig{Provider: models.ProviderOpenAI, APIKey: "k"}, "hello")

		var provider *ProviderError
		require.ErrorAs(t, err, &provider)
		assert.Equal(t, KindEmptyResponse, provider.Kind)
	})
}

func TestCall_NetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	client := NewClient()
	client.Register(&OpenAIAdapter{BaseURL: server.URL})

	_, err := client.Call(context.Background(),
		CallConfig{Provider: models.ProviderOpenAI, APIKey: "k"}, "hello")

	var provider *ProviderError
	require.ErrorAs(t, err, &provider)
	assert.Equal(t, KindNetwork, provider.Kind)
	assert.Equal(t, "Network connection failed. Please check your internet connection.", provider.Message)
}

func TestCall_UnsupportedProvider(t *testing.T) {
	client := NewClient()
	_, err := client.Call(context.Background(),
		CallConfig{Provider: models.Provider("mystery"), APIKey: "k"}, "hello")
	require.Error(t, err)
	assert.False(t, errors.As(err, new(*ProviderError)))
}
