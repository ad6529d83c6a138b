package remote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"optimo-ai/internal/domain/models"
)

func TestOptimize_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/optimize-prompt", r.URL.Path)
		assert.Equal(t, "user-1", r.Header.Get("X-User-ID"))

		w.Write([]byte(`{"success":true,"optimized_prompt":"better prompt","usage_remaining":7}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	resp, err := client.Optimize(context.Background(), "user-1", "raw prompt",
		models.OptimizationOptions{Tone: "friendly"})
	require.NoError(t, err)
	assert.Equal(t, "better prompt", resp.OptimizedPrompt)
	assert.Equal(t, 7, resp.UsageRemaining)
}

func TestOptimize_DenialIsTyped(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"success":false,"error":"Daily limit of 15 optimizations reached"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.Optimize(context.Background(), "user-1", "p", models.OptimizationOptions{})

	var denial *DenialError
	require.ErrorAs(t, err, &denial)
	assert.Equal(t, http.StatusTooManyRequests, denial.StatusCode)
	assert.Equal(t, "Daily limit of 15 optimizations reached", denial.Message)
	assert.NotErrorIs(t, err, ErrUnreachable)
}

func TestOptimize_ServerErrorIsUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.Optimize(context.Background(), "user-1", "p", models.OptimizationOptions{})
	assert.ErrorIs(t, err, ErrUnreachable)
}

func TestOptimize_TransportFailureIsUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := NewClient(server.URL)
	_, err := client.Optimize(context.Background(), "user-1", "p", models.OptimizationOptions{})
	assert.ErrorIs(t, err, ErrUnreachable)
}

func TestOptimize_MalformedResponseIsUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.Optimize(context.Background(), "user-1", "p", models.OptimizationOptions{})
	assert.ErrorIs(t, err, ErrUnreachable)
}

func TestUserStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/user-status", r.URL.Path)
		assert.Equal(t, "user-1", r.Header.Get("X-User-ID"))
		w.Write([]byte(`{"success":true,"user_id":"user-1","subscription_status":"premium"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	status, err := client.UserStatus(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "premium", status.SubscriptionStatus)
}

func TestSaveKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/save-key", r.URL.Path)
		w.Write([]byte(`{"success":true}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	err := client.SaveKey(context.Background(), "user-1", models.ProviderOpenAI, "sk-x", "", "gpt-4")
	assert.NoError(t, err)
}
