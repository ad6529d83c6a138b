package services

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"optimo-ai/internal/domain/models"
	"optimo-ai/internal/infrastructure/memstore"
	"optimo-ai/internal/llm"
)

func newKeyFixture(t *testing.T, caller LLMCaller) *APIKeyService {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	service, err := NewAPIKeyService(memstore.NewKeyStore(), "test-secret", caller, logger)
	require.NoError(t, err)
	return service
}

func TestAPIKeyService_RequiresSecret(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	_, err := NewAPIKeyService(memstore.NewKeyStore(), "", &stubCaller{}, logger)
	assert.Error(t, err)
}

func TestSaveAndActiveCredential_RoundTrip(t *testing.T) {
	service := newKeyFixture(t, &stubCaller{})

	saved, err := service.Save(context.Background(), "user-1",
		models.ProviderOpenAI, "sk-plaintext", nil, "gpt-4o")
	require.NoError(t, err)
	assert.NotEqual(t, "sk-plaintext", saved.EncryptedAPIKey,
		"key material must not be stored in the clear")
	assert.Equal(t, models.KeyStatusUntested, saved.Status)

	cfg, err := service.ActiveCredential(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, models.ProviderOpenAI, cfg.Provider)
	assert.Equal(t, "sk-plaintext", cfg.APIKey)
	assert.Equal(t, "gpt-4o", cfg.Model)
}

func TestSave_Validation(t *testing.T) {
	service := newKeyFixture(t, &stubCaller{})

	t.Run("empty key", func(t *testing.T) {
		_, err := service.Save(context.Background(), "user-1", models.ProviderOpenAI, "", nil, "")
		var validation *ValidationError
		assert.ErrorAs(t, err, &validation)
	})

	t.Run("custom provider needs endpoint", func(t *testing.T) {
		_, err := service.Save(context.Background(), "user-1", models.ProviderCustom, "sk-x", nil, "")
		var validation *ValidationError
		assert.ErrorAs(t, err, &validation)
	})

	t.Run("custom provider with endpoint", func(t *testing.T) {
		endpoint := "https://gateway.internal/v1/chat/completions"
		key, err := service.Save(context.Background(), "user-1", models.ProviderCustom, "sk-x", &endpoint, "")
		require.NoError(t, err)
		require.NotNil(t, key.CustomEndpoint)
		assert.Equal(t, endpoint, *key.CustomEndpoint)
	})
}

func TestSave_ReplacesActiveKeyForProvider(t *testing.T) {
	service := newKeyFixture(t, &stubCaller{})

	_, err := service.Save(context.Background(), "user-1", models.ProviderOpenAI, "sk-old", nil, "")
	require.NoError(t, err)
	_, err = service.Save(context.Background(), "user-1", models.ProviderOpenAI, "sk-new", nil, "")
	require.NoError(t, err)

	cfg, err := service.ActiveCredential(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "sk-new", cfg.APIKey)

	keys, err := service.List(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Len(t, keys, 1)
}

func TestTest_RecordsKeyStatus(t *testing.T) {
	t.Run("success marks connected", func(t *testing.T) {
		service := newKeyFixture(t, &stubCaller{response: "API connection successful"})

		key, err := service.Save(context.Background(), "user-1", models.ProviderOpenAI, "sk-x", nil, "")
		require.NoError(t, err)

		require.NoError(t, service.Test(context.Background(), "user-1", key.ID))

		keys, err := service.List(context.Background(), "user-1")
		require.NoError(t, err)
		require.Len(t, keys, 1)
		assert.Equal(t, models.KeyStatusConnected, keys[0].Status)
	})

	t.Run("failure marks disconnected", func(t *testing.T) {
		caller := &stubCaller{err: &llm.ProviderError{Kind: llm.KindAuthDenied, Status: 401,
			Message: "API key access denied. Please verify your API key."}}
		service := newKeyFixture(t, caller)

		key, err := service.Save(context.Background(), "user-1", models.ProviderAnthropic, "sk-x", nil, "")
		require.NoError(t, err)

		err = service.Test(context.Background(), "user-1", key.ID)
		var provider *llm.ProviderError
		require.ErrorAs(t, err, &provider)

		keys, lerr := service.List(context.Background(), "user-1")
		require.NoError(t, lerr)
		require.Len(t, keys, 1)
		assert.Equal(t, models.KeyStatusDisconnected, keys[0].Status)
	})

	t.Run("unknown key id", func(t *testing.T) {
		service := newKeyFixture(t, &stubCaller{})
		err := service.Test(context.Background(), "user-1", 404)
		var validation *ValidationError
		assert.ErrorAs(t, err, &validation)
	})
}

func TestCredentialForTechnique_Preferences(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) *APIKeyService {
		service := newKeyFixture(t, &stubCaller{response: "ok"})
		for _, provider := range []models.Provider{
			models.ProviderGoogle, models.ProviderAnthropic, models.ProviderOpenAI,
		} {
			key, err := service.Save(ctx, "user-1", provider, "sk-"+string(provider), nil, "")
			require.NoError(t, err)
			require.NoError(t, service.Test(ctx, "user-1", key.ID))
		}
		return service
	}

	t.Run("chain-of-thought prefers openai or anthropic", func(t *testing.T) {
		cfg, err := setup(t).CredentialForTechnique(ctx, "user-1", models.TechniqueChainOfThought)
		require.NoError(t, err)
		assert.Contains(t, []models.Provider{models.ProviderOpenAI, models.ProviderAnthropic}, cfg.Provider)
	})

	t.Run("ethical refinement prefers anthropic", func(t *testing.T) {
		cfg, err := setup(t).CredentialForTechnique(ctx, "user-1", models.TechniqueEthicalRefinement)
		require.NoError(t, err)
		assert.Equal(t, models.ProviderAnthropic, cfg.Provider)
	})

	t.Run("untested keys are a last resort", func(t *testing.T) {
		service := newKeyFixture(t, &stubCaller{response: "ok"})
		_, err := service.Save(ctx, "user-1", models.ProviderOpenAI, "sk-untested", nil, "")
		require.NoError(t, err)

		cfg, err := service.CredentialForTechnique(ctx, "user-1", models.TechniqueChainOfThought)
		require.NoError(t, err)
		assert.Equal(t, "sk-untested", cfg.APIKey)
	})

	t.Run("no keys at all", func(t *testing.T) {
		service := newKeyFixture(t, &stubCaller{})
		_, err := service.CredentialForTechnique(ctx, "user-1", models.TechniqueReAct)
		var validation *ValidationError
		assert.ErrorAs(t, err, &validation)
	})
}
