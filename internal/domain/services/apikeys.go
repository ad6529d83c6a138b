package services

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"

	"optimo-ai/internal/domain/models"
	"optimo-ai/internal/domain/repositories"
	"optimo-ai/internal/llm"
)

// LLMCaller is the outbound provider surface; *llm.Client satisfies it.
type LLMCaller interface {
	Call(ctx context.Context, cfg llm.CallConfig, prompt string) (string, error)
}

const keyTestPrompt = `Hello, can you respond with "API connection successful"?`

// APIKeyService manages stored provider credentials: encryption at rest,
// active-key selection, and connection testing.
type APIKeyService struct {
	keys   repositories.APIKeyRepository
	aead   cipher.AEAD
	llm    LLMCaller
	logger *slog.Logger
}

func NewAPIKeyService(keys repositories.APIKeyRepository, encryptionSecret string, caller LLMCaller, logger *slog.Logger) (*APIKeyService, error) {
	if encryptionSecret == "" {
		return nil, fmt.Errorf("key encryption secret is required")
	}

	// Derive a fixed-size AES-256 key from the configured secret.
	digest := sha256.Sum256([]byte(encryptionSecret))
	block, err := aes.NewCipher(digest[:])
	if err != nil {
		return nil, fmt.Errorf("failed to initialize key cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize key cipher: %w", err)
	}

	return &APIKeyService{keys: keys, aead: aead, llm: caller, logger: logger}, nil
}

// Save encrypts and stores a credential, making it the active key for its
// (user, provider) pair.
func (s *APIKeyService) Save(ctx context.Context, userID string, provider models.Provider,
	apiKey string, customEndpoint *string, modelName string) (*models.APIKey, error) {

	if apiKey == "" {
		return nil, &ValidationError{Message: "API key is required"}
	}
	if provider == models.ProviderCustom && (customEndpoint == nil || *customEndpoint == "") {
		return nil, &ValidationError{Message: "Custom provider requires an endpoint URL"}
	}

	encrypted, err := s.encrypt(apiKey)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt API key: %w", err)
	}

	key := &models.APIKey{
		UserID:          userID,
		Provider:        provider,
		EncryptedAPIKey: encrypted,
		CustomEndpoint:  customEndpoint,
		ModelName:       modelName,
		Status:          models.KeyStatusUntested,
		IsActive:        true,
	}
	if err := s.keys.Save(ctx, key); err != nil {
		return nil, fmt.Errorf("failed to save API key: %w", err)
	}
	return key, nil
}

// List returns the user's active keys without key material.
func (s *APIKeyService) List(ctx context.Context, userID string) ([]*models.APIKey, error) {
	return s.keys.ActiveKeys(ctx, userID)
}

// ActiveCredential decrypts the user's current active key for a provider
// call.
func (s *APIKeyService) ActiveCredential(ctx context.Context, userID string) (llm.CallConfig, error) {
	key, err := s.keys.ActiveKey(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return llm.CallConfig{}, &ValidationError{Message: "No API key configured. Please add your LLM API key in Settings."}
		}
		return llm.CallConfig{}, fmt.Errorf("failed to load API key: %w", err)
	}
	return s.credential(key)
}

// CredentialForTechnique picks among the user's active keys by technique:
// chain-of-thought and ReAct lean on openai or anthropic, ethical
// refinement prefers anthropic, anything else takes the first connected
// key. Untested keys are a last resort.
func (s *APIKeyService) CredentialForTechnique(ctx context.Context, userID, technique string) (llm.CallConfig, error) {
	keys, err := s.keys.ActiveKeys(ctx, userID)
	if err != nil {
		return llm.CallConfig{}, fmt.Errorf("failed to load API keys: %w", err)
	}
	if len(keys) == 0 {
		return llm.CallConfig{}, &ValidationError{Message: "No API key configured. Please add your LLM API key in Settings."}
	}

	connected := make([]*models.APIKey, 0, len(keys))
	for _, key := range keys {
		if key.Status == models.KeyStatusConnected {
			connected = append(connected, key)
		}
	}
	if len(connected) == 0 {
		return s.credential(keys[0])
	}

	switch technique {
	case models.TechniqueChainOfThought, models.TechniqueReAct:
		if key := firstWithProvider(connected, models.ProviderOpenAI, models.ProviderAnthropic); key != nil {
			return s.credential(key)
		}
	case models.TechniqueEthicalRefinement:
		if key := firstWithProvider(connected, models.ProviderAnthropic); key != nil {
			return s.credential(key)
		}
	}
	return s.credential(connected[0])
}

// Test runs a canned prompt through the credential and records the result
// on the stored key.
func (s *APIKeyService) Test(ctx context.Context, userID string, keyID int64) error {
	keys, err := s.keys.ActiveKeys(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load API keys: %w", err)
	}

	var key *models.APIKey
	for _, k := range keys {
		if k.ID == keyID {
			key = k
			break
		}
	}
	if key == nil {
		return &ValidationError{Message: "API key not found"}
	}

	cfg, err := s.credential(key)
	if err != nil {
		return err
	}

	if _, err := s.llm.Call(ctx, cfg, keyTestPrompt); err != nil {
		if statusErr := s.keys.SetStatus(ctx, key.ID, models.KeyStatusDisconnected); statusErr != nil {
			s.logger.Error("failed to record key status", "key_id", key.ID, "error", statusErr)
		}
		return err
	}

	if err := s.keys.SetStatus(ctx, key.ID, models.KeyStatusConnected); err != nil {
		s.logger.Error("failed to record key status", "key_id", key.ID, "error", err)
	}
	return nil
}

func (s *APIKeyService) credential(key *models.APIKey) (llm.CallConfig, error) {
	apiKey, err := s.decrypt(key.EncryptedAPIKey)
	if err != nil {
		return llm.CallConfig{}, fmt.Errorf("failed to decrypt API key: %w", err)
	}

	cfg := llm.CallConfig{
		Provider: key.Provider,
		APIKey:   apiKey,
		Model:    key.ModelName,
	}
	if key.CustomEndpoint != nil {
		cfg.Endpoint = *key.CustomEndpoint
	}
	return cfg, nil
}

func (s *APIKeyService) encrypt(plaintext string) (string, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	sealed := s.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

func (s *APIKeyService) decrypt(encoded string) (string, error) {
	sealed, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", err
	}
	if len(sealed) < s.aead.NonceSize() {
		return "", fmt.Errorf("ciphertext too short")
	}
	nonce, ciphertext := sealed[:s.aead.NonceSize()], sealed[s.aead.NonceSize():]
	plaintext, err := s.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}

func firstWithProvider(keys []*models.APIKey, providers ...models.Provider) *models.APIKey {
	for _, key := range keys {
		for _, provider := range providers {
			if key.Provider == provider {
				return key
			}
		}
	}
	return nil
}
