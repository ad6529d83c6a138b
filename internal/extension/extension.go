// Package extension assembles the client-side orchestration layer: the Go
// rendition of the browser extension's background logic. State lives in
// in-process stores, identity is a generated anonymous id, and optimization
// prefers the hosted backend with a direct-provider fallback.
package extension

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"optimo-ai/internal/config"
	"optimo-ai/internal/domain/models"
	"optimo-ai/internal/domain/services"
	"optimo-ai/internal/domain/services/remote"
	"optimo-ai/internal/infrastructure/memstore"
	"optimo-ai/internal/llm"
)

// LoadOrCreateUserID returns the anonymous user id persisted at path,
// generating and storing a fresh one on first run.
func LoadOrCreateUserID(path string) (string, error) {
	if raw, err := os.ReadFile(path); err == nil {
		if id := strings.TrimSpace(string(raw)); id != "" {
			return id, nil
		}
	}

	id := "user_" + uuid.NewString()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create identity directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(id+"\n"), 0o600); err != nil {
		return "", fmt.Errorf("failed to persist user id: %w", err)
	}
	return id, nil
}

// Agent is one user's client-side runtime: a backend client, local stores,
// and the failover optimizer tying them together.
type Agent struct {
	userID    string
	backend   *remote.Client
	users     *memstore.UserStore
	keys      *services.APIKeyService
	optimizer *services.FailoverOptimizer
	history   *memstore.HistoryStore
	logger    *slog.Logger
}

func NewAgent(cfg *config.Config, userID string, logger *slog.Logger) (*Agent, error) {
	if userID == "" {
		return nil, errors.New("user id is required")
	}

	llmClient := llm.NewClient()
	users := memstore.NewUserStore()
	usage := memstore.NewUsageStore()
	history := memstore.NewHistoryStore()

	keys, err := services.NewAPIKeyService(memstore.NewKeyStore(), cfg.Keys.EncryptionSecret, llmClient, logger)
	if err != nil {
		return nil, err
	}

	subscriptions := services.NewSubscriptionService(users, nil, logger)
	direct := services.NewOptimizationService(subscriptions, keys, usage, history, llmClient, nil, logger)
	backend := remote.NewClient(cfg.Backend.URL)

	return &Agent{
		userID:    userID,
		backend:   backend,
		users:     users,
		keys:      keys,
		optimizer: services.NewFailoverOptimizer(backend, direct, logger),
		history:   history,
		logger:    logger,
	}, nil
}

// Optimize runs one prompt through the hosted backend, falling back to a
// direct provider call when the backend is unreachable.
func (a *Agent) Optimize(ctx context.Context, promptText string, opts models.OptimizationOptions) (*models.OptimizeResult, error) {
	return a.optimizer.Optimize(ctx, &models.OptimizeRequest{
		UserID:     a.userID,
		PromptText: promptText,
		Options:    opts,
	})
}

// SaveKey stores a provider credential locally and mirrors it to the backend
// so the hosted path can serve the user too. Backend unavailability is not
// fatal; the local copy already covers the fallback path.
func (a *Agent) SaveKey(ctx context.Context, provider models.Provider, apiKey, customEndpoint, modelName string) error {
	var endpoint *string
	if customEndpoint != "" {
		endpoint = &customEndpoint
	}
	if _, err := a.keys.Save(ctx, a.userID, provider, apiKey, endpoint, modelName); err != nil {
		return err
	}

	if err := a.backend.SaveKey(ctx, a.userID, provider, apiKey, customEndpoint, modelName); err != nil {
		if errors.Is(err, remote.ErrUnreachable) {
			a.logger.Warn("backend unreachable, key saved locally only", "provider", provider)
			return nil
		}
		return err
	}
	return nil
}

// Status fetches the trusted subscription status from the backend and
// caches it in the local store, so the direct fallback path serves the user
// at their last known tier when the backend is down.
func (a *Agent) Status(ctx context.Context) (*remote.StatusResponse, error) {
	status, err := a.backend.UserStatus(ctx, a.userID)
	if err != nil {
		return nil, err
	}

	if err := a.users.UpdateSubscription(ctx, a.userID,
		models.SubscriptionStatus(status.SubscriptionStatus), nil, nil, status.UnlimitedTrialEndsAt); err != nil {
		a.logger.Warn("failed to cache subscription status locally", "error", err)
	}
	return status, nil
}

// History lists locally recorded optimizations, newest first.
func (a *Agent) History(ctx context.Context, limit int) ([]*models.HistoryEntry, error) {
	return a.history.List(ctx, a.userID, limit)
}
