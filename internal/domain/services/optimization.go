package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"optimo-ai/internal/domain/models"
	"optimo-ai/internal/domain/repositories"
	"optimo-ai/internal/infrastructure/cache"
	"optimo-ai/internal/llm"
)

// OptimizationService runs one optimization request end to end:
// validate -> entitlement check -> compose -> provider call -> commit.
// Nothing is written to the ledger or history until the provider call
// succeeds, and the ledger write is the atomic gate on the daily quota.
type OptimizationService struct {
	entitlements  *EntitlementEngine
	subscriptions *SubscriptionService
	keys          *APIKeyService
	usage         repositories.UsageRepository
	history       repositories.HistoryRepository
	composer      *llm.Composer
	llm           LLMCaller
	cache         *cache.RedisClient
	logger        *slog.Logger
	now           func() time.Time
}

func NewOptimizationService(
	subscriptions *SubscriptionService,
	keys *APIKeyService,
	usage repositories.UsageRepository,
	history repositories.HistoryRepository,
	caller LLMCaller,
	redis *cache.RedisClient,
	logger *slog.Logger,
) *OptimizationService {
	return &OptimizationService{
		entitlements:  NewEntitlementEngine(),
		subscriptions: subscriptions,
		keys:          keys,
		usage:         usage,
		history:       history,
		composer:      llm.NewComposer(),
		llm:           caller,
		cache:         redis,
		logger:        logger,
		now:           time.Now,
	}
}

func (s *OptimizationService) Optimize(ctx context.Context, req *models.OptimizeRequest) (*models.OptimizeResult, error) {
	if strings.TrimSpace(req.PromptText) == "" {
		return nil, &ValidationError{Message: "Prompt text is required"}
	}

	status, err := s.subscriptions.Sync(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	day := s.day()
	used, err := s.usage.CountFor(ctx, req.UserID, day)
	if err != nil {
		return nil, fmt.Errorf("failed to read usage: %w", err)
	}

	// Denials happen before any credential is touched or network call made.
	if err := s.entitlements.CheckRequest(status, req.Options, used); err != nil {
		return nil, err
	}

	cred, err := s.credentialFor(ctx, req.UserID, status, req.Options)
	if err != nil {
		return nil, err
	}

	opts := req.Options.WithDefaults()
	prompt := s.composer.ComposeFor(req.PromptText, opts, status)

	optimized, err := s.llm.Call(ctx, cred, prompt)
	if err != nil {
		return nil, err
	}

	// The ledger increment is the single atomic quota gate; a request that
	// loses a race here fails closed and is not recorded in history.
	limit := status.DailyLimit()
	count, ok, err := s.usage.IncrementIfUnderLimit(ctx, req.UserID, day, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to commit usage: %w", err)
	}
	if !ok {
		return nil, &QuotaExceededError{Limit: limit, Used: limit}
	}

	s.appendHistory(ctx, req.UserID, req.PromptText, optimized, opts, status)
	s.cacheCount(ctx, req.UserID, day, count)

	remaining := -1
	if limit >= 0 {
		remaining = limit - count
	}
	return &models.OptimizeResult{OptimizedPrompt: optimized, UsageRemaining: remaining}, nil
}

// UsageToday returns the committed count and the tier limit for the user.
func (s *OptimizationService) UsageToday(ctx context.Context, userID string, status models.SubscriptionStatus) (used, limit int, err error) {
	used, err = s.usage.CountFor(ctx, userID, s.day())
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read usage: %w", err)
	}
	return used, status.DailyLimit(), nil
}

func (s *OptimizationService) credentialFor(ctx context.Context, userID string, status models.SubscriptionStatus, opts models.OptimizationOptions) (llm.CallConfig, error) {
	if status.Unlimited() && opts.AdvancedTechnique != "" {
		return s.keys.CredentialForTechnique(ctx, userID, opts.AdvancedTechnique)
	}
	return s.keys.ActiveCredential(ctx, userID)
}

func (s *OptimizationService) appendHistory(ctx context.Context, userID, original, optimized string,
	opts models.OptimizationOptions, status models.SubscriptionStatus) {

	optionsUsed, err := json.Marshal(opts)
	if err != nil {
		optionsUsed = []byte("{}")
	}

	entry := &models.HistoryEntry{
		UserID:          userID,
		OriginalPrompt:  original,
		OptimizedPrompt: optimized,
		OptionsUsed:     string(optionsUsed),
		CreatedAt:       s.now(),
	}
	if err := s.history.Append(ctx, entry, status.HistoryRetention()); err != nil {
		// History is best-effort; the optimization already succeeded.
		s.logger.Error("failed to append optimization history", "user_id", userID, "error", err)
	}
}

func (s *OptimizationService) cacheCount(ctx context.Context, userID, day string, count int) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetDailyCount(ctx, userID, day, count); err != nil {
		s.logger.Warn("failed to cache daily count", "user_id", userID, "error", err)
	}
}

func (s *OptimizationService) day() string {
	return s.now().UTC().Format("2006-01-02")
}
