package services

import (
	"context"
	"errors"
	"log/slog"

	"optimo-ai/internal/domain/models"
	"optimo-ai/internal/domain/services/remote"
)

// RemoteBackend is the hosted optimization path; *remote.Client satisfies
// it.
type RemoteBackend interface {
	Optimize(ctx context.Context, userID, promptText string, opts models.OptimizationOptions) (*remote.OptimizeResponse, error)
}

// DirectOptimizer is the local pipeline used when the backend cannot be
// reached; *OptimizationService satisfies it.
type DirectOptimizer interface {
	Optimize(ctx context.Context, req *models.OptimizeRequest) (*models.OptimizeResult, error)
}

// FailoverOptimizer is the extension-side orchestration policy: prefer the
// hosted backend, and retry exactly once against the provider directly when
// the backend itself is down. Deliberate backend denials (quota, feature
// gating) are terminal — the fallback preserves availability, it never
// bypasses gating.
type FailoverOptimizer struct {
	remote RemoteBackend
	direct DirectOptimizer
	logger *slog.Logger
}

func NewFailoverOptimizer(backend RemoteBackend, direct DirectOptimizer, logger *slog.Logger) *FailoverOptimizer {
	return &FailoverOptimizer{remote: backend, direct: direct, logger: logger}
}

func (f *FailoverOptimizer) Optimize(ctx context.Context, req *models.OptimizeRequest) (*models.OptimizeResult, error) {
	resp, err := f.remote.Optimize(ctx, req.UserID, req.PromptText, req.Options)
	if err == nil {
		// The backend committed usage on its own ledger; nothing to charge
		// locally.
		return &models.OptimizeResult{
			OptimizedPrompt: resp.OptimizedPrompt,
			UsageRemaining:  resp.UsageRemaining,
		}, nil
	}

	var denial *remote.DenialError
	if errors.As(err, &denial) {
		return nil, denial
	}
	if !errors.Is(err, remote.ErrUnreachable) {
		return nil, err
	}

	f.logger.Warn("backend unreachable, falling back to direct provider call",
		"user_id", req.UserID, "error", err)
	return f.direct.Optimize(ctx, req)
}
