package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"optimo-ai/internal/domain/repositories"
	"optimo-ai/internal/domain/services"
	"optimo-ai/internal/llm"
)

// Handler binds the HTTP surface to the domain services.
type Handler struct {
	subscriptions *services.SubscriptionService
	keys          *services.APIKeyService
	optimizer     *services.OptimizationService
	paddle        *services.PaddleService
	history       repositories.HistoryRepository
	templates     repositories.TemplateRepository
	logger        *slog.Logger
}

func New(
	subscriptions *services.SubscriptionService,
	keys *services.APIKeyService,
	optimizer *services.OptimizationService,
	paddle *services.PaddleService,
	history repositories.HistoryRepository,
	templates repositories.TemplateRepository,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		subscriptions: subscriptions,
		keys:          keys,
		optimizer:     optimizer,
		paddle:        paddle,
		history:       history,
		templates:     templates,
		logger:        logger,
	}
}

// renderError maps domain errors onto the response statuses the extension
// keys its behavior on: 429 quota, 403 feature gating, 400 validation.
// Anything unexpected collapses to a generic 500 so internals never leak.
func (h *Handler) renderError(c *gin.Context, err error) {
	var (
		validation *services.ValidationError
		quota      *services.QuotaExceededError
		premium    *services.PremiumFeatureError
		unlimited  *services.UnlimitedFeatureError
		provider   *llm.ProviderError
	)

	switch {
	case errors.As(err, &validation):
		h.deny(c, http.StatusBadRequest, validation.Error())
	case errors.As(err, &quota):
		h.deny(c, http.StatusTooManyRequests, quota.Error())
	case errors.As(err, &premium):
		h.deny(c, http.StatusForbidden, premium.Error())
	case errors.As(err, &unlimited):
		h.deny(c, http.StatusForbidden, unlimited.Error())
	case errors.Is(err, llm.ErrMissingEndpoint):
		h.deny(c, http.StatusBadRequest, "Custom provider requires an endpoint URL")
	case errors.As(err, &provider):
		h.deny(c, providerStatus(provider), provider.Error())
	case errors.Is(err, repositories.ErrNotFound):
		h.deny(c, http.StatusNotFound, "Not found")
	default:
		h.logger.Error("request failed", "path", c.Request.URL.Path, "error", err)
		h.deny(c, http.StatusInternalServerError, "Internal server error")
	}
}

func providerStatus(err *llm.ProviderError) int {
	switch err.Kind {
	case llm.KindInvalidRequest:
		return http.StatusBadRequest
	case llm.KindAuthDenied:
		return http.StatusUnauthorized
	case llm.KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusBadGateway
	}
}

func (h *Handler) deny(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "error": message})
}
