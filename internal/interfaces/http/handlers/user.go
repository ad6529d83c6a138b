package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"optimo-ai/internal/domain/services"
	"optimo-ai/internal/interfaces/http/middleware"
)

// UserStatus bootstraps the user on first contact and reports the resolved
// tier, the feature set it unlocks, and today's usage.
func (h *Handler) UserStatus(c *gin.Context) {
	userID := middleware.UserID(c)

	user, status, err := h.subscriptions.UserStatus(c.Request.Context(), userID)
	if err != nil {
		h.renderError(c, err)
		return
	}

	used, limit, err := h.optimizer.UsageToday(c.Request.Context(), userID, status)
	if err != nil {
		h.renderError(c, err)
		return
	}

	remaining := -1
	if limit >= 0 {
		remaining = limit - used
		if remaining < 0 {
			remaining = 0
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success":                 true,
		"user_id":                 user.UserID,
		"subscription_status":     status,
		"unlimited_trial_ends_at": user.UnlimitedTrialEndsAt,
		"capabilities":            services.CapabilitiesFor(status),
		"daily_limit":             limit,
		"usage_today":             used,
		"usage_remaining":         remaining,
	})
}
