package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"optimo-ai/internal/domain/models"
	"optimo-ai/internal/interfaces/http/middleware"
)

type optimizeRequest struct {
	// Older extension builds send "prompt", newer ones "prompt_text".
	PromptText string                     `json:"prompt_text"`
	Prompt     string                     `json:"prompt"`
	Options    models.OptimizationOptions `json:"options"`
}

func (r *optimizeRequest) text() string {
	if r.PromptText != "" {
		return r.PromptText
	}
	return r.Prompt
}

func (h *Handler) OptimizePrompt(c *gin.Context) {
	var body optimizeRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.deny(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.optimizer.Optimize(c.Request.Context(), &models.OptimizeRequest{
		UserID:     middleware.UserID(c),
		PromptText: body.text(),
		Options:    body.Options,
	})
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"optimized_prompt": result.OptimizedPrompt,
		"usage_remaining":  result.UsageRemaining,
	})
}

func (h *Handler) History(c *gin.Context) {
	limit := 100
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	entries, err := h.history.List(c.Request.Context(), middleware.UserID(c), limit)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "history": entries})
}
