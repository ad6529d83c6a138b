package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"optimo-ai/internal/domain/services"
)

// PaddleWebhook receives billing events. Verification happens over the raw
// body, so it is read before any binding.
func (h *Handler) PaddleWebhook(c *gin.Context) {
	rawBody, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.deny(c, http.StatusBadRequest, "Unable to read request body")
		return
	}

	err = h.paddle.HandleWebhook(c.Request.Context(), rawBody, c.GetHeader("Paddle-Signature"))
	if err != nil {
		if errors.Is(err, services.ErrInvalidSignature) {
			h.deny(c, http.StatusUnauthorized, "Invalid webhook signature")
			return
		}
		h.logger.Error("webhook processing failed", "error", err)
		h.deny(c, http.StatusInternalServerError, "Webhook processing failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
