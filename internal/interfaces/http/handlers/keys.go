package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"optimo-ai/internal/domain/models"
	"optimo-ai/internal/interfaces/http/middleware"
)

type saveKeyRequest struct {
	Provider models.Provider `json:"provider"`
	// Both spellings are in the wild across extension builds.
	APIKeySnake    string `json:"api_key"`
	APIKeyCamel    string `json:"apiKey"`
	CustomEndpoint string `json:"custom_endpoint"`
	Model          string `json:"model"`
}

func (r *saveKeyRequest) apiKey() string {
	if r.APIKeySnake != "" {
		return r.APIKeySnake
	}
	return r.APIKeyCamel
}

func (h *Handler) SaveKey(c *gin.Context) {
	var body saveKeyRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.deny(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if body.Provider == "" || body.apiKey() == "" {
		h.deny(c, http.StatusBadRequest, "Missing required fields")
		return
	}

	var endpoint *string
	if body.CustomEndpoint != "" {
		endpoint = &body.CustomEndpoint
	}

	_, err := h.keys.Save(c.Request.Context(), middleware.UserID(c),
		body.Provider, body.apiKey(), endpoint, body.Model)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "API key saved successfully"})
}

func (h *Handler) ListKeys(c *gin.Context) {
	keys, err := h.keys.List(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "keys": keys})
}

type testKeyRequest struct {
	KeyID int64 `json:"key_id"`
}

func (h *Handler) TestKey(c *gin.Context) {
	var body testKeyRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.deny(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.keys.Test(c.Request.Context(), middleware.UserID(c), body.KeyID); err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "API connection successful!"})
}
