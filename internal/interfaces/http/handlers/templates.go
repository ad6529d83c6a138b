package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"optimo-ai/internal/domain/models"
	"optimo-ai/internal/domain/services"
	"optimo-ai/internal/interfaces/http/middleware"
)

// requireUnlimited gates the template library behind the unlimited tier.
func (h *Handler) requireUnlimited(c *gin.Context) (string, bool) {
	userID := middleware.UserID(c)
	status, err := h.subscriptions.Sync(c.Request.Context(), userID)
	if err != nil {
		h.renderError(c, err)
		return "", false
	}
	if !status.Unlimited() {
		h.renderError(c, &services.UnlimitedFeatureError{Feature: "prompt_templates"})
		return "", false
	}
	return userID, true
}

type templateRequest struct {
	Name        string   `json:"name"`
	Content     string   `json:"content"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

func (h *Handler) CreateTemplate(c *gin.Context) {
	userID, ok := h.requireUnlimited(c)
	if !ok {
		return
	}

	var body templateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.deny(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if body.Name == "" || body.Content == "" {
		h.deny(c, http.StatusBadRequest, "Template name and content are required")
		return
	}

	tpl := &models.PromptTemplate{
		UserID:      userID,
		Name:        body.Name,
		Content:     body.Content,
		Description: body.Description,
		Tags:        body.Tags,
	}
	if err := h.templates.Create(c.Request.Context(), tpl); err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "template": tpl})
}

func (h *Handler) ListTemplates(c *gin.Context) {
	userID, ok := h.requireUnlimited(c)
	if !ok {
		return
	}

	templates, err := h.templates.List(c.Request.Context(), userID)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "templates": templates})
}

func (h *Handler) UpdateTemplate(c *gin.Context) {
	userID, ok := h.requireUnlimited(c)
	if !ok {
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		h.deny(c, http.StatusBadRequest, "Invalid template id")
		return
	}

	var body templateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.deny(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if body.Name == "" || body.Content == "" {
		h.deny(c, http.StatusBadRequest, "Template name and content are required")
		return
	}

	tpl := &models.PromptTemplate{
		ID:          id,
		UserID:      userID,
		Name:        body.Name,
		Content:     body.Content,
		Description: body.Description,
		Tags:        body.Tags,
	}
	if err := h.templates.Update(c.Request.Context(), tpl); err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "template": tpl})
}

func (h *Handler) DeleteTemplate(c *gin.Context) {
	userID, ok := h.requireUnlimited(c)
	if !ok {
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		h.deny(c, http.StatusBadRequest, "Invalid template id")
		return
	}

	if err := h.templates.Delete(c.Request.Context(), userID, id); err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
