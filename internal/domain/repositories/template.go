package repositories

import (
	"context"

	"optimo-ai/internal/domain/models"
)

type TemplateRepository interface {
	Create(ctx context.Context, tpl *models.PromptTemplate) error
	List(ctx context.Context, userID string) ([]*models.PromptTemplate, error)
	Update(ctx context.Context, tpl *models.PromptTemplate) error
	Delete(ctx context.Context, userID string, id int64) error
}
