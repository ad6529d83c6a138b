package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"optimo-ai/internal/domain/models"
	"optimo-ai/internal/domain/repositories"
)

type templateRepository struct {
	db *PostgresDB
}

func NewTemplateRepository(db *PostgresDB) repositories.TemplateRepository {
	return &templateRepository{db: db}
}

func (r *templateRepository) Create(ctx context.Context, tpl *models.PromptTemplate) error {
	query := `INSERT INTO prompt_templates (user_id, template_name, template_content, description, tags)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		tpl.UserID, tpl.Name, tpl.Content, tpl.Description, tpl.Tags,
	).Scan(&tpl.ID, &tpl.CreatedAt, &tpl.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create template: %w", err)
	}
	return nil
}

func (r *templateRepository) List(ctx context.Context, userID string) ([]*models.PromptTemplate, error) {
	var templates []*models.PromptTemplate
	query := `SELECT id, user_id, template_name, template_content, description, tags, created_at, updated_at
	          FROM prompt_templates
	          WHERE user_id = $1
	          ORDER BY created_at DESC, id DESC`

	if err := r.db.SelectContext(ctx, &templates, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	return templates, nil
}

func (r *templateRepository) Update(ctx context.Context, tpl *models.PromptTemplate) error {
	query := `UPDATE prompt_templates
	          SET template_name = $3, template_content = $4, description = $5, tags = $6, updated_at = now()
	          WHERE id = $1 AND user_id = $2
	          RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query,
		tpl.ID, tpl.UserID, tpl.Name, tpl.Content, tpl.Description, tpl.Tags,
	).Scan(&tpl.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("template %d: %w", tpl.ID, repositories.ErrNotFound)
		}
		return fmt.Errorf("failed to update template %d: %w", tpl.ID, err)
	}
	return nil
}

func (r *templateRepository) Delete(ctx context.Context, userID string, id int64) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM prompt_templates WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete template %d: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("template %d: %w", id, repositories.ErrNotFound)
	}
	return nil
}
