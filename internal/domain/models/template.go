package models

import (
	"time"

	"github.com/lib/pq"
)

// PromptTemplate is saved prompt scaffolding, an unlimited-tier feature with
// a lifecycle independent from the optimization flow.
type PromptTemplate struct {
	ID          int64          `json:"id" db:"id"`
	UserID      string         `json:"-" db:"user_id"`
	Name        string         `json:"name" db:"template_name"`
	Content     string         `json:"content" db:"template_content"`
	Description string         `json:"description" db:"description"`
	Tags        pq.StringArray `json:"tags" db:"tags"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at" db:"updated_at"`
}
