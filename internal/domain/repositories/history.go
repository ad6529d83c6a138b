package repositories

import (
	"context"

	"optimo-ai/internal/domain/models"
)

type HistoryRepository interface {
	// Append stores a new entry and trims the user's log down to retain
	// entries, keeping the most recent. A negative retain keeps everything.
	Append(ctx context.Context, entry *models.HistoryEntry, retain int) error

	// List returns up to limit entries for the user, newest first.
	List(ctx context.Context, userID string, limit int) ([]*models.HistoryEntry, error)
}
