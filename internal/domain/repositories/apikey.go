package repositories

import (
	"context"

	"optimo-ai/internal/domain/models"
)

type APIKeyRepository interface {
	// Save deactivates any previous key for the same (user, provider) pair
	// and inserts the new one as the active credential.
	Save(ctx context.Context, key *models.APIKey) error

	// ActiveKey returns the most recently saved active key for the user.
	ActiveKey(ctx context.Context, userID string) (*models.APIKey, error)

	// ActiveKeys returns all active keys for the user, newest first.
	ActiveKeys(ctx context.Context, userID string) ([]*models.APIKey, error)

	SetStatus(ctx context.Context, id int64, status models.KeyStatus) error
}
