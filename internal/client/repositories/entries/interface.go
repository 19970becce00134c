package entries

import (
	"context"

	"github.com/dmitrijs2005/mindvault/internal/client/models"
)

// Repository describes persistence of journal entries.
type Repository interface {
	// Insert stores a new entry.
	Insert(ctx context.Context, entry *models.Entry) error

	// Update overwrites the mutable columns of an existing entry.
	Update(ctx context.Context, entry *models.Entry) error

	// GetByID returns a live entry or common.ErrorNotFound.
	GetByID(ctx context.Context, id string) (*models.Entry, error)

	// List returns live entries, newest first.
	List(ctx context.Context) ([]*models.Entry, error)

	// ListEncrypted returns live entries whose content is encrypted.
	ListEncrypted(ctx context.Context) ([]*models.Entry, error)

	// ListNeedingEncryption returns live entries marked private but stored
	// in plaintext.
	ListNeedingEncryption(ctx context.Context) ([]*models.Entry, error)

	// DeleteByID marks an entry as deleted.
	DeleteByID(ctx context.Context, id string) error
}
