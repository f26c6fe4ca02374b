package repositories

import (
	"context"
	"time"

	"github.com/ghuser/crochestock/services/item/domain/models"
)

// ItemRepository is the persistence interface for the Item aggregate.
// The domain layer owns this interface; infrastructure implements it.
// Every method is scoped by owner: an id that belongs to someone else is
// indistinguishable from one that does not exist.
type ItemRepository interface {
	// ListByOwner returns the owner's items in creation (id) order.
	ListByOwner(ctx context.Context, ownerID string) ([]*models.Item, error)

	// GetByID returns ErrItemNotFound unless the item exists and belongs to ownerID.
	GetByID(ctx context.Context, ownerID string, id int64) (*models.Item, error)

	// Create persists item and assigns item.ID. Ids are unique and never reused.
	Create(ctx context.Context, item *models.Item) error

	// Update applies patch and stamps at as UpdatedAt, returning the stored item.
	// Returns ErrItemNotFound, leaving the store untouched, on an id/owner miss.
	Update(ctx context.Context, ownerID string, id int64, patch models.ItemPatch, at time.Time) (*models.Item, error)

	// Delete reports whether a record was removed.
	Delete(ctx context.Context, ownerID string, id int64) (bool, error)
}
