// Package postgres implements the item repository on PostgreSQL with
// sqlc-generated queries. Inserts and deletes publish their domain event in
// the same transaction as the row change.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/crochestock/pkg/database"
	"github.com/ghuser/crochestock/pkg/events"
	itemdomain "github.com/ghuser/crochestock/services/item/domain"
	domainevents "github.com/ghuser/crochestock/services/item/domain/events"
	"github.com/ghuser/crochestock/services/item/domain/models"
	"github.com/ghuser/crochestock/services/item/infrastructure/persistence/postgres/db"
)

// ItemRepository implements repositories.ItemRepository against PostgreSQL.
type ItemRepository struct {
	db  *database.Database
	bus *events.EventBus
}

// NewItemRepository returns an ItemRepository over the given pool. bus may be
// nil, in which case no events are published.
func NewItemRepository(database *database.Database, bus *events.EventBus) *ItemRepository {
	return &ItemRepository{db: database, bus: bus}
}

// ListByOwner returns the owner's items ordered by id.
func (r *ItemRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.Item, error) {
	rows, err := db.New(r.db.DB()).ListItemsByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	items := make([]*models.Item, len(rows))
	for i, row := range rows {
		items[i] = rowToItem(row)
	}
	return items, nil
}

// GetByID returns ErrItemNotFound unless the item exists and belongs to ownerID.
func (r *ItemRepository) GetByID(ctx context.Context, ownerID string, id int64) (*models.Item, error) {
	row, err := db.New(r.db.DB()).GetItem(ctx, db.GetItemParams{ID: id, OwnerID: ownerID})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, itemdomain.ErrItemNotFound
		}
		return nil, fmt.Errorf("query item: %w", err)
	}
	return rowToItem(row), nil
}

// Create inserts item, sets its id from the sequence and publishes
// ItemCreatedEvent within the same transaction.
func (r *ItemRepository) Create(ctx context.Context, item *models.Item) error {
	if err := item.CheckRanges(); err != nil {
		return err
	}
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		row, err := db.New(tx).InsertItem(ctx, db.InsertItemParams{
			OwnerID:    item.OwnerID,
			Name:       item.Name.String(),
			Quantity:   int32(item.Quantity),
			PriceCents: int64(item.UnitPrice),
			CreatedAt:  item.CreatedAt,
			UpdatedAt:  item.UpdatedAt,
		})
		if err != nil {
			return fmt.Errorf("insert item: %w", err)
		}

		if r.bus != nil {
			eventID := uuid.New()
			msg, err := events.NewJSONMessage(eventID.String(), domainevents.SchemaVersion, domainevents.ItemCreatedEvent{
				EventID:    eventID,
				Version:    domainevents.SchemaVersion,
				ItemID:     row.ID,
				OwnerID:    row.OwnerID,
				Name:       row.Name,
				Quantity:   int(row.Quantity),
				PriceCents: row.PriceCents,
				OccurredAt: row.CreatedAt,
			})
			if err != nil {
				return err
			}
			if err := r.bus.PublishTx(ctx, tx, domainevents.TopicItemCreated, msg); err != nil {
				return fmt.Errorf("publish item created: %w", err)
			}
		}

		item.ID = row.ID
		return nil
	})
}

// Update applies the non-nil fields of patch in a single statement.
func (r *ItemRepository) Update(ctx context.Context, ownerID string, id int64, patch models.ItemPatch, at time.Time) (*models.Item, error) {
	if err := patch.CheckRanges(); err != nil {
		return nil, err
	}
	params := db.UpdateItemParams{ID: id, OwnerID: ownerID, UpdatedAt: at.UTC()}
	if patch.Name != nil {
		params.Name = sql.NullString{String: patch.Name.String(), Valid: true}
	}
	if patch.Quantity != nil {
		params.Quantity = sql.NullInt32{Int32: int32(*patch.Quantity), Valid: true}
	}
	if patch.UnitPrice != nil {
		params.PriceCents = sql.NullInt64{Int64: int64(*patch.UnitPrice), Valid: true}
	}

	row, err := db.New(r.db.DB()).UpdateItem(ctx, params)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, itemdomain.ErrItemNotFound
		}
		return nil, fmt.Errorf("update item: %w", err)
	}
	return rowToItem(row), nil
}

// Delete removes the owner's item and publishes ItemDeletedEvent when a row
// was actually removed.
func (r *ItemRepository) Delete(ctx context.Context, ownerID string, id int64) (bool, error) {
	removed := false
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		_, err := db.New(tx).DeleteItem(ctx, db.DeleteItemParams{ID: id, OwnerID: ownerID})
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("delete item: %w", err)
		}
		removed = true

		if r.bus != nil {
			eventID := uuid.New()
			msg, err := events.NewJSONMessage(eventID.String(), domainevents.SchemaVersion, domainevents.ItemDeletedEvent{
				EventID:    eventID,
				Version:    domainevents.SchemaVersion,
				ItemID:     id,
				OwnerID:    ownerID,
				OccurredAt: time.Now().UTC(),
			})
			if err != nil {
				return err
			}
			if err := r.bus.PublishTx(ctx, tx, domainevents.TopicItemDeleted, msg); err != nil {
				return fmt.Errorf("publish item deleted: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return removed, nil
}

func rowToItem(row db.CrocheItem) *models.Item {
	return &models.Item{
		ID:        row.ID,
		OwnerID:   row.OwnerID,
		Name:      models.ItemName(row.Name),
		Quantity:  int(row.Quantity),
		UnitPrice: models.Cents(row.PriceCents),
		CreatedAt: row.CreatedAt.UTC(),
		UpdatedAt: row.UpdatedAt.UTC(),
	}
}
