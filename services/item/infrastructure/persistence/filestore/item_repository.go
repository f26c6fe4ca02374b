// Package filestore implements the item repository over a single JSON file.
//
// The whole collection lives in memory, indexed by id, and every mutation
// rewrites the snapshot atomically before it becomes visible. The id counter
// is part of the snapshot, so ids are never reused, even after deletes and
// restarts. An empty path keeps everything in memory.
package filestore

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/ghuser/crochestock/pkg/jsonfile"
	itemdomain "github.com/ghuser/crochestock/services/item/domain"
	"github.com/ghuser/crochestock/services/item/domain/models"
)

type itemRecord struct {
	ID         int64     `json:"id"`
	OwnerID    string    `json:"owner_id"`
	Name       string    `json:"name"`
	Quantity   int       `json:"quantity"`
	PriceCents int64     `json:"price_cents"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type itemSnapshot struct {
	LastID int64        `json:"last_id"`
	Items  []itemRecord `json:"items"`
}

// ItemRepository implements repositories.ItemRepository on a JSON file.
type ItemRepository struct {
	path string

	mu     sync.RWMutex
	lastID int64
	byID   map[int64]*models.Item
	order  []int64 // ascending, which is also insertion order
}

// NewItemRepository loads path (if it exists) and returns a repository that
// persists to it. Pass "" for a memory-only repository.
func NewItemRepository(path string) (*ItemRepository, error) {
	r := &ItemRepository{path: path, byID: make(map[int64]*models.Item)}
	if path == "" {
		return r, nil
	}

	var snap itemSnapshot
	if _, err := jsonfile.Read(path, &snap); err != nil {
		return nil, fmt.Errorf("load items: %w", err)
	}
	for _, rec := range snap.Items {
		if _, dup := r.byID[rec.ID]; dup {
			return nil, fmt.Errorf("load items: duplicate id %d in %s", rec.ID, path)
		}
		r.byID[rec.ID] = fromRecord(rec)
		r.order = append(r.order, rec.ID)
		r.lastID = max(r.lastID, rec.ID)
	}
	r.lastID = max(r.lastID, snap.LastID)
	slices.Sort(r.order)
	return r, nil
}

// ListByOwner returns copies of the owner's items in id order.
func (r *ItemRepository) ListByOwner(_ context.Context, ownerID string) ([]*models.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]*models.Item, 0)
	for _, id := range r.order {
		if it := r.byID[id]; it.OwnerID == ownerID {
			items = append(items, clone(it))
		}
	}
	return items, nil
}

// GetByID returns a copy of the item, or ErrItemNotFound on an id/owner miss.
func (r *ItemRepository) GetByID(_ context.Context, ownerID string, id int64) (*models.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	it, ok := r.byID[id]
	if !ok || it.OwnerID != ownerID {
		return nil, itemdomain.ErrItemNotFound
	}
	return clone(it), nil
}

// Create assigns the next id to item and persists it.
func (r *ItemRepository) Create(_ context.Context, item *models.Item) error {
	if err := item.CheckRanges(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := clone(item)
	stored.ID = r.lastID + 1

	r.byID[stored.ID] = stored
	r.order = append(r.order, stored.ID)
	r.lastID = stored.ID

	if err := r.persistLocked(); err != nil {
		delete(r.byID, stored.ID)
		r.order = r.order[:len(r.order)-1]
		r.lastID--
		return err
	}
	item.ID = stored.ID
	return nil
}

// Update applies patch to the owner's item and persists the result.
func (r *ItemRepository) Update(_ context.Context, ownerID string, id int64, patch models.ItemPatch, at time.Time) (*models.Item, error) {
	if err := patch.CheckRanges(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.byID[id]
	if !ok || current.OwnerID != ownerID {
		return nil, itemdomain.ErrItemNotFound
	}

	next := clone(current)
	next.Apply(patch, at)
	r.byID[id] = next

	if err := r.persistLocked(); err != nil {
		r.byID[id] = current
		return nil, err
	}
	return clone(next), nil
}

// Delete removes the owner's item. A miss is not an error.
func (r *ItemRepository) Delete(_ context.Context, ownerID string, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.byID[id]
	if !ok || current.OwnerID != ownerID {
		return false, nil
	}

	idx, _ := slices.BinarySearch(r.order, id)
	prevOrder := slices.Clone(r.order)
	delete(r.byID, id)
	r.order = slices.Delete(r.order, idx, idx+1)

	if err := r.persistLocked(); err != nil {
		r.byID[id] = current
		r.order = prevOrder
		return false, err
	}
	return true, nil
}

// persistLocked writes the current state. Callers hold mu for writing.
func (r *ItemRepository) persistLocked() error {
	if r.path == "" {
		return nil
	}
	snap := itemSnapshot{LastID: r.lastID, Items: make([]itemRecord, 0, len(r.order))}
	for _, id := range r.order {
		snap.Items = append(snap.Items, toRecord(r.byID[id]))
	}
	if err := jsonfile.Write(r.path, snap); err != nil {
		return fmt.Errorf("persist items: %w", err)
	}
	return nil
}

func clone(it *models.Item) *models.Item {
	c := *it
	return &c
}

func toRecord(it *models.Item) itemRecord {
	return itemRecord{
		ID:         it.ID,
		OwnerID:    it.OwnerID,
		Name:       it.Name.String(),
		Quantity:   it.Quantity,
		PriceCents: int64(it.UnitPrice),
		CreatedAt:  it.CreatedAt,
		UpdatedAt:  it.UpdatedAt,
	}
}

func fromRecord(rec itemRecord) *models.Item {
	return &models.Item{
		ID:        rec.ID,
		OwnerID:   rec.OwnerID,
		Name:      models.ItemName(rec.Name),
		Quantity:  rec.Quantity,
		UnitPrice: models.Cents(rec.PriceCents),
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}
}
