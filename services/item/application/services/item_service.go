package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	pkgcache "github.com/ghuser/crochestock/pkg/cache"
	"github.com/ghuser/crochestock/pkg/logger"
	"github.com/ghuser/crochestock/pkg/telemetry"
	pkgvalidator "github.com/ghuser/crochestock/pkg/validator"
	itemdomain "github.com/ghuser/crochestock/services/item/domain"
	"github.com/ghuser/crochestock/services/item/domain/models"
	"github.com/ghuser/crochestock/services/item/domain/repositories"
	domainsvcs "github.com/ghuser/crochestock/services/item/domain/services"
)

const cacheWarmTimeout = 2 * time.Second

// ItemService orchestrates the crochet inventory of one owner at a time.
// Event publishing is handled by the repository layer (outbox pattern).
// Single-item reads are served from Redis when available.
type ItemService struct {
	repo    repositories.ItemRepository
	cache   *pkgcache.ItemCache
	metrics *telemetry.InventoryMetrics
	log     logger.Logger
	tracer  trace.Tracer
	now     func() time.Time
}

// NewItemService returns an ItemService. cache and metrics may be nil.
func NewItemService(repo repositories.ItemRepository, itemCache *pkgcache.ItemCache, metrics *telemetry.InventoryMetrics, log logger.Logger) *ItemService {
	return &ItemService{
		repo:    repo,
		cache:   itemCache,
		metrics: metrics,
		log:     log,
		tracer:  otel.Tracer("crochestock/item"),
		now:     time.Now,
	}
}

// List returns every item of ownerID in creation order.
func (s *ItemService) List(ctx context.Context, ownerID string) (_ []*models.Item, err error) {
	ctx, span := s.start(ctx, "ItemService.List", ownerID)
	defer func() { end(span, err) }()

	items, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	span.SetAttributes(attribute.Int("item.count", len(items)))
	return items, nil
}

// Summary totals the inventory of ownerID.
func (s *ItemService) Summary(ctx context.Context, ownerID string) (models.Summary, error) {
	items, err := s.List(ctx, ownerID)
	if err != nil {
		return models.Summary{}, err
	}
	return models.Summarize(items)
}

// Get retrieves an Item using a read-through cache pattern:
//  1. Check Redis cache first.
//  2. On cache miss (or cache error), query the repository.
//  3. Asynchronously warm the cache with the result.
func (s *ItemService) Get(ctx context.Context, ownerID string, id int64) (_ *models.Item, err error) {
	ctx, span := s.start(ctx, "ItemService.Get", ownerID, attribute.Int64("item.id", id))
	defer func() { end(span, err) }()

	cached, err := s.cache.Get(ctx, ownerID, id)
	switch {
	case err == nil:
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return fromCache(cached), nil
	case !errors.Is(err, redis.Nil):
		s.log.WarnContext(ctx, "item cache read failed", "item_id", id, "error", err)
	}

	item, err := s.repo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}

	if s.cache != nil {
		entry := toCache(item)
		warmCtx := context.WithoutCancel(ctx)
		go func() {
			c, cancel := context.WithTimeout(warmCtx, cacheWarmTimeout)
			defer cancel()
			if err := s.cache.Set(c, entry); err != nil {
				s.log.WarnContext(c, "item cache warm failed", "item_id", entry.ID, "error", err)
			}
		}()
	}
	return item, nil
}

// Create validates in and persists a new item for ownerID. The repository
// assigns the id and publishes ItemCreatedEvent.
func (s *ItemService) Create(ctx context.Context, ownerID string, in CreateItemInput) (_ *models.Item, err error) {
	ctx, span := s.start(ctx, "ItemService.Create", ownerID)
	defer func() { end(span, err) }()

	if err := pkgvalidator.ValidateInput(&in); err != nil {
		return nil, err
	}
	name, err := models.NewItemName(strings.TrimSpace(in.Name))
	if err != nil {
		return nil, err
	}
	price, err := models.CentsFromMajor(*in.Price)
	if err != nil {
		return nil, err
	}

	item, err := models.NewItem(ownerID, name, *in.Quantity, price, s.now())
	if err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}
	if err := domainsvcs.ValidateItemForCreation(item); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("save item: %w", err)
	}
	span.SetAttributes(attribute.Int64("item.id", item.ID))
	s.metrics.Created(ctx)
	s.log.InfoContext(ctx, "item created", "item_id", item.ID, "owner_id", ownerID)
	return item, nil
}

// Update applies the fields set in `in` to the item in.ID of ownerID and
// refreshes UpdatedAt. Returns ErrItemNotFound when the item does not exist
// or belongs to someone else.
func (s *ItemService) Update(ctx context.Context, ownerID string, in UpdateItemInput) (_ *models.Item, err error) {
	ctx, span := s.start(ctx, "ItemService.Update", ownerID, attribute.Int64("item.id", in.ID))
	defer func() { end(span, err) }()

	if err := pkgvalidator.ValidateInput(&in); err != nil {
		return nil, err
	}
	patch, err := toPatch(in.ItemFields)
	if err != nil {
		return nil, err
	}

	item, err := s.repo.Update(ctx, ownerID, in.ID, patch, s.now())
	if err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}
	s.evict(ctx, ownerID, in.ID)
	s.metrics.Updated(ctx)
	s.log.InfoContext(ctx, "item updated", "item_id", in.ID, "owner_id", ownerID)
	return item, nil
}

// Delete removes the item id of ownerID and reports whether a record was
// removed. Deleting a missing or foreign item is not an error.
func (s *ItemService) Delete(ctx context.Context, ownerID string, id int64) (_ bool, err error) {
	ctx, span := s.start(ctx, "ItemService.Delete", ownerID, attribute.Int64("item.id", id))
	defer func() { end(span, err) }()

	if id <= 0 {
		return false, &pkgvalidator.InputError{Message: "Validation failed", Fields: map[string]string{"id": "Must be greater than 0"}}
	}
	removed, err := s.repo.Delete(ctx, ownerID, id)
	if err != nil {
		return false, fmt.Errorf("delete item: %w", err)
	}
	s.evict(ctx, ownerID, id)
	span.SetAttributes(attribute.Bool("item.removed", removed))
	s.metrics.Deleted(ctx, removed)
	if removed {
		s.log.InfoContext(ctx, "item deleted", "item_id", id, "owner_id", ownerID)
	}
	return removed, nil
}

func (s *ItemService) evict(ctx context.Context, ownerID string, id int64) {
	if err := s.cache.Delete(ctx, ownerID, id); err != nil {
		s.log.WarnContext(ctx, "item cache evict failed", "item_id", id, "error", err)
	}
}

func (s *ItemService) start(ctx context.Context, name, ownerID string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, attribute.String("owner.id", ownerID))
	return s.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func end(span trace.Span, err error) {
	if err != nil && !errors.Is(err, itemdomain.ErrItemNotFound) && !errors.Is(err, pkgvalidator.ErrInvalidInput) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func toPatch(f ItemFields) (models.ItemPatch, error) {
	var p models.ItemPatch
	if f.Name != nil {
		name, err := models.NewItemName(strings.TrimSpace(*f.Name))
		if err != nil {
			return p, err
		}
		p.Name = &name
	}
	if f.Quantity != nil {
		q := *f.Quantity
		p.Quantity = &q
	}
	if f.Price != nil {
		c, err := models.CentsFromMajor(*f.Price)
		if err != nil {
			return p, err
		}
		p.UnitPrice = &c
	}
	return p, domainsvcs.ValidatePatch(p)
}

func toCache(it *models.Item) *pkgcache.CachedItem {
	return &pkgcache.CachedItem{
		ID:         it.ID,
		OwnerID:    it.OwnerID,
		Name:       it.Name.String(),
		Quantity:   it.Quantity,
		PriceCents: int64(it.UnitPrice),
		CreatedAt:  it.CreatedAt,
		UpdatedAt:  it.UpdatedAt,
	}
}

func fromCache(c *pkgcache.CachedItem) *models.Item {
	return &models.Item{
		ID:        c.ID,
		OwnerID:   c.OwnerID,
		Name:      models.ItemName(c.Name),
		Quantity:  c.Quantity,
		UnitPrice: models.Cents(c.PriceCents),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
