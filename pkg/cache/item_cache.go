package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// ItemCacheTTL is the time-to-live for cached items.
	ItemCacheTTL = 24 * time.Hour

	itemCacheKeyPrefix = "croche"
)

// CachedItem is the read model of a crochet item stored as a Redis hash.
type CachedItem struct {
	ID         int64     `json:"id"`
	OwnerID    string    `json:"owner_id"`
	Name       string    `json:"name"`
	Quantity   int       `json:"quantity"`
	PriceCents int64     `json:"price_cents"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ItemCache reads and writes item cache entries. Keys are scoped by owner so
// one user can never be served another user's item.
// Key format: "croche:{ownerID}:{itemID}"
//
// A nil *ItemCache is valid and behaves as a permanently empty cache.
type ItemCache struct {
	client *RedisClient
}

// NewItemCache returns an ItemCache over r, or nil when r is nil.
func NewItemCache(r *RedisClient) *ItemCache {
	if r == nil {
		return nil
	}
	return &ItemCache{client: r}
}

// Get retrieves a cached item by owner + item id.
// Returns redis.Nil when the key does not exist or has expired.
func (c *ItemCache) Get(ctx context.Context, ownerID string, itemID int64) (*CachedItem, error) {
	if c == nil {
		return nil, redis.Nil
	}
	vals, err := c.client.Client().HGetAll(ctx, key(ownerID, itemID)).Result()
	if err != nil {
		return nil, fmt.Errorf("cache get: %w", err)
	}
	if len(vals) == 0 {
		return nil, redis.Nil
	}
	return decodeItem(vals)
}

// Set writes item as a Redis hash with ItemCacheTTL.
// The fields and the TTL go out in one pipeline.
func (c *ItemCache) Set(ctx context.Context, item *CachedItem) error {
	if c == nil {
		return nil
	}
	k := key(item.OwnerID, item.ID)
	pipe := c.client.Client().Pipeline()
	pipe.HSet(ctx, k,
		"id", strconv.FormatInt(item.ID, 10),
		"owner_id", item.OwnerID,
		"name", item.Name,
		"quantity", strconv.Itoa(item.Quantity),
		"price_cents", strconv.FormatInt(item.PriceCents, 10),
		"created_at", item.CreatedAt.UTC().Format(time.RFC3339Nano),
		"updated_at", item.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	pipe.Expire(ctx, k, ItemCacheTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Delete removes a cached item.
func (c *ItemCache) Delete(ctx context.Context, ownerID string, itemID int64) error {
	if c == nil {
		return nil
	}
	if err := c.client.Client().Del(ctx, key(ownerID, itemID)).Err(); err != nil {
		return fmt.Errorf("cache delete: %w", err)
	}
	return nil
}

func key(ownerID string, itemID int64) string {
	return fmt.Sprintf("%s:%s:%d", itemCacheKeyPrefix, ownerID, itemID)
}

func decodeItem(vals map[string]string) (*CachedItem, error) {
	id, err := strconv.ParseInt(vals["id"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("cache parse id: %w", err)
	}
	qty, err := strconv.Atoi(vals["quantity"])
	if err != nil {
		return nil, fmt.Errorf("cache parse quantity: %w", err)
	}
	price, err := strconv.ParseInt(vals["price_cents"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("cache parse price_cents: %w", err)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, vals["created_at"])
	if err != nil {
		return nil, fmt.Errorf("cache parse created_at: %w", err)
	}
	updatedAt, err := time.Parse(time.RFC3339Nano, vals["updated_at"])
	if err != nil {
		return nil, fmt.Errorf("cache parse updated_at: %w", err)
	}
	return &CachedItem{
		ID:         id,
		OwnerID:    vals["owner_id"],
		Name:       vals["name"],
		Quantity:   qty,
		PriceCents: price,
		CreatedAt:  createdAt,
		UpdatedAt:  updatedAt,
	}, nil
}
