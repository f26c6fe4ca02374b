package main

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/ghuser/crochestock/pkg/cache"
	"github.com/ghuser/crochestock/pkg/config"
	"github.com/ghuser/crochestock/pkg/events"
	"github.com/ghuser/crochestock/pkg/logger"
	itemEvents "github.com/ghuser/crochestock/services/item/domain/events"
)

func createdMessage(t *testing.T, ownerID string, itemID int64) *message.Message {
	t.Helper()
	evt := itemEvents.ItemCreatedEvent{
		EventID: uuid.New(), Version: itemEvents.SchemaVersion, ItemID: itemID, OwnerID: ownerID,
		Name: "Alpaca blend", Quantity: 4, PriceCents: 1599, OccurredAt: time.Now().UTC(),
	}
	msg, err := events.NewJSONMessage(evt.EventID.String(), evt.Version, evt)
	if err != nil {
		t.Fatalf("NewJSONMessage: %v", err)
	}
	return msg
}

func TestHandleItemCreated_Payloads(t *testing.T) {
	h := handleItemCreated(logger.Discard())

	if err := h(context.Background(), createdMessage(t, "local", 1)); err != nil {
		t.Fatalf("valid event: %v", err)
	}
	if err := h(context.Background(), message.NewMessage("bad", []byte("{"))); err == nil {
		t.Fatal("expected decode error for malformed payload")
	}
}

// Integration tests, skipped unless REDIS_URL is set.
func TestItemEventHandlers_Redis(t *testing.T) {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		t.Skip("REDIS_URL not set; skipping integration tests")
	}
	ctx := context.Background()

	rc, err := cache.NewRedisClient(ctx, &config.Config{RedisURL: redisURL})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer rc.Close() //nolint:errcheck
	itemCache := cache.NewItemCache(rc)

	t.Run("late created event leaves an evicted entry absent", func(t *testing.T) {
		// The api has already updated item 41 and evicted its entry.
		if err := itemCache.Delete(ctx, "worker-owner", 41); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		if err := handleItemCreated(logger.Discard())(ctx, createdMessage(t, "worker-owner", 41)); err != nil {
			t.Fatalf("handler: %v", err)
		}
		if _, err := itemCache.Get(ctx, "worker-owner", 41); !errors.Is(err, redis.Nil) {
			t.Fatalf("expected miss, got %v", err)
		}
	})

	t.Run("deleted event evicts", func(t *testing.T) {
		now := time.Now().UTC()
		if err := itemCache.Set(ctx, &cache.CachedItem{
			ID: 42, OwnerID: "worker-owner", Name: "Stitch markers", Quantity: 20,
			CreatedAt: now, UpdatedAt: now,
		}); err != nil {
			t.Fatalf("Set: %v", err)
		}
		evt := itemEvents.ItemDeletedEvent{EventID: uuid.New(), Version: itemEvents.SchemaVersion, ItemID: 42, OwnerID: "worker-owner", OccurredAt: now}
		msg, err := events.NewJSONMessage(evt.EventID.String(), evt.Version, evt)
		if err != nil {
			t.Fatalf("NewJSONMessage: %v", err)
		}
		if err := handleItemDeleted(logger.Discard(), itemCache)(ctx, msg); err != nil {
			t.Fatalf("handler: %v", err)
		}
		if _, err := itemCache.Get(ctx, "worker-owner", 42); !errors.Is(err, redis.Nil) {
			t.Fatalf("expected miss after delete, got %v", err)
		}
	})
}
