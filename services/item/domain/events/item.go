package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	// TopicItemCreated is published in the same transaction that inserts an item.
	TopicItemCreated = "item.created"

	// TopicItemDeleted is published in the same transaction that removes an item.
	TopicItemDeleted = "item.deleted"

	// SchemaVersion is the payload version of both events.
	SchemaVersion = 1
)

// ItemCreatedEvent carries the full item so consumers can build read models
// without querying the store.
type ItemCreatedEvent struct {
	EventID    uuid.UUID `json:"event_id"` // Unique publish-time identifier for deduplication
	Version    int       `json:"version"`
	ItemID     int64     `json:"item_id"`
	OwnerID    string    `json:"owner_id"`
	Name       string    `json:"name"`
	Quantity   int       `json:"quantity"`
	PriceCents int64     `json:"price_cents"`
	OccurredAt time.Time `json:"occurred_at"`
}

// ItemDeletedEvent is published only when a delete actually removed a record.
type ItemDeletedEvent struct {
	EventID    uuid.UUID `json:"event_id"`
	Version    int       `json:"version"`
	ItemID     int64     `json:"item_id"`
	OwnerID    string    `json:"owner_id"`
	OccurredAt time.Time `json:"occurred_at"`
}
