package events

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

const (
	metadataEventID      = "event_id"
	metadataEventVersion = "event_version"
)

// NewJSONMessage marshals payload into a Watermill message and stamps the
// event id and schema version into its metadata for consumer deduplication.
func NewJSONMessage(eventID string, version int, payload any) (*message.Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("events: marshal payload: %w", err)
	}
	msg := message.NewMessage(watermill.NewUUID(), data)
	msg.Metadata.Set(metadataEventID, eventID)
	msg.Metadata.Set(metadataEventVersion, strconv.Itoa(version))
	return msg, nil
}

// DecodeJSON unmarshals the payload of msg into T.
func DecodeJSON[T any](msg *message.Message) (T, error) {
	var v T
	if err := json.Unmarshal(msg.Payload, &v); err != nil {
		return v, fmt.Errorf("events: decode %s: %w", msg.UUID, err)
	}
	return v, nil
}
