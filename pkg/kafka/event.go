package kafka

import (
	"encoding/json"
	"time"
)

// Event is the standard envelope carried by all MEOWShop Kafka messages.
// This service only consumes: envelopes are produced by the catalog writers,
// so there is no constructor here.
type Event struct {
	EventID       string            `json:"event_id"`
	EventType     string            `json:"event_type"`
	AggregateID   string            `json:"aggregate_id"`
	AggregateType string            `json:"aggregate_type"`
	Version       int               `json:"version"`
	Timestamp     time.Time         `json:"timestamp"`
	Source        string            `json:"source"`
	CorrelationID string            `json:"correlation_id,omitempty"`
	Data          json.RawMessage   `json:"data"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// UnmarshalEvent deserializes an event from JSON bytes.
func UnmarshalEvent(data []byte) (*Event, error) {
	var event Event
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

// TopicPrefix is the standard prefix for all MEOWShop Kafka topics.
const TopicPrefix = "meowshop"

// Topic constructs a fully-qualified topic name.
func Topic(domain, action string) string {
	return TopicPrefix + "." + domain + "." + action
}
