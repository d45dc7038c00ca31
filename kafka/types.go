package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Event is the envelope written to Kafka for every domain event.
type Event struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Source    string          `json:"source"`
	Version   string          `json:"version"`
	Timestamp time.Time       `json:"timestamp"`
	Subject   string          `json:"subject,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// NewEvent marshals data into an event envelope.
func NewEvent(id, eventType, source string, at time.Time, data interface{}) (Event, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Event{}, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return Event{
		ID:        id,
		Type:      eventType,
		Source:    source,
		Version:   "1",
		Timestamp: at.UTC(),
		Data:      raw,
	}, nil
}

// ToJSON marshals the event.
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// ParseData unmarshals the event payload into v.
func (e Event) ParseData(v interface{}) error {
	return json.Unmarshal(e.Data, v)
}

// Publisher writes events to a topic. The key selects the partition.
type Publisher interface {
	Publish(ctx context.Context, topic string, event Event, key string) error
}
