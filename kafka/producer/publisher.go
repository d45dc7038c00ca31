package producer

import (
	"context"
	"fmt"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/kbukum/clinic/kafka"
)

// KafkaPublisher implements kafka.Publisher on top of a Producer.
type KafkaPublisher struct {
	producer *Producer
}

var _ kafka.Publisher = (*KafkaPublisher)(nil)

// NewPublisher wraps producer.
func NewPublisher(producer *Producer) *KafkaPublisher {
	return &KafkaPublisher{producer: producer}
}

// Publish writes event as JSON to topic. An empty key falls back to the
// event subject, then its id.
func (p *KafkaPublisher) Publish(ctx context.Context, topic string, event kafka.Event, key string) error {
	data, err := event.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	msg := kafkago.Message{
		Topic: topic,
		Key:   []byte(partitionKey(event, key)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "event-id", Value: []byte(event.ID)},
			{Key: "event-type", Value: []byte(event.Type)},
			{Key: "event-source", Value: []byte(event.Source)},
			{Key: "content-type", Value: []byte("application/json")},
		},
		Time: event.Timestamp,
	}

	if err := p.producer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish %s: %w", event.Type, err)
	}
	return nil
}

func partitionKey(event kafka.Event, key string) string {
	switch {
	case key != "":
		return key
	case event.Subject != "":
		return event.Subject
	default:
		return event.ID
	}
}
