package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"kycgate/internal/platform/kafka/producer"
)

// KafkaStore publishes audit events to a Kafka topic keyed by user so events
// for one user stay ordered within a partition. ListByUser is not supported;
// consumers read the topic instead.
type KafkaStore struct {
	producer *producer.Producer
	topic    string
}

func NewKafkaStore(p *producer.Producer, topic string) *KafkaStore {
	return &KafkaStore{producer: p, topic: topic}
}

func (s *KafkaStore) Append(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	return s.producer.Produce(ctx, &producer.Message{
		Topic: s.topic,
		Key:   []byte(event.UserID),
		Value: payload,
		Headers: map[string]string{
			"action": event.Action,
		},
	})
}

func (s *KafkaStore) ListByUser(_ context.Context, _ string) ([]Event, error) {
	return nil, ErrNotFound
}
