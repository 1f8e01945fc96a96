package repository

import (
	"context"
	"fmt"

	"OddsEngine/internal/domain/models"
	pkgkafka "OddsEngine/pkg/kafka"
)

// KafkaOpportunityPublisher pushes live opportunities onto a Kafka topic,
// keyed by fixture id so downstream consumers see per-fixture order.
type KafkaOpportunityPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaOpportunityPublisher wraps an existing producer.
func NewKafkaOpportunityPublisher(producer *pkgkafka.Producer, topic string) *KafkaOpportunityPublisher {
	return &KafkaOpportunityPublisher{producer: producer, topic: topic}
}

// Publish sends one opportunity.
func (p *KafkaOpportunityPublisher) Publish(ctx context.Context, o *models.LiveOpportunity) error {
	if o == nil {
		return fmt.Errorf("opportunity is nil")
	}
	if err := p.producer.Publish(ctx, p.topic, []byte(o.FixtureID), o); err != nil {
		return fmt.Errorf("publish opportunity: %w", err)
	}
	return nil
}

// Close shuts the producer down.
func (p *KafkaOpportunityPublisher) Close() error {
	return p.producer.Close()
}
