package producer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"

	"github.com/SufyanAli-7/Genix-AI/internal/domain"
	"github.com/SufyanAli-7/Genix-AI/pkg/logger"
)

const (
	TopicGenerationCompleted = "generation.completed"
	TopicGenerationFailed    = "generation.failed"
	TopicSubscriptionUpdated = "subscription.updated"
)

// GenerationEvent is the Kafka payload for a finished generation job
type GenerationEvent struct {
	UserID     string      `json:"user_id"`
	Tool       domain.Tool `json:"tool"`
	ArtifactID string      `json:"artifact_id,omitempty"`
	Reason     string      `json:"reason,omitempty"`
	Timestamp  time.Time   `json:"timestamp"`
}

// SubscriptionEvent is the Kafka payload for a subscription change
type SubscriptionEvent struct {
	UserID           string    `json:"user_id"`
	CustomerID       string    `json:"customer_id"`
	CurrentPeriodEnd time.Time `json:"current_period_end"`
	Timestamp        time.Time `json:"timestamp"`
}

// EventProducer publishes service lifecycle events
type EventProducer interface {
	PublishGenerationCompleted(ctx context.Context, event GenerationEvent) error
	PublishGenerationFailed(ctx context.Context, event GenerationEvent) error
	PublishSubscriptionUpdated(ctx context.Context, event SubscriptionEvent) error
	Close() error
}

type kafkaEventProducer struct {
	producer sarama.SyncProducer
	log      *logger.Logger
}

// NewKafkaEventProducer creates a new Kafka-backed event producer
func NewKafkaEventProducer(producer sarama.SyncProducer, log *logger.Logger) EventProducer {
	return &kafkaEventProducer{
		producer: producer,
		log:      log,
	}
}

// PublishGenerationCompleted publishes a successful generation
func (p *kafkaEventProducer) PublishGenerationCompleted(ctx context.Context, event GenerationEvent) error {
	return p.publish(TopicGenerationCompleted, event.UserID, event)
}

// PublishGenerationFailed publishes a failed generation
func (p *kafkaEventProducer) PublishGenerationFailed(ctx context.Context, event GenerationEvent) error {
	return p.publish(TopicGenerationFailed, event.UserID, event)
}

// PublishSubscriptionUpdated publishes a subscription change
func (p *kafkaEventProducer) PublishSubscriptionUpdated(ctx context.Context, event SubscriptionEvent) error {
	return p.publish(TopicSubscriptionUpdated, event.UserID, event)
}

// publish serializes and sends one event
func (p *kafkaEventProducer) publish(topic, key string, event any) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(value),
		Headers: []sarama.RecordHeader{
			{
				Key:   []byte("event_type"),
				Value: []byte(topic),
			},
		},
		Timestamp: time.Now(),
	}

	partition, offset, err := p.producer.SendMessage(message)
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	p.log.Debug("Published event to topic %s: partition=%d offset=%d", topic, partition, offset)

	return nil
}

// Close closes the underlying producer
func (p *kafkaEventProducer) Close() error {
	return p.producer.Close()
}

// NopEventProducer drops all events; used when Kafka is not configured
type NopEventProducer struct{}

// PublishGenerationCompleted drops the event
func (NopEventProducer) PublishGenerationCompleted(ctx context.Context, event GenerationEvent) error {
	return nil
}

// PublishGenerationFailed drops the event
func (NopEventProducer) PublishGenerationFailed(ctx context.Context, event GenerationEvent) error {
	return nil
}

// PublishSubscriptionUpdated drops the event
func (NopEventProducer) PublishSubscriptionUpdated(ctx context.Context, event SubscriptionEvent) error {
	return nil
}

// Close is a no-op
func (NopEventProducer) Close() error { return nil }
