// Package events ships analytics events to Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Dan9191/advisory-service/internal/models"
	"github.com/IBM/sarama"
	"github.com/sirupsen/logrus"
)

// Event names
const (
	ChatCompleted = "chat_completed"
	ChatFailed    = "chat_failed"
)

// Publisher delivers analytics events
type Publisher interface {
	Publish(ctx context.Context, event models.AnalyticsEvent) error
	Close() error
}

// KafkaPublisher wraps a Sarama sync producer
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
	log      *logrus.Logger
}

// NewKafkaPublisher connects a sync producer to the given brokers
func NewKafkaPublisher(brokers []string, topic string, log *logrus.Logger) (*KafkaPublisher, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForLocal
	config.Producer.Retry.Max = 3
	config.Version = sarama.V2_8_0_0

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	return NewKafkaPublisherWithProducer(producer, topic, log), nil
}

// NewKafkaPublisherWithProducer uses an existing producer
func NewKafkaPublisherWithProducer(producer sarama.SyncProducer, topic string, log *logrus.Logger) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: topic, log: log}
}

// Publish encodes the event as JSON keyed by session ID
func (p *KafkaPublisher) Publish(ctx context.Context, event models.AnalyticsEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	partition, offset, err := p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.SessionID),
		Value: sarama.ByteEncoder(value),
	})
	if err != nil {
		return fmt.Errorf("failed to publish %s event: %w", event.Name, err)
	}
	p.log.Debugf("Published %s event to %s[%d]@%d", event.Name, p.topic, partition, offset)
	return nil
}

// Close flushes and closes the producer
func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}

// Nop discards events. Used when no brokers are configured.
type Nop struct{}

func (Nop) Publish(context.Context, models.AnalyticsEvent) error { return nil }

func (Nop) Close() error { return nil }
