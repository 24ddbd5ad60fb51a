package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/k-shtanenko/bike-rental-dashboard/internal/domain/entities"
	"github.com/k-shtanenko/bike-rental-dashboard/internal/pkg/logger"
)

// KafkaProducer publishes export notifications.
type KafkaProducer struct {
	producer sarama.SyncProducer
	broker   string
	topic    string
	logger   logger.Logger
}

func NewKafkaProducer(broker, topic string, requiredAcks int16, maxRetries int) (*KafkaProducer, error) {
	config := baseConfig()
	config.Producer.RequiredAcks = sarama.RequiredAcks(requiredAcks)
	config.Producer.Retry.Max = maxRetries
	config.Producer.Return.Successes = true
	config.Producer.Timeout = 5 * time.Second

	producer, err := sarama.NewSyncProducer([]string{broker}, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	return newKafkaProducer(producer, broker, topic), nil
}

func newKafkaProducer(producer sarama.SyncProducer, broker, topic string) *KafkaProducer {
	return &KafkaProducer{
		producer: producer,
		broker:   broker,
		topic:    topic,
		logger:   logger.Component("kafka_producer"),
	}
}

func (k *KafkaProducer) PublishExport(ctx context.Context, event entities.ExportEvent) error {
	if k.producer == nil {
		return errors.New("kafka producer is nil")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if event.Type == "" {
		event.Type = entities.ExportEventCreated
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal export event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: k.topic,
		Key:   sarama.StringEncoder(event.ExportID),
		Value: sarama.ByteEncoder(data),
		Headers: []sarama.RecordHeader{
			{Key: []byte(eventTypeHeader), Value: []byte(event.Type)},
		},
		Timestamp: event.OccurredAt,
	}

	partition, offset, err := k.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("failed to publish export event %s: %w", event.ExportID, err)
	}

	k.logger.Debugf("Published %s for export %s (partition %d, offset %d)", event.Type, event.ExportID, partition, offset)
	return nil
}

func (k *KafkaProducer) HealthCheck(ctx context.Context) error {
	if k.producer == nil {
		return errors.New("kafka producer is nil")
	}
	return checkTopic(k.broker, k.topic)
}

func (k *KafkaProducer) Close() error {
	if k.producer == nil {
		return nil
	}
	return k.producer.Close()
}
