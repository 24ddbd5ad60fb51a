package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/IBM/sarama"
	"github.com/k-shtanenko/bike-rental-dashboard/internal/domain/entities"
	"github.com/k-shtanenko/bike-rental-dashboard/internal/domain/ports"
	"github.com/k-shtanenko/bike-rental-dashboard/internal/pkg/logger"
)

var retryBackoff = 5 * time.Second

// KafkaConsumer listens for dataset refresh events.
type KafkaConsumer struct {
	consumer sarama.ConsumerGroup
	broker   string
	topic    string
	groupID  string
	logger   logger.Logger
	wg       sync.WaitGroup
	cancel   context.CancelFunc
}

type consumerHandler struct {
	handler ports.DatasetEventHandler
	logger  logger.Logger
}

func NewKafkaConsumer(broker, topic, groupID string) (*KafkaConsumer, error) {
	config := baseConfig()
	config.Consumer.Return.Errors = true
	config.Consumer.Offsets.Initial = sarama.OffsetNewest
	config.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRange()}
	config.Consumer.MaxProcessingTime = 30 * time.Second

	consumer, err := sarama.NewConsumerGroup([]string{broker}, groupID, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka consumer: %w", err)
	}

	return &KafkaConsumer{
		consumer: consumer,
		broker:   broker,
		topic:    topic,
		groupID:  groupID,
		logger:   logger.Component("kafka_consumer"),
	}, nil
}

// Consume starts the consumer loop in the background and returns at once.
// Close stops it.
func (k *KafkaConsumer) Consume(ctx context.Context, handler ports.DatasetEventHandler) error {
	if handler == nil {
		return errors.New("dataset event handler is nil")
	}
	k.logger.Infof("Starting Kafka consumer for topic: %s, group: %s", k.topic, k.groupID)

	ctx, cancel := context.WithCancel(ctx)
	k.cancel = cancel

	h := &consumerHandler{
		handler: handler,
		logger:  k.logger.WithField("topic", k.topic),
	}

	k.wg.Add(2)
	go func() {
		defer k.wg.Done()
		for {
			if err := k.consumer.Consume(ctx, []string{k.topic}, h); err != nil {
				if errors.Is(err, sarama.ErrClosedConsumerGroup) {
					return
				}
				k.logger.Errorf("Error consuming from Kafka: %v", err)
				select {
				case <-ctx.Done():
				case <-time.After(retryBackoff):
				}
			}
			if ctx.Err() != nil {
				k.logger.Info("Kafka consumer context cancelled, stopping...")
				return
			}
		}
	}()

	go func() {
		defer k.wg.Done()
		for err := range k.consumer.Errors() {
			k.logger.Errorf("Kafka consumer error: %v", err)
		}
	}()

	return nil
}

func (k *KafkaConsumer) Close() error {
	k.logger.Info("Closing Kafka consumer...")

	if k.cancel != nil {
		k.cancel()
	}

	// Closing the group also closes Errors(), which ends the drain goroutine.
	err := k.consumer.Close()
	k.wg.Wait()
	if err != nil {
		return fmt.Errorf("failed to close Kafka consumer: %w", err)
	}

	k.logger.Info("Kafka consumer closed")
	return nil
}

func (k *KafkaConsumer) HealthCheck(ctx context.Context) error {
	return checkTopic(k.broker, k.topic)
}

func (h *consumerHandler) Setup(session sarama.ConsumerGroupSession) error {
	h.logger.Debugf("Consumer session %s started (generation %d)", session.MemberID(), session.GenerationID())
	return nil
}

func (h *consumerHandler) Cleanup(sarama.ConsumerGroupSession) error {
	h.logger.Debug("Consumer session cleanup")
	return nil
}

// ConsumeClaim stops at the first event the handler fails on. Ending the
// claim ends the session, and the next one resumes from the last committed
// offset, so the failed event is read again.
func (h *consumerHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case <-session.Context().Done():
			return nil
		case message, ok := <-claim.Messages():
			if !ok {
				return nil
			}
			if err := h.handleMessage(session.Context(), message); err != nil {
				select {
				case <-session.Context().Done():
				case <-time.After(retryBackoff):
				}
				return err
			}
			session.MarkMessage(message, "")
		}
	}
}

// handleMessage returns an error only when the handler fails. Malformed
// events are logged and skipped.
func (h *consumerHandler) handleMessage(ctx context.Context, message *sarama.ConsumerMessage) error {
	event, err := decodeDatasetEvent(message)
	if err != nil {
		h.logger.Warnf("Skipping malformed dataset event at offset %d: %v", message.Offset, err)
		return nil
	}

	if err := h.handler(ctx, event); err != nil {
		h.logger.Errorf("Failed to handle %s event at offset %d: %v", event.Type, message.Offset, err)
		return fmt.Errorf("failed to handle %s event: %w", event.Type, err)
	}

	h.logger.Debugf("Processed %s event (partition %d, offset %d)", event.Type, message.Partition, message.Offset)
	return nil
}

func decodeDatasetEvent(message *sarama.ConsumerMessage) (entities.DatasetEvent, error) {
	var event entities.DatasetEvent
	if err := json.Unmarshal(message.Value, &event); err != nil {
		return event, fmt.Errorf("failed to unmarshal Kafka message: %w", err)
	}

	if event.Type == "" {
		event.Type = entities.DatasetEventType(headerValue(message.Headers, eventTypeHeader))
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = message.Timestamp
	}

	if err := event.Validate(); err != nil {
		return event, err
	}
	return event, nil
}
