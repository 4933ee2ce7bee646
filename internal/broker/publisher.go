package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"fulfillment-service/internal/models"
	"fulfillment-service/internal/util"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type eventWriter interface {
	PublishEvent(ctx context.Context, key string, event interface{}) error
}

type batchReader interface {
	ConsumeBatch(ctx context.Context, maxMessages int) ([]kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

// ShippingPublisher queues shipping ids on a Kafka topic
type ShippingPublisher struct {
	producer    eventWriter
	consumer    batchReader
	batchSize   int
	pollTimeout time.Duration
	logger      *zap.Logger
}

// NewShippingPublisher creates a new shipping publisher
func NewShippingPublisher(producer *Producer, consumer *Consumer, batchSize int, pollTimeout time.Duration) *ShippingPublisher {
	return newShippingPublisher(producer, consumer, batchSize, pollTimeout)
}

func newShippingPublisher(producer eventWriter, consumer batchReader, batchSize int, pollTimeout time.Duration) *ShippingPublisher {
	return &ShippingPublisher{
		producer:    producer,
		consumer:    consumer,
		batchSize:   batchSize,
		pollTimeout: pollTimeout,
		logger:      util.ComponentLogger("shipping-publisher"),
	}
}

// SendNewShipping publishes a ShipmentQueued event keyed by shipping id
func (p *ShippingPublisher) SendNewShipping(ctx context.Context, shippingID string) error {
	event := &models.ShipmentQueuedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeShipmentQueued,
			Timestamp: time.Now(),
		},
		ShippingID: shippingID,
	}
	return p.producer.PublishEvent(ctx, shippingID, event)
}

// PollShipping waits at most pollTimeout for up to batchSize queued ids.
// Consumed messages are committed before returning; malformed messages are
// committed and skipped.
func (p *ShippingPublisher) PollShipping(ctx context.Context) ([]string, error) {
	pollCtx, cancel := context.WithTimeout(ctx, p.pollTimeout)
	defer cancel()

	msgs, err := p.consumer.ConsumeBatch(pollCtx, p.batchSize)
	if err != nil {
		return nil, fmt.Errorf("failed to consume shipping batch: %w", err)
	}

	shippingIDs := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		shippingID, err := decodeShippingID(msg)
		if err != nil {
			p.logger.Warn("Skipping malformed shipping message",
				zap.Int64("offset", msg.Offset),
				zap.Error(err))
			continue
		}
		shippingIDs = append(shippingIDs, shippingID)
	}

	if err := p.consumer.CommitMessages(ctx, msgs...); err != nil {
		return nil, fmt.Errorf("failed to commit shipping batch: %w", err)
	}

	return shippingIDs, nil
}

func decodeShippingID(msg kafka.Message) (string, error) {
	var event models.ShipmentQueuedEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return "", fmt.Errorf("failed to unmarshal shipping event: %w", err)
	}
	if event.EventType != models.EventTypeShipmentQueued {
		return "", fmt.Errorf("unexpected event type: %s", event.EventType)
	}
	if event.ShippingID == "" {
		return "", fmt.Errorf("shipping event has no shipping id")
	}
	return event.ShippingID, nil
}
