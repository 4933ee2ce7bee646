package redisclient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fulfillment-service/internal/util"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// ShippingQueue is a FIFO of shipping ids stored in a Redis list.
// Ids are pushed on the head and popped from the tail.
type ShippingQueue struct {
	client      *Client
	key         string
	batchSize   int
	pollTimeout time.Duration
	logger      *zap.Logger
}

// NewShippingQueue creates a queue on the given list key
func NewShippingQueue(client *Client, key string, batchSize int, pollTimeout time.Duration) *ShippingQueue {
	return &ShippingQueue{
		client:      client,
		key:         key,
		batchSize:   batchSize,
		pollTimeout: pollTimeout,
		logger:      util.ComponentLogger("redis-queue"),
	}
}

// SendNewShipping enqueues a shipping id
func (q *ShippingQueue) SendNewShipping(ctx context.Context, shippingID string) error {
	if err := q.client.rdb.LPush(ctx, q.key, shippingID).Err(); err != nil {
		return fmt.Errorf("failed to enqueue shipping %s: %w", shippingID, err)
	}
	return nil
}

// PollShipping blocks up to pollTimeout for the first id, then drains up to
// batchSize-1 more without waiting.
func (q *ShippingQueue) PollShipping(ctx context.Context) ([]string, error) {
	first, err := q.client.rdb.BRPop(ctx, q.pollTimeout, q.key).Result()
	if errors.Is(err, redis.Nil) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to poll shipping queue: %w", err)
	}

	// BRPOP returns [key, value]
	shippingIDs := []string{first[1]}
	if q.batchSize > 1 {
		rest, err := q.client.popBatchScript.Run(ctx, q.client.rdb, []string{q.key}, q.batchSize-1).StringSlice()
		shippingIDs = q.mergeDrained(shippingIDs, rest, err)
	}

	q.recordDepth(ctx)
	return shippingIDs, nil
}

// mergeDrained appends the ids popped by the drain script. The script is
// atomic, so on error the remaining ids are still queued and only the first
// id is returned.
func (q *ShippingQueue) mergeDrained(shippingIDs, rest []string, err error) []string {
	if err != nil {
		q.logger.Error("Failed to drain shipping queue, returning first id only",
			zap.String("queue", q.key),
			zap.String("shipping_id", shippingIDs[0]),
			zap.Error(err))
		return shippingIDs
	}
	return append(shippingIDs, rest...)
}

func (q *ShippingQueue) recordDepth(ctx context.Context) {
	depth, err := q.Len(ctx)
	if err != nil {
		q.logger.Warn("Failed to read shipping queue depth", zap.String("queue", q.key), zap.Error(err))
		return
	}
	util.ShippingQueueDepth.Set(float64(depth))
}

// Len returns the number of queued ids
func (q *ShippingQueue) Len(ctx context.Context) (int64, error) {
	return q.client.rdb.LLen(ctx, q.key).Result()
}
