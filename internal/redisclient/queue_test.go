package redisclient

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"fulfillment-service/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

var _ service.Publisher = (*ShippingQueue)(nil)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("Integration test - requires redis (set TEST_REDIS_ADDR)")
	}

	client, err := NewClient(addr, "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client
}

func TestShippingQueueFIFO(t *testing.T) {
	client := newTestClient(t)
	key := "test-shipping-queue:" + uuid.New().String()
	t.Cleanup(func() { client.rdb.Del(context.Background(), key) })

	queue := NewShippingQueue(client, key, 2, time.Second)
	ctx := context.Background()

	for _, id := range []string{"ship-1", "ship-2", "ship-3"} {
		require.NoError(t, queue.SendNewShipping(ctx, id))
	}

	ids, err := queue.PollShipping(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"ship-1", "ship-2"}, ids)

	depth, err := queue.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), depth)

	ids, err = queue.PollShipping(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"ship-3"}, ids)

	ids, err = queue.PollShipping(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids, "empty queue returns after the poll timeout")
}

func TestIdempotencyKeys(t *testing.T) {
	client := newTestClient(t)
	key := "test-order:" + uuid.New().String()
	ctx := context.Background()
	t.Cleanup(func() { client.ReleaseIdempotencyKey(ctx, key) })

	ok, err := client.ReserveIdempotencyKey(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = client.ReserveIdempotencyKey(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, client.SetIdempotencyResult(ctx, key, "ship-1", time.Minute))
	value, found, err := client.GetIdempotencyResult(ctx, key)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "ship-1", value)

	require.NoError(t, client.ReleaseIdempotencyKey(ctx, key))
	_, found, err = client.GetIdempotencyResult(ctx, key)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMergeDrainedLogsScriptError(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	queue := &ShippingQueue{key: "shipping-queue", logger: zap.New(core)}

	ids := queue.mergeDrained([]string{"ship-1"}, []string{"ship-2"}, errors.New("NOSCRIPT"))

	assert.Equal(t, []string{"ship-1"}, ids)
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "ship-1", entry.ContextMap()["shipping_id"])
	assert.Equal(t, "NOSCRIPT", entry.ContextMap()["error"])
}

func TestMergeDrainedAppendsRest(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	queue := &ShippingQueue{key: "shipping-queue", logger: zap.New(core)}

	ids := queue.mergeDrained([]string{"ship-1"}, []string{"ship-2", "ship-3"}, nil)

	assert.Equal(t, []string{"ship-1", "ship-2", "ship-3"}, ids)
	assert.Zero(t, logs.Len())
}
