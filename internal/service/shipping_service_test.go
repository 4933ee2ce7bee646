package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"fulfillment-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestService() (*ShippingService, *mockRepository, *mockPublisher) {
	repo := newMockRepository()
	pub := newMockPublisher()
	return NewShippingService(repo, pub, WithClock(fixedClock(testNow))), repo, pub
}

func TestListAvailableShippingTypes(t *testing.T) {
	svc, _, _ := newTestService()

	types := svc.ListAvailableShippingTypes()
	require.NotEmpty(t, types)
	assert.Equal(t, models.ShippingTypeDHL, types[0])
	assert.Equal(t, models.ShippingTypeUPS, types[1])

	types[0] = "mutated"
	assert.Equal(t, models.ShippingTypeDHL, svc.ListAvailableShippingTypes()[0])
}

func TestCreateShipping(t *testing.T) {
	svc, repo, pub := newTestService()
	ctx := context.Background()

	id, err := svc.CreateShipping(ctx, models.ShippingTypeDHL, []string{"Laptop"}, "order-1", testNow.Add(48*time.Hour))
	require.NoError(t, err)

	assert.Equal(t, []string{id}, pub.sent)
	shipment, err := repo.GetShipping(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.ShippingStatusInProgress, shipment.ShippingStatus)
	assert.Equal(t, []string{"Laptop"}, []string(shipment.ProductIDs))
	assert.Equal(t, "order-1", shipment.OrderID)
}

func TestCreateShippingInvalidType(t *testing.T) {
	svc, repo, pub := newTestService()

	_, err := svc.CreateShipping(context.Background(), "Invalid Shipping Type", []string{"Mouse"}, "order-1", testNow.Add(time.Hour))

	assert.ErrorIs(t, err, ErrInvalidShippingType)
	assert.Equal(t, 0, repo.createCalls)
	assert.Empty(t, pub.sent)
}

func TestCreateShippingInvalidDueDate(t *testing.T) {
	svc, repo, pub := newTestService()

	for _, due := range []time.Time{testNow.Add(-time.Hour), testNow} {
		_, err := svc.CreateShipping(context.Background(), models.ShippingTypeUPS, []string{"Laptop"}, "order-1", due)
		assert.ErrorIs(t, err, ErrInvalidDueDate)
	}
	assert.Equal(t, 0, repo.createCalls)
	assert.Empty(t, repo.shipments)
	assert.Empty(t, pub.sent)
}

func TestCreateShippingRepositoryUnavailable(t *testing.T) {
	svc, repo, pub := newTestService()
	repo.createErr = errUnavailable

	id, err := svc.CreateShipping(context.Background(), models.ShippingTypeDHL, []string{"Laptop"}, "order-1", testNow.Add(time.Hour))

	assert.ErrorIs(t, err, errUnavailable)
	assert.Empty(t, id)
	assert.Empty(t, pub.sent)
}

func TestCreateShippingPublisherUnavailable(t *testing.T) {
	svc, repo, pub := newTestService()
	pub.sendErr = errUnavailable

	id, err := svc.CreateShipping(context.Background(), models.ShippingTypeDHL, []string{"Laptop"}, "order-1", testNow.Add(time.Hour))

	assert.ErrorIs(t, err, errUnavailable)
	assert.Empty(t, id)
	require.Len(t, repo.shipments, 1)
	for shippingID := range repo.shipments {
		assert.Equal(t, models.ShippingStatusFailed, repo.status(shippingID), "unpublished record is failed")
	}
}

func TestGetStatus(t *testing.T) {
	svc, repo, _ := newTestService()
	repo.put(&models.Shipment{ShippingID: "ship-1", ShippingStatus: models.ShippingStatusInProgress})

	status, err := NewShipment("ship-1", svc).CheckShippingStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.ShippingStatusInProgress, status)
	assert.Equal(t, 1, repo.getCalls)

	_, err = svc.GetStatus(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProcessShippingTransitions(t *testing.T) {
	tests := []struct {
		name    string
		dueDate time.Time
		want    models.ShippingStatus
	}{
		{"future due date completes", testNow.Add(5 * 24 * time.Hour), models.ShippingStatusCompleted},
		{"past due date fails", testNow.Add(-24 * time.Hour), models.ShippingStatusFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _ := newTestService()
			repo.put(&models.Shipment{
				ShippingID:     "ship-1",
				DueDate:        tt.dueDate,
				ShippingStatus: models.ShippingStatusInProgress,
			})

			result, err := svc.ProcessShipping(context.Background(), "ship-1")
			require.NoError(t, err)

			assert.Equal(t, tt.want, result.Status)
			assert.True(t, result.Transitioned)
			require.NotNil(t, result.Ack)
			assert.Equal(t, int64(1), result.Ack.RowsAffected)
			assert.Equal(t, []models.ShippingStatus{tt.want}, repo.updateCalls)

			again, err := svc.ProcessShipping(context.Background(), "ship-1")
			require.NoError(t, err)
			assert.Equal(t, tt.want, again.Status)
			assert.False(t, again.Transitioned)
			assert.Len(t, repo.updateCalls, 1, "terminal shipment is not re-evaluated")
		})
	}
}

func TestProcessShippingNotFound(t *testing.T) {
	svc, repo, _ := newTestService()

	_, err := svc.ProcessShipping(context.Background(), "missing")

	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, repo.updateCalls)
}

func TestStatusIsLazy(t *testing.T) {
	clock := testNow
	repo := newMockRepository()
	pub := newMockPublisher()
	svc := NewShippingService(repo, pub, WithClock(func() time.Time { return clock }))

	id, err := svc.CreateShipping(context.Background(), models.ShippingTypeDHL, []string{"Laptop"}, "order-1", testNow.Add(time.Minute))
	require.NoError(t, err)

	clock = testNow.Add(time.Hour)
	status, err := svc.GetStatus(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.ShippingStatusInProgress, status, "no transition before processing")

	_, err = svc.ProcessShipping(context.Background(), id)
	require.NoError(t, err)
	status, err = svc.GetStatus(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.ShippingStatusFailed, status)
}

func TestProcessShippingBatch(t *testing.T) {
	svc, repo, pub := newTestService()
	ids := []string{"ship-1", "ship-2", "ship-3"}
	for _, id := range ids {
		repo.put(&models.Shipment{
			ShippingID:     id,
			DueDate:        testNow.Add(-time.Hour),
			ShippingStatus: models.ShippingStatusInProgress,
		})
	}
	pub.queue = append(pub.queue, ids...)

	results, err := svc.ProcessShippingBatch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, pub.polls)
	require.Len(t, results, 3)
	for i, r := range results {
		assert.Equal(t, ids[i], r.ShippingID)
		require.NoError(t, r.Err)
		assert.Equal(t, models.ShippingStatusFailed, r.Result.Status)
		assert.Equal(t, models.ShippingStatusFailed, repo.status(ids[i]))
	}
	assert.Len(t, repo.updateCalls, 3)
}

func TestProcessShippingBatchIsolatesFailures(t *testing.T) {
	svc, repo, pub := newTestService()
	repo.put(&models.Shipment{ShippingID: "ok-1", DueDate: testNow.Add(time.Hour), ShippingStatus: models.ShippingStatusInProgress})
	repo.put(&models.Shipment{ShippingID: "broken", DueDate: testNow.Add(time.Hour), ShippingStatus: models.ShippingStatusInProgress})
	repo.put(&models.Shipment{ShippingID: "ok-2", DueDate: testNow.Add(time.Hour), ShippingStatus: models.ShippingStatusInProgress})
	repo.updateErr["broken"] = errUnavailable
	pub.queue = []string{"ok-1", "missing", "broken", "ok-2"}

	results, err := svc.ProcessShippingBatch(context.Background())
	require.NoError(t, err)

	require.Len(t, results, 4)
	assert.NoError(t, results[0].Err)
	assert.ErrorIs(t, results[1].Err, ErrNotFound)
	assert.ErrorIs(t, results[2].Err, errUnavailable)
	assert.Nil(t, results[2].Result)
	assert.NoError(t, results[3].Err)
	assert.Equal(t, models.ShippingStatusCompleted, repo.status("ok-2"))
}

func TestProcessShippingBatchEmptyAndPollError(t *testing.T) {
	svc, _, pub := newTestService()

	results, err := svc.ProcessShippingBatch(context.Background())
	require.NoError(t, err)
	assert.Empty(t, results)

	pub.pollErr = errUnavailable
	_, err = svc.ProcessShippingBatch(context.Background())
	assert.ErrorIs(t, err, errUnavailable)
}

func TestConcurrentProcessingIsIdempotent(t *testing.T) {
	svc, repo, _ := newTestService()
	repo.put(&models.Shipment{ShippingID: "ship-1", DueDate: testNow.Add(time.Hour), ShippingStatus: models.ShippingStatusInProgress})

	const workers = 8
	results := make([]*ProcessResult, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			result, err := svc.ProcessShipping(context.Background(), "ship-1")
			assert.NoError(t, err)
			results[i] = result
		}(i)
	}
	wg.Wait()

	var transitioned int
	for _, r := range results {
		require.NotNil(t, r)
		assert.Equal(t, models.ShippingStatusCompleted, r.Status)
		if r.Transitioned {
			transitioned++
		}
	}
	assert.Equal(t, 1, transitioned, "exactly one processor settles the shipment")
	assert.Equal(t, models.ShippingStatusCompleted, repo.status("ship-1"))
}

func TestProcessShippingLostRace(t *testing.T) {
	svc, repo, _ := newTestService()
	repo.put(&models.Shipment{ShippingID: "ship-1", DueDate: testNow.Add(-time.Hour), ShippingStatus: models.ShippingStatusInProgress})
	repo.beforeUpdate = func(shipment *models.Shipment) {
		shipment.ShippingStatus = models.ShippingStatusCompleted
	}

	result, err := svc.ProcessShipping(context.Background(), "ship-1")
	require.NoError(t, err)

	assert.False(t, result.Transitioned)
	assert.Equal(t, models.ShippingStatusCompleted, result.Status, "stored status wins")
	require.NotNil(t, result.Ack)
	assert.Equal(t, int64(0), result.Ack.RowsAffected)
	assert.Equal(t, []models.ShippingStatus{models.ShippingStatusFailed}, repo.updateCalls)
	assert.Equal(t, models.ShippingStatusCompleted, repo.status("ship-1"))
}
