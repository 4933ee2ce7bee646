package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"fulfillment-service/internal/models"

	"github.com/google/uuid"
)

// mockRepository keeps shipments in memory and counts calls
type mockRepository struct {
	mu        sync.Mutex
	shipments map[string]*models.Shipment

	createCalls int
	getCalls    int
	updateCalls []models.ShippingStatus

	createErr error
	updateErr map[string]error

	// beforeUpdate runs under the lock ahead of the compare-and-set, letting a
	// test settle the shipment as a competing processor would
	beforeUpdate func(shipment *models.Shipment)
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		shipments: make(map[string]*models.Shipment),
		updateErr: make(map[string]error),
	}
}

func (m *mockRepository) CreateShipping(ctx context.Context, shippingType models.ShippingType, productIDs []string, orderID string, dueDate time.Time) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.createCalls++
	if m.createErr != nil {
		return "", m.createErr
	}

	id := uuid.New().String()
	m.shipments[id] = &models.Shipment{
		ShippingID:     id,
		ShippingType:   shippingType,
		ProductIDs:     append([]string(nil), productIDs...),
		OrderID:        orderID,
		DueDate:        dueDate,
		ShippingStatus: models.ShippingStatusInProgress,
	}
	return id, nil
}

func (m *mockRepository) GetShipping(ctx context.Context, shippingID string) (*models.Shipment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.getCalls++
	shipment, ok := m.shipments[shippingID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, shippingID)
	}
	copied := *shipment
	return &copied, nil
}

func (m *mockRepository) UpdateShippingStatus(ctx context.Context, shippingID string, status models.ShippingStatus) (*models.Ack, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.updateCalls = append(m.updateCalls, status)
	if err := m.updateErr[shippingID]; err != nil {
		return nil, err
	}
	shipment, ok := m.shipments[shippingID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, shippingID)
	}
	if m.beforeUpdate != nil {
		m.beforeUpdate(shipment)
	}
	if shipment.ShippingStatus != models.ShippingStatusInProgress {
		return &models.Ack{ShippingID: shippingID, Status: shipment.ShippingStatus}, nil
	}
	shipment.ShippingStatus = status
	return &models.Ack{ShippingID: shippingID, Status: status, RowsAffected: 1}, nil
}

func (m *mockRepository) put(shipment *models.Shipment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shipments[shipment.ShippingID] = shipment
}

func (m *mockRepository) status(shippingID string) models.ShippingStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.shipments[shippingID].ShippingStatus
}

// mockPublisher is a FIFO of shipping ids
type mockPublisher struct {
	mu        sync.Mutex
	queue     []string
	sent      []string
	polls     int
	sendErr   error
	pollErr   error
	batchSize int
}

func newMockPublisher() *mockPublisher {
	return &mockPublisher{batchSize: 10}
}

func (m *mockPublisher) SendNewShipping(ctx context.Context, shippingID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, shippingID)
	m.queue = append(m.queue, shippingID)
	return nil
}

func (m *mockPublisher) PollShipping(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.polls++
	if m.pollErr != nil {
		return nil, m.pollErr
	}
	n := len(m.queue)
	if n > m.batchSize {
		n = m.batchSize
	}
	batch := append([]string(nil), m.queue[:n]...)
	m.queue = m.queue[n:]
	return batch, nil
}

var errUnavailable = errors.New("service unavailable")

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
