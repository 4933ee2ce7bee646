package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"fulfillment-service/internal/models"
	"fulfillment-service/internal/service"

	"github.com/google/uuid"
)

// MemoryStore is an in-process shipment repository with the same
// compare-and-set semantics as Store.
type MemoryStore struct {
	mu        sync.RWMutex
	shipments map[string]models.Shipment
	now       func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		shipments: make(map[string]models.Shipment),
		now:       time.Now,
	}
}

func (m *MemoryStore) CreateShipping(
	ctx context.Context,
	shippingType models.ShippingType,
	productIDs []string,
	orderID string,
	dueDate time.Time,
) (string, error) {
	now := m.now().UTC()
	shipment := models.Shipment{
		ShippingID:     uuid.New().String(),
		ShippingType:   shippingType,
		ProductIDs:     append([]string(nil), productIDs...),
		OrderID:        orderID,
		DueDate:        dueDate,
		ShippingStatus: models.ShippingStatusInProgress,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	m.mu.Lock()
	m.shipments[shipment.ShippingID] = shipment
	m.mu.Unlock()

	return shipment.ShippingID, nil
}

func (m *MemoryStore) GetShipping(ctx context.Context, shippingID string) (*models.Shipment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	shipment, ok := m.shipments[shippingID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", service.ErrNotFound, shippingID)
	}
	shipment.ProductIDs = append([]string(nil), shipment.ProductIDs...)
	return &shipment, nil
}

func (m *MemoryStore) UpdateShippingStatus(ctx context.Context, shippingID string, status models.ShippingStatus) (*models.Ack, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	shipment, ok := m.shipments[shippingID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", service.ErrNotFound, shippingID)
	}
	if shipment.ShippingStatus != models.ShippingStatusInProgress {
		return &models.Ack{
			ShippingID: shippingID,
			Status:     shipment.ShippingStatus,
			UpdatedAt:  shipment.UpdatedAt,
		}, nil
	}

	shipment.ShippingStatus = status
	shipment.UpdatedAt = m.now().UTC()
	m.shipments[shippingID] = shipment

	return &models.Ack{
		ShippingID:   shippingID,
		Status:       status,
		RowsAffected: 1,
		UpdatedAt:    shipment.UpdatedAt,
	}, nil
}

func (m *MemoryStore) ListShipmentsByOrder(ctx context.Context, orderID string) ([]models.Shipment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var shipments []models.Shipment
	for _, shipment := range m.shipments {
		if shipment.OrderID == orderID {
			shipments = append(shipments, shipment)
		}
	}
	sort.Slice(shipments, func(i, j int) bool {
		return shipments[i].CreatedAt.Before(shipments[j].CreatedAt)
	})
	return shipments, nil
}

func (m *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

func (m *MemoryStore) Close() error {
	return nil
}
