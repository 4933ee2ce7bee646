package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"fulfillment-service/internal/models"
	"fulfillment-service/internal/service"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// CreateShipping inserts a new IN_PROGRESS shipment and returns its id
func (s *Store) CreateShipping(
	ctx context.Context,
	shippingType models.ShippingType,
	productIDs []string,
	orderID string,
	dueDate time.Time,
) (string, error) {
	shippingID := uuid.New().String()

	query := `
		INSERT INTO shipments (shipping_id, shipping_type, product_ids, order_id, due_date, shipping_status)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := s.db.ExecContext(ctx, query,
		shippingID, shippingType, pq.StringArray(productIDs), orderID, dueDate, models.ShippingStatusInProgress)
	if err != nil {
		return "", fmt.Errorf("failed to insert shipment: %w", err)
	}
	return shippingID, nil
}

// GetShipping retrieves a shipment by id
func (s *Store) GetShipping(ctx context.Context, shippingID string) (*models.Shipment, error) {
	if _, err := uuid.Parse(shippingID); err != nil {
		return nil, fmt.Errorf("%w: %s", service.ErrNotFound, shippingID)
	}

	var shipment models.Shipment
	err := s.db.GetContext(ctx, &shipment, "SELECT * FROM shipments WHERE shipping_id = $1", shippingID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", service.ErrNotFound, shippingID)
	}
	if err != nil {
		return nil, err
	}
	return &shipment, nil
}

// UpdateShippingStatus moves an IN_PROGRESS shipment to status. A shipment
// already in a terminal status is left untouched and the ack reports zero
// rows affected.
func (s *Store) UpdateShippingStatus(ctx context.Context, shippingID string, status models.ShippingStatus) (*models.Ack, error) {
	ack := &models.Ack{ShippingID: shippingID, Status: status}

	err := s.db.GetContext(ctx, &ack.UpdatedAt, `
		UPDATE shipments SET shipping_status = $1, updated_at = NOW()
		WHERE shipping_id = $2 AND shipping_status = $3
		RETURNING updated_at`,
		status, shippingID, models.ShippingStatusInProgress)
	if errors.Is(err, sql.ErrNoRows) {
		current, gerr := s.GetShipping(ctx, shippingID)
		if gerr != nil {
			return nil, gerr
		}
		ack.Status = current.ShippingStatus
		ack.UpdatedAt = current.UpdatedAt
		return ack, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update shipment status: %w", err)
	}

	ack.RowsAffected = 1
	return ack, nil
}

// ListShipmentsByOrder retrieves shipments for an order
func (s *Store) ListShipmentsByOrder(ctx context.Context, orderID string) ([]models.Shipment, error) {
	var shipments []models.Shipment
	err := s.db.SelectContext(ctx, &shipments,
		"SELECT * FROM shipments WHERE order_id = $1 ORDER BY created_at", orderID)
	return shipments, err
}
