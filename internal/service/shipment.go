package service

import (
	"context"

	"fulfillment-service/internal/models"
)

// Shipment is a lookup handle for a shipment record
type Shipment struct {
	ShippingID string
	shipping   *ShippingService
}

func NewShipment(shippingID string, shipping *ShippingService) *Shipment {
	return &Shipment{ShippingID: shippingID, shipping: shipping}
}

// CheckShippingStatus returns the stored status without evaluating the due date
func (s *Shipment) CheckShippingStatus(ctx context.Context) (models.ShippingStatus, error) {
	return s.shipping.GetStatus(ctx, s.ShippingID)
}
