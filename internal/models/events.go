package models

import "time"

// Event types
const (
	EventTypeShipmentQueued = "SHIPMENT_QUEUED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// ShipmentQueuedEvent carries a shipping id waiting for evaluation
type ShipmentQueuedEvent struct {
	BaseEvent
	ShippingID string `json:"shipping_id"`
}
