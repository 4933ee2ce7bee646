package models

import (
	"time"

	"github.com/lib/pq"
)

// ShippingType is a supported carrier
type ShippingType string

// Supported carriers
const (
	ShippingTypeDHL        ShippingType = "DHL"
	ShippingTypeUPS        ShippingType = "UPS"
	ShippingTypeFedEx      ShippingType = "FedEx"
	ShippingTypeSelfPickup ShippingType = "Self Pickup"
)

// ShippingStatus is the lifecycle state of a shipment
type ShippingStatus string

// Shipping statuses
const (
	ShippingStatusInProgress ShippingStatus = "IN_PROGRESS"
	ShippingStatusCompleted  ShippingStatus = "COMPLETED"
	ShippingStatusFailed     ShippingStatus = "FAILED"
)

// IsTerminal reports whether no further transitions are allowed.
func (s ShippingStatus) IsTerminal() bool {
	return s == ShippingStatusCompleted || s == ShippingStatusFailed
}

// Shipment represents a persisted shipment record
type Shipment struct {
	ShippingID     string         `db:"shipping_id" json:"shipping_id"`
	ShippingType   ShippingType   `db:"shipping_type" json:"shipping_type"`
	ProductIDs     pq.StringArray `db:"product_ids" json:"product_ids"`
	OrderID        string         `db:"order_id" json:"order_id"`
	DueDate        time.Time      `db:"due_date" json:"due_date"`
	ShippingStatus ShippingStatus `db:"shipping_status" json:"shipping_status"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
}

// Ack is the repository acknowledgment of a status write
type Ack struct {
	ShippingID   string         `json:"shipping_id"`
	Status       ShippingStatus `json:"status"`
	RowsAffected int64          `json:"rows_affected"`
	UpdatedAt    time.Time      `json:"updated_at"`
}
