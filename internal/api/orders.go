package api

import (
	"context"
	"net/http"
	"time"

	"fulfillment-service/internal/models"
	"fulfillment-service/internal/service"
	"fulfillment-service/internal/shop"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PlaceOrderRequest represents a request to place an order
type PlaceOrderRequest struct {
	Items          []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
	ShippingType   string             `json:"shipping_type" binding:"required"`
	DueDate        *time.Time         `json:"due_date,omitempty"`
	IdempotencyKey string             `json:"idempotency_key,omitempty"`
}

// OrderItemRequest represents an item in an order
type OrderItemRequest struct {
	Name     string `json:"name" binding:"required"`
	Quantity int    `json:"quantity" binding:"required"`
}

// PlaceOrderResponse represents the response after placing an order
type PlaceOrderResponse struct {
	OrderID    string                `json:"order_id,omitempty"`
	ShippingID string                `json:"shipping_id"`
	Status     models.ShippingStatus `json:"status"`
	Total      string                `json:"total,omitempty"`
}

// placeOrder builds a cart from the catalog and places it
func (h *Handler) placeOrder(c *gin.Context) {
	var req PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	if req.IdempotencyKey == "" {
		req.IdempotencyKey = c.GetHeader("Idempotency-Key")
	}

	ctx := c.Request.Context()
	if h.idempotency != nil && req.IdempotencyKey != "" {
		reserved, err := h.idempotency.ReserveIdempotencyKey(ctx, req.IdempotencyKey, idempotencyTTL)
		if err != nil {
			h.writeError(c, "Failed to check idempotency", err)
			return
		}
		if !reserved {
			h.replayOrder(c, req.IdempotencyKey)
			return
		}
	}

	resp, err := h.submitOrder(ctx, &req)
	if err != nil {
		h.releaseKey(ctx, req.IdempotencyKey)
		h.writeError(c, "Failed to place order", err)
		return
	}

	if h.idempotency != nil && req.IdempotencyKey != "" {
		if err := h.idempotency.SetIdempotencyResult(ctx, req.IdempotencyKey, resp.ShippingID, idempotencyTTL); err != nil {
			h.logger.Error("Failed to store idempotency result",
				zap.String("idempotency_key", req.IdempotencyKey),
				zap.Error(err))
		}
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *Handler) submitOrder(ctx context.Context, req *PlaceOrderRequest) (*PlaceOrderResponse, error) {
	cart := shop.NewCart()
	for _, line := range req.Items {
		item, err := h.catalog.Get(line.Name)
		if err != nil {
			return nil, err
		}
		if err := cart.Add(item, line.Quantity); err != nil {
			return nil, err
		}
	}
	total := cart.Total()

	var dueDate time.Time
	if req.DueDate != nil {
		dueDate = *req.DueDate
	}

	order := service.NewOrder(cart, h.shipping).WithDueDateOffset(h.dueDateOffset)
	shippingID, err := order.PlaceOrder(ctx, models.ShippingType(req.ShippingType), dueDate)
	if err != nil {
		return nil, err
	}

	return &PlaceOrderResponse{
		OrderID:    order.OrderID(),
		ShippingID: shippingID,
		Status:     models.ShippingStatusInProgress,
		Total:      total.String(),
	}, nil
}

// replayOrder answers a repeated request with the stored shipping id
func (h *Handler) replayOrder(c *gin.Context, key string) {
	shippingID, found, err := h.idempotency.GetIdempotencyResult(c.Request.Context(), key)
	if err != nil {
		h.writeError(c, "Failed to check idempotency", err)
		return
	}
	if !found || shippingID == "" {
		c.JSON(http.StatusConflict, gin.H{"error": "Order request is already in progress"})
		return
	}

	h.logger.Info("Duplicate order request detected",
		zap.String("idempotency_key", key),
		zap.String("shipping_id", shippingID))

	status, err := h.shipping.GetStatus(c.Request.Context(), shippingID)
	if err != nil {
		h.writeError(c, "Failed to load shipment", err)
		return
	}
	c.JSON(http.StatusOK, PlaceOrderResponse{ShippingID: shippingID, Status: status})
}

func (h *Handler) releaseKey(ctx context.Context, key string) {
	if h.idempotency == nil || key == "" {
		return
	}
	if err := h.idempotency.ReleaseIdempotencyKey(ctx, key); err != nil {
		h.logger.Error("Failed to release idempotency key",
			zap.String("idempotency_key", key),
			zap.Error(err))
	}
}

// CreateShipmentRequest requests a shipment directly, bypassing the cart
type CreateShipmentRequest struct {
	ShippingType string    `json:"shipping_type" binding:"required"`
	ProductIDs   []string  `json:"product_ids" binding:"required,min=1"`
	OrderID      string    `json:"order_id"`
	DueDate      time.Time `json:"due_date" binding:"required"`
}

func (h *Handler) createShipment(c *gin.Context) {
	var req CreateShipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}
	if req.OrderID == "" {
		req.OrderID = uuid.New().String()
	}

	shippingID, err := h.shipping.CreateShipping(c.Request.Context(),
		models.ShippingType(req.ShippingType), req.ProductIDs, req.OrderID, req.DueDate)
	if err != nil {
		h.writeError(c, "Failed to create shipment", err)
		return
	}

	c.JSON(http.StatusCreated, PlaceOrderResponse{
		OrderID:    req.OrderID,
		ShippingID: shippingID,
		Status:     models.ShippingStatusInProgress,
	})
}
