package service

import (
	"context"
	"fmt"
	"time"

	"fulfillment-service/internal/models"
	"fulfillment-service/internal/shop"
	"fulfillment-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultDueDateOffset is added to the current time when an order is placed
// without a due date.
const DefaultDueDateOffset = 3 * time.Second

// Order binds a cart to a shipment request. It is meant to be placed once.
type Order struct {
	cart          *shop.Cart
	shipping      *ShippingService
	orderID       string
	dueDateOffset time.Duration
}

// NewOrder creates an order with a freshly generated id
func NewOrder(cart *shop.Cart, shipping *ShippingService) *Order {
	return NewOrderWithID(cart, shipping, uuid.New().String())
}

// NewOrderWithID creates an order with a caller supplied id
func NewOrderWithID(cart *shop.Cart, shipping *ShippingService, orderID string) *Order {
	return &Order{
		cart:          cart,
		shipping:      shipping,
		orderID:       orderID,
		dueDateOffset: DefaultDueDateOffset,
	}
}

// WithDueDateOffset changes the offset used when PlaceOrder gets a zero due date
func (o *Order) WithDueDateOffset(offset time.Duration) *Order {
	if offset > 0 {
		o.dueDateOffset = offset
	}
	return o
}

func (o *Order) OrderID() string {
	return o.orderID
}

// PlaceOrder validates the shipping request, submits the cart and requests a
// shipment for the purchased products. A zero dueDate means now plus the
// default offset. Cart errors are returned unchanged.
func (o *Order) PlaceOrder(ctx context.Context, shippingType models.ShippingType, dueDate time.Time) (string, error) {
	ctx, span := util.StartSpan(ctx, "Order.PlaceOrder")
	defer span.End()

	if dueDate.IsZero() {
		dueDate = o.shipping.now().Add(o.dueDateOffset)
	}

	// a rejected request must not take stock
	if err := o.shipping.validateShipping(shippingType, dueDate); err != nil {
		util.OrdersFailedTotal.WithLabelValues("validation").Inc()
		util.RecordError(span, err)
		return "", err
	}

	productIDs, err := o.cart.Submit()
	if err != nil {
		util.OrdersFailedTotal.WithLabelValues("cart_submit").Inc()
		util.RecordError(span, err)
		return "", err
	}

	shippingID, err := o.shipping.CreateShipping(ctx, shippingType, productIDs, o.orderID, dueDate)
	if err != nil {
		util.OrdersFailedTotal.WithLabelValues("create_shipping").Inc()
		util.RecordError(span, err)
		return "", fmt.Errorf("order %s: %w", o.orderID, err)
	}

	util.OrdersPlacedTotal.Inc()
	o.shipping.logger.Info("Order placed",
		zap.String("order_id", o.orderID),
		zap.String("shipping_id", shippingID),
		zap.Strings("product_ids", productIDs))

	return shippingID, nil
}
