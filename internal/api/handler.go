package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"fulfillment-service/internal/models"
	"fulfillment-service/internal/service"
	"fulfillment-service/internal/shop"
	"fulfillment-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const idempotencyTTL = 24 * time.Hour

// IdempotencyStore remembers order requests by key
type IdempotencyStore interface {
	ReserveIdempotencyKey(ctx context.Context, key string, ttl time.Duration) (bool, error)
	SetIdempotencyResult(ctx context.Context, key, value string, ttl time.Duration) error
	GetIdempotencyResult(ctx context.Context, key string) (string, bool, error)
	ReleaseIdempotencyKey(ctx context.Context, key string) error
}

// ShipmentLister finds the shipments requested for an order
type ShipmentLister interface {
	ListShipmentsByOrder(ctx context.Context, orderID string) ([]models.Shipment, error)
}

// Pinger reports whether a dependency is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler contains HTTP handlers
type Handler struct {
	shipping      *service.ShippingService
	catalog       *shop.Catalog
	shipments     ShipmentLister
	idempotency   IdempotencyStore
	dependencies  []Pinger
	dueDateOffset time.Duration
	logger        *zap.Logger
}

// NewHandler creates a new HTTP handler. idempotency may be nil.
func NewHandler(
	shipping *service.ShippingService,
	catalog *shop.Catalog,
	shipments ShipmentLister,
	idempotency IdempotencyStore,
	dueDateOffset time.Duration,
	dependencies ...Pinger,
) *Handler {
	return &Handler{
		shipping:      shipping,
		catalog:       catalog,
		shipments:     shipments,
		idempotency:   idempotency,
		dependencies:  dependencies,
		dueDateOffset: dueDateOffset,
		logger:        util.ComponentLogger("api"),
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/shipping-types", h.listShippingTypes)

		v1.POST("/products", h.registerProduct)
		v1.GET("/products", h.listProducts)
		v1.POST("/products/:name/restock", h.restockProduct)
		v1.PUT("/products/:name/price", h.updateProductPrice)

		v1.POST("/orders", h.placeOrder)
		v1.GET("/orders/:id/shipments", h.listOrderShipments)

		v1.POST("/shipments", h.createShipment)
		v1.POST("/shipments/process-batch", h.processShipmentBatch)
		v1.GET("/shipments/:id", h.getShipment)
		v1.POST("/shipments/:id/process", h.processShipment)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck pings every dependency
func (h *Handler) readinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	for _, dep := range h.dependencies {
		if err := dep.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unavailable",
				"details": err.Error(),
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

func (h *Handler) listShippingTypes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"shipping_types": h.shipping.ListAvailableShippingTypes()})
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}

// writeError maps domain errors to HTTP status codes
func (h *Handler) writeError(c *gin.Context, message string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, shop.ErrInvalidArgument),
		errors.Is(err, shop.ErrEmptyCart),
		errors.Is(err, service.ErrInvalidShippingType),
		errors.Is(err, service.ErrInvalidDueDate):
		status = http.StatusBadRequest
	case errors.Is(err, shop.ErrNotFound), errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, shop.ErrInsufficientStock):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		h.logger.Error(message, zap.String("path", c.FullPath()), zap.Error(err))
	}

	c.JSON(status, gin.H{
		"error":   message,
		"details": err.Error(),
	})
}

func parseDecimal(raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, errors.Join(shop.ErrInvalidArgument, err)
	}
	return d, nil
}
