package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fulfillment-service/internal/models"
	"fulfillment-service/internal/util"

	"go.uber.org/zap"
)

var (
	ErrInvalidShippingType = errors.New("shipping type is not available")
	ErrInvalidDueDate      = errors.New("shipping due datetime must be greater than datetime now")
	ErrNotFound            = errors.New("shipment not found")
)

// Repository is the durable store of shipment records
type Repository interface {
	CreateShipping(ctx context.Context, shippingType models.ShippingType, productIDs []string, orderID string, dueDate time.Time) (string, error)
	GetShipping(ctx context.Context, shippingID string) (*models.Shipment, error)
	UpdateShippingStatus(ctx context.Context, shippingID string, status models.ShippingStatus) (*models.Ack, error)
}

// Publisher is the FIFO queue of shipping ids awaiting evaluation
type Publisher interface {
	SendNewShipping(ctx context.Context, shippingID string) error
	PollShipping(ctx context.Context) ([]string, error)
}

var availableShippingTypes = []models.ShippingType{
	models.ShippingTypeDHL,
	models.ShippingTypeUPS,
	models.ShippingTypeFedEx,
	models.ShippingTypeSelfPickup,
}

// ListAvailableShippingTypes returns the supported carriers in catalog order
func ListAvailableShippingTypes() []models.ShippingType {
	types := make([]models.ShippingType, len(availableShippingTypes))
	copy(types, availableShippingTypes)
	return types
}

// IsAvailableShippingType reports whether a carrier is supported
func IsAvailableShippingType(shippingType models.ShippingType) bool {
	for _, t := range availableShippingTypes {
		if t == shippingType {
			return true
		}
	}
	return false
}

// ProcessResult is the outcome of evaluating one shipment
type ProcessResult struct {
	ShippingID   string                `json:"shipping_id"`
	Status       models.ShippingStatus `json:"status"`
	Transitioned bool                  `json:"transitioned"`
	Ack          *models.Ack           `json:"ack,omitempty"`
}

// BatchResult records the outcome for one id of a batch sweep
type BatchResult struct {
	ShippingID string
	Result     *ProcessResult
	Err        error
}

// Option configures a ShippingService
type Option func(*ShippingService)

// WithClock overrides the time source used for due date checks
func WithClock(now func() time.Time) Option {
	return func(s *ShippingService) {
		s.now = now
	}
}

// ShippingService drives shipments through IN_PROGRESS -> COMPLETED | FAILED.
// Transitions happen only when a shipment is processed; there is no timer.
type ShippingService struct {
	repository Repository
	publisher  Publisher
	now        func() time.Time
	logger     *zap.Logger
}

// NewShippingService creates a new shipping service
func NewShippingService(repository Repository, publisher Publisher, opts ...Option) *ShippingService {
	s := &ShippingService{
		repository: repository,
		publisher:  publisher,
		now:        time.Now,
		logger:     util.ComponentLogger("shipping"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListAvailableShippingTypes returns the supported carriers
func (s *ShippingService) ListAvailableShippingTypes() []models.ShippingType {
	return ListAvailableShippingTypes()
}

// CreateShipping records a new IN_PROGRESS shipment and queues its id
func (s *ShippingService) CreateShipping(
	ctx context.Context,
	shippingType models.ShippingType,
	productIDs []string,
	orderID string,
	dueDate time.Time,
) (string, error) {
	ctx, span := util.StartSpan(ctx, "ShippingService.CreateShipping")
	defer span.End()

	if err := s.validateShipping(shippingType, dueDate); err != nil {
		return "", err
	}

	shippingID, err := s.repository.CreateShipping(ctx, shippingType, productIDs, orderID, dueDate.UTC())
	if err != nil {
		util.RecordError(span, err)
		return "", fmt.Errorf("failed to create shipping record: %w", err)
	}

	if err := s.publisher.SendNewShipping(ctx, shippingID); err != nil {
		util.RecordError(span, err)
		s.logger.Error("Failed to publish shipping, marking shipment failed",
			zap.String("shipping_id", shippingID),
			zap.Error(err))

		if _, cerr := s.repository.UpdateShippingStatus(ctx, shippingID, models.ShippingStatusFailed); cerr != nil {
			s.logger.Error("Failed to compensate unpublished shipping",
				zap.String("shipping_id", shippingID),
				zap.Error(cerr))
		}
		return "", fmt.Errorf("failed to publish shipping %s: %w", shippingID, err)
	}

	util.ShipmentsCreatedTotal.WithLabelValues(string(shippingType)).Inc()
	s.logger.Info("Shipping created",
		zap.String("shipping_id", shippingID),
		zap.String("order_id", orderID),
		zap.String("shipping_type", string(shippingType)),
		zap.Time("due_date", dueDate))

	return shippingID, nil
}

func (s *ShippingService) validateShipping(shippingType models.ShippingType, dueDate time.Time) error {
	if !IsAvailableShippingType(shippingType) {
		util.ShipmentsRejectedTotal.WithLabelValues("invalid_shipping_type").Inc()
		return fmt.Errorf("%w: %q", ErrInvalidShippingType, shippingType)
	}
	if !dueDate.After(s.now()) {
		util.ShipmentsRejectedTotal.WithLabelValues("invalid_due_date").Inc()
		return fmt.Errorf("%w: due_date=%s", ErrInvalidDueDate, dueDate.Format(time.RFC3339))
	}
	return nil
}

// GetStatus returns the stored status of a shipment
func (s *ShippingService) GetStatus(ctx context.Context, shippingID string) (models.ShippingStatus, error) {
	ctx, span := util.StartSpan(ctx, "ShippingService.GetStatus", shippingID)
	defer span.End()

	shipment, err := s.repository.GetShipping(ctx, shippingID)
	if err != nil {
		util.RecordError(span, err)
		return "", err
	}
	return shipment.ShippingStatus, nil
}

// GetShipping returns the stored shipment record
func (s *ShippingService) GetShipping(ctx context.Context, shippingID string) (*models.Shipment, error) {
	return s.repository.GetShipping(ctx, shippingID)
}

// ProcessShipping evaluates an IN_PROGRESS shipment against its due date.
// Terminal shipments are returned unchanged.
func (s *ShippingService) ProcessShipping(ctx context.Context, shippingID string) (*ProcessResult, error) {
	ctx, span := util.StartSpan(ctx, "ShippingService.ProcessShipping", shippingID)
	defer span.End()

	shipment, err := s.repository.GetShipping(ctx, shippingID)
	if err != nil {
		util.RecordError(span, err)
		return nil, err
	}

	if shipment.ShippingStatus.IsTerminal() {
		s.logger.Debug("Shipping already terminal",
			zap.String("shipping_id", shippingID),
			zap.String("status", string(shipment.ShippingStatus)))
		return &ProcessResult{
			ShippingID: shippingID,
			Status:     shipment.ShippingStatus,
		}, nil
	}

	next := models.ShippingStatusCompleted
	if shipment.DueDate.Before(s.now()) {
		next = models.ShippingStatusFailed
	}

	ack, err := s.repository.UpdateShippingStatus(ctx, shippingID, next)
	if err != nil {
		util.RecordError(span, err)
		return nil, fmt.Errorf("failed to update shipping %s status: %w", shippingID, err)
	}

	if ack != nil && ack.RowsAffected == 0 {
		// another processor won the transition
		return &ProcessResult{ShippingID: shippingID, Status: ack.Status, Ack: ack}, nil
	}

	util.ShipmentTransitionsTotal.WithLabelValues(string(next)).Inc()
	s.logger.Info("Shipping processed",
		zap.String("shipping_id", shippingID),
		zap.String("status", string(next)),
		zap.Time("due_date", shipment.DueDate))

	return &ProcessResult{
		ShippingID:   shippingID,
		Status:       next,
		Transitioned: true,
		Ack:          ack,
	}, nil
}

// ProcessShippingBatch polls the publisher once and processes every returned
// id in order. Per-id failures are recorded in the results; only a failed
// poll is returned as an error.
func (s *ShippingService) ProcessShippingBatch(ctx context.Context) ([]BatchResult, error) {
	ctx, span := util.StartSpan(ctx, "ShippingService.ProcessShippingBatch")
	defer span.End()

	start := time.Now()
	defer func() {
		util.ShippingBatchLatency.Observe(time.Since(start).Seconds())
	}()

	shippingIDs, err := s.publisher.PollShipping(ctx)
	if err != nil {
		util.RecordError(span, err)
		return nil, fmt.Errorf("failed to poll shipping queue: %w", err)
	}
	util.ShippingBatchSize.Observe(float64(len(shippingIDs)))

	results := make([]BatchResult, 0, len(shippingIDs))
	for _, shippingID := range shippingIDs {
		result, err := s.ProcessShipping(ctx, shippingID)
		if err != nil {
			util.ShipmentProcessingErrorsTotal.Inc()
			s.logger.Error("Failed to process shipping",
				zap.String("shipping_id", shippingID),
				zap.Error(err))
		}
		results = append(results, BatchResult{
			ShippingID: shippingID,
			Result:     result,
			Err:        err,
		})
	}

	if len(shippingIDs) > 0 {
		s.logger.Info("Shipping batch processed", zap.Int("count", len(shippingIDs)))
	}
	return results, nil
}
