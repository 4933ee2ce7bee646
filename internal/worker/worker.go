package worker

import (
	"context"
	"sync"
	"time"

	"fulfillment-service/internal/service"
	"fulfillment-service/internal/util"

	"go.uber.org/zap"
)

// BatchProcessor runs one batch sweep
type BatchProcessor interface {
	ProcessShippingBatch(ctx context.Context) ([]service.BatchResult, error)
}

// SweepWorker periodically drains the shipping queue
type SweepWorker struct {
	processor BatchProcessor
	interval  time.Duration
	logger    *zap.Logger

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewSweepWorker creates a new sweep worker
func NewSweepWorker(processor BatchProcessor, interval time.Duration) *SweepWorker {
	return &SweepWorker{
		processor: processor,
		interval:  interval,
		logger:    util.ComponentLogger("sweep-worker"),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Start runs sweeps until ctx is cancelled or Stop is called. A sweep that
// received any ids is followed immediately by another one; an empty sweep
// waits for the interval.
func (w *SweepWorker) Start(ctx context.Context) error {
	defer close(w.done)
	w.logger.Info("Starting sweep worker", zap.Duration("interval", w.interval))

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Sweep worker context cancelled, stopping...")
			return ctx.Err()
		case <-w.stop:
			return nil
		case <-timer.C:
			next := w.interval
			if processed := w.Sweep(ctx); processed > 0 {
				next = 0
			}
			timer.Reset(next)
		}
	}
}

// Sweep runs a single batch and returns how many ids it received
func (w *SweepWorker) Sweep(ctx context.Context) int {
	results, err := w.processor.ProcessShippingBatch(ctx)
	if err != nil {
		if ctx.Err() == nil {
			w.logger.Error("Shipping batch failed", zap.Error(err))
		}
		return 0
	}

	var failed int
	for _, r := range results {
		if r.Err != nil {
			failed++
			continue
		}
		w.logger.Debug("Shipping evaluated",
			zap.String("shipping_id", r.ShippingID),
			zap.String("status", string(r.Result.Status)),
			zap.Bool("transitioned", r.Result.Transitioned))
	}

	if failed > 0 {
		w.logger.Warn("Shipping batch finished with failures",
			zap.Int("count", len(results)),
			zap.Int("failed", failed))
	}
	return len(results)
}

// Stop stops the worker and waits for the current sweep to finish
func (w *SweepWorker) Stop() {
	w.logger.Info("Stopping sweep worker...")
	w.stopOnce.Do(func() { close(w.stop) })
	<-w.done
}
