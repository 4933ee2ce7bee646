package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ShipmentsCreatedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shipments_created_total",
		Help: "Total number of shipments created",
	}, []string{"shipping_type"})

	ShipmentsRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shipments_rejected_total",
		Help: "Total number of rejected shipment requests",
	}, []string{"reason"})

	ShipmentTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shipment_transitions_total",
		Help: "Total number of shipment status transitions",
	}, []string{"status"})

	ShipmentProcessingErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shipment_processing_errors_total",
		Help: "Total number of shipments that failed to process",
	})

	ShippingBatchSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "shipping_batch_size",
		Help:    "Number of shipping ids returned by a single poll",
		Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
	})

	ShippingQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "shipping_queue_depth",
		Help: "Shipping ids left in the queue after the last poll",
	})

	ShippingBatchLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "shipping_batch_latency_seconds",
		Help:    "Latency of a batch sweep",
		Buckets: prometheus.DefBuckets,
	})

	OrdersPlacedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_placed_total",
		Help: "Total number of orders placed",
	})

	OrdersFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_failed_total",
		Help: "Total number of failed orders",
	}, []string{"reason"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
