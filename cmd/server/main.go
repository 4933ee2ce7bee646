package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fulfillment-service/config"
	"fulfillment-service/internal/api"
	"fulfillment-service/internal/broker"
	"fulfillment-service/internal/redisclient"
	"fulfillment-service/internal/service"
	"fulfillment-service/internal/shop"
	"fulfillment-service/internal/store"
	"fulfillment-service/internal/util"
	"fulfillment-service/internal/worker"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type repository interface {
	service.Repository
	api.ShipmentLister
	api.Pinger
	io.Closer
}

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting fulfillment service")

	tp, err := util.InitTracer(cfg.Observ.JaegerEndpoint)
	if err != nil {
		logger.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			logger.Error("Error shutting down tracer", zap.Error(err))
		}
	}()

	repo, err := openRepository(cfg)
	if err != nil {
		logger.Fatal("Failed to open shipment store", zap.Error(err))
	}
	defer repo.Close()
	logger.Info("Shipment store ready", zap.String("backend", cfg.Database.Backend))

	redisClient, err := redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	logger.Info("Redis connected")

	var publisher service.Publisher
	switch cfg.Shipping.QueueBackend {
	case "redis":
		publisher = redisclient.NewShippingQueue(redisClient, cfg.Redis.QueueKey,
			cfg.Shipping.BatchSize, cfg.Shipping.PollTimeout)
	case "kafka":
		producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicShipping)
		defer producer.Close()
		consumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicShipping, cfg.Kafka.ConsumerGroup)
		defer consumer.Close()
		publisher = broker.NewShippingPublisher(producer, consumer,
			cfg.Shipping.BatchSize, cfg.Shipping.PollTimeout)
	default:
		logger.Fatal("Unknown queue backend", zap.String("backend", cfg.Shipping.QueueBackend))
	}
	logger.Info("Shipping queue initialized", zap.String("backend", cfg.Shipping.QueueBackend))

	shippingService := service.NewShippingService(repo, publisher)
	catalog := shop.NewCatalog()

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	sweepWorker := worker.NewSweepWorker(shippingService, cfg.Shipping.SweepInterval)
	go func() {
		if err := sweepWorker.Start(workerCtx); err != nil {
			logger.Error("Sweep worker error", zap.Error(err))
		}
	}()

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	handler := api.NewHandler(shippingService, catalog, repo, redisClient,
		cfg.Shipping.DefaultDueDateOffset, repo, redisClient)
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Info("Starting HTTP server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	workerCancel()
	sweepWorker.Stop()

	logger.Info("Server exited")
}

func openRepository(cfg *config.Config) (repository, error) {
	switch cfg.Database.Backend {
	case "memory":
		return store.NewMemoryStore(), nil
	case "postgres":
		db, err := store.NewStore(cfg.Database.URL)
		if err != nil {
			return nil, err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to migrate: %w", err)
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Database.Backend)
	}
}
