package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/geofence-microservice/internal/config"
	"github.com/geofence-microservice/internal/domain"
	"github.com/geofence-microservice/internal/index"
	"github.com/geofence-microservice/internal/pkg/logger"
	"github.com/geofence-microservice/internal/repository/cache"
	"github.com/geofence-microservice/internal/repository/geojson"
	redisRepo "github.com/geofence-microservice/internal/repository/redis"
	"github.com/geofence-microservice/internal/usecase"
	"github.com/geofence-microservice/internal/worker"
	"github.com/geofence-microservice/internal/worker/geofence"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Check if worker is enabled
	if !cfg.Worker.Enabled {
		fmt.Println("Worker is disabled in configuration. Set WORKER_ENABLED=true to enable.")
		os.Exit(0)
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level, "geofence-worker")
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting Geofence Resolve Worker")
	log.Info("Configuration loaded",
		zap.String("consumer_group", cfg.Worker.ConsumerGroup),
		zap.Int("batch_size", cfg.Worker.BatchSize),
		zap.String("geojson_path", cfg.Data.GeoJSONPath))

	// 3. Load region store (the worker resolves from the same dataset
	// as the API)
	regionRepo, err := geojson.New(
		cfg.Data.GeoJSONPath,
		func(regions []*domain.Region) geojson.RegionIndex { return index.Build(regions) },
		log,
	)
	if err != nil {
		log.Fatal("Failed to load region store", zap.Error(err))
	}

	// 4. Connect to Redis
	redisClient, err := cache.NewRedis(&cfg.Redis, log)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("Failed to close Redis connection", zap.Error(err))
		}
	}()

	// 5. Initialize repositories and use cases
	streamRepo := redisRepo.NewStreamRepository(redisClient.Client(), log)

	locateUC := usecase.NewLocateUseCase(
		regionRepo,
		cache.NewCacheRepository(redisClient),
		log,
		cfg.Cache.LookupCacheTTL,
	)

	// 6. Initialize workers
	resolveWorker := geofence.NewResolveWorker(
		streamRepo,
		locateUC,
		cfg.Worker.ConsumerGroup,
		cfg.Worker.BatchSize,
		log,
	)

	// 7. Create worker manager and register workers
	workerManager := worker.NewWorkerManager(log)
	workerManager.Register(resolveWorker)

	// 8. Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := workerManager.Start(ctx); err != nil {
		log.Fatal("Failed to start workers", zap.Error(err))
	}

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	log.Info("Received shutdown signal")

	cancel()

	if err := workerManager.Stop(); err != nil {
		log.Error("Error stopping workers", zap.Error(err))
	}

	log.Info("Worker shutdown complete")
}
