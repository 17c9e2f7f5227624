package main

// @title Geofence Microservice API
// @version 1.0.0
// @description Сервис обратного геофенсинга: определяет административный регион (штат, округ) по географическим координатам. Набор полигонов загружается один раз при старте из GeoJSON, запросы обслуживаются из памяти через пространственный индекс.
// @description
// @description Основные возможности:
// @description - Определение региона по точке (point-in-polygon с инклюзивными границами)
// @description - Пакетное определение регионов
// @description - Список доступных регионов и их атрибутов
// @description - Статистика по загруженному набору

// @contact.name API Support
// @contact.email support@geofence-microservice.com

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	_ "github.com/geofence-microservice/docs/swagger"
	"github.com/geofence-microservice/internal/config"
	httpDelivery "github.com/geofence-microservice/internal/delivery/http"
	"github.com/geofence-microservice/internal/delivery/http/handler"
	"github.com/geofence-microservice/internal/domain"
	"github.com/geofence-microservice/internal/domain/repository"
	"github.com/geofence-microservice/internal/index"
	"github.com/geofence-microservice/internal/pkg/logger"
	"github.com/geofence-microservice/internal/repository/cache"
	"github.com/geofence-microservice/internal/repository/geojson"
	"github.com/geofence-microservice/internal/usecase"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level, "geofence-api")
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting Geofence Microservice")
	log.Info("Configuration loaded",
		zap.String("env", cfg.Server.Env),
		zap.String("server_addr", cfg.GetServerAddr()),
		zap.String("geojson_path", cfg.Data.GeoJSONPath),
	)

	// 3. Load region store (load barrier: serving starts only after the
	// full store and index are built)
	regionRepo, err := geojson.New(
		cfg.Data.GeoJSONPath,
		func(regions []*domain.Region) geojson.RegionIndex { return index.Build(regions) },
		log,
	)
	if err != nil {
		log.Fatal("Failed to load region store", zap.Error(err))
	}
	log.Info("Region store ready", zap.Int("regions", regionRepo.Count()))

	// 4. Connect to Redis (optional cache)
	var cacheRepo *cache.Redis
	cacheRepo, err = cache.NewRedis(&cfg.Redis, log)
	if err != nil {
		log.Warn("Redis unavailable, lookup cache disabled", zap.Error(err))
		cacheRepo = nil
	}
	if cacheRepo != nil {
		defer func() {
			if err := cacheRepo.Close(); err != nil {
				log.Error("Failed to close Redis connection", zap.Error(err))
			}
		}()
	}

	// 5. Initialize use cases
	var lookupCache repository.CacheRepository
	if cacheRepo != nil {
		lookupCache = cache.NewCacheRepository(cacheRepo)
	}

	locateUC := usecase.NewLocateUseCase(
		regionRepo,
		lookupCache,
		log,
		cfg.Cache.LookupCacheTTL,
	)

	statsUC := usecase.NewStatsUseCase(
		regionRepo,
		lookupCache,
		locateUC,
		log,
		cfg.Cache.StatsCacheTTL,
	)

	log.Info("Use cases initialized")

	// 6. Initialize HTTP handlers
	locateHandler := handler.NewLocateHandler(locateUC, log)
	regionHandler := handler.NewRegionHandler(regionRepo, log)
	statsHandler := handler.NewStatsHandler(statsUC, log)

	// 7. Initialize HTTP server
	server := httpDelivery.NewServer(
		cfg,
		log,
		locateHandler,
		regionHandler,
		statsHandler,
		statsUC,
	)

	// 8. Start server in goroutine
	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started successfully",
		zap.String("address", cfg.GetServerAddr()),
		zap.String("env", cfg.Server.Env),
	)

	// 9. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}

	log.Info("Server stopped successfully")
}
