package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	fiberSwagger "github.com/swaggo/fiber-swagger"
	"go.uber.org/zap"

	"github.com/geofence-microservice/internal/config"
	"github.com/geofence-microservice/internal/delivery/http/handler"
	"github.com/geofence-microservice/internal/delivery/http/middleware"
	"github.com/geofence-microservice/internal/usecase"
)

// Server - HTTP сервер на основе Fiber
type Server struct {
	app    *fiber.App
	config *config.Config
	logger *zap.Logger

	// Handlers
	locateHandler *handler.LocateHandler
	regionHandler *handler.RegionHandler
	statsHandler  *handler.StatsHandler
	statsUC       *usecase.StatsUseCase
}

// NewServer - создание нового HTTP сервера
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	locateHandler *handler.LocateHandler,
	regionHandler *handler.RegionHandler,
	statsHandler *handler.StatsHandler,
	statsUC *usecase.StatsUseCase,
) *Server {
	app := fiber.New(fiber.Config{
		AppName:      "Geofence Microservice",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
		ErrorHandler: customErrorHandler(logger),
	})

	s := &Server{
		app:           app,
		config:        cfg,
		logger:        logger,
		locateHandler: locateHandler,
		regionHandler: regionHandler,
		statsHandler:  statsHandler,
		statsUC:       statsUC,
	}

	s.setupMiddlewares()
	s.setupRoutes()

	return s
}

// setupMiddlewares - настройка middleware
func (s *Server) setupMiddlewares() {
	s.app.Use(middleware.Recovery())
	s.app.Use(middleware.Logger(s.logger))
	s.app.Use(middleware.CORS())
	s.app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
}

// setupRoutes - настройка маршрутов
func (s *Server) setupRoutes() {
	// Swagger documentation route
	s.app.Get("/swagger/*", fiberSwagger.WrapHandler)

	// API info
	s.app.Get("/api", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Reverse Geofencing API",
			"usage": fiber.Map{
				"endpoint": "/api/v1/locate",
				"method":   "GET",
				"parameters": fiber.Map{
					"lat": "Latitude (float)",
					"lon": "Longitude (float)",
				},
				"example": "/api/v1/locate?lat=28.7041&lon=77.1025",
			},
		})
	})

	api := s.app.Group("/api/v1")

	// Health check
	api.Get("/health", func(c *fiber.Ctx) error {
		stats, err := s.statsUC.GetStatistics(c.Context())
		if err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "unhealthy",
				"loaded": false,
			})
		}
		return c.JSON(fiber.Map{
			"status":        "healthy",
			"loaded":        stats.Loaded,
			"regions_count": stats.RegionCount,
			"time":          time.Now(),
		})
	})

	// Locate routes
	api.Get("/locate", s.locateHandler.Locate)
	api.Post("/locate", s.locateHandler.LocatePost)
	api.Post("/batch/locate", s.locateHandler.BatchLocate)

	// Region routes
	api.Get("/regions", s.regionHandler.ListRegions)
	api.Get("/regions/:id", s.regionHandler.GetRegionByID)

	// Stats
	api.Get("/stats", s.statsHandler.GetStatistics)
}

// Start - запуск HTTP сервера
func (s *Server) Start() error {
	addr := s.config.GetServerAddr()
	s.logger.Info("Starting HTTP server", zap.String("address", addr))
	return s.app.Listen(addr)
}

// Shutdown - graceful shutdown HTTP сервера
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.app.ShutdownWithContext(ctx)
}

// customErrorHandler - кастомный обработчик ошибок
func customErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError

		if e, ok := err.(*fiber.Error); ok {
			code = e.Code
		}

		logger.Error("HTTP Error",
			zap.String("path", c.Path()),
			zap.Int("status", code),
			zap.Error(err),
		)

		return c.Status(code).JSON(fiber.Map{
			"error": fiber.Map{
				"code":    "INTERNAL_SERVER_ERROR",
				"message": err.Error(),
			},
		})
	}
}
