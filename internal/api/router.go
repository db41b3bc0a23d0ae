// Package api assembles repositories, services and handlers into the HTTP
// routing table.
package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/parkvision/parking-backend-go/internal/config"
	"github.com/parkvision/parking-backend-go/internal/database"
	"github.com/parkvision/parking-backend-go/internal/handler"
	"github.com/parkvision/parking-backend-go/internal/middleware"
	"github.com/parkvision/parking-backend-go/internal/repository"
	"github.com/parkvision/parking-backend-go/internal/service"
	"github.com/parkvision/parking-backend-go/pkg/response"
)

// SetupRouter builds the gin engine with all routes registered.
func SetupRouter(cfg *config.Config) *gin.Engine {
	db := database.GetDB()

	cameraRepo := repository.NewCameraRepository(db)
	videoRepo := repository.NewVideoRepository(db)
	slotRepo := repository.NewSlotRepository(db)
	lotRepo := repository.NewLotRepository(db)
	detectionRepo := repository.NewDetectionRepository(db)
	eventRepo := repository.NewEventRepository(db)

	cameraService := service.NewCameraService(cameraRepo)
	videoService := service.NewVideoService(videoRepo, cameraRepo)
	slotService := service.NewSlotService(slotRepo, cameraRepo)
	lotService := service.NewLotService(lotRepo, slotRepo, cameraRepo, cfg.Engine)
	detectionService := service.NewDetectionService(detectionRepo, videoRepo, slotRepo, cfg.Engine)
	analysisService := service.NewAnalysisService(videoRepo, slotRepo, lotRepo, detectionRepo, eventRepo, cfg.Engine)

	cameraHandler := handler.NewCameraHandler(cameraService)
	videoHandler := handler.NewVideoHandler(videoService, analysisService)
	slotHandler := handler.NewSlotHandler(slotService)
	lotHandler := handler.NewLotHandler(lotService)
	detectionHandler := handler.NewDetectionHandler(detectionService)
	eventHandler := handler.NewEventHandler(eventRepo, analysisService)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.RateLimit(cfg.RateLimit, time.Minute))

	router.GET("/health", func(c *gin.Context) {
		response.Success(c, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	auth := middleware.Auth(cfg.JWTSecret)

	cameras := api.Group("/cameras")
	{
		cameras.POST("", auth, cameraHandler.Create)
		cameras.GET("", cameraHandler.List)
		cameras.GET("/:id", cameraHandler.Get)
		cameras.PUT("/:id", auth, cameraHandler.Update)
		cameras.DELETE("/:id", auth, cameraHandler.Delete)

		cameras.GET("/:id/parking-slots", slotHandler.ListByCamera)
		cameras.GET("/:id/parking-lots", lotHandler.ListByCamera)
		cameras.GET("/:id/slot-at-point", slotHandler.AtPoint)
		cameras.GET("/:id/slot-lot-mapping", lotHandler.SlotMapping)
		cameras.GET("/:id/current-status", eventHandler.CurrentStatus)
		cameras.GET("/:id/lots-status", eventHandler.LotsStatus)
	}

	slots := api.Group("/parking-slots")
	{
		slots.POST("", auth, slotHandler.Create)
		slots.GET("/:id", slotHandler.Get)
		slots.PUT("/:id", auth, slotHandler.Update)
		slots.DELETE("/:id", auth, slotHandler.Delete)
	}

	lots := api.Group("/parking-lots")
	{
		lots.POST("", auth, lotHandler.Create)
		lots.GET("/:id", lotHandler.Get)
		lots.PUT("/:id", auth, lotHandler.Update)
		lots.DELETE("/:id", auth, lotHandler.Delete)
	}

	videos := api.Group("/videos")
	{
		videos.POST("", auth, videoHandler.Register)
		videos.GET("", videoHandler.List)
		videos.GET("/:id", videoHandler.Get)
		videos.DELETE("/:id", auth, videoHandler.Delete)

		videos.POST("/:id/analyze", auth, videoHandler.Analyze)
		videos.GET("/:id/status", videoHandler.Status)
		videos.GET("/:id/analytics", videoHandler.Analytics)
		videos.GET("/:id/report", videoHandler.Report)
		videos.GET("/:id/frames", detectionHandler.Frames)
	}

	detections := api.Group("/detections")
	{
		detections.POST("", auth, detectionHandler.Ingest)
		detections.GET("", detectionHandler.List)
		detections.GET("/class-stats", detectionHandler.ClassStats)
	}

	events := api.Group("/occupancy-events")
	{
		events.GET("", eventHandler.List)
		events.GET("/:id", eventHandler.Get)
	}

	return router
}
