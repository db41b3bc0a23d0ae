package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/parkvision/parking-backend-go/internal/models"
	"github.com/parkvision/parking-backend-go/internal/service"
	"github.com/parkvision/parking-backend-go/pkg/response"
)

// DetectionHandler handles detection endpoints
type DetectionHandler struct {
	detectionService *service.DetectionService
}

// NewDetectionHandler creates a new detection handler
func NewDetectionHandler(detectionService *service.DetectionService) *DetectionHandler {
	return &DetectionHandler{detectionService: detectionService}
}

// Ingest handles POST /api/detections
func (h *DetectionHandler) Ingest(c *gin.Context) {
	var req service.IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	count, err := h.detectionService.Ingest(req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"ingested": count})
}

// List handles GET /api/detections with filter query parameters
func (h *DetectionHandler) List(c *gin.Context) {
	var filter models.DetectionFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "invalid filter: "+err.Error())
		return
	}

	detections, total, err := h.detectionService.List(filter)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, gin.H{
		"detections": detections,
		"total":      total,
		"page":       filter.Page,
		"pageSize":   filter.PageSize,
	})
}

// Frames handles GET /api/videos/:id/frames
func (h *DetectionHandler) Frames(c *gin.Context) {
	frames, err := h.detectionService.FrameTimeline(c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, frames)
}

// ClassStats handles GET /api/detections/class-stats?videoId=&cameraId=
func (h *DetectionHandler) ClassStats(c *gin.Context) {
	stats, err := h.detectionService.ClassStats(c.Query("videoId"), c.Query("cameraId"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, stats)
}
