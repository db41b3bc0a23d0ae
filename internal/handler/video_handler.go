package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/parkvision/parking-backend-go/internal/report"
	"github.com/parkvision/parking-backend-go/internal/service"
	"github.com/parkvision/parking-backend-go/pkg/response"
)

// VideoHandler handles video and analysis endpoints
type VideoHandler struct {
	videoService    *service.VideoService
	analysisService *service.AnalysisService
}

// NewVideoHandler creates a new video handler
func NewVideoHandler(videoService *service.VideoService, analysisService *service.AnalysisService) *VideoHandler {
	return &VideoHandler{videoService: videoService, analysisService: analysisService}
}

// Register handles POST /api/videos
func (h *VideoHandler) Register(c *gin.Context) {
	var req service.RegisterVideoInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	video, err := h.videoService.Register(req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, video)
}

// List handles GET /api/videos?cameraId=
func (h *VideoHandler) List(c *gin.Context) {
	videos, err := h.videoService.List(c.Query("cameraId"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, videos)
}

// Get handles GET /api/videos/:id
func (h *VideoHandler) Get(c *gin.Context) {
	video, err := h.videoService.Get(c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, video)
}

// Delete handles DELETE /api/videos/:id
func (h *VideoHandler) Delete(c *gin.Context) {
	if err := h.videoService.Delete(c.Param("id")); err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": c.Param("id")})
}

// Analyze handles POST /api/videos/:id/analyze
func (h *VideoHandler) Analyze(c *gin.Context) {
	run, err := h.analysisService.Start(c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, run)
}

// Status handles GET /api/videos/:id/status
func (h *VideoHandler) Status(c *gin.Context) {
	status, err := h.analysisService.Status(c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, status)
}

// Analytics handles GET /api/videos/:id/analytics
func (h *VideoHandler) Analytics(c *gin.Context) {
	analytics, err := h.analysisService.Analytics(c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, analytics)
}

// Report handles GET /api/videos/:id/report, returning an HTML chart page
// instead of the JSON envelope.
func (h *VideoHandler) Report(c *gin.Context) {
	analytics, err := h.analysisService.Analytics(c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := report.Render(c.Writer, analytics); err != nil {
		response.InternalError(c, "failed to render report: "+err.Error())
	}
}
