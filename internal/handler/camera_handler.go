package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/parkvision/parking-backend-go/internal/service"
	"github.com/parkvision/parking-backend-go/pkg/response"
)

// CameraHandler handles camera endpoints
type CameraHandler struct {
	cameraService *service.CameraService
}

// NewCameraHandler creates a new camera handler
func NewCameraHandler(cameraService *service.CameraService) *CameraHandler {
	return &CameraHandler{cameraService: cameraService}
}

type cameraRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Create handles POST /api/cameras
func (h *CameraHandler) Create(c *gin.Context) {
	var req cameraRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	camera, err := h.cameraService.Create(req.Name, req.Description)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, camera)
}

// List handles GET /api/cameras
func (h *CameraHandler) List(c *gin.Context) {
	cameras, err := h.cameraService.List()
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, cameras)
}

// Get handles GET /api/cameras/:id
func (h *CameraHandler) Get(c *gin.Context) {
	camera, err := h.cameraService.Get(c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, camera)
}

// Update handles PUT /api/cameras/:id
func (h *CameraHandler) Update(c *gin.Context) {
	var req cameraRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	camera, err := h.cameraService.Update(c.Param("id"), req.Name, req.Description)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, camera)
}

// Delete handles DELETE /api/cameras/:id
func (h *CameraHandler) Delete(c *gin.Context) {
	if err := h.cameraService.Delete(c.Param("id")); err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": c.Param("id")})
}
