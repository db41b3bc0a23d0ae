package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/parkvision/parking-backend-go/internal/service"
	"github.com/parkvision/parking-backend-go/pkg/response"
)

// LotHandler handles parking lot endpoints
type LotHandler struct {
	lotService *service.LotService
}

// NewLotHandler creates a new lot handler
func NewLotHandler(lotService *service.LotService) *LotHandler {
	return &LotHandler{lotService: lotService}
}

type lotRequest struct {
	CameraID string `json:"camera_id"`
	Name     string `json:"name"`
	Polygon  string `json:"polygon"`
}

// Create handles POST /api/parking-lots
func (h *LotHandler) Create(c *gin.Context) {
	var req lotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	lot, err := h.lotService.Create(req.CameraID, req.Name, req.Polygon)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, lot)
}

// ListByCamera handles GET /api/cameras/:id/parking-lots
func (h *LotHandler) ListByCamera(c *gin.Context) {
	lots, err := h.lotService.ListByCamera(c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, lots)
}

// Get handles GET /api/parking-lots/:id
func (h *LotHandler) Get(c *gin.Context) {
	lot, err := h.lotService.Get(c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, lot)
}

// Update handles PUT /api/parking-lots/:id
func (h *LotHandler) Update(c *gin.Context) {
	var req lotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	lot, err := h.lotService.Update(c.Param("id"), req.Name, req.Polygon)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, lot)
}

// Delete handles DELETE /api/parking-lots/:id
func (h *LotHandler) Delete(c *gin.Context) {
	if err := h.lotService.Delete(c.Param("id")); err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": c.Param("id")})
}

// SlotMapping handles GET /api/cameras/:id/slot-lot-mapping
func (h *LotHandler) SlotMapping(c *gin.Context) {
	mapping, err := h.lotService.SlotLotMapping(c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, mapping)
}
