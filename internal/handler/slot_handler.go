package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/parkvision/parking-backend-go/internal/service"
	"github.com/parkvision/parking-backend-go/pkg/response"
)

// SlotHandler handles parking slot endpoints
type SlotHandler struct {
	slotService *service.SlotService
}

// NewSlotHandler creates a new slot handler
func NewSlotHandler(slotService *service.SlotService) *SlotHandler {
	return &SlotHandler{slotService: slotService}
}

type slotRequest struct {
	CameraID string `json:"camera_id"`
	Name     string `json:"name"`
	Polygon  string `json:"polygon"`
}

// Create handles POST /api/parking-slots
func (h *SlotHandler) Create(c *gin.Context) {
	var req slotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	slot, err := h.slotService.Create(req.CameraID, req.Name, req.Polygon)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, slot)
}

// ListByCamera handles GET /api/cameras/:id/parking-slots
func (h *SlotHandler) ListByCamera(c *gin.Context) {
	slots, err := h.slotService.ListByCamera(c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, slots)
}

// Get handles GET /api/parking-slots/:id
func (h *SlotHandler) Get(c *gin.Context) {
	slot, err := h.slotService.Get(c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, slot)
}

// Update handles PUT /api/parking-slots/:id
func (h *SlotHandler) Update(c *gin.Context) {
	var req slotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	slot, err := h.slotService.Update(c.Param("id"), req.Name, req.Polygon)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, slot)
}

// Delete handles DELETE /api/parking-slots/:id
func (h *SlotHandler) Delete(c *gin.Context) {
	if err := h.slotService.Delete(c.Param("id")); err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": c.Param("id")})
}

// AtPoint handles GET /api/cameras/:id/slot-at-point?x=&y=
func (h *SlotHandler) AtPoint(c *gin.Context) {
	x, errX := strconv.ParseFloat(c.Query("x"), 64)
	y, errY := strconv.ParseFloat(c.Query("y"), 64)
	if errX != nil || errY != nil {
		response.BadRequest(c, "x and y query parameters must be numbers")
		return
	}

	slot, err := h.slotService.SlotAtPoint(c.Param("id"), x, y)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	if slot == nil {
		response.Success(c, gin.H{"found": false})
		return
	}
	response.Success(c, gin.H{"found": true, "slot": slot})
}
