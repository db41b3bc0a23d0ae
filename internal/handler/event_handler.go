package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/parkvision/parking-backend-go/internal/models"
	"github.com/parkvision/parking-backend-go/internal/repository"
	"github.com/parkvision/parking-backend-go/internal/service"
	"github.com/parkvision/parking-backend-go/pkg/response"
)

// EventHandler handles occupancy event endpoints. Events are engine output;
// the handler reads the repository directly, there is no write path here.
type EventHandler struct {
	eventRepo       *repository.EventRepository
	analysisService *service.AnalysisService
}

// NewEventHandler creates a new event handler
func NewEventHandler(eventRepo *repository.EventRepository, analysisService *service.AnalysisService) *EventHandler {
	return &EventHandler{eventRepo: eventRepo, analysisService: analysisService}
}

// List handles GET /api/occupancy-events with filter query parameters
func (h *EventHandler) List(c *gin.Context) {
	var filter models.EventFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "invalid filter: "+err.Error())
		return
	}

	events, total, err := h.eventRepo.List(filter)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}
	response.Success(c, gin.H{
		"events":   events,
		"total":    total,
		"page":     filter.Page,
		"pageSize": filter.PageSize,
	})
}

// Get handles GET /api/occupancy-events/:id
func (h *EventHandler) Get(c *gin.Context) {
	event, err := h.eventRepo.GetByID(c.Param("id"))
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}
	if event == nil {
		response.NotFound(c, "event "+c.Param("id")+" not found")
		return
	}
	response.Success(c, event)
}

// CurrentStatus handles GET /api/cameras/:id/current-status
func (h *EventHandler) CurrentStatus(c *gin.Context) {
	status, err := h.analysisService.CurrentStatus(c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, status)
}

// LotsStatus handles GET /api/cameras/:id/lots-status
func (h *EventHandler) LotsStatus(c *gin.Context) {
	statuses, err := h.analysisService.LotsStatus(c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, statuses)
}
