// Package handler contains the gin HTTP handlers. Handlers validate and
// bind requests, delegate to services and translate service errors to HTTP
// status codes; business rules live in the service layer.
package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/parkvision/parking-backend-go/internal/service"
	"github.com/parkvision/parking-backend-go/pkg/response"
)

// handleServiceError maps sentinel service errors onto HTTP responses.
func handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, service.ErrInvalidInput):
		response.BadRequest(c, err.Error())
	case errors.Is(err, service.ErrConflict):
		response.Conflict(c, err.Error())
	default:
		response.InternalError(c, err.Error())
	}
}
