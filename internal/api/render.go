package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"orgmessages/internal/models"
	"orgmessages/internal/service"
)

const internalErrorTitle = "An unexpected error occurred."

type InternalErrorResponse struct {
	Status int    `json:"status"`
	Title  string `json:"title"`
}

func internalError() InternalErrorResponse {
	return InternalErrorResponse{Status: http.StatusInternalServerError, Title: internalErrorTitle}
}

// render writes the HTTP response for a service result. Variants it does not
// know about become a 500.
func (h *Handler) render(c *gin.Context, result service.Result) {
	switch r := result.(type) {
	case service.Success[models.Message]:
		c.JSON(http.StatusOK, r.Value)
	case service.Success[[]models.Message]:
		c.JSON(http.StatusOK, r.Value)
	case service.Created:
		c.Header("Location", fmt.Sprintf("/api/v1/organizations/%s/messages/%s", r.Value.OrganizationID, r.Value.ID))
		c.JSON(http.StatusCreated, r.Value)
	case service.Updated, service.Deleted:
		c.Status(http.StatusNoContent)
	case service.NotFound:
		c.JSON(http.StatusNotFound, ErrorResponse{Error: r.Reason})
	case service.Conflict:
		c.JSON(http.StatusConflict, ErrorResponse{Error: r.Reason})
	case service.ValidationError:
		c.JSON(http.StatusBadRequest, ValidationErrorResponse{Errors: r.Errors})
	default:
		h.Log.WithField("result", fmt.Sprintf("%T", result)).Error("Unmapped service result")
		c.JSON(http.StatusInternalServerError, internalError())
	}
}
