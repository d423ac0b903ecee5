package api

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"orgmessages/internal/models"
	"orgmessages/internal/service"
)

const maxBodyBytes = 1 << 20

// MessageCounter reports how many records the store holds.
type MessageCounter interface {
	Len() int
}

type Handler struct {
	Service *service.MessageService
	Counter MessageCounter
	Log     logrus.FieldLogger
}

func NewAPIHandler(svc *service.MessageService, counter MessageCounter, log logrus.FieldLogger) *Handler {
	return &Handler{
		Service: svc,
		Counter: counter,
		Log:     log.WithField("component", "api"),
	}
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type ValidationErrorResponse struct {
	Errors map[string][]string `json:"errors"`
}

type HealthResponse struct {
	Status   string `json:"status"`
	Messages int    `json:"messages"`
}

// ListMessages godoc
// @Summary      List messages
// @Description  Returns every message of the organization, newest first.
// @Tags         messages
// @Produce      json
// @Param        organizationId  path  string  true  "Organization ID"
// @Success      200  {array}   models.Message
// @Failure      400  {object}  ErrorResponse
// @Router       /organizations/{organizationId}/messages [get]
func (h *Handler) ListMessages(c *gin.Context) {
	orgID, ok := h.pathUUID(c, "organizationId")
	if !ok {
		return
	}
	h.render(c, h.Service.GetAllMessages(orgID))
}

// GetMessage godoc
// @Summary      Get a message
// @Tags         messages
// @Produce      json
// @Param        organizationId  path  string  true  "Organization ID"
// @Param        id              path  string  true  "Message ID"
// @Success      200  {object}  models.Message
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /organizations/{organizationId}/messages/{id} [get]
func (h *Handler) GetMessage(c *gin.Context) {
	orgID, id, ok := h.pathIDs(c)
	if !ok {
		return
	}
	h.render(c, h.Service.GetMessage(orgID, id))
}

// CreateMessage godoc
// @Summary      Create a message
// @Description  Titles are unique among the organization's active messages.
// @Tags         messages
// @Accept       json
// @Produce      json
// @Param        organizationId  path  string                       true  "Organization ID"
// @Param        request         body  models.CreateMessageRequest  true  "Message"
// @Success      201  {object}  models.Message
// @Failure      400  {object}  ValidationErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Router       /organizations/{organizationId}/messages [post]
func (h *Handler) CreateMessage(c *gin.Context) {
	orgID, ok := h.pathUUID(c, "organizationId")
	if !ok {
		return
	}
	req, ok := decodeBody[models.CreateMessageRequest](h, c)
	if !ok {
		return
	}
	h.render(c, h.Service.CreateMessage(orgID, req))
}

// UpdateMessage godoc
// @Summary      Update a message
// @Tags         messages
// @Accept       json
// @Param        organizationId  path  string                       true  "Organization ID"
// @Param        id              path  string                       true  "Message ID"
// @Param        request         body  models.UpdateMessageRequest  true  "Message"
// @Success      204
// @Failure      400  {object}  ValidationErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Router       /organizations/{organizationId}/messages/{id} [put]
func (h *Handler) UpdateMessage(c *gin.Context) {
	orgID, id, ok := h.pathIDs(c)
	if !ok {
		return
	}
	req, ok := decodeBody[models.UpdateMessageRequest](h, c)
	if !ok {
		return
	}
	h.render(c, h.Service.UpdateMessage(orgID, id, req))
}

// DeleteMessage godoc
// @Summary      Delete a message
// @Tags         messages
// @Param        organizationId  path  string  true  "Organization ID"
// @Param        id              path  string  true  "Message ID"
// @Success      204
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Router       /organizations/{organizationId}/messages/{id} [delete]
func (h *Handler) DeleteMessage(c *gin.Context) {
	orgID, id, ok := h.pathIDs(c)
	if !ok {
		return
	}
	h.render(c, h.Service.DeleteMessage(orgID, id))
}

// Health godoc
// @Summary  Liveness probe
// @Tags     health
// @Produce  json
// @Success  200  {object}  HealthResponse
// @Router   /healthz [get]
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok", Messages: h.Counter.Len()})
}

func (h *Handler) pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) pathIDs(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	orgID, ok := h.pathUUID(c, "organizationId")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	return orgID, id, true
}

// decodeBody returns a nil request for an empty or "null" body; the service
// decides what an absent request means.
func decodeBody[T any](h *Handler, c *gin.Context) (*T, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
	raw, err := c.GetRawData()
	if err != nil {
		h.Log.WithError(err).Debug("Failed to read request body")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return nil, false
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, true
	}
	var req *T
	if err := json.Unmarshal(raw, &req); err != nil {
		h.Log.WithError(err).Debug("Failed to decode request body")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return nil, false
	}
	return req, true
}
