package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/operai/workforce-api/internal/models"
	"github.com/operai/workforce-api/internal/service"
	appErrors "github.com/operai/workforce-api/pkg/errors"
	"github.com/operai/workforce-api/pkg/response"
)

// DeadlineHandler wires HTTP endpoints to the deadline request service.
type DeadlineHandler struct {
	service *service.DeadlineService
}

// NewDeadlineHandler creates a new handler.
func NewDeadlineHandler(svc *service.DeadlineService) *DeadlineHandler {
	return &DeadlineHandler{service: svc}
}

// Request godoc
// @Summary Request a deadline extension
// @Tags Deadline requests
// @Accept json
// @Produce json
// @Param payload body service.RequestDeadlineExtensionRequest true "Request payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /deadline-requests [post]
func (h *DeadlineHandler) Request(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.RequestDeadlineExtensionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid deadline request payload"))
		return
	}

	request, err := h.service.Request(c.Request.Context(), claims, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, request)
}

// List godoc
// @Summary List deadline requests
// @Tags Deadline requests
// @Produce json
// @Param status query string false "Filter by status"
// @Param limit query int false "Max rows"
// @Success 200 {object} response.Envelope
// @Router /deadline-requests [get]
func (h *DeadlineHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var status *models.DeadlineRequestStatus
	if raw := c.Query("status"); raw != "" {
		s := models.DeadlineRequestStatus(raw)
		status = &s
	}
	limit, _ := strconv.Atoi(c.Query("limit"))

	requests, err := h.service.List(c.Request.Context(), claims, status, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, requests, nil)
}

// Approve godoc
// @Summary Approve a pending deadline request
// @Tags Deadline requests
// @Accept json
// @Produce json
// @Param id path string true "Request id"
// @Param payload body service.DecideDeadlineRequest false "Decision note"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /deadline-requests/{id}/approve [post]
func (h *DeadlineHandler) Approve(c *gin.Context) {
	h.decide(c, true)
}

// Reject godoc
// @Summary Reject a pending deadline request
// @Tags Deadline requests
// @Accept json
// @Produce json
// @Param id path string true "Request id"
// @Param payload body service.DecideDeadlineRequest false "Decision note"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /deadline-requests/{id}/reject [post]
func (h *DeadlineHandler) Reject(c *gin.Context) {
	h.decide(c, false)
}

func (h *DeadlineHandler) decide(c *gin.Context, approve bool) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.DecideDeadlineRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid decision payload"))
			return
		}
	}

	request, err := h.service.Decide(c.Request.Context(), claims, c.Param("id"), approve, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request, nil)
}
