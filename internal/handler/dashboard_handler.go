package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/operai/workforce-api/internal/service"
	"github.com/operai/workforce-api/pkg/response"
)

// DashboardHandler serves the cached platform aggregates.
type DashboardHandler struct {
	service *service.DashboardService
}

// NewDashboardHandler creates a new handler.
func NewDashboardHandler(svc *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: svc}
}

// Stats godoc
// @Summary Platform dashboard counters
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard/stats [get]
func (h *DashboardHandler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}

// Invalidate godoc
// @Summary Drop the cached dashboard aggregate
// @Tags Dashboard
// @Success 204 {object} response.Envelope
// @Router /dashboard/cache [delete]
func (h *DashboardHandler) Invalidate(c *gin.Context) {
	if err := h.service.Invalidate(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
