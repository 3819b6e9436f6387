package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/operai/workforce-api/internal/service"
	appErrors "github.com/operai/workforce-api/pkg/errors"
	"github.com/operai/workforce-api/pkg/response"
)

// AssistantHandler wires HTTP endpoints to the assistant service.
type AssistantHandler struct {
	service *service.AssistantService
}

// NewAssistantHandler creates a new handler.
func NewAssistantHandler(svc *service.AssistantService) *AssistantHandler {
	return &AssistantHandler{service: svc}
}

// Chat godoc
// @Summary Talk to the assistant
// @Description Sends one message; the assistant may execute platform actions on the caller's behalf
// @Tags Assistant
// @Accept json
// @Produce json
// @Param payload body service.ChatRequest true "Chat payload"
// @Success 200 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /assistant/chat [post]
func (h *AssistantHandler) Chat(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid chat payload"))
		return
	}

	res, err := h.service.Chat(c.Request.Context(), claims, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// History godoc
// @Summary Assistant conversation history
// @Tags Assistant
// @Produce json
// @Param session_id query string true "Session id"
// @Success 200 {object} response.Envelope
// @Router /assistant/history [get]
func (h *AssistantHandler) History(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	messages, err := h.service.History(c.Request.Context(), claims, c.Query("session_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, messages, nil)
}

// Catalog godoc
// @Summary Actions available to the caller's role
// @Tags Assistant
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /assistant/actions [get]
func (h *AssistantHandler) Catalog(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	response.JSON(c, http.StatusOK, h.service.Catalog(claims.Role), nil)
}
