package handlers

import (
	"net/http"

	"mentormatch_backend/internal/services"
	"mentormatch_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type MatchRequestHandler struct {
	*BaseHandler
	requestService services.MatchRequestService
}

func NewMatchRequestHandler(base *BaseHandler, requestService services.MatchRequestService) *MatchRequestHandler {
	return &MatchRequestHandler{
		BaseHandler:    base,
		requestService: requestService,
	}
}

// Create godoc
// @Summary Отправить заявку ментору
// @Tags match-requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateMatchRequest true "mentorId, menteeId, message"
// @Success 201 {object} dto.MatchRequestResponse
// @Failure 400 {object} apperrors.ErrorResponse "Ошибка валидации или конфликт"
// @Failure 401 {object} apperrors.ErrorResponse
// @Failure 403 {object} apperrors.ErrorResponse
// @Router /match-requests [post]
func (h *MatchRequestHandler) Create(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.CreateMatchRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.requestService.Create(h.GetDB(c), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ListIncoming godoc
// @Summary Входящие заявки ментора
// @Tags match-requests
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.MatchRequestResponse
// @Router /match-requests/incoming [get]
func (h *MatchRequestHandler) ListIncoming(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	requests, err := h.requestService.ListIncoming(h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, requests)
}

// ListOutgoing godoc
// @Summary Исходящие заявки менти
// @Tags match-requests
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.MatchRequestResponse
// @Router /match-requests/outgoing [get]
func (h *MatchRequestHandler) ListOutgoing(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	requests, err := h.requestService.ListOutgoing(h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, requests)
}

// Accept godoc
// @Summary Принять заявку
// @Description Остальные ожидающие заявки ментора отклоняются автоматически
// @Tags match-requests
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID заявки"
// @Success 200 {object} dto.MatchRequestResponse
// @Failure 400 {object} apperrors.ErrorResponse "У ментора уже есть принятая заявка"
// @Failure 404 {object} apperrors.ErrorResponse
// @Router /match-requests/{id}/accept [put]
func (h *MatchRequestHandler) Accept(c *gin.Context) {
	h.transition(c, h.requestService.Accept)
}

// Reject godoc
// @Summary Отклонить заявку
// @Tags match-requests
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID заявки"
// @Success 200 {object} dto.MatchRequestResponse
// @Failure 404 {object} apperrors.ErrorResponse
// @Router /match-requests/{id}/reject [put]
func (h *MatchRequestHandler) Reject(c *gin.Context) {
	h.transition(c, h.requestService.Reject)
}

// Cancel godoc
// @Summary Отменить свою заявку
// @Tags match-requests
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID заявки"
// @Success 200 {object} dto.MatchRequestResponse
// @Failure 404 {object} apperrors.ErrorResponse
// @Router /match-requests/{id} [delete]
func (h *MatchRequestHandler) Cancel(c *gin.Context) {
	h.transition(c, h.requestService.Cancel)
}

type transitionFunc func(db *gorm.DB, requestID, userID uint) (*dto.MatchRequestResponse, error)

func (h *MatchRequestHandler) transition(c *gin.Context, fn transitionFunc) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	requestID, err := ParseParamID(c, "id")
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	resp, err := fn(h.GetDB(c), requestID, userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
