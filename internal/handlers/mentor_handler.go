package handlers

import (
	"net/http"

	"mentormatch_backend/internal/services"
	"mentormatch_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type MentorHandler struct {
	*BaseHandler
	mentorService services.MentorService
}

func NewMentorHandler(base *BaseHandler, mentorService services.MentorService) *MentorHandler {
	return &MentorHandler{
		BaseHandler:   base,
		mentorService: mentorService,
	}
}

// ListMentors godoc
// @Summary Каталог менторов
// @Tags mentors
// @Produce json
// @Security BearerAuth
// @Param skill query string false "Точное совпадение навыка"
// @Param order_by query string false "name, skill или id"
// @Success 200 {array} dto.MentorResponse
// @Failure 401 {object} apperrors.ErrorResponse
// @Failure 403 {object} apperrors.ErrorResponse
// @Router /mentors [get]
func (h *MentorHandler) ListMentors(c *gin.Context) {
	var query dto.MentorListQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}

	mentors, err := h.mentorService.ListMentors(h.GetDB(c), &query)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, mentors)
}
