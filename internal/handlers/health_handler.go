package handlers

import (
	"net/http"

	"mentormatch_backend/internal/database"
	"mentormatch_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	*BaseHandler
}

func NewHealthHandler(base *BaseHandler) *HealthHandler {
	return &HealthHandler{BaseHandler: base}
}

type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// Health godoc
// @Summary Проверка состояния
// @Tags system
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} apperrors.ErrorResponse
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	if err := database.Ping(c.Request.Context(), h.GetDB(c)); err != nil {
		apperrors.HandleError(c, apperrors.Wrap(err, apperrors.CodeDatabaseError, "system", "Database unavailable", http.StatusServiceUnavailable))
		return
	}
	c.JSON(http.StatusOK, HealthResponse{Status: "ok", Database: "up"})
}
