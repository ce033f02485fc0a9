package routes

import (
	"mentormatch_backend/internal/handlers"
	"mentormatch_backend/internal/middleware"
	"mentormatch_backend/internal/models"

	"github.com/gin-gonic/gin"
)

// SetupMentorRoutes - входящие заявки (только для ментора)
func SetupMentorRoutes(r *gin.RouterGroup, requestHandler *handlers.MatchRequestHandler) {
	requests := r.Group("/match-requests")
	requests.Use(middleware.RoleMiddleware(models.UserRoleMentor))
	{
		requests.GET("/incoming", requestHandler.ListIncoming)
		requests.PUT("/:id/accept", requestHandler.Accept)
		requests.PUT("/:id/reject", requestHandler.Reject)
	}
}
