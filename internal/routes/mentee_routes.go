package routes

import (
	"mentormatch_backend/internal/handlers"
	"mentormatch_backend/internal/middleware"
	"mentormatch_backend/internal/models"

	"github.com/gin-gonic/gin"
)

// SetupMenteeRoutes - каталог менторов и исходящие заявки (только для менти)
func SetupMenteeRoutes(
	r *gin.RouterGroup,
	mentorHandler *handlers.MentorHandler,
	requestHandler *handlers.MatchRequestHandler,
) {
	menteeOnly := middleware.RoleMiddleware(models.UserRoleMentee)

	r.GET("/mentors", menteeOnly, mentorHandler.ListMentors)

	requests := r.Group("/match-requests")
	requests.Use(menteeOnly)
	{
		requests.POST("", requestHandler.Create)
		requests.GET("/outgoing", requestHandler.ListOutgoing)
		requests.DELETE("/:id", requestHandler.Cancel)
	}
}
