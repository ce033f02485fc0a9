package routes

import (
	"mentormatch_backend/internal/handlers"

	"github.com/gin-gonic/gin"
)

// SetupCommonRoutes - маршруты для любой авторизованной роли
func SetupCommonRoutes(r *gin.RouterGroup, profileHandler *handlers.ProfileHandler) {
	r.GET("/me", profileHandler.GetMe)
	r.PUT("/profile", profileHandler.UpdateProfile)
	r.GET("/images/:role/:id", profileHandler.GetImage)
}
