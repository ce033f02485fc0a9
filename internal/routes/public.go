package routes

import (
	"mentormatch_backend/internal/handlers"

	"github.com/gin-gonic/gin"
)

func SetupPublicRoutes(r *gin.RouterGroup, authHandler *handlers.AuthHandler, healthHandler *handlers.HealthHandler) {
	r.POST("/signup", authHandler.Signup) // регистрация
	r.POST("/login", authHandler.Login)   // логин -> JWT

	r.GET("/health", healthHandler.Health)
}
