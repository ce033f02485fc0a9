package routes

import (
	"mentormatch_backend/internal/handlers"
	"mentormatch_backend/internal/logger"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes регистрирует все HTTP маршруты под префиксом API.
// authMiddleware проверяет JWT и кладет userID/роль в контекст.
func RegisterRoutes(
	ginRouter *gin.Engine,
	apiPrefix string,
	appHandlers *handlers.AppHandlers,
	authMiddleware gin.HandlerFunc,
) {
	SetupDocsRoutes(ginRouter, apiPrefix)

	api := ginRouter.Group(apiPrefix)
	SetupPublicRoutes(api, appHandlers.AuthHandler, appHandlers.HealthHandler)

	authorized := api.Group("")
	authorized.Use(authMiddleware)
	SetupCommonRoutes(authorized, appHandlers.ProfileHandler)
	SetupMentorRoutes(authorized, appHandlers.MatchRequestHandler)
	SetupMenteeRoutes(authorized, appHandlers.MentorHandler, appHandlers.MatchRequestHandler)

	logger.Info("HTTP routes registered", "prefix", apiPrefix, "count", len(ginRouter.Routes()))
}
