package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"mentormatch_backend/internal/auth"
	"mentormatch_backend/internal/config"
	"mentormatch_backend/internal/database"
	"mentormatch_backend/internal/handlers"
	"mentormatch_backend/internal/logger"
	"mentormatch_backend/internal/middleware"
	"mentormatch_backend/internal/repositories"
	"mentormatch_backend/internal/routes"
	"mentormatch_backend/internal/services"
	"mentormatch_backend/internal/storage"
	"mentormatch_backend/internal/validator"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/ulule/limiter/v3"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

// Run поднимает HTTP сервер и блокируется до SIGINT/SIGTERM.
func Run(cfg *config.Config) error {
	logger.Info("Connecting to database...", "driver", cfg.Database.Driver)
	gormDB, err := database.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer func() {
		if err := database.Close(gormDB); err != nil {
			logger.Error("Failed to close database", "error", err)
		}
	}()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(gormDB); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	ginRouter, cleanup, err := SetupRouter(cfg, gormDB)
	if err != nil {
		return err
	}
	defer cleanup()

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           ginRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Server starting", "addr", srv.Addr, "env", cfg.Server.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("Server stopped")
	return nil
}

// SetupRouter собирает зависимости и возвращает готовый *gin.Engine.
// Используется и в Run, и в интеграционных тестах.
// cleanup освобождает внешние подключения (Redis) и вызывается после остановки сервера.
func SetupRouter(cfg *config.Config, gormDB *gorm.DB) (*gin.Engine, func(), error) {
	storageInstance, err := storage.NewStorage(context.Background(), storage.Config{
		Type:      cfg.Storage.Type,
		BasePath:  cfg.Storage.BasePath,
		Bucket:    cfg.Storage.Bucket,
		Region:    cfg.Storage.Region,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		Endpoint:  cfg.Storage.Endpoint,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("initialize storage: %w", err)
	}
	logger.Info("Storage initialized", "type", cfg.Storage.Type)

	tokens := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Audience, cfg.TokenTTL())

	// 1. Сервисы
	serviceContainer := initializeServices(cfg, storageInstance, tokens)

	// 2. Хэндлеры
	appHandlers := initializeHandlers(cfg, serviceContainer)

	// 3. Gin и middleware
	redisClient := newRedisClient(cfg.RateLimit)
	ginRouter := initializeGinRouter(cfg, gormDB, redisClient)

	// 4. Маршруты
	routes.RegisterRoutes(ginRouter, cfg.Server.APIPrefix, appHandlers,
		middleware.AuthMiddleware(serviceContainer.AuthService))

	cleanup := func() {
		if redisClient == nil {
			return
		}
		if err := redisClient.Close(); err != nil {
			logger.Error("Failed to close redis client", "error", err)
		}
	}
	return ginRouter, cleanup, nil
}

func initializeServices(cfg *config.Config, storageInstance storage.Storage, tokens *auth.TokenManager) *services.ServiceContainer {
	userRepo := repositories.NewUserRepository()
	requestRepo := repositories.NewMatchRequestRepository()
	imageRepo := repositories.NewProfileImageRepository()

	imageSettings := services.ImageSettings{
		MaxSize:           cfg.Images.MaxSize,
		AllowedTypes:      cfg.Images.AllowedTypes,
		MentorPlaceholder: cfg.Images.MentorPlaceholder,
		MenteePlaceholder: cfg.Images.MenteePlaceholder,
		URLPrefix:         cfg.Server.APIPrefix + "/images",
	}

	return &services.ServiceContainer{
		AuthService:         services.NewAuthService(userRepo, tokens),
		ProfileService:      services.NewProfileService(userRepo, imageRepo, storageInstance, imageSettings),
		MentorService:       services.NewMentorService(userRepo, imageSettings),
		MatchRequestService: services.NewMatchRequestService(requestRepo, userRepo),
	}
}

func initializeHandlers(cfg *config.Config, svc *services.ServiceContainer) *handlers.AppHandlers {
	baseHandler := handlers.NewBaseHandler(validator.New())

	return &handlers.AppHandlers{
		AuthHandler:         handlers.NewAuthHandler(baseHandler, svc.AuthService),
		ProfileHandler:      handlers.NewProfileHandler(baseHandler, svc.ProfileService, cfg.Images.MaxSize, cfg.Images.CacheMaxAge),
		MentorHandler:       handlers.NewMentorHandler(baseHandler, svc.MentorService),
		MatchRequestHandler: handlers.NewMatchRequestHandler(baseHandler, svc.MatchRequestService),
		HealthHandler:       handlers.NewHealthHandler(baseHandler),
	}
}

func initializeGinRouter(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) *gin.Engine {
	mode := gin.ReleaseMode
	switch cfg.Server.Env {
	case "test":
		mode = gin.TestMode
	case "development", "dev":
		mode = gin.DebugMode
	}
	if gin.Mode() != mode {
		gin.SetMode(mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.Server.AllowedOrigins))
	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimitMiddleware(newLimiter(cfg.RateLimit, redisClient)))
	}
	router.Use(middleware.DBMiddleware(db))
	return router
}

// newRedisClient возвращает nil, если Redis не задан или не отвечает.
func newRedisClient(cfg config.RateLimitConfig) *redis.Client {
	if !cfg.Enabled || cfg.RedisAddr == "" {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("Redis unavailable, falling back to in-memory rate limiter", "addr", cfg.RedisAddr, "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

// newLimiter выбирает хранилище Redis, если клиент есть, иначе память.
func newLimiter(cfg config.RateLimitConfig, client *redis.Client) *limiter.Limiter {
	if client != nil {
		store, err := middleware.NewRedisStore(client)
		if err == nil {
			logger.Info("Rate limiter backed by Redis", "addr", cfg.RedisAddr)
			return middleware.NewRateLimiter(store, cfg.Requests, cfg.Window)
		}
		logger.Warn("Failed to create redis rate limit store, using memory", "error", err)
	}
	return middleware.NewRateLimiter(middleware.NewMemoryStore(), cfg.Requests, cfg.Window)
}
