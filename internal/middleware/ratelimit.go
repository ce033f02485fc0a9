package middleware

import (
	"context"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"

	"mentormatch_backend/internal/logger"
	"mentormatch_backend/pkg/apperrors"
)

const rateLimitPrefix = "ratelimit"

// RateLimiter - часть *limiter.Limiter, которая нужна middleware.
type RateLimiter interface {
	Get(ctx context.Context, key string) (limiter.Context, error)
}

// NewRateLimiter - не больше requests запросов за window с одного ключа.
func NewRateLimiter(store limiter.Store, requests int, window time.Duration) *limiter.Limiter {
	return limiter.New(store, limiter.Rate{
		Period: window,
		Limit:  int64(requests),
	})
}

// NewMemoryStore - счетчики в памяти процесса, для одного экземпляра сервиса.
func NewMemoryStore() limiter.Store {
	return memory.NewStoreWithOptions(limiter.StoreOptions{
		Prefix:          rateLimitPrefix,
		CleanUpInterval: limiter.DefaultCleanUpInterval,
	})
}

// NewRedisStore - общий лимит для всех экземпляров.
// Счетчик и TTL ключа выставляются одним Lua-скриптом.
func NewRedisStore(client *redis.Client) (limiter.Store, error) {
	return sredis.NewStoreWithOptions(client, limiter.StoreOptions{
		Prefix:   rateLimitPrefix,
		MaxRetry: limiter.DefaultMaxRetry,
	})
}

// RateLimitMiddleware ограничивает число запросов с одного IP.
// Ошибка хранилища лимитов не блокирует запрос.
func RateLimitMiddleware(l RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		lctx, err := l.Get(c.Request.Context(), c.ClientIP())
		if err != nil {
			logger.CtxWarn(c.Request.Context(), "rate limiter unavailable", "error", err.Error())
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.FormatInt(lctx.Limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(lctx.Remaining, 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(lctx.Reset, 10))

		if lctx.Reached {
			apperrors.HandleError(c, apperrors.ErrRateLimited)
			return
		}
		c.Next()
	}
}
