package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis_rate/v10"
	"go.uber.org/zap"

	"github.com/teocoin/settlement-engine/internal/adapter"
	apierrors "github.com/teocoin/settlement-engine/internal/api/shared/errors"
	"github.com/teocoin/settlement-engine/internal/logger"
	"github.com/teocoin/settlement-engine/internal/metrics"
)

const rateLimitKeyPrefix = "teo:ratelimit:"

// RateLimitConfig holds the per-client request budget
type RateLimitConfig struct {
	RequestsPerMinute int
	Burst             int
}

// RateLimit returns a gin middleware enforcing a per-client GCRA limit shared through Redis.
// Clients are keyed by auth subject when present, else by IP. Redis errors let the request through.
func RateLimit(limiter adapter.RedisRateLimiter, cfg RateLimitConfig) gin.HandlerFunc {
	limit := redis_rate.Limit{
		Rate:   cfg.RequestsPerMinute,
		Burst:  max(cfg.Burst, 1),
		Period: time.Minute,
	}

	return func(c *gin.Context) {
		key := rateLimitKeyPrefix + c.ClientIP()
		if subject := c.GetString(string(AUTH_SUBJECT_KEY)); subject != "" {
			key = rateLimitKeyPrefix + "sub:" + subject
		}

		res, err := limiter.Allow(c.Request.Context(), key, limit)
		if err != nil {
			logger.WarnCtx(c.Request.Context(), "Rate limiter unavailable, allowing request",
				zap.Error(err),
				zap.String("key", key),
			)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
		if res.Allowed == 0 {
			metrics.RateLimited.Inc()
			c.Header("Retry-After", strconv.Itoa(int(res.RetryAfter.Seconds())+1))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierrors.Response{
				Error: apierrors.NewRateLimitedError("Too many requests"),
			})
			return
		}

		c.Next()
	}
}
