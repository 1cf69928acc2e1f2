package middleware

import (
	"fmt"
	"time"

	apperrors "github.com/NomadCrew/feedback-desk/errors"
	"github.com/NomadCrew/feedback-desk/logger"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// SubmissionRateLimiter caps public feedback submissions per client IP over a
// fixed window. Redis failures let the request through. The IP comes from
// gin's ClientIP, so forwarded headers only count when the engine trusts the
// peer as a proxy.
func SubmissionRateLimiter(redisClient redis.Cmdable, requestsPerWindow int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		key := fmt.Sprintf("ratelimit:submit:%s", c.ClientIP())

		count, err := redisClient.Incr(ctx, key).Result()
		if err != nil {
			logger.GetLogger().Warnw("Rate limit check failed, allowing request", "error", err, "key", key)
			c.Next()
			return
		}
		if count == 1 {
			if err := redisClient.Expire(ctx, key, window).Err(); err != nil {
				logger.GetLogger().Warnw("Failed to set rate limit window", "error", err, "key", key)
			}
		}

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", requestsPerWindow))

		if count > int64(requestsPerWindow) {
			ttl, err := redisClient.TTL(ctx, key).Result()
			if err != nil || ttl <= 0 {
				ttl = window
			}

			c.Header("X-RateLimit-Remaining", "0")
			c.Header("X-RateLimit-Reset", fmt.Sprintf("%d", time.Now().Add(ttl).Unix()))
			c.Header("Retry-After", fmt.Sprintf("%d", int(ttl.Seconds())))

			_ = c.Error(apperrors.RateLimitExceeded("Too many submissions. Please try again later.", int(ttl.Seconds())))
			c.Abort()
			return
		}

		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", requestsPerWindow-int(count)))
		c.Next()
	}
}
