package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/movein/movein-api/apierrors"
)

// Counter is a windowed counter such as cache.Redis.
type Counter interface {
	IncrWithExpire(ctx context.Context, key string, expiration time.Duration) (int64, error)
}

// RateLimit allows perMinute requests per client IP per minute. Counter
// failures let the request through.
func RateLimit(counter Counter, perMinute int) gin.HandlerFunc {
	const window = time.Minute

	return func(c *gin.Context) {
		key := fmt.Sprintf("ratelimit:ip:%s", c.ClientIP())

		count, err := counter.IncrWithExpire(c.Request.Context(), key, window)
		if err != nil {
			slog.WarnContext(c.Request.Context(), "rate limiter unavailable", slog.Any("error", err))
			c.Next()
			return
		}

		remaining := perMinute - int(count)
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(perMinute))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(window).Unix(), 10))

		if int(count) > perMinute {
			c.Header("Retry-After", strconv.Itoa(int(window.Seconds())))
			apierrors.Respond(c, apierrors.ErrRateLimited)
			return
		}
		c.Next()
	}
}
