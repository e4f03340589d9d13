package middleware

import (
	"fmt"
	"net/http"
	"time"

	"tiendaweb/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// LoginRateLimit throttles login attempts per client IP using a fixed window
// counter in Redis. Passes through silently if Redis is unavailable — the rate
// limit is protection, not a dependency.
func LoginRateLimit(rdb *redis.Client, max int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil {
			c.Next()
			return
		}
		key := fmt.Sprintf("ratelimit:login:%s", c.ClientIP())
		count, err := rdb.Incr(c.Request.Context(), key).Result()
		if err != nil {
			c.Next()
			return
		}
		if count == 1 {
			rdb.Expire(c.Request.Context(), key, window)
		}
		if count > int64(max) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				apierror.New("demasiados intentos de login, intente más tarde"))
			return
		}
		c.Next()
	}
}
