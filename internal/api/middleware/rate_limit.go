package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/emifrog/SaaS-RH/pkg/redis"
	"github.com/emifrog/SaaS-RH/pkg/response"
)

// RateLimit bounds requests per client IP and route over a fixed
// window. A nil or failing Redis degrades to letting requests through,
// same policy as JWTAuth's blacklist check.
func RateLimit(rdb *redis.Client, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil {
			c.Next()
			return
		}

		key := fmt.Sprintf("rate_limit:%s:%s", c.ClientIP(), c.FullPath())
		allowed, err := rdb.CheckRateLimit(c.Request.Context(), key, limit, window)
		if err != nil {
			c.Next()
			return
		}

		if !allowed {
			response.Error(c, http.StatusTooManyRequests, 10004, "too many requests")
			c.Abort()
			return
		}

		c.Next()
	}
}
