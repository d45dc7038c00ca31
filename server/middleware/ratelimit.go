package middleware

import (
	"math"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/clinic/errors"
	"github.com/kbukum/clinic/resilience"
)

// RateLimit throttles requests per client IP. Rejected requests get 429
// with a Retry-After header in whole seconds.
func RateLimit(limiter *resilience.KeyedRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		if limiter.Allow(key) {
			c.Next()
			return
		}
		wait := limiter.RetryAfter(key)
		secs := int(math.Ceil(wait.Seconds()))
		if secs < 1 {
			secs = 1
		}
		c.Header("Retry-After", strconv.Itoa(secs))
		abort(c, apperrors.RateLimited())
	}
}
