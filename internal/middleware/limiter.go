package middleware

import (
	"github.com/nexbyte/hackmd/pkg/code"
	"github.com/nexbyte/hackmd/pkg/limiter"

	"github.com/gin-gonic/gin"
)

// RateLimiter creates rate limiting middleware (supports dependency injection)
// RateLimiter 创建限流中间件（支持依赖注入）
func RateLimiter(l limiter.Face, w ErrorWriter) gin.HandlerFunc {
	w = writerOrJSON(w)
	return func(c *gin.Context) {
		key := l.Key(c)
		if bucket, ok := l.GetBucket(key); ok {
			count := bucket.TakeAvailable(1)
			if count == 0 {
				w(c, code.ErrorTooManyRequests)
				c.Abort()
				return
			}
		}

		c.Next()
	}
}
