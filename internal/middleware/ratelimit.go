package middleware

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/wikisum/core/internal/config"
	"github.com/wikisum/core/internal/pkg/response"
)

const rateLimitWindow = time.Minute

// RateLimit returns a middleware enforcing a fixed-window per-client limit of
// maxPerWindow requests per minute, counted in redis. Redis outages fail open.
func RateLimit(rdb *redis.Client, cfg config.RateLimitConfig, scope string, maxPerWindow int) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil || maxPerWindow <= 0 {
			c.Next()
			return
		}

		ip := clientIP(c, cfg.TrustProxyHeaders)
		if ip == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		window := time.Now().Unix() / int64(rateLimitWindow.Seconds())
		key := fmt.Sprintf("wikisum:rate_limit:%s:%s:%d", scope, ip, window)

		count, err := rdb.Incr(ctx, key).Result()
		if err != nil {
			c.Next()
			return
		}
		if count == 1 {
			rdb.PExpire(ctx, key, rateLimitWindow+time.Second)
		}

		if count > int64(maxPerWindow) {
			retryAfter := rateLimitWindow - time.Duration(time.Now().Unix()%int64(rateLimitWindow.Seconds()))*time.Second
			c.Header("Retry-After", strconv.Itoa(int(retryAfter.Seconds())))
			response.TooManyRequests(c, "rate limit exceeded, slow down")
			return
		}

		c.Next()
	}
}

// clientIP resolves the client address, honoring proxy headers only when the
// deployment says a trusted proxy sets them.
func clientIP(c *gin.Context, trustProxyHeaders bool) string {
	if trustProxyHeaders {
		if fwd := c.GetHeader("X-Forwarded-For"); fwd != "" {
			if idx := strings.Index(fwd, ","); idx >= 0 {
				fwd = fwd[:idx]
			}
			return strings.TrimSpace(fwd)
		}
		if real := c.GetHeader("X-Real-IP"); real != "" {
			return strings.TrimSpace(real)
		}
	}
	host, _, err := net.SplitHostPort(c.Request.RemoteAddr)
	if err != nil {
		return c.Request.RemoteAddr
	}
	return host
}
