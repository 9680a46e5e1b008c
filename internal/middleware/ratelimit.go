package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/KaayaanAi/mcp-crypto-news/internal/cache"
	"github.com/KaayaanAi/mcp-crypto-news/internal/config"
)

// RateLimitMiddleware enforces a per-client request limit over a fixed window.
// The counter lives in the cache store; when the store is unavailable the
// check fails open and every request is allowed.
type RateLimitMiddleware struct {
	cache  *cache.Manager
	limit  int
	window time.Duration
}

// NewRateLimitMiddleware creates the middleware from the rate-limit
// configuration.
func NewRateLimitMiddleware(cacheManager *cache.Manager, cfg config.RateLimitConfig) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		cache:  cacheManager,
		limit:  cfg.Limit,
		window: time.Duration(cfg.WindowSeconds) * time.Second,
	}
}

// Limit rejects requests from clients that exhausted their window quota.
// Clients are identified by IP.
func (rm *RateLimitMiddleware) Limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		identifier := c.ClientIP()

		if !rm.cache.AllowRequest(c.Request.Context(), identifier, rm.limit, rm.window) {
			status := rm.cache.GetRateLimitStatus(c.Request.Context(), identifier, rm.limit)
			c.Header("X-RateLimit-Limit", strconv.Itoa(rm.limit))
			c.Header("X-RateLimit-Remaining", strconv.FormatInt(status.Remaining, 10))
			c.Header("X-RateLimit-Reset", strconv.FormatInt(status.ResetTime, 10))
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded"})
			c.Abort()
			return
		}

		c.Next()
	}
}
