package middleware

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/otscheduler/portal/config"
	"github.com/otscheduler/portal/util"
)

const (
	defaultRateLimit  = 5
	defaultRateWindow = 15 * time.Minute
)

// RateLimitConfig holds configuration for rate limiting
type RateLimitConfig struct {
	Limit  int
	Window time.Duration
}

func rateLimitKey(endpoint, clientIP string) string {
	return fmt.Sprintf("ratelimit:%s:%s", endpoint, clientIP)
}

// RateLimiter limits requests per client IP and path with a Redis counter.
// Without Redis, or when Redis fails, requests are allowed.
func RateLimiter(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.Limit == 0 {
		cfg.Limit = defaultRateLimit
	}
	if cfg.Window == 0 {
		cfg.Window = defaultRateWindow
	}

	return func(c *gin.Context) {
		clientIP := c.ClientIP()
		endpoint := c.Request.URL.Path

		allowed, err := checkRateLimit(c.Request.Context(), rateLimitKey(endpoint, clientIP), cfg.Limit, cfg.Window)
		if err != nil {
			log.Printf("rate limit check failed for %s: %v", endpoint, err)
			c.Next()
			return
		}
		if !allowed {
			util.LogRateLimitExceeded(clientIP, endpoint)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, util.APIResponse{
				Success: false,
				Error:   "rate limit exceeded",
				Msg:     "Too many requests. Please try again later.",
			})
			return
		}
		c.Next()
	}
}

// checkRateLimit increments the counter for key and reports whether it is
// still within limit. The window starts at the first request.
func checkRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	rdb := config.GetRedisClient()
	if rdb == nil {
		return true, nil
	}

	count, err := rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check rate limit: %w", err)
	}
	if count == 1 {
		if err := rdb.Expire(ctx, key, window).Err(); err != nil {
			// a counter without TTL would lock the client out for good
			rdb.Del(ctx, key)
			return false, fmt.Errorf("failed to start rate limit window: %w", err)
		}
	}
	return count <= int64(limit), nil
}

// ResetRateLimit clears the counter of one client on one endpoint.
func ResetRateLimit(ctx context.Context, clientIP, endpoint string) error {
	rdb := config.GetRedisClient()
	if rdb == nil {
		return fmt.Errorf("redis not available")
	}
	return rdb.Del(ctx, rateLimitKey(endpoint, clientIP)).Err()
}
