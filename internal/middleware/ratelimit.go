package middleware

import (
	"fmt"
	"time"

	"github.com/fox-studio/site/internal/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	defaultRateLimitMax    = 50
	defaultRateLimitWindow = time.Second
	defaultRateLimitPrefix = "fox:rate_limit:"
)

type RateLimitOptions struct {
	Max    int64
	Window time.Duration
	// Prefix separates counters of different limiters.
	Prefix string
	Logger *zap.Logger
}

// RateLimit enforces a fixed-window limit per client IP. Authenticated
// requests and redis failures pass through.
func RateLimit(rdb *redis.Client, opts RateLimitOptions) gin.HandlerFunc {
	if opts.Max <= 0 {
		opts.Max = defaultRateLimitMax
	}
	if opts.Window <= 0 {
		opts.Window = defaultRateLimitWindow
	}
	if opts.Prefix == "" {
		opts.Prefix = defaultRateLimitPrefix
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		if rdb == nil || IsAuthenticated(c) {
			c.Next()
			return
		}

		ip := c.ClientIP()
		if ip == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		windowKey := time.Now().UnixMilli() / opts.Window.Milliseconds()
		key := fmt.Sprintf("%s%s:%d", opts.Prefix, ip, windowKey)

		count, err := rdb.Incr(ctx, key).Result()
		if err != nil {
			c.Next()
			return
		}

		if count == 1 {
			rdb.PExpire(ctx, key, opts.Window+time.Second)
		}

		if count > opts.Max {
			opts.Logger.Warn("rate limited",
				zap.String("ip", ip),
				zap.String("path", c.Request.URL.Path),
			)
			response.TooManyRequests(c)
			return
		}

		c.Next()
	}
}
