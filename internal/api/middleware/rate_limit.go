package middleware

import (
	"InstaCap/internal/api/config"
	"InstaCap/internal/pkg/consts"
	"InstaCap/internal/pkg/redis"
	"InstaCap/internal/pkg/response"
	"InstaCap/internal/service"
	log "log/slog"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimitMiddleware 按客户端 IP 的固定窗口限流，Redis 不可用时放行
func RateLimitMiddleware(cfg config.RateLimitConfig) gin.HandlerFunc {
	window := time.Duration(cfg.WindowSeconds) * time.Second
	return func(c *gin.Context) {
		if !cfg.Enable || cfg.Max <= 0 || !redis.Enabled() {
			c.Next()
			return
		}

		res, err := redis.IncrWindow(c.Request.Context(), consts.RateLimitKey+c.ClientIP(), window)
		if err != nil {
			log.WarnContext(c.Request.Context(), "rate limiter unavailable, allowing request", "err", err)
			c.Next()
			return
		}

		remaining := int64(cfg.Max) - res.Count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(cfg.Max))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(int64(res.ResetIn.Seconds()), 10))

		if res.Count > int64(cfg.Max) {
			c.Header("Retry-After", strconv.FormatInt(int64(res.ResetIn.Seconds())+1, 10))
			response.Error(c, service.ErrRateLimited)
			return
		}
		c.Next()
	}
}
