package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ==================== 路由级限流 ====================

// RequestLimiter 限流接口（与 service 层限流器同一实现）
type RequestLimiter interface {
	Allow(ctx context.Context, op, ownerKey string, limit int) bool
}

// RateLimit 路由级固定窗口限流中间件
// 购物车操作的限流在 service 层静默 no-op；这里用于需要显式 429 的入口
// （比如匿名会话令牌签发），按客户端 IP 维度计数
//
// 使用示例:
//
//	cart.POST("/session", middleware.RateLimit(limiter, "session_mint", 10), cartCtl.CreateSession)
func RateLimit(limiter RequestLimiter, op string, perMinute int) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter != nil && !limiter.Allow(c.Request.Context(), op, c.ClientIP(), perMinute) {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"code":    429,
				"message": "操作过于频繁，请稍后再试",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
