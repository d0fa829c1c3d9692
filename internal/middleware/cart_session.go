package middleware

import (
	"time"

	"acadstore_v1_202608/internal/model"

	"github.com/gin-gonic/gin"
)

// ==================== 会话令牌解析 ====================

// HeaderCartSession 匿名购物车令牌请求头
const HeaderCartSession = "X-Cart-Session"

// ContextKeyCartOwner 购物车归属的 Context Key
const ContextKeyCartOwner = "cart_owner"

// SessionValidator 会话令牌校验接口
type SessionValidator interface {
	ValidateToken(token string) (time.Time, bool)
}

// CartSession 购物车归属中间件
// 登录用户优先用 JWT 里的 user_id；否则取并校验 X-Cart-Session 匿名令牌。
// 两者都没有时不报错，由 controller 决定归属缺失如何处理
func CartSession(validator SessionValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		owner := model.CartOwner{}

		if userID := GetUserID(c); userID > 0 {
			owner.UserID = userID
		} else if token := c.GetHeader(HeaderCartSession); token != "" {
			if _, ok := validator.ValidateToken(token); ok {
				owner.SessionToken = token
			}
		}

		c.Set(ContextKeyCartOwner, owner)
		c.Next()
	}
}

// GetCartOwner 从 Context 获取购物车归属
func GetCartOwner(c *gin.Context) model.CartOwner {
	if v, exists := c.Get(ContextKeyCartOwner); exists {
		if owner, ok := v.(model.CartOwner); ok {
			return owner
		}
	}
	return model.CartOwner{}
}
