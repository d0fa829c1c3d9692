package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ==================== 管理权限门 ====================

// PermissionChecker 权限检查接口
type PermissionChecker interface {
	CheckPermission(ctx context.Context, userID int64, perm string) (bool, error)
}

// SecurityEventRecorder 安全事件记录接口
type SecurityEventRecorder interface {
	LogSecurityEvent(event, actor, detail string)
}

// AdminGate 管理端路由守卫
// 每次请求都重新查权限表——不缓存结果，权限回收立即生效。
// 未登录 401，已登录无权限 403，两种拒绝都落审计
func AdminGate(checker PermissionChecker, recorder SecurityEventRecorder, perm string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := GetUserID(c)
		if userID == 0 {
			if recorder != nil {
				recorder.LogSecurityEvent("admin_access_denied", "anonymous", c.FullPath())
			}
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    401,
				"message": "请先登录",
			})
			c.Abort()
			return
		}

		actor := strconv.FormatInt(userID, 10)

		allowed, err := checker.CheckPermission(c.Request.Context(), userID, perm)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"code":    500,
				"message": "权限检查失败",
			})
			c.Abort()
			return
		}

		if !allowed {
			if recorder != nil {
				recorder.LogSecurityEvent("admin_access_unauthorized", actor, c.FullPath()+" perm="+perm)
			}
			c.JSON(http.StatusForbidden, gin.H{
				"code":    403,
				"message": "无权限访问",
			})
			c.Abort()
			return
		}

		if recorder != nil {
			recorder.LogSecurityEvent("admin_access_granted", actor, c.FullPath())
		}
		c.Next()
	}
}
