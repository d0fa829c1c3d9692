package model

import (
	"time"

	"gorm.io/datatypes"
)

// ==================== 管理员角色常量 ====================

const (
	AdminRoleSuper = "super_admin" // 全权限
	AdminRoleStaff = "staff"       // 按 Permissions 授权
)

// 权限名
const (
	PermManageSettings = "manage_settings"
	PermManageOrders   = "manage_orders"
	PermManageProducts = "manage_products"
	PermViewReports    = "view_reports"
)

// ==================== AdminUser 管理员 ====================

// AdminUser 管理员授权，ID 即 SysUser.ID（与认证身份分离的授权角色）
type AdminUser struct {
	ID          int64             `gorm:"primaryKey"`
	Role        string            `gorm:"size:32;not null;default:staff"`
	Permissions datatypes.JSONMap `gorm:"type:jsonb"` // 权限名 -> bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (*AdminUser) TableName() string {
	return "admin_users"
}

// HasPermission 是否具备指定权限
func (a *AdminUser) HasPermission(perm string) bool {
	if a.Role == AdminRoleSuper {
		return true
	}
	if a.Permissions == nil {
		return false
	}
	v, ok := a.Permissions[perm]
	if !ok {
		return false
	}
	allowed, ok := v.(bool)
	return ok && allowed
}
