package model

import (
	"time"

	"gorm.io/gorm"
)

// ==================== 用户状态常量 ====================

const (
	UserStatusDisabled = 0 // 停用
	UserStatusActive   = 1 // 正常
)

// ==================== SysUser 系统用户 ====================

// SysUser 认证用户（登录主体）
type SysUser struct {
	ID       int64  `gorm:"primaryKey;autoIncrement"`
	Email    string `gorm:"size:255;uniqueIndex;not null"`
	Password string `gorm:"size:255;not null"` // bcrypt hash
	Status   int    `gorm:"default:1"`

	LastLoginAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (*SysUser) TableName() string {
	return "sys_users"
}

// ==================== Profile 用户资料 ====================

// Profile 用户资料，与 SysUser 一对一
type Profile struct {
	UserID   int64  `gorm:"primaryKey"`
	FullName string `gorm:"size:255"`
	Phone    string `gorm:"size:64"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (*Profile) TableName() string {
	return "profiles"
}
