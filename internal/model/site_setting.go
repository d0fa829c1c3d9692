package model

import "time"

// 设置键
const (
	SettingNotificationEmail = "notification_email" // 新订单通知邮箱
)

// SiteSetting 站点配置（键值）
type SiteSetting struct {
	Key   string `gorm:"primaryKey;size:64"`
	Value string `gorm:"type:text"`

	UpdatedAt time.Time
	UpdatedBy int64
}

func (*SiteSetting) TableName() string {
	return "site_settings"
}
