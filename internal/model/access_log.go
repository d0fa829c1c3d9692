package model

import "time"

// ==================== 审计动作常量 ====================

const (
	AccessActionRead   = "read"
	AccessActionInsert = "insert"
	AccessActionUpdate = "update"
	AccessActionDelete = "delete"
	AccessActionDenied = "denied"
)

// ==================== AccessLog 访问日志 ====================

// AccessLog 追加式审计行，只写不改
type AccessLog struct {
	ID         int64  `gorm:"primaryKey;autoIncrement"`
	TableName_ string `gorm:"column:table_name;size:64;index"`
	RecordID   string `gorm:"size:64"`
	Action     string `gorm:"size:32;index"`
	Actor      string `gorm:"size:255;index"` // 用户ID 或匿名会话标识
	IP         string `gorm:"size:64"`
	Detail     string `gorm:"type:text"`

	CreatedAt time.Time `gorm:"index"`
}

func (*AccessLog) TableName() string {
	return "access_log"
}
