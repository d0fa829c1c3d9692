package dto

// ==================== 站点设置 ====================

// UpdateSettingsRequest 更新通知邮箱
type UpdateSettingsRequest struct {
	NotificationEmail string `json:"notification_email" binding:"required,email"`
}

// SettingsResponse 站点设置
type SettingsResponse struct {
	NotificationEmail string `json:"notification_email"`
}

// ==================== 订单导出 ====================

// ExportOrdersRequest 管理端订单列表过滤
type ExportOrdersRequest struct {
	Status    string `form:"status"`
	Keyword   string `form:"keyword"`
	StartDate string `form:"start_date"` // 2006-01-02
	EndDate   string `form:"end_date"`
	Page      int    `form:"page"`
	PageSize  int    `form:"page_size"`
}

// ExportOrdersResponse 管理端订单列表
type ExportOrdersResponse struct {
	Total int64       `json:"total"`
	List  []OrderView `json:"list"`
}

// UpdateOrderStatusRequest 更新订单状态
// 状态是约定文本（pending / in_progress / completed），不做枚举强校验
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required,max=32"`
}

// ==================== 合规摘要 ====================

// PrivacySummaryResponse 隐私合规摘要
type PrivacySummaryResponse struct {
	WindowDays       int              `json:"window_days"`
	AccessByTable    map[string]int64 `json:"access_by_table"`
	TotalOrders      int64            `json:"total_orders"`
	EncryptedPhones  int64            `json:"encrypted_phones"`
	PendingOrders    int64            `json:"pending_orders"`
	CompletedOrders  int64            `json:"completed_orders"`
	InProgressOrders int64            `json:"in_progress_orders"`
}
