package service

import (
	"context"
	"testing"

	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"acadstore_v1_202608/internal/model"
	"acadstore_v1_202608/internal/repository"
)

// ==================== 测试辅助 ====================

func setupAdminTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}

	db.AutoMigrate(&model.SysUser{}, &model.AdminUser{}, &model.SiteSetting{},
		&model.Order{}, &model.AccessLog{})
	return db
}

func newTestAdminService(t *testing.T) (*AdminService, *gorm.DB) {
	db := setupAdminTestDB(t)
	svc := NewAdminService(
		repository.NewAdminRepository(db),
		repository.NewSettingRepository(db),
		repository.NewUserRepository(db),
		repository.NewOrderRepository(db),
		repository.NewAccessLogRepository(db),
		nil,
	)
	return svc, db
}

// ==================== 权限校验 ====================

func TestAdminService_CheckPermission(t *testing.T) {
	svc, db := newTestAdminService(t)
	ctx := context.Background()

	// super_admin 全权限
	db.Create(&model.AdminUser{ID: 1, Role: model.AdminRoleSuper})
	// staff 只有显式授予的权限
	db.Create(&model.AdminUser{ID: 2, Role: model.AdminRoleStaff,
		Permissions: datatypes.JSONMap{model.PermManageOrders: true, model.PermViewReports: false}})

	allowed, err := svc.CheckPermission(ctx, 1, model.PermManageSettings)
	if err != nil || !allowed {
		t.Errorf("super_admin 应有任意权限, allowed=%v err=%v", allowed, err)
	}

	allowed, _ = svc.CheckPermission(ctx, 2, model.PermManageOrders)
	if !allowed {
		t.Error("staff 应有被授予的权限")
	}

	allowed, _ = svc.CheckPermission(ctx, 2, model.PermViewReports)
	if allowed {
		t.Error("显式 false 的权限应拒绝")
	}

	allowed, _ = svc.CheckPermission(ctx, 2, model.PermManageSettings)
	if allowed {
		t.Error("未授予的权限应拒绝")
	}

	// 普通用户根本不在管理员表里
	allowed, err = svc.CheckPermission(ctx, 99, model.PermManageOrders)
	if err != nil {
		t.Fatalf("非管理员查询不应报错: %v", err)
	}
	if allowed {
		t.Error("非管理员应拒绝")
	}
}

// ==================== 初始管理员 ====================

func TestAdminService_BootstrapAdmin(t *testing.T) {
	svc, db := newTestAdminService(t)
	ctx := context.Background()

	if err := svc.BootstrapAdmin(ctx, "admin@acadstore.in", "strong-password"); err != nil {
		t.Fatalf("初始管理员创建失败: %v", err)
	}

	var admin model.AdminUser
	if err := db.First(&admin).Error; err != nil {
		t.Fatalf("管理员未入库: %v", err)
	}
	if admin.Role != model.AdminRoleSuper {
		t.Errorf("role = %s, want super_admin", admin.Role)
	}

	var user model.SysUser
	db.Where("email = ?", "admin@acadstore.in").First(&user)
	if user.ID != admin.ID {
		t.Errorf("管理员 ID 应等于用户 ID: %d vs %d", admin.ID, user.ID)
	}

	// 已有管理员时再跑是 no-op
	if err := svc.BootstrapAdmin(ctx, "other@acadstore.in", "pw"); err != nil {
		t.Fatalf("重复 bootstrap 报错: %v", err)
	}
	var count int64
	db.Model(&model.AdminUser{}).Count(&count)
	if count != 1 {
		t.Errorf("管理员数 = %d, want 1", count)
	}
}

func TestAdminService_BootstrapAdminSkipsWhenUnconfigured(t *testing.T) {
	svc, db := newTestAdminService(t)

	if err := svc.BootstrapAdmin(context.Background(), "", ""); err != nil {
		t.Fatalf("未配置时应跳过而不是报错: %v", err)
	}

	var count int64
	db.Model(&model.AdminUser{}).Count(&count)
	if count != 0 {
		t.Errorf("管理员数 = %d, want 0", count)
	}
}

// ==================== 站点设置 ====================

func TestAdminService_Settings(t *testing.T) {
	svc, _ := newTestAdminService(t)
	ctx := context.Background()

	// 没配置时返回空
	resp, err := svc.GetSettings(ctx)
	if err != nil {
		t.Fatalf("读取设置失败: %v", err)
	}
	if resp.NotificationEmail != "" {
		t.Errorf("初始通知邮箱应为空, got %s", resp.NotificationEmail)
	}

	if err := svc.UpdateNotificationEmail(ctx, 1, "ops@acadstore.in"); err != nil {
		t.Fatalf("更新失败: %v", err)
	}

	resp, _ = svc.GetSettings(ctx)
	if resp.NotificationEmail != "ops@acadstore.in" {
		t.Errorf("通知邮箱 = %s, want ops@acadstore.in", resp.NotificationEmail)
	}
}
