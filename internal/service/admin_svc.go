package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"

	"acadstore_v1_202608/internal/api/dto"
	"acadstore_v1_202608/internal/model"
	"acadstore_v1_202608/internal/repository"
)

// ==================== 错误定义 ====================

var ErrAdminBadInput = errors.New("参数不合法")

// 合规摘要统计窗口（天）
const privacySummaryWindowDays = 30

// ==================== AdminService 管理服务 ====================

// AdminService 管理端服务（权限校验/站点设置/合规摘要）
type AdminService struct {
	adminRepo   repository.AdminRepository
	settingRepo repository.SettingRepository
	userRepo    repository.UserRepository
	orderRepo   repository.OrderRepository
	logRepo     repository.AccessLogRepository
	audit       AuditLogger
}

// NewAdminService 创建管理服务
func NewAdminService(
	adminRepo repository.AdminRepository,
	settingRepo repository.SettingRepository,
	userRepo repository.UserRepository,
	orderRepo repository.OrderRepository,
	logRepo repository.AccessLogRepository,
	audit AuditLogger,
) *AdminService {
	return &AdminService{
		adminRepo:   adminRepo,
		settingRepo: settingRepo,
		userRepo:    userRepo,
		orderRepo:   orderRepo,
		logRepo:     logRepo,
		audit:       audit,
	}
}

// ==================== 权限校验 ====================

// CheckPermission 校验用户是否具备指定权限
// 每次都查库，不做缓存：撤权必须立即生效
func (s *AdminService) CheckPermission(ctx context.Context, userID int64, perm string) (bool, error) {
	admin, err := s.adminRepo.GetByID(ctx, userID)
	if err != nil {
		return false, err
	}
	if admin == nil {
		return false, nil
	}
	return admin.HasPermission(perm), nil
}

// ==================== 初始管理员 ====================

// BootstrapAdmin 管理员表为空时，根据环境配置创建首个超级管理员
// 邮箱对应的用户不存在就顺带建一个
func (s *AdminService) BootstrapAdmin(ctx context.Context, email, password string) error {
	count, err := s.adminRepo.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		log.Println("[Admin] 未配置初始管理员，跳过创建")
		return nil
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		user = &model.SysUser{
			Email:    email,
			Password: string(hash),
			Status:   model.UserStatusActive,
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return err
		}
	}

	admin := &model.AdminUser{
		ID:          user.ID,
		Role:        model.AdminRoleSuper,
		Permissions: datatypes.JSONMap{},
	}
	if err := s.adminRepo.Create(ctx, admin); err != nil {
		return err
	}

	log.Printf("[Admin] 已创建初始管理员: %s (用户 %d)", email, user.ID)
	return nil
}

// ==================== 站点设置 ====================

// GetSettings 读取站点设置
func (s *AdminService) GetSettings(ctx context.Context) (*dto.SettingsResponse, error) {
	email, err := s.settingRepo.Get(ctx, model.SettingNotificationEmail)
	if err != nil {
		return nil, err
	}
	return &dto.SettingsResponse{NotificationEmail: email}, nil
}

// UpdateNotificationEmail 更新订单通知邮箱
func (s *AdminService) UpdateNotificationEmail(ctx context.Context, adminID int64, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ErrAdminBadInput
	}

	if err := s.settingRepo.Set(ctx, model.SettingNotificationEmail, email, adminID); err != nil {
		return err
	}

	if s.audit != nil {
		s.audit.Log("site_settings", model.SettingNotificationEmail, model.AccessActionUpdate,
			fmt.Sprintf("admin:%d", adminID), "notification_email 已更新")
	}
	return nil
}

// ==================== 合规摘要 ====================

// PrivacySummary 隐私合规摘要：近 N 天各表访问量 + 加密手机号覆盖率
func (s *AdminService) PrivacySummary(ctx context.Context) (*dto.PrivacySummaryResponse, error) {
	since := time.Now().AddDate(0, 0, -privacySummaryWindowDays)

	byTable, err := s.logRepo.CountByTable(ctx, since)
	if err != nil {
		return nil, err
	}

	stats, err := s.orderRepo.GetStats(ctx, time.Time{}, time.Now())
	if err != nil {
		return nil, err
	}

	encrypted, err := s.orderRepo.CountEncryptedPhones(ctx)
	if err != nil {
		return nil, err
	}

	return &dto.PrivacySummaryResponse{
		WindowDays:       privacySummaryWindowDays,
		AccessByTable:    byTable,
		TotalOrders:      stats.TotalOrders,
		EncryptedPhones:  encrypted,
		PendingOrders:    stats.PendingOrders,
		CompletedOrders:  stats.CompletedOrders,
		InProgressOrders: stats.InProgressOrders,
	}, nil
}
