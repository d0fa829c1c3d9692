package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"acadstore_v1_202608/internal/api/dto"
	"acadstore_v1_202608/internal/middleware"
	"acadstore_v1_202608/internal/model"
	"acadstore_v1_202608/internal/repository"
)

// ==================== 错误定义 ====================

var (
	ErrInvalidCredentials = errors.New("邮箱或密码错误")
	ErrUserDisabled       = errors.New("账号已停用")
	ErrUserNotFound       = errors.New("用户不存在")
	ErrEmailTaken         = errors.New("邮箱已被注册")
	ErrInvalidToken       = errors.New("Token 无效")
)

// ==================== AuthService 认证服务 ====================

// AuthService 认证服务（注册/登录/刷新）
type AuthService struct {
	userRepo    repository.UserRepository
	profileRepo repository.ProfileRepository
	cartSvc     *CartService // 登录后合并匿名购物车，可为 nil
}

// NewAuthService 创建认证服务
func NewAuthService(userRepo repository.UserRepository, profileRepo repository.ProfileRepository, cartSvc *CartService) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		profileRepo: profileRepo,
		cartSvc:     cartSvc,
	}
}

// ==================== 注册 ====================

// Register 注册新用户，同时建一条 Profile 影子记录
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserInfo, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.SysUser{
		Email:    email,
		Password: string(hash),
		Status:   model.UserStatusActive,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	profile := &model.Profile{
		UserID:   user.ID,
		FullName: req.FullName,
		Phone:    req.Phone,
	}
	if err := s.profileRepo.Upsert(ctx, profile); err != nil {
		// 用户已建好，资料失败只记日志，下次更新资料时补
		log.Printf("[Auth] 用户 %d 资料创建失败: %v", user.ID, err)
	}

	return s.toUserInfo(user, profile), nil
}

// ==================== 登录 ====================

// Login 用户登录
// 请求里带匿名购物车令牌时，登录成功后把匿名购物车并入该用户
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if user.Status != model.UserStatusActive {
		return nil, ErrUserDisabled
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	accessToken, refreshToken, err := middleware.GenerateTokenPair(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	_ = s.userRepo.UpdateLastLogin(ctx, user.ID)

	// 合并匿名购物车，失败不影响登录
	if s.cartSvc != nil && req.CartSession != "" {
		if err := s.cartSvc.MergeSession(ctx, user.ID, req.CartSession); err != nil {
			log.Printf("[Auth] 用户 %d 匿名购物车合并失败: %v", user.ID, err)
		}
	}

	profile, _ := s.profileRepo.GetByUserID(ctx, user.ID)

	cfg := middleware.GetJWTConfig()
	return &dto.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    time.Now().Add(cfg.AccessTokenTTL),
		User:         s.toUserInfo(user, profile),
	}, nil
}

// ==================== Token 刷新 ====================

// RefreshToken 刷新 Token
func (s *AuthService) RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.RefreshTokenResponse, error) {
	claims, err := middleware.ParseToken(req.RefreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}

	if claims.Subject != "refresh" {
		return nil, ErrInvalidToken
	}

	// 确保用户仍然有效
	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil || user.Status != model.UserStatusActive {
		return nil, ErrUserDisabled
	}

	accessToken, refreshToken, err := middleware.GenerateTokenPair(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	cfg := middleware.GetJWTConfig()
	return &dto.RefreshTokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    time.Now().Add(cfg.AccessTokenTTL),
	}, nil
}

// ==================== 当前用户 ====================

// Me 获取当前用户信息
func (s *AuthService) Me(ctx context.Context, userID int64) (*dto.UserInfo, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	profile, _ := s.profileRepo.GetByUserID(ctx, userID)
	return s.toUserInfo(user, profile), nil
}

// ==================== 内部辅助 ====================

func (s *AuthService) toUserInfo(user *model.SysUser, profile *model.Profile) *dto.UserInfo {
	info := &dto.UserInfo{
		ID:        user.ID,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}
	if profile != nil {
		info.FullName = profile.FullName
		info.Phone = profile.Phone
	}
	return info
}
