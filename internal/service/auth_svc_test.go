package service

import (
	"context"
	"errors"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"acadstore_v1_202608/internal/api/dto"
	"acadstore_v1_202608/internal/model"
	"acadstore_v1_202608/internal/repository"
)

// ==================== 测试辅助 ====================

func setupAuthTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}

	db.AutoMigrate(&model.SysUser{}, &model.Profile{}, &model.CartItem{})
	return db
}

func newTestAuthService(t *testing.T) (*AuthService, *CartService, *gorm.DB) {
	db := setupAuthTestDB(t)
	cartSvc := NewCartService(repository.NewCartRepository(db), newBudgetLimiter(), nil, DefaultCartConfig())
	authSvc := NewAuthService(
		repository.NewUserRepository(db),
		repository.NewProfileRepository(db),
		cartSvc,
	)
	return authSvc, cartSvc, db
}

// ==================== 注册 ====================

func TestAuthService_Register(t *testing.T) {
	svc, _, db := newTestAuthService(t)
	ctx := context.Background()

	info, err := svc.Register(ctx, &dto.RegisterRequest{
		Email:    "Asha@Example.com",
		Password: "strong-password",
		FullName: "Asha Rao",
	})
	if err != nil {
		t.Fatalf("注册失败: %v", err)
	}
	if info.Email != "asha@example.com" {
		t.Errorf("邮箱应小写化: %s", info.Email)
	}
	if info.FullName != "Asha Rao" {
		t.Errorf("full_name = %s, want Asha Rao", info.FullName)
	}

	// 密码不落明文
	var user model.SysUser
	db.Where("email = ?", "asha@example.com").First(&user)
	if user.Password == "strong-password" {
		t.Error("密码不应明文入库")
	}

	// 重复邮箱
	if _, err := svc.Register(ctx, &dto.RegisterRequest{
		Email: "asha@example.com", Password: "x", FullName: "X",
	}); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("重复邮箱应返回 ErrEmailTaken, got %v", err)
	}
}

// ==================== 登录 ====================

func TestAuthService_Login(t *testing.T) {
	svc, _, _ := newTestAuthService(t)
	ctx := context.Background()

	svc.Register(ctx, &dto.RegisterRequest{
		Email: "asha@example.com", Password: "strong-password", FullName: "Asha Rao",
	})

	resp, err := svc.Login(ctx, &dto.LoginRequest{
		Email: "asha@example.com", Password: "strong-password",
	})
	if err != nil {
		t.Fatalf("登录失败: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Error("登录响应应带 token 对")
	}
	if resp.User.Email != "asha@example.com" {
		t.Errorf("user.email = %s", resp.User.Email)
	}

	// 密码错误
	if _, err := svc.Login(ctx, &dto.LoginRequest{
		Email: "asha@example.com", Password: "wrong",
	}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("错误密码应返回 ErrInvalidCredentials, got %v", err)
	}

	// 用户不存在：同样的错误，不暴露区别
	if _, err := svc.Login(ctx, &dto.LoginRequest{
		Email: "nobody@example.com", Password: "x",
	}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("不存在的用户应返回 ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_LoginMergesAnonymousCart(t *testing.T) {
	svc, cartSvc, _ := newTestAuthService(t)
	ctx := context.Background()

	info, _ := svc.Register(ctx, &dto.RegisterRequest{
		Email: "asha@example.com", Password: "strong-password", FullName: "Asha Rao",
	})

	// 登录前匿名加购
	anon := model.CartOwner{SessionToken: "anon-token-9"}
	cartSvc.Add(ctx, anon, "Plagiarism Report", 499)

	_, err := svc.Login(ctx, &dto.LoginRequest{
		Email: "asha@example.com", Password: "strong-password",
		CartSession: "anon-token-9",
	})
	if err != nil {
		t.Fatalf("登录失败: %v", err)
	}

	// 匿名行归入用户
	userItems, _ := cartSvc.Load(ctx, model.CartOwner{UserID: info.ID})
	if len(userItems) != 1 || userItems[0].ProductName != "Plagiarism Report" {
		t.Errorf("匿名购物车未并入用户: %+v", userItems)
	}
	anonItems, _ := cartSvc.Load(ctx, anon)
	if len(anonItems) != 0 {
		t.Errorf("匿名行数 = %d, want 0", len(anonItems))
	}
}

func TestAuthService_LoginRejectsDisabled(t *testing.T) {
	svc, _, db := newTestAuthService(t)
	ctx := context.Background()

	svc.Register(ctx, &dto.RegisterRequest{
		Email: "asha@example.com", Password: "strong-password", FullName: "Asha Rao",
	})
	db.Model(&model.SysUser{}).Where("email = ?", "asha@example.com").
		Update("status", model.UserStatusDisabled)

	if _, err := svc.Login(ctx, &dto.LoginRequest{
		Email: "asha@example.com", Password: "strong-password",
	}); !errors.Is(err, ErrUserDisabled) {
		t.Errorf("停用账号应返回 ErrUserDisabled, got %v", err)
	}
}

// ==================== Token 刷新 ====================

func TestAuthService_RefreshToken(t *testing.T) {
	svc, _, _ := newTestAuthService(t)
	ctx := context.Background()

	svc.Register(ctx, &dto.RegisterRequest{
		Email: "asha@example.com", Password: "strong-password", FullName: "Asha Rao",
	})
	login, _ := svc.Login(ctx, &dto.LoginRequest{
		Email: "asha@example.com", Password: "strong-password",
	})

	resp, err := svc.RefreshToken(ctx, &dto.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	if err != nil {
		t.Fatalf("刷新失败: %v", err)
	}
	if resp.AccessToken == "" {
		t.Error("刷新应返回新的 access token")
	}

	// access token 不能拿来刷新
	if _, err := svc.RefreshToken(ctx, &dto.RefreshTokenRequest{RefreshToken: login.AccessToken}); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("access token 刷新应返回 ErrInvalidToken, got %v", err)
	}
}
