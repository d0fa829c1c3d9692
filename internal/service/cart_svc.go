package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"acadstore_v1_202608/internal/model"
	"acadstore_v1_202608/internal/repository"
)

// ==================== 错误定义 ====================

var (
	ErrInvalidOwner    = errors.New("购物车归属无效")
	ErrInvalidProduct  = errors.New("商品信息无效")
	ErrInvalidQuantity = errors.New("数量超出允许范围")
	ErrRateLimited     = errors.New("操作过于频繁")
)

// ==================== 操作名（限流/审计共用）====================

const (
	CartOpLoad   = "cart_load"
	CartOpAdd    = "cart_add"
	CartOpUpdate = "cart_update"
	CartOpRemove = "cart_remove"
	CartOpClear  = "cart_clear"
)

// ==================== CartConfig 购物车配置 ====================

// CartConfig 购物车行为配置
// 原系统存在 basic / enhanced 两套近似重复的购物车实现，
// 这里收敛为一套，用配置控制校验严格程度
type CartConfig struct {
	MaxQuantity       int     // 单行数量上限
	MaxProductNameLen int     // 商品名长度上限
	MaxPrice          float64 // 单价上限（严格模式下生效）
	Strict            bool    // 严格校验（原 enhanced 行为）

	// 每分钟调用上限，按操作区分
	Limits map[string]int
}

// DefaultCartConfig 默认配置
func DefaultCartConfig() CartConfig {
	return CartConfig{
		MaxQuantity:       100,
		MaxProductNameLen: 255,
		MaxPrice:          1000000,
		Strict:            true,
		Limits: map[string]int{
			CartOpLoad:   50,
			CartOpAdd:    20,
			CartOpUpdate: 30,
			CartOpRemove: 30,
			CartOpClear:  5,
		},
	}
}

// ==================== CartService 购物车服务 ====================

// CartService 购物车服务
// 每个操作统一经过 instrument：限流检查 + 前后审计，业务方法里不再散落这类调用
type CartService struct {
	cartRepo repository.CartRepository
	limiter  RateLimiter
	audit    AuditLogger
	cfg      CartConfig
}

// NewCartService 创建购物车服务
func NewCartService(cartRepo repository.CartRepository, limiter RateLimiter, audit AuditLogger, cfg CartConfig) *CartService {
	if cfg.MaxQuantity <= 0 {
		cfg = DefaultCartConfig()
	}
	return &CartService{
		cartRepo: cartRepo,
		limiter:  limiter,
		audit:    audit,
		cfg:      cfg,
	}
}

// ==================== 横切逻辑 ====================

// instrument 包住每个购物车操作：限流 + 前后审计
// 限流拒绝返回 ErrRateLimited，由各操作翻译为静默 no-op
func (s *CartService) instrument(ctx context.Context, op string, owner model.CartOwner, fn func() error) error {
	if !owner.Valid() {
		return ErrInvalidOwner
	}

	if limit, ok := s.cfg.Limits[op]; ok && limit > 0 && s.limiter != nil {
		if !s.limiter.Allow(ctx, op, owner.Key(), limit) {
			if s.audit != nil {
				s.audit.LogSecurityEvent("rate_limit_exceeded", owner.Key(), op)
			}
			return ErrRateLimited
		}
	}

	if s.audit != nil {
		s.audit.Log("cart_items", "", op+"_attempt", owner.Key(), "")
	}

	err := fn()

	if s.audit != nil {
		result := "ok"
		if err != nil {
			result = err.Error()
		}
		s.audit.Log("cart_items", "", op, owner.Key(), result)
	}

	return err
}

// ==================== 购物车操作 ====================

// Load 加载购物车
func (s *CartService) Load(ctx context.Context, owner model.CartOwner) ([]model.CartItem, error) {
	var items []model.CartItem

	err := s.instrument(ctx, CartOpLoad, owner, func() error {
		var e error
		items, e = s.cartRepo.ListByOwner(ctx, owner)
		return e
	})
	if errors.Is(err, ErrRateLimited) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return items, nil
}

// Add 加入购物车
// 同名商品已存在时数量 +1，不插入重复行；被限流时静默 no-op 返回 nil
func (s *CartService) Add(ctx context.Context, owner model.CartOwner, productName string, price float64) (*model.CartItem, error) {
	if err := s.validateProduct(productName, price); err != nil {
		return nil, err
	}

	var item *model.CartItem

	err := s.instrument(ctx, CartOpAdd, owner, func() error {
		existing, e := s.cartRepo.GetByOwnerAndName(ctx, owner, productName)
		if e != nil {
			return e
		}

		if existing != nil {
			newQty := existing.Quantity + 1
			if newQty > s.cfg.MaxQuantity {
				return ErrInvalidQuantity
			}
			if e := s.cartRepo.UpdateQuantity(ctx, existing.ID, newQty); e != nil {
				return e
			}
			existing.Quantity = newQty
			item = existing
			return nil
		}

		item = &model.CartItem{
			ProductName: productName,
			Price:       price,
			Quantity:    1,
		}
		s.applyOwner(item, owner)
		return s.cartRepo.Create(ctx, item)
	})
	if errors.Is(err, ErrRateLimited) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateQuantity 修改数量
// 数量 <= 0 视为删除；超出 [0, MaxQuantity] 拒绝且购物车不变
func (s *CartService) UpdateQuantity(ctx context.Context, owner model.CartOwner, id int64, quantity int) error {
	if quantity > s.cfg.MaxQuantity {
		return ErrInvalidQuantity
	}

	return s.instrument(ctx, CartOpUpdate, owner, func() error {
		item, e := s.cartRepo.GetByOwnerAndID(ctx, owner, id)
		if e != nil {
			return e
		}
		if item == nil {
			return nil // 行不存在，视为已删除
		}

		if quantity <= 0 {
			return s.cartRepo.Delete(ctx, owner, id)
		}
		return s.cartRepo.UpdateQuantity(ctx, id, quantity)
	})
}

// Remove 删除一行
func (s *CartService) Remove(ctx context.Context, owner model.CartOwner, id int64) error {
	return s.instrument(ctx, CartOpRemove, owner, func() error {
		return s.cartRepo.Delete(ctx, owner, id)
	})
}

// Clear 清空购物车
func (s *CartService) Clear(ctx context.Context, owner model.CartOwner) error {
	return s.instrument(ctx, CartOpClear, owner, func() error {
		return s.cartRepo.DeleteByOwner(ctx, owner)
	})
}

// MergeSession 登录后把匿名购物车并入用户购物车
// 同名行数量累加，其余行换绑归属，匿名行随后清除
func (s *CartService) MergeSession(ctx context.Context, userID int64, sessionToken string) error {
	if userID <= 0 || sessionToken == "" {
		return ErrInvalidOwner
	}

	anonOwner := model.CartOwner{SessionToken: sessionToken}
	userOwner := model.CartOwner{UserID: userID}

	anonItems, err := s.cartRepo.ListByOwner(ctx, anonOwner)
	if err != nil {
		return err
	}

	for _, anon := range anonItems {
		existing, err := s.cartRepo.GetByOwnerAndName(ctx, userOwner, anon.ProductName)
		if err != nil {
			return err
		}

		if existing != nil {
			merged := existing.Quantity + anon.Quantity
			if merged > s.cfg.MaxQuantity {
				merged = s.cfg.MaxQuantity
			}
			if err := s.cartRepo.UpdateQuantity(ctx, existing.ID, merged); err != nil {
				return err
			}
		} else {
			item := &model.CartItem{
				ProductName: anon.ProductName,
				Price:       anon.Price,
				Quantity:    anon.Quantity,
			}
			s.applyOwner(item, userOwner)
			if err := s.cartRepo.Create(ctx, item); err != nil {
				return err
			}
		}

		if err := s.cartRepo.Delete(ctx, anonOwner, anon.ID); err != nil {
			return err
		}
	}

	if s.audit != nil {
		s.audit.Log("cart_items", "", "cart_merge", userOwner.Key(),
			fmt.Sprintf("merged %d anonymous lines", len(anonItems)))
	}
	return nil
}

// ==================== 纯计算 ====================

// TotalAmount 合计金额（卢比），对内存列表做纯折叠，不回源
func TotalAmount(items []model.CartItem) float64 {
	var total float64
	for _, item := range items {
		total += item.LineTotal()
	}
	return total
}

// ItemCount 商品总件数
func ItemCount(items []model.CartItem) int {
	var count int
	for _, item := range items {
		count += item.Quantity
	}
	return count
}

// ==================== 内部辅助 ====================

func (s *CartService) validateProduct(productName string, price float64) error {
	if productName == "" || len(productName) > s.cfg.MaxProductNameLen {
		return ErrInvalidProduct
	}
	if price < 0 {
		return ErrInvalidProduct
	}
	if s.cfg.Strict && price > s.cfg.MaxPrice {
		return ErrInvalidProduct
	}
	return nil
}

func (s *CartService) applyOwner(item *model.CartItem, owner model.CartOwner) {
	if owner.IsUser() {
		uid := owner.UserID
		item.UserID = &uid
		return
	}

	token := owner.SessionToken
	expiresAt := time.Now().Add(SessionTokenTTL)
	item.SessionToken = &token
	item.SessionExpiresAt = &expiresAt
}
