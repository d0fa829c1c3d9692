package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"acadstore_v1_202608/internal/model"
	"acadstore_v1_202608/internal/repository"
)

// ==================== 测试辅助 ====================

func setupCartTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}

	db.AutoMigrate(&model.CartItem{})
	return db
}

// budgetLimiter 按预算放行的测试限流器，避免依赖真实时间窗口
type budgetLimiter struct {
	mu     sync.Mutex
	budget map[string]int
}

func newBudgetLimiter() *budgetLimiter {
	return &budgetLimiter{budget: map[string]int{}}
}

func (l *budgetLimiter) Allow(_ context.Context, op, ownerKey string, limit int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	key := op + "_" + ownerKey
	l.budget[key]++
	return l.budget[key] <= limit
}

func newTestCartService(t *testing.T) (*CartService, *gorm.DB) {
	db := setupCartTestDB(t)
	svc := NewCartService(repository.NewCartRepository(db), newBudgetLimiter(), nil, DefaultCartConfig())
	return svc, db
}

// ==================== 加购 ====================

func TestCartService_AddMergesByName(t *testing.T) {
	svc, db := newTestCartService(t)
	ctx := context.Background()
	owner := model.CartOwner{UserID: 1}

	// 同名商品加两次
	if _, err := svc.Add(ctx, owner, "Plagiarism Report", 499); err != nil {
		t.Fatalf("第一次加购失败: %v", err)
	}
	item, err := svc.Add(ctx, owner, "Plagiarism Report", 499)
	if err != nil {
		t.Fatalf("第二次加购失败: %v", err)
	}

	if item.Quantity != 2 {
		t.Errorf("quantity = %d, want 2", item.Quantity)
	}

	// 验证只有一行
	var count int64
	db.Model(&model.CartItem{}).Count(&count)
	if count != 1 {
		t.Errorf("行数 = %d, want 1", count)
	}

	items, _ := svc.Load(ctx, owner)
	if got := TotalAmount(items); got != 998 {
		t.Errorf("total = %v, want 998", got)
	}
}

func TestCartService_AddValidation(t *testing.T) {
	svc, _ := newTestCartService(t)
	ctx := context.Background()
	owner := model.CartOwner{UserID: 1}

	if _, err := svc.Add(ctx, owner, "", 100); !errors.Is(err, ErrInvalidProduct) {
		t.Errorf("空商品名应拒绝, got %v", err)
	}
	if _, err := svc.Add(ctx, owner, "Report", -1); !errors.Is(err, ErrInvalidProduct) {
		t.Errorf("负价格应拒绝, got %v", err)
	}
	if _, err := svc.Add(ctx, model.CartOwner{}, "Report", 100); !errors.Is(err, ErrInvalidOwner) {
		t.Errorf("无归属应拒绝, got %v", err)
	}
}

// ==================== 改数量 ====================

func TestCartService_UpdateQuantityZeroRemoves(t *testing.T) {
	svc, _ := newTestCartService(t)
	ctx := context.Background()
	owner := model.CartOwner{UserID: 1}

	a, _ := svc.Add(ctx, owner, "Thesis Format", 299)
	svc.Add(ctx, owner, "Plagiarism Report", 499)

	// 数量 0 等价于删除该行
	if err := svc.UpdateQuantity(ctx, owner, a.ID, 0); err != nil {
		t.Fatalf("数量清零失败: %v", err)
	}

	items, _ := svc.Load(ctx, owner)
	if len(items) != 1 {
		t.Fatalf("剩余行数 = %d, want 1", len(items))
	}
	if items[0].ProductName != "Plagiarism Report" {
		t.Errorf("留下的行 = %s, want Plagiarism Report", items[0].ProductName)
	}
}

func TestCartService_UpdateQuantityOverLimit(t *testing.T) {
	svc, _ := newTestCartService(t)
	ctx := context.Background()
	owner := model.CartOwner{UserID: 1}

	a, _ := svc.Add(ctx, owner, "Thesis Format", 299)

	// 超出上限拒绝，且原值不变
	if err := svc.UpdateQuantity(ctx, owner, a.ID, 101); !errors.Is(err, ErrInvalidQuantity) {
		t.Errorf("超限应返回 ErrInvalidQuantity, got %v", err)
	}

	items, _ := svc.Load(ctx, owner)
	if items[0].Quantity != 1 {
		t.Errorf("quantity = %d, want 1 (拒绝后不应改动)", items[0].Quantity)
	}
}

func TestCartService_UpdateQuantityMissingRow(t *testing.T) {
	svc, _ := newTestCartService(t)
	owner := model.CartOwner{UserID: 1}

	// 行不存在视为已删除，不报错
	if err := svc.UpdateQuantity(context.Background(), owner, 9999, 5); err != nil {
		t.Errorf("不存在的行不应报错, got %v", err)
	}
}

// ==================== 限流 ====================

func TestCartService_AddRateLimitSilentNoop(t *testing.T) {
	svc, _ := newTestCartService(t)
	ctx := context.Background()
	owner := model.CartOwner{UserID: 1}

	// 默认窗口上限 20 次
	for i := 0; i < 20; i++ {
		if _, err := svc.Add(ctx, owner, "Report", 499); err != nil {
			t.Fatalf("第 %d 次加购失败: %v", i+1, err)
		}
	}

	// 第 21 次：静默 no-op，不报错也不改数据
	item, err := svc.Add(ctx, owner, "Report", 499)
	if err != nil {
		t.Fatalf("被限流的加购不应报错: %v", err)
	}
	if item != nil {
		t.Errorf("被限流的加购应返回 nil item")
	}

	items, _ := svc.Load(ctx, owner)
	if items[0].Quantity != 20 {
		t.Errorf("quantity = %d, want 20 (限流后不应改动)", items[0].Quantity)
	}
}

// ==================== 合并与清空 ====================

func TestCartService_MergeSession(t *testing.T) {
	svc, _ := newTestCartService(t)
	ctx := context.Background()

	anon := model.CartOwner{SessionToken: "anon-token-1"}
	user := model.CartOwner{UserID: 7}

	svc.Add(ctx, anon, "Plagiarism Report", 499)
	svc.Add(ctx, anon, "Plagiarism Report", 499)
	svc.Add(ctx, anon, "Thesis Format", 299)
	svc.Add(ctx, user, "Plagiarism Report", 499)

	if err := svc.MergeSession(ctx, 7, "anon-token-1"); err != nil {
		t.Fatalf("合并失败: %v", err)
	}

	// 匿名购物车清空
	anonItems, _ := svc.Load(ctx, anon)
	if len(anonItems) != 0 {
		t.Errorf("匿名行数 = %d, want 0", len(anonItems))
	}

	// 用户侧同名累加，异名换绑
	userItems, _ := svc.Load(ctx, user)
	if len(userItems) != 2 {
		t.Fatalf("用户行数 = %d, want 2", len(userItems))
	}
	for _, item := range userItems {
		switch item.ProductName {
		case "Plagiarism Report":
			if item.Quantity != 3 {
				t.Errorf("Plagiarism Report quantity = %d, want 3", item.Quantity)
			}
		case "Thesis Format":
			if item.Quantity != 1 {
				t.Errorf("Thesis Format quantity = %d, want 1", item.Quantity)
			}
		}
	}
}

func TestCartService_Clear(t *testing.T) {
	svc, _ := newTestCartService(t)
	ctx := context.Background()
	owner := model.CartOwner{UserID: 1}

	svc.Add(ctx, owner, "A", 100)
	svc.Add(ctx, owner, "B", 200)

	if err := svc.Clear(ctx, owner); err != nil {
		t.Fatalf("清空失败: %v", err)
	}

	items, _ := svc.Load(ctx, owner)
	if len(items) != 0 {
		t.Errorf("清空后行数 = %d, want 0", len(items))
	}
}

// ==================== 纯计算 ====================

func TestCartFolds(t *testing.T) {
	items := []model.CartItem{
		{ProductName: "A", Price: 499, Quantity: 2},
		{ProductName: "B", Price: 299, Quantity: 1},
	}

	if got := TotalAmount(items); got != 1297 {
		t.Errorf("TotalAmount = %v, want 1297", got)
	}
	if got := ItemCount(items); got != 3 {
		t.Errorf("ItemCount = %d, want 3", got)
	}

	if got := TotalAmount(nil); got != 0 {
		t.Errorf("空购物车 TotalAmount = %v, want 0", got)
	}
}
