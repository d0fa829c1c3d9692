package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"acadstore_v1_202608/internal/api/dto"
	"acadstore_v1_202608/internal/model"
	"acadstore_v1_202608/internal/repository"
)

// ==================== 测试辅助 ====================

func setupProductTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}

	db.AutoMigrate(&model.Product{})
	return db
}

func newTestProductService(t *testing.T) (*ProductService, *gorm.DB) {
	db := setupProductTestDB(t)
	storage, err := NewLocalStorage(&StorageConfig{
		LocalDir: t.TempDir(),
		SiteURL:  "http://localhost:8080",
	})
	if err != nil {
		t.Fatalf("本地存储初始化失败: %v", err)
	}
	return NewProductService(repository.NewProductRepository(db), storage), db
}

// ==================== 商品管理 ====================

func TestProductService_CreateAndSlugConflict(t *testing.T) {
	svc, _ := newTestProductService(t)
	ctx := context.Background()

	req := &dto.CreateProductRequest{
		Name:     "Plagiarism Report",
		Slug:     "plagiarism-report",
		Price:    499,
		Category: model.ProductCategoryReport,
	}
	product, err := svc.Create(ctx, req)
	if err != nil {
		t.Fatalf("创建失败: %v", err)
	}
	if !product.Active {
		t.Error("新商品应默认上架")
	}

	if _, err := svc.Create(ctx, req); !errors.Is(err, ErrSlugTaken) {
		t.Errorf("重复 slug 应返回 ErrSlugTaken, got %v", err)
	}
}

func TestProductService_GetBySlugHidesInactive(t *testing.T) {
	svc, db := newTestProductService(t)
	ctx := context.Background()

	product, _ := svc.Create(ctx, &dto.CreateProductRequest{
		Name: "Thesis Format", Slug: "thesis-format", Price: 299, Category: model.ProductCategoryReport,
	})

	if _, err := svc.GetBySlug(ctx, "thesis-format"); err != nil {
		t.Fatalf("上架商品应可见: %v", err)
	}

	db.Model(&model.Product{}).Where("id = ?", product.ID).Update("active", false)

	if _, err := svc.GetBySlug(ctx, "thesis-format"); !errors.Is(err, ErrProductNotFound) {
		t.Errorf("下架商品应不可见, got %v", err)
	}
}

// ==================== 数字交付 ====================

func TestProductService_DownloadLinksRequireCompleted(t *testing.T) {
	svc, _ := newTestProductService(t)
	ctx := context.Background()

	order := &model.Order{OrderStatus: model.OrderStatusPending}
	lines := []dto.OrderItemInput{{Name: "Plagiarism Report", Quantity: 1}}

	if _, err := svc.DownloadLinksForOrder(ctx, order, lines); !errors.Is(err, ErrOrderNotComplete) {
		t.Errorf("未完成订单应拒绝, got %v", err)
	}
}

func TestProductService_DownloadLinks(t *testing.T) {
	svc, _ := newTestProductService(t)
	ctx := context.Background()

	product, _ := svc.Create(ctx, &dto.CreateProductRequest{
		Name: "Plagiarism Report", Slug: "plagiarism-report", Price: 499, Category: model.ProductCategoryReport,
	})
	// 第二个商品没有交付物，链接里应被跳过
	svc.Create(ctx, &dto.CreateProductRequest{
		Name: "Thesis Format", Slug: "thesis-format", Price: 299, Category: model.ProductCategoryReport,
	})

	if err := svc.UploadAsset(ctx, product.ID, []byte("report-bytes"), "report.pdf", "application/pdf"); err != nil {
		t.Fatalf("上传交付物失败: %v", err)
	}

	order := &model.Order{OrderStatus: model.OrderStatusCompleted}
	lines := []dto.OrderItemInput{
		{Name: "Plagiarism Report", Quantity: 1},
		{Name: "Thesis Format", Quantity: 1},
	}

	links, err := svc.DownloadLinksForOrder(ctx, order, lines)
	if err != nil {
		t.Fatalf("签发链接失败: %v", err)
	}
	if len(links) != 1 {
		t.Fatalf("链接数 = %d, want 1", len(links))
	}
	if links[0].ProductName != "Plagiarism Report" {
		t.Errorf("商品名 = %s, want Plagiarism Report", links[0].ProductName)
	}
	if !strings.HasPrefix(links[0].URL, "http://localhost:8080/files/") {
		t.Errorf("链接格式错误: %s", links[0].URL)
	}

	// 全部行都没有交付物
	order2 := &model.Order{OrderStatus: model.OrderStatusCompleted}
	if _, err := svc.DownloadLinksForOrder(ctx, order2, []dto.OrderItemInput{{Name: "Thesis Format"}}); !errors.Is(err, ErrNoAsset) {
		t.Errorf("无交付物应返回 ErrNoAsset, got %v", err)
	}
}
