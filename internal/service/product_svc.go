package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"acadstore_v1_202608/internal/api/dto"
	"acadstore_v1_202608/internal/model"
	"acadstore_v1_202608/internal/repository"
)

// ==================== 错误定义 ====================

var (
	ErrProductNotFound  = errors.New("商品不存在")
	ErrSlugTaken        = errors.New("slug 已被占用")
	ErrOrderNotComplete = errors.New("订单未完成，暂不能下载")
	ErrNoAsset          = errors.New("商品未上传交付物")
)

// 签名下载链接有效期
const downloadLinkTTL = 30 * time.Minute

// ==================== ProductService 商品服务 ====================

// ProductService 商品目录与数字交付
type ProductService struct {
	productRepo repository.ProductRepository
	storage     StorageProvider // 可为 nil（未配置存储时禁用交付）
}

// NewProductService 创建商品服务
func NewProductService(productRepo repository.ProductRepository, storage StorageProvider) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		storage:     storage,
	}
}

// ==================== 店面侧 ====================

// ListActive 上架商品列表
func (s *ProductService) ListActive(ctx context.Context, category string) ([]dto.ProductView, error) {
	products, err := s.productRepo.ListActive(ctx, category)
	if err != nil {
		return nil, err
	}

	views := make([]dto.ProductView, len(products))
	for i, p := range products {
		views[i] = toProductView(&p)
	}
	return views, nil
}

// GetBySlug 商品详情
func (s *ProductService) GetBySlug(ctx context.Context, slug string) (*dto.ProductView, error) {
	product, err := s.productRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if product == nil || !product.Active {
		return nil, ErrProductNotFound
	}

	view := toProductView(product)
	return &view, nil
}

// ==================== 管理侧 ====================

// ListAll 全部商品（含下架），管理端用
func (s *ProductService) ListAll(ctx context.Context) ([]model.Product, error) {
	return s.productRepo.ListAll(ctx)
}

// Create 新建商品
func (s *ProductService) Create(ctx context.Context, req *dto.CreateProductRequest) (*model.Product, error) {
	existing, err := s.productRepo.GetBySlug(ctx, req.Slug)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrSlugTaken
	}

	product := &model.Product{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		Active:      true,
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// Update 更新商品
func (s *ProductService) Update(ctx context.Context, id int64, req *dto.UpdateProductRequest) (*model.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	fields := map[string]interface{}{}
	if req.Name != "" {
		fields["name"] = req.Name
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.Price != nil {
		fields["price"] = *req.Price
	}
	if req.Category != "" {
		fields["category"] = req.Category
	}
	if req.Active != nil {
		fields["active"] = *req.Active
	}

	if len(fields) > 0 {
		if err := s.productRepo.UpdateFields(ctx, id, fields); err != nil {
			return nil, err
		}
	}
	return s.productRepo.GetByID(ctx, id)
}

// UploadAsset 上传交付物，覆盖旧文件
func (s *ProductService) UploadAsset(ctx context.Context, id int64, data []byte, filename, contentType string) error {
	if s.storage == nil {
		return errors.New("存储服务未配置")
	}

	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if product == nil {
		return ErrProductNotFound
	}

	key, err := s.storage.Upload(ctx, data, filename, contentType)
	if err != nil {
		return err
	}

	if err := s.productRepo.UpdateFields(ctx, id, map[string]interface{}{"asset_key": key}); err != nil {
		return fmt.Errorf("保存交付物 key 失败: %w", err)
	}

	// 旧文件尽力删除，失败不影响结果
	if product.AssetKey != "" {
		_ = s.storage.Delete(ctx, product.AssetKey)
	}
	return nil
}

// ==================== 数字交付 ====================

// DownloadLinksForOrder 给已完成订单签发限时下载链接
// 按订单行商品名匹配目录里的商品，没有交付物的行跳过
func (s *ProductService) DownloadLinksForOrder(ctx context.Context, order *model.Order, lines []dto.OrderItemInput) ([]dto.DownloadLink, error) {
	if order.OrderStatus != model.OrderStatusCompleted {
		return nil, ErrOrderNotComplete
	}
	if s.storage == nil {
		return nil, errors.New("存储服务未配置")
	}

	var links []dto.DownloadLink
	for _, line := range lines {
		product, err := s.productRepo.GetByName(ctx, line.Name)
		if err != nil {
			return nil, err
		}
		if product == nil || product.AssetKey == "" {
			continue
		}

		url, err := s.storage.GetSignedURL(ctx, product.AssetKey, downloadLinkTTL)
		if err != nil {
			return nil, err
		}

		links = append(links, dto.DownloadLink{
			ProductName: product.Name,
			URL:         url,
			ExpiresAt:   time.Now().Add(downloadLinkTTL),
		})
	}

	if len(links) == 0 {
		return nil, ErrNoAsset
	}
	return links, nil
}

// ==================== 内部辅助 ====================

func toProductView(p *model.Product) dto.ProductView {
	return dto.ProductView{
		ID:          p.ID,
		Name:        p.Name,
		Slug:        p.Slug,
		Description: p.Description,
		Price:       p.Price,
		Category:    p.Category,
		CreatedAt:   p.CreatedAt,
	}
}
