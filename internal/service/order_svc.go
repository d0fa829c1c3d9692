package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"acadstore_v1_202608/internal/api/dto"
	"acadstore_v1_202608/internal/model"
	"acadstore_v1_202608/internal/repository"
	"acadstore_v1_202608/pkg/utils"

	"github.com/google/uuid"
)

// ==================== 错误定义 ====================

var (
	ErrOrderNotFound     = errors.New("订单不存在")
	ErrOrderTokenInvalid = errors.New("查单凭证无效")
	ErrOrderInput        = errors.New("下单信息不完整")
)

// ==================== 依赖接口 ====================

// EmailSender 邮件发送接口（订单服务只管触发，不关心投递细节）
type EmailSender interface {
	SendOrderConfirmation(ctx context.Context, order *model.Order) error
	SendAdminNotification(ctx context.Context, order *model.Order) error
}

// ==================== OrderService 订单服务 ====================

// OrderService 订单服务
type OrderService struct {
	orderRepo repository.OrderRepository
	cartRepo  repository.CartRepository
	email     EmailSender // 可为 nil（测试或未配置邮件）
	audit     AuditLogger
	piiSecret string
}

// NewOrderService 创建订单服务
func NewOrderService(
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	email EmailSender,
	audit AuditLogger,
	piiSecret string,
) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		cartRepo:  cartRepo,
		email:     email,
		audit:     audit,
		piiSecret: piiSecret,
	}
}

// ==================== 下单 ====================

// Create 创建订单
// 金额入库 ×100（卢比转 paise）；成功后异步发邮件、清空下单方购物车。
// 邮件失败和清车失败都只记日志，不回滚订单——与线上既有行为一致
func (s *OrderService) Create(ctx context.Context, owner model.CartOwner, req *dto.CreateOrderRequest) (*model.Order, error) {
	if strings.TrimSpace(req.CustomerName) == "" || strings.TrimSpace(req.CustomerEmail) == "" {
		return nil, ErrOrderInput
	}
	if len(req.Items) == 0 || req.TotalAmount <= 0 {
		return nil, ErrOrderInput
	}

	itemsJSON, err := json.Marshal(req.Items)
	if err != nil {
		return nil, fmt.Errorf("序列化订单商品失败: %w", err)
	}

	phone := req.CustomerPhone
	if phone != "" {
		encrypted, err := utils.EncryptPII(phone, s.piiSecret)
		if err != nil {
			return nil, fmt.Errorf("加密手机号失败: %w", err)
		}
		phone = encrypted
	}

	order := &model.Order{
		OrderNumber:   generateOrderNumber(),
		CustomerName:  strings.TrimSpace(req.CustomerName),
		CustomerEmail: strings.ToLower(strings.TrimSpace(req.CustomerEmail)),
		CustomerPhone: phone,
		Items:         itemsJSON,
		TotalAmount:   int64(math.Round(req.TotalAmount * 100)), // 卢比 → paise
		Currency:      "INR",
		OrderStatus:   model.OrderStatusPending,
		PaymentMethod: model.PaymentMethodUPI,
		AccessToken:   uuid.NewString(),
	}
	if owner.IsUser() {
		uid := owner.UserID
		order.UserID = &uid
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("创建订单失败: %w", err)
	}

	if s.audit != nil {
		s.audit.Log("orders", order.OrderNumber, model.AccessActionInsert, owner.Key(), "")
	}

	// 邮件异步发送，不等待也不影响下单结果
	s.dispatchEmails(order)

	// 清空购物车。失败只记日志：订单已落库，不做跨步骤回滚
	if owner.Valid() {
		if err := s.cartRepo.DeleteByOwner(ctx, owner); err != nil {
			log.Printf("[Order] 订单 %s 已创建但清空购物车失败: %v", order.OrderNumber, err)
		}
	}

	return order, nil
}

// dispatchEmails 触发确认邮件与管理员通知
func (s *OrderService) dispatchEmails(order *model.Order) {
	if s.email == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		if err := s.email.SendOrderConfirmation(ctx, order); err != nil {
			log.Printf("[Order] 订单 %s 确认邮件发送失败: %v", order.OrderNumber, err)
		}
		if err := s.email.SendAdminNotification(ctx, order); err != nil {
			log.Printf("[Order] 订单 %s 管理员通知发送失败: %v", order.OrderNumber, err)
		}
	}()
}

// ==================== 查单 ====================

// GetByAccessToken 凭 access_token 查单（游客查单入口）
func (s *OrderService) GetByAccessToken(ctx context.Context, token string) (*model.Order, error) {
	if token == "" {
		return nil, ErrOrderTokenInvalid
	}

	order, err := s.orderRepo.GetByAccessToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderTokenInvalid
	}

	if s.audit != nil {
		s.audit.Log("orders", order.OrderNumber, model.AccessActionRead, "token", "guest lookup")
	}
	return order, nil
}

// ListByUser 用户订单历史
func (s *OrderService) ListByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	return s.orderRepo.ListByUser(ctx, userID, 100)
}

// ==================== 管理端 ====================

// List 管理端订单列表
func (s *OrderService) List(ctx context.Context, filter repository.OrderFilter) ([]model.Order, int64, error) {
	return s.orderRepo.List(ctx, filter)
}

// UpdateStatus 更新订单状态（管理端的线下动作：核对转账截图后推进状态）
func (s *OrderService) UpdateStatus(ctx context.Context, id int64, status string, actor string) error {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if order == nil {
		return ErrOrderNotFound
	}

	if err := s.orderRepo.UpdateStatus(ctx, id, status); err != nil {
		return err
	}

	if s.audit != nil {
		s.audit.Log("orders", order.OrderNumber, model.AccessActionUpdate, actor,
			fmt.Sprintf("status: %s -> %s", order.OrderStatus, status))
	}
	return nil
}

// ==================== 视图转换 ====================

// ToView 转为对外展示结构，手机号解密
func (s *OrderService) ToView(order *model.Order, includePhone bool) dto.OrderView {
	view := dto.OrderView{
		ID:            order.ID,
		OrderNumber:   order.OrderNumber,
		CustomerName:  order.CustomerName,
		CustomerEmail: order.CustomerEmail,
		TotalAmount:   order.GetTotal(),
		Currency:      order.Currency,
		OrderStatus:   order.OrderStatus,
		PaymentMethod: order.PaymentMethod,
		CreatedAt:     order.CreatedAt,
	}

	if len(order.Items) > 0 {
		_ = json.Unmarshal(order.Items, &view.Items)
	}

	if includePhone && order.CustomerPhone != "" {
		phone, err := utils.DecryptPII(order.CustomerPhone, s.piiSecret)
		if err != nil {
			log.Printf("[Order] 订单 %s 手机号解密失败: %v", order.OrderNumber, err)
		} else {
			view.CustomerPhone = phone
		}
	}

	return view
}

// ==================== 内部辅助 ====================

// generateOrderNumber 订单号：ORD-日期-8位随机段
func generateOrderNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("ORD-%s-%s", time.Now().Format("20060102"), suffix)
}
