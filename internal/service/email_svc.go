package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"acadstore_v1_202608/internal/api/dto"
	"acadstore_v1_202608/internal/model"
	"acadstore_v1_202608/internal/repository"

	"github.com/go-resty/resty/v2"
)

// ==================== 配置 ====================

// EmailConfig 邮件服务配置
type EmailConfig struct {
	APIKey      string // 邮件服务商 API Key
	APIURL      string // 服务商发送接口，如 https://api.resend.com/emails
	FromAddress string // 发件人
	SiteURL     string // 邮件里回链的站点地址
}

// ==================== EmailService 邮件服务 ====================

// EmailService 通过服务商 HTTP API 发送事务邮件
type EmailService struct {
	client      *resty.Client
	cfg         *EmailConfig
	settingRepo repository.SettingRepository
}

// NewEmailService 创建邮件服务
func NewEmailService(cfg *EmailConfig, settingRepo repository.SettingRepository) *EmailService {
	client := resty.New().
		SetTimeout(10 * time.Second).
		SetRetryCount(2).
		SetHeader("Authorization", "Bearer "+cfg.APIKey).
		SetHeader("Content-Type", "application/json")

	return &EmailService{
		client:      client,
		cfg:         cfg,
		settingRepo: settingRepo,
	}
}

// ==================== 发送 ====================

// SendOrderConfirmation 给买家发订单确认邮件（含 UPI 付款指引）
func (s *EmailService) SendOrderConfirmation(ctx context.Context, order *model.Order) error {
	subject := fmt.Sprintf("Order Confirmation - %s", order.OrderNumber)
	return s.send(ctx, order.CustomerEmail, subject, buildOrderConfirmationHTML(order, s.cfg.SiteURL))
}

// SendAdminNotification 给管理员发新订单通知
// 通知邮箱取自站点设置，未配置则跳过
func (s *EmailService) SendAdminNotification(ctx context.Context, order *model.Order) error {
	notifyEmail, err := s.settingRepo.Get(ctx, model.SettingNotificationEmail)
	if err != nil {
		return fmt.Errorf("读取通知邮箱失败: %w", err)
	}
	if notifyEmail == "" {
		return nil
	}

	subject := fmt.Sprintf("New Order Received - %s", order.OrderNumber)
	return s.send(ctx, notifyEmail, subject, buildAdminNotificationHTML(order))
}

// send 调服务商接口
func (s *EmailService) send(ctx context.Context, to, subject, html string) error {
	if s.cfg.APIKey == "" || s.cfg.APIURL == "" {
		return errors.New("邮件服务未配置")
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(map[string]interface{}{
			"from":    s.cfg.FromAddress,
			"to":      []string{to},
			"subject": subject,
			"html":    html,
		}).
		Post(s.cfg.APIURL)
	if err != nil {
		return fmt.Errorf("邮件发送请求失败: %w", err)
	}

	if resp.StatusCode() >= 300 {
		return fmt.Errorf("邮件服务商返回 %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}

// ==================== HTML 模板 ====================

// buildOrderConfirmationHTML 买家确认邮件
func buildOrderConfirmationHTML(order *model.Order, siteURL string) string {
	var b strings.Builder

	b.WriteString(`<div style="font-family:Arial,sans-serif;max-width:600px;margin:0 auto">`)
	b.WriteString(fmt.Sprintf("<h2>Thank you for your order, %s!</h2>", order.CustomerName))
	b.WriteString(fmt.Sprintf("<p>Your order <strong>%s</strong> has been received.</p>", order.OrderNumber))

	b.WriteString(`<table style="width:100%;border-collapse:collapse">`)
	b.WriteString(`<tr><th align="left">Item</th><th align="right">Qty</th><th align="right">Price</th></tr>`)
	for _, line := range parseOrderLines(order) {
		b.WriteString(fmt.Sprintf(
			`<tr><td>%s</td><td align="right">%d</td><td align="right">₹%.2f</td></tr>`,
			line.Name, line.Quantity, line.Price))
	}
	b.WriteString("</table>")

	b.WriteString(fmt.Sprintf("<p><strong>Total: ₹%.2f</strong></p>", order.GetTotal()))
	b.WriteString("<p>Please complete the UPI transfer and email us the payment screenshot. " +
		"We will start processing once the payment is verified.</p>")
	if siteURL != "" {
		b.WriteString(fmt.Sprintf(
			`<p><a href="%s/order-status?token=%s">Track your order</a></p>`,
			siteURL, order.AccessToken))
	}
	b.WriteString("</div>")

	return b.String()
}

// buildAdminNotificationHTML 管理员通知邮件
func buildAdminNotificationHTML(order *model.Order) string {
	var b strings.Builder

	b.WriteString(`<div style="font-family:Arial,sans-serif">`)
	b.WriteString("<h3>New order received</h3>")
	b.WriteString("<ul>")
	b.WriteString(fmt.Sprintf("<li>Order: %s</li>", order.OrderNumber))
	b.WriteString(fmt.Sprintf("<li>Customer: %s (%s)</li>", order.CustomerName, order.CustomerEmail))
	b.WriteString(fmt.Sprintf("<li>Amount: ₹%.2f</li>", order.GetTotal()))
	b.WriteString(fmt.Sprintf("<li>Items: %d</li>", len(parseOrderLines(order))))
	b.WriteString("</ul>")
	b.WriteString("<p>Awaiting manual UPI payment verification.</p>")
	b.WriteString("</div>")

	return b.String()
}

func parseOrderLines(order *model.Order) []dto.OrderItemInput {
	var lines []dto.OrderItemInput
	if len(order.Items) > 0 {
		_ = json.Unmarshal(order.Items, &lines)
	}
	return lines
}
