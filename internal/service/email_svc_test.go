package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"acadstore_v1_202608/internal/model"
	"acadstore_v1_202608/internal/repository"
)

// ==================== 测试辅助 ====================

func testOrder() *model.Order {
	items, _ := json.Marshal([]model.OrderLine{
		{Name: "Plagiarism Report", Price: 499, Quantity: 2},
	})
	return &model.Order{
		OrderNumber:   "ORD-20260829-ABCD1234",
		CustomerName:  "Asha Rao",
		CustomerEmail: "asha@example.com",
		Items:         items,
		TotalAmount:   100000, // 1000 卢比
		Currency:      "INR",
		AccessToken:   "token-123",
	}
}

func setupEmailSettingDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}
	db.AutoMigrate(&model.SiteSetting{})
	return db
}

// ==================== 单元测试 ====================

func TestEmailService_SendOrderConfirmation(t *testing.T) {
	var got map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &got)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	db := setupEmailSettingDB(t)
	svc := NewEmailService(&EmailConfig{
		APIKey:      "key",
		APIURL:      server.URL,
		FromAddress: "orders@acadstore.in",
		SiteURL:     "https://acadstore.in",
	}, repository.NewSettingRepository(db))

	if err := svc.SendOrderConfirmation(context.Background(), testOrder()); err != nil {
		t.Fatalf("发送失败: %v", err)
	}

	to := got["to"].([]interface{})
	if to[0] != "asha@example.com" {
		t.Errorf("to = %v, want asha@example.com", to[0])
	}
	if !strings.Contains(got["subject"].(string), "ORD-20260829-ABCD1234") {
		t.Errorf("subject 应带订单号: %v", got["subject"])
	}

	html := got["html"].(string)
	if !strings.Contains(html, "Plagiarism Report") {
		t.Error("正文应包含商品行")
	}
	if !strings.Contains(html, "₹1000.00") {
		t.Error("正文应包含卢比总额")
	}
	if !strings.Contains(html, "order-status?token=token-123") {
		t.Error("正文应包含查单链接")
	}
}

func TestEmailService_AdminNotificationSkipsWhenUnset(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	db := setupEmailSettingDB(t)
	settingRepo := repository.NewSettingRepository(db)
	svc := NewEmailService(&EmailConfig{APIKey: "key", APIURL: server.URL}, settingRepo)

	// 通知邮箱未配置：跳过且不报错
	if err := svc.SendAdminNotification(context.Background(), testOrder()); err != nil {
		t.Fatalf("未配置时不应报错: %v", err)
	}
	if called {
		t.Error("未配置通知邮箱不应发请求")
	}

	// 配置后正常发送
	settingRepo.Set(context.Background(), model.SettingNotificationEmail, "ops@acadstore.in", 1)
	if err := svc.SendAdminNotification(context.Background(), testOrder()); err != nil {
		t.Fatalf("发送失败: %v", err)
	}
	if !called {
		t.Error("配置通知邮箱后应发请求")
	}
}

func TestEmailService_ProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	db := setupEmailSettingDB(t)
	svc := NewEmailService(&EmailConfig{APIKey: "key", APIURL: server.URL}, repository.NewSettingRepository(db))

	if err := svc.SendOrderConfirmation(context.Background(), testOrder()); err == nil {
		t.Error("服务商非 2xx 应报错")
	}
}
