package controller

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"acadstore_v1_202608/internal/api/dto"
	"acadstore_v1_202608/internal/model"
	"acadstore_v1_202608/internal/repository"
	"acadstore_v1_202608/internal/service"
)

// ==================== 测试辅助 ====================

func setupOrderCtlTest(t *testing.T) (*gin.Engine, *gorm.DB) {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}
	db.AutoMigrate(&model.Order{}, &model.CartItem{})

	orderSvc := service.NewOrderService(
		repository.NewOrderRepository(db),
		repository.NewCartRepository(db),
		nil,
		nil,
		"test-pii-secret",
	)
	payment := &PaymentConfig{
		UpiID:            "acadstore@upi",
		PayeeName:        "AcadStore",
		CountdownSeconds: 60,
	}
	ctl := NewOrderController(orderSvc, nil, payment)

	r := gin.New()
	r.POST("/api/orders", ctl.Create)
	r.GET("/api/orders/lookup", ctl.Lookup)
	r.GET("/api/checkout/payment-info", ctl.PaymentInfo)
	return r, db
}

func postJSON(r *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	raw, _ := json.Marshal(body)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func validCreateBody() map[string]interface{} {
	return map[string]interface{}{
		"items":         []map[string]interface{}{{"name": "Plagiarism Report", "price": 499, "quantity": 2}},
		"totalAmount":   1000,
		"customerName":  "Asha Rao",
		"customerEmail": "asha@example.com",
		"customerPhone": "9876543210",
	}
}

// ==================== 单元测试 ====================

func TestOrderController_Create(t *testing.T) {
	r, db := setupOrderCtlTest(t)

	w := postJSON(r, "/api/orders", validCreateBody())
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body: %s", w.Code, w.Body.String())
	}

	var resp dto.CreateOrderResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if !resp.Success {
		t.Error("success 应为 true")
	}
	if resp.AccessToken == "" || resp.OrderNumber == "" {
		t.Errorf("响应缺少凭证字段: %+v", resp)
	}

	var order model.Order
	db.First(&order, resp.OrderID)
	if order.TotalAmount != 100000 {
		t.Errorf("TotalAmount = %d, want 100000", order.TotalAmount)
	}
}

func TestOrderController_CreateRejectsInvalidBody(t *testing.T) {
	r, db := setupOrderCtlTest(t)

	cases := []struct {
		name string
		mod  func(map[string]interface{})
	}{
		{"空姓名", func(m map[string]interface{}) { m["customerName"] = "" }},
		{"坏邮箱", func(m map[string]interface{}) { m["customerEmail"] = "not-an-email" }},
		{"空商品", func(m map[string]interface{}) { m["items"] = []map[string]interface{}{} }},
		{"零金额", func(m map[string]interface{}) { m["totalAmount"] = 0 }},
	}

	for _, tc := range cases {
		body := validCreateBody()
		tc.mod(body)
		w := postJSON(r, "/api/orders", body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", tc.name, w.Code)
		}
	}

	// 校验失败不应产生任何订单
	var count int64
	db.Model(&model.Order{}).Count(&count)
	if count != 0 {
		t.Errorf("订单数 = %d, want 0", count)
	}
}

func TestOrderController_Lookup(t *testing.T) {
	r, _ := setupOrderCtlTest(t)

	w := postJSON(r, "/api/orders", validCreateBody())
	var created dto.CreateOrderResponse
	json.Unmarshal(w.Body.Bytes(), &created)

	// 正确令牌
	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/orders/lookup?token="+created.AccessToken, nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var view dto.OrderView
	json.Unmarshal(w.Body.Bytes(), &view)
	if view.OrderNumber != created.OrderNumber {
		t.Errorf("订单号 = %s, want %s", view.OrderNumber, created.OrderNumber)
	}
	if view.CustomerPhone != "" {
		t.Error("游客查单视图不应包含手机号")
	}

	// 错误令牌统一 404
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/orders/lookup?token=wrong", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestOrderController_PaymentInfo(t *testing.T) {
	r, _ := setupOrderCtlTest(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/checkout/payment-info", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var info dto.PaymentInfoResponse
	json.Unmarshal(w.Body.Bytes(), &info)
	if info.UpiID != "acadstore@upi" {
		t.Errorf("upi_id = %s, want acadstore@upi", info.UpiID)
	}
	if info.CountdownSeconds != 60 {
		t.Errorf("countdown = %d, want 60", info.CountdownSeconds)
	}
}
