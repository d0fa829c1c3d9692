package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"acadstore_v1_202608/internal/api/dto"
	"acadstore_v1_202608/internal/middleware"
	"acadstore_v1_202608/internal/service"
)

// PaymentConfig UPI 收款配置（手动转账收款，非支付网关）
type PaymentConfig struct {
	UpiID            string
	PayeeName        string
	CountdownSeconds int
	Instructions     string
}

type OrderController struct {
	orderService   *service.OrderService
	productService *service.ProductService
	payment        *PaymentConfig
}

func NewOrderController(orderSvc *service.OrderService, productSvc *service.ProductService, payment *PaymentConfig) *OrderController {
	return &OrderController{
		orderService:   orderSvc,
		productService: productSvc,
		payment:        payment,
	}
}

// Create
// @Summary 创建订单
// @Description 校验通过后入库（金额转 paise 存储），异步发确认邮件，随后清空购物车
// @Tags Order (订单模块)
// @Accept json
// @Produce json
// @Param body body dto.CreateOrderRequest true "订单"
// @Success 200 {object} dto.CreateOrderResponse
// @Failure 400 {object} map[string]interface{}
// @Router /api/orders [post]
func (ctrl *OrderController) Create(c *gin.Context) {
	var req dto.CreateOrderRequest
	// 校验失败直接 400，不产生任何副作用
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "参数错误: " + err.Error(),
		})
		return
	}

	owner := middleware.GetCartOwner(c)

	order, err := ctrl.orderService.Create(c.Request.Context(), owner, &req)
	if err != nil {
		if errors.Is(err, service.ErrOrderInput) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "下单失败"})
		return
	}

	c.JSON(http.StatusOK, dto.CreateOrderResponse{
		Success:     true,
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		AccessToken: order.AccessToken,
		Message:     "订单已创建，请按付款指引完成转账",
	})
}

// Lookup
// @Summary 凭访问令牌查单
// @Description 游客下单后凭 access token 查询订单状态，不需要登录
// @Tags Order (订单模块)
// @Produce json
// @Param token query string true "订单访问令牌"
// @Success 200 {object} dto.OrderView
// @Failure 404 {object} map[string]string
// @Router /api/orders/lookup [get]
func (ctrl *OrderController) Lookup(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少 token"})
		return
	}

	order, err := ctrl.orderService.GetByAccessToken(c.Request.Context(), token)
	if err != nil {
		if errors.Is(err, service.ErrOrderTokenInvalid) || errors.Is(err, service.ErrOrderNotFound) {
			// 令牌格式错误与订单不存在统一返回 404，不暴露区别
			c.JSON(http.StatusNotFound, gin.H{"error": "订单不存在"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "查询失败"})
		return
	}

	c.JSON(http.StatusOK, ctrl.orderService.ToView(order, false))
}

// Mine
// @Summary 当前用户的订单列表
// @Tags Order (订单模块)
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/orders/mine [get]
func (ctrl *OrderController) Mine(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "未登录"})
		return
	}

	orders, err := ctrl.orderService.ListByUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "查询失败"})
		return
	}

	views := make([]dto.OrderView, 0, len(orders))
	for i := range orders {
		views = append(views, ctrl.orderService.ToView(&orders[i], false))
	}
	c.JSON(http.StatusOK, gin.H{"list": views})
}

// Downloads
// @Summary 订单交付物下载链接
// @Description 仅 completed 订单可取，链接为短时效签名 URL
// @Tags Order (订单模块)
// @Produce json
// @Param token query string true "订单访问令牌"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]string
// @Router /api/orders/downloads [get]
func (ctrl *OrderController) Downloads(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少 token"})
		return
	}

	order, err := ctrl.orderService.GetByAccessToken(c.Request.Context(), token)
	if err != nil {
		if errors.Is(err, service.ErrOrderTokenInvalid) || errors.Is(err, service.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "订单不存在"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "查询失败"})
		return
	}

	view := ctrl.orderService.ToView(order, false)
	links, err := ctrl.productService.DownloadLinksForOrder(c.Request.Context(), order, view.Items)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotComplete):
			c.JSON(http.StatusForbidden, gin.H{"error": "订单尚未完成，暂不能下载"})
		case errors.Is(err, service.ErrNoAsset):
			c.JSON(http.StatusNotFound, gin.H{"error": "该订单没有可下载内容"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "链接生成失败"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"links": links})
}

// PaymentInfo
// @Summary 付款指引
// @Description 返回 UPI 收款号、收款人和二维码内容，前端展示倒计时
// @Tags Order (订单模块)
// @Produce json
// @Success 200 {object} dto.PaymentInfoResponse
// @Router /api/checkout/payment-info [get]
func (ctrl *OrderController) PaymentInfo(c *gin.Context) {
	// upi:// 格式的收款串，前端直接转二维码
	qr := "upi://pay?pa=" + ctrl.payment.UpiID + "&pn=" + ctrl.payment.PayeeName
	c.JSON(http.StatusOK, dto.PaymentInfoResponse{
		UpiID:            ctrl.payment.UpiID,
		PayeeName:        ctrl.payment.PayeeName,
		QRPayload:        qr,
		CountdownSeconds: ctrl.payment.CountdownSeconds,
		Instructions:     ctrl.payment.Instructions,
	})
}
