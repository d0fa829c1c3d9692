package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"acadstore_v1_202608/internal/api/dto"
	"acadstore_v1_202608/internal/middleware"
	"acadstore_v1_202608/internal/service"
)

type CartController struct {
	cartService    *service.CartService
	sessionService *service.SessionService
}

func NewCartController(cartSvc *service.CartService, sessionSvc *service.SessionService) *CartController {
	return &CartController{cartService: cartSvc, sessionService: sessionSvc}
}

// MintSession
// @Summary 签发匿名购物车会话令牌
// @Description 未登录用户调用一次换取令牌，之后所有购物车请求带 X-Cart-Session 头
// @Tags Cart (购物车模块)
// @Produce json
// @Success 200 {object} dto.CartSessionResponse
// @Router /api/cart/session [post]
func (ctrl *CartController) MintSession(c *gin.Context) {
	token, expiresAt, err := ctrl.sessionService.GenerateToken()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "令牌生成失败"})
		return
	}
	c.JSON(http.StatusOK, dto.CartSessionResponse{
		Token:     token,
		ExpiresAt: expiresAt,
	})
}

// Load
// @Summary 读取购物车
// @Tags Cart (购物车模块)
// @Produce json
// @Success 200 {object} dto.CartResponse
// @Router /api/cart [get]
func (ctrl *CartController) Load(c *gin.Context) {
	owner := middleware.GetCartOwner(c)
	if !owner.Valid() {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "缺少会话令牌"})
		return
	}

	items, err := ctrl.cartService.Load(c.Request.Context(), owner)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "查询失败"})
		return
	}

	// 被限流时 items 为空，照常返回空购物车
	c.JSON(http.StatusOK, dto.CartResponse{
		Items:      items,
		TotalPrice: service.TotalAmount(items),
		ItemCount:  service.ItemCount(items),
	})
}

// Add
// @Summary 加购
// @Description 同名商品合并为数量 +1，不新建行
// @Tags Cart (购物车模块)
// @Accept json
// @Produce json
// @Param body body dto.AddToCartRequest true "商品"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Router /api/cart/items [post]
func (ctrl *CartController) Add(c *gin.Context) {
	owner := middleware.GetCartOwner(c)
	if !owner.Valid() {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "缺少会话令牌"})
		return
	}

	var req dto.AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "参数错误: " + err.Error()})
		return
	}

	item, err := ctrl.cartService.Add(c.Request.Context(), owner, req.ProductName, req.Price)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// item 为 nil 说明本次被限流，静默吞掉，前端无感知
	c.JSON(http.StatusOK, gin.H{"message": "已加入购物车", "item": item})
}

// UpdateQuantity
// @Summary 修改数量
// @Description 数量 0 等价于删除该行；超出上限的请求拒绝且不改动原值
// @Tags Cart (购物车模块)
// @Accept json
// @Produce json
// @Param id path int true "购物车行 ID"
// @Param body body dto.UpdateQuantityRequest true "数量"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Router /api/cart/items/:id [put]
func (ctrl *CartController) UpdateQuantity(c *gin.Context) {
	owner := middleware.GetCartOwner(c)
	if !owner.Valid() {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "缺少会话令牌"})
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的行 ID"})
		return
	}

	var req dto.UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "参数错误: " + err.Error()})
		return
	}

	if err := ctrl.cartService.UpdateQuantity(c.Request.Context(), owner, id, *req.Quantity); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "已更新"})
}

// Remove
// @Summary 删除购物车行
// @Tags Cart (购物车模块)
// @Produce json
// @Param id path int true "购物车行 ID"
// @Success 200 {object} map[string]string
// @Router /api/cart/items/:id [delete]
func (ctrl *CartController) Remove(c *gin.Context) {
	owner := middleware.GetCartOwner(c)
	if !owner.Valid() {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "缺少会话令牌"})
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的行 ID"})
		return
	}

	if err := ctrl.cartService.Remove(c.Request.Context(), owner, id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "删除失败"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "已删除"})
}

// Clear
// @Summary 清空购物车
// @Tags Cart (购物车模块)
// @Produce json
// @Success 200 {object} map[string]string
// @Router /api/cart [delete]
func (ctrl *CartController) Clear(c *gin.Context) {
	owner := middleware.GetCartOwner(c)
	if !owner.Valid() {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "缺少会话令牌"})
		return
	}

	if err := ctrl.cartService.Clear(c.Request.Context(), owner); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "清空失败"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "已清空"})
}
