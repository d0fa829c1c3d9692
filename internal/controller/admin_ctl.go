package controller

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"acadstore_v1_202608/internal/api/dto"
	"acadstore_v1_202608/internal/middleware"
	"acadstore_v1_202608/internal/repository"
	"acadstore_v1_202608/internal/service"
)

// 交付物单文件上限 50MB
const maxAssetSize = 50 << 20

type AdminController struct {
	adminService   *service.AdminService
	orderService   *service.OrderService
	productService *service.ProductService
}

func NewAdminController(adminSvc *service.AdminService, orderSvc *service.OrderService, productSvc *service.ProductService) *AdminController {
	return &AdminController{
		adminService:   adminSvc,
		orderService:   orderSvc,
		productService: productSvc,
	}
}

// ==================== 站点设置 ====================

// GetSettings
// @Summary 读取站点设置
// @Tags Admin (管理模块)
// @Produce json
// @Success 200 {object} dto.SettingsResponse
// @Router /api/admin/settings [get]
func (ctrl *AdminController) GetSettings(c *gin.Context) {
	resp, err := ctrl.adminService.GetSettings(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "查询失败"})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// UpdateSettings
// @Summary 更新订单通知邮箱
// @Tags Admin (管理模块)
// @Accept json
// @Produce json
// @Param body body dto.UpdateSettingsRequest true "设置"
// @Success 200 {object} map[string]string
// @Router /api/admin/settings [put]
func (ctrl *AdminController) UpdateSettings(c *gin.Context) {
	var req dto.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "参数错误: " + err.Error()})
		return
	}

	adminID := middleware.GetUserID(c)
	if err := ctrl.adminService.UpdateNotificationEmail(c.Request.Context(), adminID, req.NotificationEmail); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "保存失败"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "已保存"})
}

// ==================== 订单管理 ====================

// ListOrders
// @Summary 订单列表（含客户手机号明文）
// @Tags Admin (管理模块)
// @Produce json
// @Param status query string false "状态过滤"
// @Param keyword query string false "订单号/客户名/邮箱模糊匹配"
// @Param start_date query string false "起始日期 2006-01-02"
// @Param end_date query string false "结束日期 2006-01-02"
// @Success 200 {object} dto.ExportOrdersResponse
// @Router /api/admin/orders [get]
func (ctrl *AdminController) ListOrders(c *gin.Context) {
	var req dto.ExportOrdersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "参数错误: " + err.Error()})
		return
	}

	filter := repository.OrderFilter{
		Status:   req.Status,
		Keyword:  req.Keyword,
		Page:     req.Page,
		PageSize: req.PageSize,
	}
	if req.StartDate != "" {
		t, err := time.Parse("2006-01-02", req.StartDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "start_date 格式错误"})
			return
		}
		filter.StartDate = &t
	}
	if req.EndDate != "" {
		t, err := time.Parse("2006-01-02", req.EndDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "end_date 格式错误"})
			return
		}
		// 含当天
		end := t.AddDate(0, 0, 1)
		filter.EndDate = &end
	}

	orders, total, err := ctrl.orderService.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "查询失败"})
		return
	}

	views := make([]dto.OrderView, 0, len(orders))
	for i := range orders {
		// 管理端展示解密后的手机号
		views = append(views, ctrl.orderService.ToView(&orders[i], true))
	}

	c.JSON(http.StatusOK, dto.ExportOrdersResponse{Total: total, List: views})
}

// UpdateOrderStatus
// @Summary 更新订单状态
// @Description 人工核对转账到账后把订单推进到 completed
// @Tags Admin (管理模块)
// @Accept json
// @Produce json
// @Param id path int true "订单 ID"
// @Param body body dto.UpdateOrderStatusRequest true "状态"
// @Success 200 {object} map[string]string
// @Router /api/admin/orders/:id/status [put]
func (ctrl *AdminController) UpdateOrderStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的订单 ID"})
		return
	}

	var req dto.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "参数错误: " + err.Error()})
		return
	}

	actor := "admin:" + strconv.FormatInt(middleware.GetUserID(c), 10)
	if err := ctrl.orderService.UpdateStatus(c.Request.Context(), id, req.Status, actor); err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "订单不存在"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "更新失败"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "状态已更新"})
}

// ==================== 合规摘要 ====================

// PrivacySummary
// @Summary 隐私合规摘要
// @Description 近 30 天各表访问量与手机号加密覆盖情况
// @Tags Admin (管理模块)
// @Produce json
// @Success 200 {object} dto.PrivacySummaryResponse
// @Router /api/admin/privacy-summary [get]
func (ctrl *AdminController) PrivacySummary(c *gin.Context) {
	resp, err := ctrl.adminService.PrivacySummary(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "查询失败"})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ==================== 商品管理 ====================

// ListProducts
// @Summary 全部商品（含下架）
// @Tags Admin (管理模块)
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/admin/products [get]
func (ctrl *AdminController) ListProducts(c *gin.Context) {
	products, err := ctrl.productService.ListAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "查询失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": products})
}

// CreateProduct
// @Summary 新建商品
// @Tags Admin (管理模块)
// @Accept json
// @Produce json
// @Param body body dto.CreateProductRequest true "商品"
// @Success 201 {object} model.Product
// @Router /api/admin/products [post]
func (ctrl *AdminController) CreateProduct(c *gin.Context) {
	var req dto.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "参数错误: " + err.Error()})
		return
	}

	product, err := ctrl.productService.Create(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrSlugTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": "slug 已被占用"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "创建失败"})
		return
	}

	c.JSON(http.StatusCreated, product)
}

// UpdateProduct
// @Summary 更新商品
// @Tags Admin (管理模块)
// @Accept json
// @Produce json
// @Param id path int true "商品 ID"
// @Param body body dto.UpdateProductRequest true "变更字段"
// @Success 200 {object} model.Product
// @Router /api/admin/products/:id [put]
func (ctrl *AdminController) UpdateProduct(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的商品 ID"})
		return
	}

	var req dto.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "参数错误: " + err.Error()})
		return
	}

	product, err := ctrl.productService.Update(c.Request.Context(), id, &req)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "商品不存在"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "更新失败"})
		return
	}

	c.JSON(http.StatusOK, product)
}

// UploadProductAsset
// @Summary 上传商品交付物
// @Description multipart 上传，新文件覆盖旧文件
// @Tags Admin (管理模块)
// @Accept multipart/form-data
// @Produce json
// @Param id path int true "商品 ID"
// @Param file formData file true "交付物文件"
// @Success 200 {object} map[string]string
// @Router /api/admin/products/:id/asset [post]
func (ctrl *AdminController) UploadProductAsset(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的商品 ID"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少上传文件"})
		return
	}
	if fileHeader.Size > maxAssetSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "文件超过大小限制"})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "文件读取失败"})
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "文件读取失败"})
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if err := ctrl.productService.UploadAsset(c.Request.Context(), id, data, fileHeader.Filename, contentType); err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "商品不存在"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "上传失败"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "上传成功"})
}
