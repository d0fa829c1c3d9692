package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"acadstore_v1_202608/internal/service"
)

type ProductController struct {
	productService *service.ProductService
}

func NewProductController(s *service.ProductService) *ProductController {
	return &ProductController{productService: s}
}

// List
// @Summary 商品列表
// @Description 只返回上架商品，可按分类过滤
// @Tags Product (商品模块)
// @Produce json
// @Param category query string false "分类"
// @Success 200 {object} map[string]interface{}
// @Router /api/products [get]
func (ctrl *ProductController) List(c *gin.Context) {
	category := c.Query("category")

	products, err := ctrl.productService.ListActive(c.Request.Context(), category)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "查询失败"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"list": products})
}

// GetBySlug
// @Summary 商品详情
// @Tags Product (商品模块)
// @Produce json
// @Param slug path string true "商品 slug"
// @Success 200 {object} dto.ProductView
// @Failure 404 {object} map[string]string
// @Router /api/products/:slug [get]
func (ctrl *ProductController) GetBySlug(c *gin.Context) {
	slug := c.Param("slug")

	product, err := ctrl.productService.GetBySlug(c.Request.Context(), slug)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "商品不存在"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "查询失败"})
		return
	}

	c.JSON(http.StatusOK, product)
}
