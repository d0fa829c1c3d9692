package router

import (
	"github.com/gin-gonic/gin"

	"acadstore_v1_202608/internal/controller"
	"acadstore_v1_202608/internal/middleware"
	"acadstore_v1_202608/internal/model"
	"acadstore_v1_202608/internal/service"
)

// InitRoutes 注册所有路由
func InitRoutes(r *gin.Engine,
	authCtrl *controller.AuthController,
	cartCtrl *controller.CartController,
	orderCtrl *controller.OrderController,
	productCtrl *controller.ProductController,
	adminCtrl *controller.AdminController,
	sessionSvc *service.SessionService,
	adminSvc *service.AdminService,
	audit service.AuditLogger,
	limiter service.RateLimiter) {

	api := r.Group("/api")
	{
		// auth 认证组
		auth := api.Group("/auth")
		{
			auth.POST("/register", authCtrl.Register)
			auth.POST("/login", authCtrl.Login)
			auth.POST("/refresh", authCtrl.Refresh)
			auth.GET("/me", middleware.JWTAuth(), authCtrl.Me)
		}

		// product 店面商品组，公开访问
		products := api.Group("/products")
		{
			products.GET("", productCtrl.List)
			products.GET("/:slug", productCtrl.GetBySlug)
		}

		// cart 购物车组：登录用户归用户，游客凭 X-Cart-Session
		cart := api.Group("/cart")
		cart.Use(middleware.OptionalAuth(), middleware.CartSession(sessionSvc))
		{
			// 令牌签发按来源 IP 限流，防止批量刷令牌
			cart.POST("/session", middleware.RateLimit(limiter, "session_mint", 10), cartCtrl.MintSession)
			cart.GET("", cartCtrl.Load)
			cart.DELETE("", cartCtrl.Clear)
			cart.POST("/items", cartCtrl.Add)
			cart.PUT("/items/:id", cartCtrl.UpdateQuantity)
			cart.DELETE("/items/:id", cartCtrl.Remove)
		}

		// order 订单组：游客可下单，下单后凭 access token 查单
		orders := api.Group("/orders")
		orders.Use(middleware.OptionalAuth(), middleware.CartSession(sessionSvc))
		{
			orders.POST("", orderCtrl.Create)
			orders.GET("/lookup", orderCtrl.Lookup)
			orders.GET("/downloads", orderCtrl.Downloads)
			orders.GET("/mine", middleware.JWTAuth(), orderCtrl.Mine)
		}

		// checkout 付款指引
		api.GET("/checkout/payment-info", orderCtrl.PaymentInfo)

		// admin 管理组：JWT + 每请求权限校验，写操作带审计上下文
		admin := api.Group("/admin")
		admin.Use(middleware.JWTAuth(), middleware.AuditContext())
		{
			settings := admin.Group("")
			settings.Use(middleware.AdminGate(adminSvc, audit, model.PermManageSettings))
			{
				settings.GET("/settings", adminCtrl.GetSettings)
				settings.PUT("/settings", adminCtrl.UpdateSettings)
			}

			orderAdmin := admin.Group("/orders")
			orderAdmin.Use(middleware.AdminGate(adminSvc, audit, model.PermManageOrders))
			{
				orderAdmin.GET("", adminCtrl.ListOrders)
				orderAdmin.PUT("/:id/status", adminCtrl.UpdateOrderStatus)
			}

			productAdmin := admin.Group("/products")
			productAdmin.Use(middleware.AdminGate(adminSvc, audit, model.PermManageProducts))
			{
				productAdmin.GET("", adminCtrl.ListProducts)
				productAdmin.POST("", adminCtrl.CreateProduct)
				productAdmin.PUT("/:id", adminCtrl.UpdateProduct)
				productAdmin.POST("/:id/asset", adminCtrl.UploadProductAsset)
			}

			reports := admin.Group("")
			reports.Use(middleware.AdminGate(adminSvc, audit, model.PermViewReports))
			{
				reports.GET("/privacy-summary", adminCtrl.PrivacySummary)
			}
		}
	}
}
