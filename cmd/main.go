package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"acadstore_v1_202608/internal/controller"
	"acadstore_v1_202608/internal/middleware"
	"acadstore_v1_202608/internal/model"
	"acadstore_v1_202608/internal/repository"
	"acadstore_v1_202608/internal/router"
	"acadstore_v1_202608/internal/service"
	"acadstore_v1_202608/internal/task"
	"acadstore_v1_202608/pkg/database"
)

func main() {
	// 1. 加载 .env（没有也不报错，走系统环境变量）
	if err := godotenv.Load(); err != nil {
		log.Println("未找到 .env 文件，使用系统环境变量")
	}

	// 2. 安全配置校验
	validateSecurityConfig()

	// 3. 初始化数据库
	db := initDatabase()

	// 4. 初始化依赖
	deps := initDependencies(db)

	// 5. 初始管理员
	bootstrapAdmin(deps)

	// 6. 启动定时任务
	initTasks(deps)

	// 7. 初始化路由
	r := setupRouter(deps)

	// 8. 启动服务
	startServer(r)
}

// ==================== 依赖容器 ====================

// Dependencies 依赖容器
type Dependencies struct {
	DB          *gorm.DB
	Repos       *Repositories
	Services    *Services
	Controllers *Controllers
}

// Repositories 仓库集合
type Repositories struct {
	User      repository.UserRepository
	Profile   repository.ProfileRepository
	Cart      repository.CartRepository
	Order     repository.OrderRepository
	Product   repository.ProductRepository
	Admin     repository.AdminRepository
	Setting   repository.SettingRepository
	AccessLog repository.AccessLogRepository
}

// Services 服务集合
type Services struct {
	Audit   *service.AuditService
	Limiter service.RateLimiter
	Session *service.SessionService
	Cart    *service.CartService
	Email   *service.EmailService
	Order   *service.OrderService
	Product *service.ProductService
	Auth    *service.AuthService
	Admin   *service.AdminService
}

// Controllers 控制器集合
type Controllers struct {
	Auth    *controller.AuthController
	Cart    *controller.CartController
	Order   *controller.OrderController
	Product *controller.ProductController
	Admin   *controller.AdminController
}

// ==================== 安全配置校验 ====================

// validateSecurityConfig 启动前校验关键密钥
// 密钥没配或还是默认值时直接拒绝启动，避免带着弱密钥上线
func validateSecurityConfig() {
	jwtSecret := getEnv("JWT_SECRET", "")
	if jwtSecret == "" || jwtSecret == "change-me" {
		log.Fatal("[Config] JWT_SECRET 未配置或仍为默认值，拒绝启动")
	}

	sessionSecret := getEnv("SESSION_SECRET", "")
	if sessionSecret == "" || sessionSecret == "change-me" {
		log.Fatal("[Config] SESSION_SECRET 未配置或仍为默认值，拒绝启动")
	}

	piiSecret := getEnv("PII_SECRET", "")
	if piiSecret == "" || piiSecret == "change-me" {
		log.Fatal("[Config] PII_SECRET 未配置或仍为默认值，拒绝启动")
	}

	cfg := middleware.DefaultJWTConfig()
	cfg.SecretKey = jwtSecret
	middleware.SetJWTConfig(cfg)
}

// ==================== 初始化函数 ====================

// initDatabase 初始化数据库
func initDatabase() *gorm.DB {
	dsn := getEnv("DATABASE_DSN",
		"host=localhost user=postgres password=postgres dbname=acadstore port=5432 sslmode=disable TimeZone=Asia/Kolkata")

	db := database.InitDB(dsn,
		// 用户
		&model.SysUser{}, &model.Profile{}, &model.AdminUser{},
		// 店面
		&model.Product{}, &model.CartItem{}, &model.Order{},
		// 运营
		&model.SiteSetting{}, &model.AccessLog{},
	)

	// 写操作自动填 created_by / updated_by
	middleware.RegisterAuditCallbacks(db)
	return db
}

// initDependencies 初始化所有依赖
func initDependencies(db *gorm.DB) *Dependencies {
	// -------- Repo 层 --------
	repos := &Repositories{
		User:      repository.NewUserRepository(db),
		Profile:   repository.NewProfileRepository(db),
		Cart:      repository.NewCartRepository(db),
		Order:     repository.NewOrderRepository(db),
		Product:   repository.NewProductRepository(db),
		Admin:     repository.NewAdminRepository(db),
		Setting:   repository.NewSettingRepository(db),
		AccessLog: repository.NewAccessLogRepository(db),
	}

	// -------- 基础服务 --------
	auditSvc := service.NewAuditService(repos.AccessLog)
	limiter := initRateLimiter()
	sessionSvc := service.NewSessionService(getEnv("SESSION_SECRET", ""))

	// -------- 业务服务 --------
	cartSvc := service.NewCartService(repos.Cart, limiter, auditSvc, service.DefaultCartConfig())

	emailSvc := service.NewEmailService(&service.EmailConfig{
		APIKey:      getEnv("EMAIL_API_KEY", ""),
		APIURL:      getEnv("EMAIL_API_URL", "https://api.resend.com/emails"),
		FromAddress: getEnv("EMAIL_FROM", "orders@acadstore.in"),
		SiteURL:     getEnv("SITE_URL", "http://localhost:8080"),
	}, repos.Setting)

	orderSvc := service.NewOrderService(repos.Order, repos.Cart, emailSvc, auditSvc, getEnv("PII_SECRET", ""))

	storage := initStorage()
	productSvc := service.NewProductService(repos.Product, storage)

	authSvc := service.NewAuthService(repos.User, repos.Profile, cartSvc)
	adminSvc := service.NewAdminService(repos.Admin, repos.Setting, repos.User, repos.Order, repos.AccessLog, auditSvc)

	services := &Services{
		Audit:   auditSvc,
		Limiter: limiter,
		Session: sessionSvc,
		Cart:    cartSvc,
		Email:   emailSvc,
		Order:   orderSvc,
		Product: productSvc,
		Auth:    authSvc,
		Admin:   adminSvc,
	}

	// -------- Controller 层 --------
	payment := &controller.PaymentConfig{
		UpiID:            getEnv("UPI_ID", ""),
		PayeeName:        getEnv("UPI_PAYEE_NAME", ""),
		CountdownSeconds: getEnvInt("PAYMENT_COUNTDOWN_SECONDS", 60),
		Instructions:     getEnv("PAYMENT_INSTRUCTIONS", "请用任意 UPI 应用转账后等待人工确认"),
	}

	controllers := &Controllers{
		Auth:    controller.NewAuthController(authSvc),
		Cart:    controller.NewCartController(cartSvc, sessionSvc),
		Order:   controller.NewOrderController(orderSvc, productSvc, payment),
		Product: controller.NewProductController(productSvc),
		Admin:   controller.NewAdminController(adminSvc, orderSvc, productSvc),
	}

	return &Dependencies{
		DB:          db,
		Repos:       repos,
		Services:    services,
		Controllers: controllers,
	}
}

// initRateLimiter 初始化限流器
// 配了 REDIS_ADDR 用 Redis 固定窗口计数，多实例共享；否则退回进程内计数
func initRateLimiter() service.RateLimiter {
	addr := getEnv("REDIS_ADDR", "")
	if addr == "" {
		log.Println("[Config] 未配置 REDIS_ADDR，限流退回进程内计数器")
		return service.NewMemoryRateLimiter()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("[Config] Redis 连接失败 (%v)，限流退回进程内计数器", err)
		return service.NewMemoryRateLimiter()
	}

	log.Printf("[Config] 限流使用 Redis: %s", addr)
	return service.NewRedisRateLimiter(client)
}

// initStorage 初始化交付物存储
func initStorage() service.StorageProvider {
	storage, err := service.NewStorageProvider(&service.StorageConfig{
		Provider:  getEnv("STORAGE_PROVIDER", "s3"),
		Bucket:    getEnv("AWS_BUCKET", ""),
		Region:    getEnv("AWS_REGION", "ap-south-1"),
		AccessKey: getEnv("AWS_ACCESS_KEY_ID", ""),
		SecretKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		BasePath:  getEnv("STORAGE_BASE_PATH", "acadstore"),
		LocalDir:  getEnv("STORAGE_LOCAL_DIR", "./uploads"),
		SiteURL:   getEnv("SITE_URL", "http://localhost:8080"),
	})
	if err != nil {
		log.Printf("警告: 存储服务初始化失败: %v", err)
		return nil
	}
	return storage
}

// bootstrapAdmin 管理员表为空时创建初始超级管理员
func bootstrapAdmin(deps *Dependencies) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := deps.Services.Admin.BootstrapAdmin(ctx,
		getEnv("ADMIN_EMAIL", ""),
		getEnv("ADMIN_PASSWORD", ""),
	)
	if err != nil {
		log.Fatalf("初始管理员创建失败: %v", err)
	}
}

// ==================== 定时任务 ====================

// initTasks 初始化定时任务
func initTasks(deps *Dependencies) {
	cleanupTask := task.NewCleanupTask(deps.Repos.Cart, deps.Repos.AccessLog)
	cleanupTask.Start()
}

// ==================== 路由 ====================

func setupRouter(deps *Dependencies) *gin.Engine {
	if getEnv("GIN_MODE", "") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()

	router.InitRoutes(r,
		deps.Controllers.Auth,
		deps.Controllers.Cart,
		deps.Controllers.Order,
		deps.Controllers.Product,
		deps.Controllers.Admin,
		deps.Services.Session,
		deps.Services.Admin,
		deps.Services.Audit,
		deps.Services.Limiter,
	)
	return r
}

// ==================== 服务启动 ====================

// startServer 启动服务
func startServer(r *gin.Engine) {
	port := getEnv("SERVER_PORT", "8080")

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	// 异步启动服务
	go func() {
		log.Printf("服务启动在 :%s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("服务启动失败: %v", err)
		}
	}()

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("正在关闭服务...")

	// 优雅关闭，最多等待 30 秒
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("服务强制关闭: %v", err)
	}

	log.Println("服务已退出")
}

// ==================== 工具函数 ====================

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
