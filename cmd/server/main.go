package main

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"shopadmin/internal/api"
	"shopadmin/internal/config"
	"shopadmin/internal/model"
	"shopadmin/internal/storage"
)

func main() {
	// 初始化配置
	cfg, err := config.ParseConfig()
	if err != nil {
		logrus.WithError(err).Error("Failed to parse config")
		return
	}

	// 初始化logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(logrus.InfoLevel)

	repo, err := model.InitRepository(&cfg)
	if err != nil {
		logrus.WithError(err).Error("failed to initialise repository")
		return
	}

	if err := model.SeedDefaultAdmin(context.Background(), repo, cfg); err != nil {
		logrus.WithError(err).Warn("failed to seed default admin")
	}

	store, err := storage.NewStorage(cfg)
	if err != nil {
		logrus.WithError(err).Error("failed to initialise storage")
		return
	}

	httpHandler, err := api.NewHTTPHandler(cfg, repo, store)
	if err != nil {
		logrus.WithError(err).Error("failed to initialise http handler")
		return
	}

	// 设置Gin模式
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// 添加中间件
	r.Use(LoggingMiddleware())
	r.Use(CORSMiddleware())
	r.Use(gin.Recovery())

	r.GET("/", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"service": "shopadmin", "status": "running"}) })
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	apiGroup := r.Group("/api")

	authGroup := apiGroup.Group("/auth")
	authGroup.POST("/signup", httpHandler.Signup)
	authGroup.POST("/login", httpHandler.Login)

	account := authGroup.Group("")
	account.Use(httpHandler.AuthMiddleware())
	account.GET("/profile", httpHandler.Profile)
	account.PUT("/me", httpHandler.UpdateProfile)
	account.PUT("/change-password", httpHandler.ChangePassword)
	account.POST("/api-token", httpHandler.IssueAPIToken)

	admin := apiGroup.Group("/admin")
	admin.Use(httpHandler.AuthMiddleware(), httpHandler.RequireAdmin())
	admin.GET("/stats", httpHandler.GetStats)

	admin.GET("/users", httpHandler.ListUsers)
	admin.PUT("/users/:id", httpHandler.UpdateUser)
	admin.PUT("/users/:id/verify-email", httpHandler.VerifyUserEmail)
	admin.DELETE("/users/:id", httpHandler.DeleteUser)

	admin.GET("/products", httpHandler.ListProducts)
	admin.POST("/products", httpHandler.CreateProduct)
	admin.GET("/products/:id", httpHandler.GetProduct)
	admin.PUT("/products/:id", httpHandler.UpdateProduct)
	admin.DELETE("/products/:id", httpHandler.DeleteProduct)
	admin.POST("/products/:id/image", httpHandler.UploadProductImage)
	admin.PUT("/products/bulk-update", httpHandler.BulkUpdateProducts)
	admin.POST("/products/bulk-delete", httpHandler.BulkDeleteProducts)

	admin.GET("/orders", httpHandler.ListOrders)
	admin.GET("/orders/:id", httpHandler.GetOrder)
	admin.PUT("/orders/:id/status", httpHandler.UpdateOrderStatus)

	admin.GET("/customers", httpHandler.ListCustomers)
	admin.GET("/customers/:id", httpHandler.GetCustomer)
	admin.PUT("/customers/:id/status", httpHandler.UpdateCustomerStatus)

	admin.GET("/analytics/sales", httpHandler.GetSalesAnalytics)
	admin.GET("/analytics/products", httpHandler.GetProductAnalytics)
	admin.GET("/analytics/customers", httpHandler.GetCustomerAnalytics)

	if localProvider, ok := store.(storage.LocalBaseDirProvider); ok {
		publicPrefix := strings.TrimSpace(cfg.StoragePublicBaseURL)
		if publicPrefix == "" {
			publicPrefix = "/files"
		}
		if !strings.HasPrefix(publicPrefix, "http://") && !strings.HasPrefix(publicPrefix, "https://") {
			if !strings.HasPrefix(publicPrefix, "/") {
				publicPrefix = "/" + publicPrefix
			}
			r.Static(publicPrefix, localProvider.LocalBaseDir())
		}
	}

	serverHost := fmt.Sprintf("0.0.0.0:%s", cfg.HTTPPort)
	logger.WithField("host", serverHost).Info("服务器启动")
	// 创建HTTP服务器
	httpServer := &http.Server{
		Addr:         serverHost,
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	err = httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		logger.WithError(err).Error("服务器启动失败")
	}
}

// CORSMiddleware CORS跨域中间件
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")
		c.Header("Access-Control-Allow-Credentials", "true")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// LoggingMiddleware 日志记录中间件
func LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		// 处理请求
		c.Next()
		// 记录请求结束
		duration := time.Since(start)
		logrus.WithFields(logrus.Fields{
			"method":    c.Request.Method,
			"path":      c.Request.URL.Path,
			"status":    c.Writer.Status(),
			"duration":  duration.String(),
			"size":      c.Writer.Size(),
			"client_ip": c.ClientIP(),
		}).Info("http_request")
	}
}
