package main

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"clicklink-admin/internal/calllog"
	"clicklink-admin/internal/config"
	"clicklink-admin/internal/handler"
	"clicklink-admin/internal/middleware"
	"clicklink-admin/internal/model"
	"clicklink-admin/internal/registry"
	"clicklink-admin/pkg/database"
	"clicklink-admin/pkg/logger"
	redisPkg "clicklink-admin/pkg/redis"
	"clicklink-admin/pkg/session"

	_ "clicklink-admin/docs"

	"github.com/gin-gonic/gin"
	redisClient "github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// @title 分流链接管理系统 API
// @version 1.0
// @description 分流链接管理和 API 监控系统

func main() {
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Println("配置加载失败:", err)
		os.Exit(1)
	}

	logger.InitLogger(cfg.App.Mode)
	defer func() {
		if err := logger.Logger.Sync(); err != nil {
			fmt.Println("日志同步失败:", err)
		}
	}()
	sugaredLogger := zap.S()

	db, err := database.Init(&cfg.Database)
	if err != nil {
		sugaredLogger.Fatalf("数据库初始化失败: %v", err)
	}
	sugaredLogger.Info("✅ 数据库连接成功")

	var rdb *redisClient.Client
	if cfg.Cache.Host != "" {
		rdb, err = redisPkg.NewClient(&cfg.Cache)
		if err != nil {
			sugaredLogger.Warnf("缓存连接失败: %v", err)
		} else {
			defer func() {
				if err := rdb.Close(); err != nil {
					sugaredLogger.Errorf("关闭 Redis 连接失败: %v", err)
				}
			}()
			sugaredLogger.Info("✅ 缓存连接成功")
		}
	}

	sessions := session.NewManager(cfg.Session.Secret, cfg.Session.Issuer, cfg.Session.ExpirationHours)
	sugaredLogger.Info("✅ 会话管理器初始化成功")

	if err := createAdminUser(db, &cfg.Admin); err != nil {
		sugaredLogger.Errorf("初始化管理员账号失败: %v", err)
	}

	if cfg.App.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.GinZapRecovery(logger.Logger, true))
	router.Use(middleware.GinZapLogger(logger.Logger))

	router.SetFuncMap(template.FuncMap{
		"add": func(a, b int) int { return a + b },
		"sub": func(a, b int) int { return a - b },
	})
	router.LoadHTMLGlob("web/templates/*")
	router.Static("/static", "./web/static")

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	linkRegistry := registry.NewRegistry(db, sugaredLogger)
	recorder := calllog.NewRecorder(db, sugaredLogger)

	apiHandler := handler.NewAPIHandler(linkRegistry, recorder, rdb)
	adminHandler := handler.NewAdminHandler(linkRegistry, recorder, rdb)
	authHandler := handler.NewAuthHandler(db, sessions)

	registerRoutes(router, cfg, sessions, apiHandler, adminHandler, authHandler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	sugaredLogger.Infof("🚀 服务启动成功, 访问 http://localhost:%d", cfg.Server.Port)
	sugaredLogger.Infof("📚 Swagger 文档地址: http://localhost:%d/swagger/index.html", cfg.Server.Port)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		sugaredLogger.Fatalf("服务启动失败: %v", err)
	}
}

func registerRoutes(
	router *gin.Engine,
	cfg *config.Config,
	sessions *session.Manager,
	apiHandler *handler.APIHandler,
	adminHandler *handler.AdminHandler,
	authHandler *handler.AuthHandler,
) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "timestamp": time.Now()})
	})

	router.GET("/login", authHandler.LoginPage)
	router.POST("/login", authHandler.Login)
	router.GET("/logout", authHandler.Logout)

	admin := router.Group("/admin")
	admin.Use(middleware.RequireSession(sessions))
	{
		admin.GET("", adminHandler.Dashboard)
		admin.POST("/create", adminHandler.Create)
		admin.POST("/update", adminHandler.Update)
		admin.POST("/delete", adminHandler.Delete)
	}

	api := router.Group("/api")
	api.Use(middleware.CORS())
	api.Use(middleware.RateLimit(&cfg.RateLimit))
	{
		api.GET("/tokenId", apiHandler.TokenID)
		api.GET("/endurl", apiHandler.EndURL)
		api.GET("/get-links", apiHandler.GetLinks)
	}

	// 其余未匹配的路径回落到静态站点
	router.NoRoute(staticFallback("./web/static"))
}

// staticFallback 把未匹配的 GET 请求交给静态目录，找不到文件时回落到 index.html
func staticFallback(root string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Status(http.StatusNotFound)
			return
		}
		path := filepath.Join(root, filepath.Clean(c.Request.URL.Path))
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			c.File(path)
			return
		}
		c.File(filepath.Join(root, "index.html"))
	}
}

// createAdminUser 幂等初始化管理员账号，已存在时跳过
func createAdminUser(db *gorm.DB, cfg *config.Admin) error {
	var existing model.AdminUser
	if err := db.Where("username = ?", cfg.Username).First(&existing).Error; err == nil {
		zap.S().Info("管理员账号已存在，跳过初始化")
		return nil
	}

	admin := model.AdminUser{Username: cfg.Username}
	if err := admin.SetPassword(cfg.Password); err != nil {
		return err
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}
	zap.S().Infof("✅ 管理员账号初始化成功: %s", cfg.Username)
	return nil
}
