package main

import (
	"log"

	"github.com/Ludium-Official/ludium-portal-backend-sub001/internal/config"
	"github.com/Ludium-Official/ludium-portal-backend-sub001/internal/database"
	"github.com/Ludium-Official/ludium-portal-backend-sub001/internal/logger"
	"github.com/Ludium-Official/ludium-portal-backend-sub001/internal/notify"
	"github.com/Ludium-Official/ludium-portal-backend-sub001/internal/router"
	"github.com/Ludium-Official/ludium-portal-backend-sub001/internal/task"
	"github.com/gin-gonic/gin"
)

func main() {
	// 加载配置
	cfg := config.Load()

	// 初始化日志
	if err := logger.Setup(cfg.Log); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// 初始化数据库
	db, err := database.Init(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to initialize database: %v", err)
	}

	// 初始化通知发布器
	notifier, err := notify.NewAsyncPublisher(cfg.Notify.PoolSize)
	if err != nil {
		logger.Fatal("Failed to initialize notifier: %v", err)
	}
	defer notifier.Release()

	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 初始化路由
	r := router.Setup(db, notifier)

	// 启动定时任务
	manager := task.Start(db, notifier, cfg)
	defer manager.Stop()

	// 启动服务器
	logger.Info("Server starting on port %s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		logger.Fatal("Failed to start server: %v", err)
	}
}
