package router

import (
	"github.com/Ludium-Official/ludium-portal-backend-sub001/internal/handler"
	"github.com/Ludium-Official/ludium-portal-backend-sub001/internal/logic"
	"github.com/Ludium-Official/ludium-portal-backend-sub001/internal/notify"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func Setup(db *gorm.DB, notifier notify.Publisher) *gin.Engine {
	r := gin.Default()

	// 中间件
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(corsMiddleware())

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "funding-portal-backend",
		})
	})

	investmentLogic := logic.NewInvestmentLogic(db, notifier)
	reclaimLogic := logic.NewReclaimLogic(db, notifier)
	milestoneLogic := logic.NewMilestoneLogic(db, notifier)
	feeLogic := logic.NewFeeLogic(db, notifier)

	investmentHandler := handler.NewInvestmentHandler(investmentLogic, reclaimLogic)
	milestoneHandler := handler.NewMilestoneHandler(milestoneLogic)
	feeHandler := handler.NewFeeHandler(feeLogic)

	// API版本组
	v1 := r.Group("/api/v1")
	{
		// 投资相关路由
		investments := v1.Group("/investments")
		{
			investments.POST("", investmentHandler.CreateInvestment)
			investments.POST("/:id/confirm", investmentHandler.ConfirmInvestment)
			investments.POST("/:id/reclaim", investmentHandler.ReclaimInvestment)
		}

		// 申请相关路由
		applications := v1.Group("/applications")
		{
			applications.GET("/:id/investments", investmentHandler.GetApplicationInvestments)
			applications.GET("/:id/investments/stats", investmentHandler.GetInvestmentStats)
			applications.GET("/:id/milestones", milestoneHandler.GetApplicationMilestones)
		}

		// 里程碑相关路由
		milestones := v1.Group("/milestones")
		{
			milestones.PUT("/:id", milestoneHandler.UpdateMilestone)
		}

		// 计划手续费相关路由
		programs := v1.Group("/programs")
		{
			programs.POST("/:id/fees/claim", feeHandler.ClaimFees)
			programs.GET("/:id/fees/claimable", feeHandler.GetClaimableFees)
		}
	}

	return r
}

// CORS中间件
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
