package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"aphs/backend/config"
	"aphs/backend/internal/api/handler"
	"aphs/backend/internal/api/middleware"
	"aphs/backend/pkg/jwt"
	"aphs/backend/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodySize))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证；登录接口限流防爆破）
		auth := v1.Group("/auth")
		auth.Use(middleware.RateLimit(rdb, 10, time.Minute))
		{
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.RefreshToken)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			// 认证模块（需要认证）
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)
			authorized.PUT("/auth/password", h.Auth.ChangePassword)

			// 用户模块（指派人/校验人选择对所有角色开放查询）
			users := authorized.Group("/users")
			{
				users.GET("", h.Profile.ListUsers)
				users.GET("/:id", h.Profile.GetUser)
				users.POST("", middleware.RoleAuth("admin"), h.Profile.CreateUser)
				users.PUT("/:id", middleware.RoleAuth("admin"), h.Profile.UpdateUser)
			}

			// 项目模块
			projects := authorized.Group("/projects")
			{
				projects.GET("", h.Project.ListProjects)
				projects.GET("/:id", h.Project.GetProject)
				projects.GET("/:id/stats", h.Project.GetProjectStats)
				projects.POST("", middleware.RoleAuth("admin", "manager"), h.Project.CreateProject)
				projects.PUT("/:id", middleware.RoleAuth("admin", "manager"), h.Project.UpdateProject)
				projects.DELETE("/:id", middleware.RoleAuth("admin"), h.Project.DeleteProject)

				// 项目任务
				projects.GET("/:id/tasks", h.Task.ListTasks)
				projects.POST("/:id/tasks", middleware.RoleAuth("admin", "manager"), h.Task.CreateTask)
				projects.POST("/:id/tasks/import-legacy", middleware.RoleAuth("admin", "manager"), h.Task.ImportLegacyTasks)
				projects.GET("/:id/history", h.Task.GetProjectHistory)

				// 项目结构定制
				projects.GET("/:id/structure", h.Structure.GetStructure)
				projects.GET("/:id/structure/overrides", h.Structure.ListOverrides)
				projects.DELETE("/:id/structure/:sectionId", middleware.RoleAuth("admin", "manager"), h.Structure.DeleteStructure)
				projects.POST("/:id/structure/:sectionId/restore", middleware.RoleAuth("admin", "manager"), h.Structure.RestoreStructure)

				// 项目导出
				projects.GET("/:id/export/report", h.Export.ExportTaskReport)
				projects.GET("/:id/export/calendar", h.Export.ExportDeadlineCalendar)
			}

			// 任务模块
			tasks := authorized.Group("/tasks")
			{
				tasks.GET("/mine", h.Task.ListMyTasks)
				tasks.GET("/:id", h.Task.GetTask)
				tasks.GET("/:id/history", h.Task.GetTaskHistory)
				tasks.POST("/:id/submit", h.Task.SubmitTask)
				tasks.POST("/:id/validate", h.Task.ValidateTask)
				tasks.POST("/:id/reject", h.Task.RejectTask)
			}

			// 任务说明书模块
			infoSheets := authorized.Group("/info-sheets")
			{
				infoSheets.GET("", h.Task.GetInfoSheet)
				infoSheets.PUT("", middleware.RoleAuth("admin", "manager"), h.Task.UpsertInfoSheet)
			}

			// 通知模块
			notifications := authorized.Group("/notifications")
			{
				notifications.GET("", h.Notification.ListNotifications)
				notifications.PUT("/:id/read", h.Notification.MarkNotificationRead)
			}
		}
	}

	return r
}
