package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"campus-life/backend/config"
	"campus-life/backend/internal/api/handler"
	"campus-life/backend/internal/api/middleware"
	"campus-life/backend/pkg/jwt"
	"campus-life/backend/pkg/metrics"
	"campus-life/backend/pkg/redis"
)

const (
	// maxBodySize 需容纳 5MB 的 ICS 上传与 multipart 开销
	maxBodySize     = 8 << 20
	rateLimitPerMin = 120
)

// Setup 初始化并返回 Gin 路由引擎
// rdb 可为 nil：黑名单与限流降级放行
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, m *metrics.Metrics, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics(m))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(maxBodySize))

	// ── 健康检查与指标 ──
	r.GET("/health", h.Health.Check)
	if cfg.Metrics.Enabled && m != nil {
		r.GET(cfg.Metrics.Path, gin.WrapH(m.Handler()))
	}

	// ── API v1（全部需要认证）──
	v1 := r.Group("/api/v1")
	v1.Use(middleware.JWTAuth(jwtMgr, rdb))
	v1.Use(middleware.RateLimit(rdb, rateLimitPerMin, time.Minute))
	{
		// 认证模块
		v1.GET("/auth/me", h.Auth.Me)
		v1.POST("/auth/logout", h.Auth.Logout)

		// 课程模块
		courses := v1.Group("/courses")
		{
			courses.GET("", h.Course.List)
			courses.POST("", h.Course.Create)
			courses.POST("/conflicts", h.Course.CheckConflicts)
			courses.POST("/import", h.Course.ImportICS)
			courses.GET("/:id", h.Course.Get)
			courses.PUT("/:id", h.Course.Update)
			courses.DELETE("/:id", h.Course.Delete)
		}

		// 作业模块
		assignments := v1.Group("/assignments")
		{
			assignments.GET("", h.Assignment.List)
			assignments.POST("", h.Assignment.Create)
			assignments.GET("/:id", h.Assignment.Get)
			assignments.PUT("/:id", h.Assignment.Update)
			assignments.DELETE("/:id", h.Assignment.Delete)
			assignments.PUT("/:id/complete", h.Assignment.Complete)
			assignments.PUT("/:id/reopen", h.Assignment.Reopen)
		}

		// 考试模块
		exams := v1.Group("/exams")
		{
			exams.GET("", h.Exam.List)
			exams.POST("", h.Exam.Create)
			exams.GET("/:id", h.Exam.Get)
			exams.PUT("/:id", h.Exam.Update)
			exams.DELETE("/:id", h.Exam.Delete)
			exams.PUT("/:id/complete", h.Exam.Complete)
			exams.PUT("/:id/reopen", h.Exam.Reopen)
		}

		// 自定义分类与事项
		categories := v1.Group("/custom-categories")
		{
			categories.GET("", h.CustomItem.ListCategories)
			categories.POST("", h.CustomItem.CreateCategory)
			categories.PUT("/:id", h.CustomItem.UpdateCategory)
			categories.DELETE("/:id", h.CustomItem.DeleteCategory)
			categories.GET("/:id/items", h.CustomItem.ListItems)
			categories.POST("/:id/items", h.CustomItem.CreateItem)
		}
		items := v1.Group("/custom-items")
		{
			items.GET("/:id", h.CustomItem.GetItem)
			items.PUT("/:id", h.CustomItem.UpdateItem)
			items.DELETE("/:id", h.CustomItem.DeleteItem)
			items.PUT("/:id/complete", h.CustomItem.CompleteItem)
			items.PUT("/:id/reopen", h.CustomItem.ReopenItem)
		}

		// 首页待办与偏好
		v1.GET("/todos", h.Todo.Feed)
		v1.GET("/preferences", h.Preference.Get)
		v1.PUT("/preferences/reminder", h.Preference.UpdateReminder)

		// 导出模块
		v1.GET("/export/timetable", h.Export.ExportTimetable)
	}

	return r
}
