package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"activity-hours/backend/config"
	"activity-hours/backend/internal/api/handler"
	"activity-hours/backend/internal/api/middleware"
	"activity-hours/backend/pkg/jwt"
	"activity-hours/backend/pkg/redis"
)

// checkinRateLimit 公开签到接口的限流参数：每 IP 每分钟 10 次
const (
	checkinRateLimit  = 10
	checkinRateWindow = time.Minute
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(1 << 20))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 公开签到（无需登录，按 IP 限流）
		v1.POST("/checkin/:slug",
			middleware.RateLimit(rdb, checkinRateLimit, checkinRateWindow),
			h.Checkin.Submit)

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr))
		{
			// 签到列表（工作人员确认界面）
			authorized.GET("/activities/:id/checkins",
				middleware.RoleAuth("admin", "staff"), h.Checkin.ListByActivity)

			// 考勤确认模块
			attendance := authorized.Group("/attendance", middleware.RoleAuth("admin", "staff"))
			{
				attendance.POST("/confirm", h.Attendance.Confirm)
				attendance.POST("/confirm-bulk", h.Attendance.ConfirmBulk)
			}

			// 兑换码模块
			serials := authorized.Group("/serials", middleware.RoleAuth("admin", "staff"))
			{
				serials.POST("/generate", h.Serial.Generate)
				serials.POST("/send", h.Serial.Send)
				serials.POST("/send-bulk", h.Serial.SendBulk)
				serials.GET("/check/:activity/:participant", h.Serial.Check)
			}

			// 学生模块
			student := authorized.Group("/student")
			{
				student.POST("/redeem-serial", h.Student.RedeemSerial)
				student.POST("/submit-review", h.Student.SubmitReview)
				student.GET("/history", h.Student.History)
			}

			// 邮件队列运维（管理员）
			mailQueue := authorized.Group("/mail-queue", middleware.RoleAuth("admin"))
			{
				mailQueue.GET("", h.MailQueue.List)
				mailQueue.POST("/:id/retry", h.MailQueue.Retry)
			}
		}
	}

	return r
}
