package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/emifrog/SaaS-RH/config"
	"github.com/emifrog/SaaS-RH/internal/api/handler"
	"github.com/emifrog/SaaS-RH/internal/api/middleware"
	"github.com/emifrog/SaaS-RH/pkg/jwt"
	"github.com/emifrog/SaaS-RH/pkg/redis"
)

// Setup builds the Gin engine with all routes and middleware.
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	// 2 MiB leaves room for base64 signature images.
	r.Use(middleware.BodyLimit(2 << 20))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/login", middleware.RateLimit(rdb, 10, time.Minute), h.Auth.Login)
			auth.POST("/refresh", middleware.RateLimit(rdb, 20, time.Minute), h.Auth.Refresh)
		}

		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)

			manageSessions := middleware.RequireCapability(func(caps middleware.Capabilities) bool { return caps.ManageSessions })
			deleteSessions := middleware.RequireCapability(func(caps middleware.Capabilities) bool { return caps.DeleteSessions })
			markAttendance := middleware.RequireCapability(func(caps middleware.Capabilities) bool { return caps.MarkAttendance })
			exportPayroll := middleware.RequireCapability(func(caps middleware.Capabilities) bool { return caps.ExportPayroll })

			sessions := authorized.Group("/sessions")
			{
				sessions.GET("", h.Session.List)
				sessions.GET("/:id", h.Session.Get)
				sessions.GET("/:id/ics", h.Session.DownloadICS)
				sessions.POST("", manageSessions, h.Session.Create)
				sessions.PUT("/:id", manageSessions, h.Session.Update)
				sessions.DELETE("/:id", deleteSessions, h.Session.Delete)

				// Self-service enrolment; others-on-behalf is decided in
				// the handler from the capability set.
				sessions.POST("/:id/registrations", h.Registration.Register)
				sessions.DELETE("/:id/registrations/:personnelId", h.Registration.Withdraw)
				sessions.GET("/:id/registrations", markAttendance, h.Registration.List)
				sessions.PUT("/:id/attendance", markAttendance, h.Registration.MarkAttendance)
			}

			export := authorized.Group("/export", exportPayroll)
			{
				export.GET("/tta", h.Export.ExportTTA)
				export.GET("/tta/preview", h.Export.PreviewTTA)
				export.GET("/monthly", h.Export.MonthlyReport)
			}

			notifications := authorized.Group("/notifications")
			{
				notifications.GET("", h.Notification.ListMine)
				notifications.PUT("/:id/read", h.Notification.MarkRead)
			}
		}
	}

	return r
}
