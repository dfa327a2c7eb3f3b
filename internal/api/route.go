package api

import (
	"InstaCap/internal/api/middleware"
	"InstaCap/internal/pkg/logger"

	"github.com/gin-gonic/gin"
)

func SetupRouter(group *HandlersGroup) *gin.Engine {
	cfg := group.Config
	r := gin.New()
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})
	r.MaxMultipartMemory = cfg.Server.MaxUploadSize

	// TraceId & Logger & CORS
	r.Use(middleware.TraceMiddleware())
	r.Use(middleware.AuditMiddleware())
	r.Use(middleware.CORSMiddleware(cfg.Server.AllowedOrigins))
	logger.SetupGin(r, cfg.Logstash)

	auth := middleware.AuthMiddleware(group.Provider)
	authOpt := middleware.AuthOptionalMiddleware(group.Provider)

	r.GET("/health", group.HealthHandler.Health)

	apiGroup := r.Group("/api")
	apiGroup.Use(middleware.RateLimitMiddleware(cfg.RateLimit))
	{
		authGroup := apiGroup.Group("/auth")
		{
			authGroup.POST("/register", group.AuthHandler.Register)
			authGroup.POST("/login", group.AuthHandler.Login)
			authGroup.POST("/verify", group.AuthHandler.Verify)
			authGroup.POST("/logout", auth, group.AuthHandler.Logout)
		}

		captionGroup := apiGroup.Group("/captions")
		{
			// 无需登录即可访问的接口
			authOptGroup := captionGroup.Group("")
			authOptGroup.Use(authOpt)
			{
				authOptGroup.POST("/analyze-image", group.CaptionHandler.AnalyzeImage)
				authOptGroup.GET("/history", group.CaptionHandler.GetHistory)
				authOptGroup.GET("/trending", group.CaptionHandler.GetTrending)
				authOptGroup.POST("/:id/engagement/:kind", group.CaptionHandler.RecordEngagement)
			}

			authCaptionGroup := captionGroup.Group("")
			authCaptionGroup.Use(auth)
			{
				authCaptionGroup.POST("", group.CaptionHandler.CreateCaption)
				authCaptionGroup.GET("/analytics", group.CaptionHandler.GetAnalytics)
				authCaptionGroup.PUT("/:id/favorite", group.CaptionHandler.ToggleFavorite)
				authCaptionGroup.PUT("/:id", group.CaptionHandler.UpdateCaption)
				authCaptionGroup.DELETE("/:id", group.CaptionHandler.DeleteCaption)
			}
		}

		userGroup := apiGroup.Group("/users")
		userGroup.Use(auth)
		{
			userGroup.GET("/profile", group.UserHandler.GetProfile)
			userGroup.PUT("/profile", group.UserHandler.UpdateProfile)
			userGroup.GET("/stats", group.UserHandler.GetStats)
			userGroup.GET("/activity", group.UserHandler.GetActivity)
			userGroup.PUT("/password", group.UserHandler.ChangePassword)
			userGroup.GET("/export", group.UserHandler.ExportData)
			userGroup.DELETE("/account", group.UserHandler.DeleteAccount)
		}

		analyticsGroup := apiGroup.Group("/analytics")
		analyticsGroup.Use(auth)
		{
			analyticsGroup.POST("/events", group.AnalyticsHandler.TrackEvent)
			analyticsGroup.GET("", group.AnalyticsHandler.GetEvents)
		}
	}

	return r
}
