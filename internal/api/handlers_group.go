package api

import (
	"InstaCap/internal/api/config"
	"InstaCap/internal/api/handler"
	"InstaCap/internal/pkg/identity"
)

// HandlersGroup 封装了所有已初始化的 Handler 实例
type HandlersGroup struct {
	AuthHandler      *handler.AuthHandler
	CaptionHandler   *handler.CaptionHandler
	UserHandler      *handler.UserHandler
	AnalyticsHandler *handler.AnalyticsHandler
	HealthHandler    *handler.HealthHandler

	Provider identity.Provider
	Config   *config.Config
}
