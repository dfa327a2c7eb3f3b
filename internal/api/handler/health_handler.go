package handler

import (
	"InstaCap/internal/pkg/redis"
	"context"
	log "log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// DBPinger 数据库连通性
type DBPinger interface {
	Ping(ctx context.Context) (time.Duration, error)
}

// Pinger 可选依赖的连通性
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db           DBPinger
	objects      Pinger
	identityName string
	textGenModel string
	startedAt    time.Time
}

// NewHealthHandler textGenModel 为空表示走模板兜底，objects 可以为 nil
func NewHealthHandler(db DBPinger, objects Pinger, identityName, textGenModel string) *HealthHandler {
	return &HealthHandler{
		db:           db,
		objects:      objects,
		identityName: identityName,
		textGenModel: textGenModel,
		startedAt:    time.Now(),
	}
}

// Health 数据库不可用时返回 503
func (s *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	status, code := "ok", http.StatusOK
	database := gin.H{"status": "connected", "connected": true}
	if latency, err := s.db.Ping(ctx); err != nil {
		log.WarnContext(ctx, "database ping failed", "err", err)
		status, code = "degraded", http.StatusServiceUnavailable
		database = gin.H{"status": "disconnected", "connected": false}
	} else {
		database["latencyMs"] = latency.Milliseconds()
	}

	textGen := "mock"
	if s.textGenModel != "" {
		textGen = "configured"
	}
	services := gin.H{
		"identityProvider": s.identityName,
		"textGenProvider":  textGen,
		"cache":            dependencyStatus(ctx, redisPinger{}, redis.Enabled()),
		"objectStorage":    dependencyStatus(ctx, s.objects, s.objects != nil),
	}

	c.JSON(code, gin.H{
		"status":    status,
		"timestamp": time.Now(),
		"uptime":    int64(time.Since(s.startedAt).Seconds()),
		"database":  database,
		"services":  services,
	})
}

func dependencyStatus(ctx context.Context, p Pinger, enabled bool) string {
	if !enabled {
		return "disabled"
	}
	if err := p.Ping(ctx); err != nil {
		return "error"
	}
	return "connected"
}

type redisPinger struct{}

func (redisPinger) Ping(ctx context.Context) error {
	return redis.Ping(ctx)
}
