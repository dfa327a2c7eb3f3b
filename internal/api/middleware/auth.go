package middleware

import (
	"InstaCap/internal/pkg/consts"
	"InstaCap/internal/pkg/identity"
	"InstaCap/internal/pkg/response"
	"InstaCap/internal/service"
	"context"
	"errors"
	log "log/slog"
	"strings"

	"github.com/gin-gonic/gin"
)

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	return token, token != ""
}

func setIdentity(c *gin.Context, id *identity.Identity) {
	c.Set(consts.CtxUID, id.UID)
	c.Set(consts.CtxIdentity, id)

	newCtx := context.WithValue(c.Request.Context(), consts.CtxUID, id.UID)
	c.Request = c.Request.WithContext(newCtx)
}

// AuthMiddleware 缺少 Token 返回 401，Token 无效或过期返回 403
func AuthMiddleware(provider identity.Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			response.Error(c, service.ErrMissingToken)
			return
		}

		id, err := provider.VerifyToken(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, identity.ErrUnavailable) {
				log.WarnContext(c.Request.Context(), "identity provider unavailable", "err", err)
				response.Error(c, service.ErrProviderUnavailable)
				return
			}
			response.Error(c, service.ErrTokenRejected)
			return
		}

		setIdentity(c, id)
		c.Next()
	}
}
