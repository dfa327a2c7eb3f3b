package middleware

import (
	"InstaCap/internal/pkg/consts"
	"InstaCap/internal/pkg/identity"

	"github.com/gin-gonic/gin"
)

// AuthOptionalMiddleware 可选鉴权：解析成功注入 uid，失败或缺失则 uid 为空
func AuthOptionalMiddleware(provider identity.Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.Set(consts.CtxUID, "")
			c.Next()
			return
		}

		id, err := provider.VerifyToken(c.Request.Context(), token)
		if err != nil {
			c.Set(consts.CtxUID, "")
		} else {
			setIdentity(c, id)
		}

		c.Next()
	}
}
