package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"revizly/internal/pkg/ctxutil"
	httputil "revizly/internal/pkg/http"
)

// TokenVerifier 校验 Bearer Token
type TokenVerifier interface {
	VerifyToken(token string) (ctxutil.Identity, error)
}

// Auth JWT 认证中间件
// 缺失、格式错误、无效或过期的 token 一律返回 403
func Auth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			httputil.Abort(c, http.StatusForbidden, httputil.CodeForbidden, "No token provided")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			httputil.Abort(c, http.StatusForbidden, httputil.CodeForbidden, "Invalid authorization header")
			return
		}

		ident, err := verifier.VerifyToken(strings.TrimSpace(parts[1]))
		if err != nil {
			httputil.Abort(c, http.StatusForbidden, httputil.CodeForbidden, "Invalid token", err.Error())
			return
		}

		c.Set("user_id", ident.UserID)
		c.Request = c.Request.WithContext(ctxutil.WithIdentity(c.Request.Context(), ident))
		c.Next()
	}
}
