package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	jwtpkg "chatapp/backend/internal/auth/jwt"
)

// Identity 从令牌解码出的请求身份
//
// 由认证中间件写入上下文，随后只读；下游不得修改。
type Identity struct {
	UserID   string
	Email    string
	Username string
}

// identityKey 上下文中身份的键名
const identityKey = "identity"

// JWTAuth JWT 认证中间件（认证门）
//
// 纯密码学校验，不访问数据库：任何服务实例都能独立认证请求，
// 无需共享会话存储。
type JWTAuth struct {
	manager *jwtpkg.Manager
	log     *zap.Logger
}

// NewJWTAuth 创建 JWT 认证中间件。
func NewJWTAuth(manager *jwtpkg.Manager, log *zap.Logger) *JWTAuth {
	if log == nil {
		log = zap.NewNop()
	}
	return &JWTAuth{manager: manager, log: log}
}

// RequireAuth 要求请求携带合法的 Bearer 令牌
//
// 缺失、过期、签名非法、结构非法统一以 401 短路；具体原因记录在
// 日志里用于诊断，不在响应中区分。
func (ja *JWTAuth) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "authentication required",
			})
			return
		}

		claims, err := ja.manager.Verify(token)
		if err != nil {
			ja.log.Warn("token rejected",
				zap.String("reason", err.Error()),
				zap.String("ip", c.ClientIP()),
				zap.String("path", c.Request.URL.Path),
			)

			msg := "invalid token"
			if errors.Is(err, jwtpkg.ErrExpiredToken) {
				msg = "token expired"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
			return
		}

		c.Set(identityKey, Identity{
			UserID:   claims.Subject,
			Email:    claims.Email,
			Username: claims.Username,
		})
		c.Next()
	}
}

// IdentityFrom 读取当前请求的认证身份。
func IdentityFrom(c *gin.Context) (Identity, bool) {
	value, exists := c.Get(identityKey)
	if !exists {
		return Identity{}, false
	}
	identity, ok := value.(Identity)
	return identity, ok
}

// extractToken 从 Authorization 头提取 Bearer 令牌，形状不对返回空串。
func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return ""
	}
	return parts[1]
}
