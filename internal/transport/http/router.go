package http

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/heptiolabs/healthcheck"
	"go.uber.org/zap"

	"chatapp/backend/internal/auth"
	jwtpkg "chatapp/backend/internal/auth/jwt"
	"chatapp/backend/internal/config"
	"chatapp/backend/internal/middleware"
	"chatapp/backend/internal/monitoring"
	"chatapp/backend/internal/service"
)

// maxRequestBody 请求体大小上限（1 MiB），聊天消息用不到更大的体积。
const maxRequestBody = 1 << 20

// RouterDependencies 组装路由所需的依赖。
type RouterDependencies struct {
	Config      *config.Config
	ChatService *service.ChatService
	AuthService *auth.Service
	Tokens      *jwtpkg.Manager
	Metrics     *monitoring.Metrics
	Health      healthcheck.Handler
	Logger      *zap.Logger
}

// NewRouter 创建并配置 HTTP 路由。
func NewRouter(deps RouterDependencies) *gin.Engine {
	router := gin.New()

	router.Use(
		middleware.PanicRecovery(deps.Logger, deps.Metrics),
		middleware.RequestLogger(deps.Logger),
		middleware.SecurityHeaders(),
		middleware.RequestSizeLimit(maxRequestBody),
	)
	if deps.Metrics != nil {
		router.Use(middleware.HTTPMetrics(deps.Metrics))
	}
	router.Use(cors.New(corsConfig(deps.Config.CORS.AllowedOrigins)))

	authHandler := NewAuthHandler(deps.AuthService, deps.Tokens, deps.Logger)
	chatHandler := NewChatHandler(deps.ChatService, deps.Logger)
	jwtAuth := middleware.NewJWTAuth(deps.Tokens, deps.Logger)

	router.POST("/auth/register", authHandler.Register)
	router.POST("/auth/login", authHandler.Login)
	router.GET("/user/profile", jwtAuth.RequireAuth(), authHandler.Profile)

	chat := router.Group("/chat", jwtAuth.RequireAuth())
	{
		chat.POST("/send", chatHandler.Send)
		chat.GET("/messages", chatHandler.ListMessages)
		chat.POST("/mark_read", chatHandler.MarkRead)
	}

	if deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}
	if deps.Health != nil {
		router.GET("/health", gin.WrapF(deps.Health.ReadyEndpoint))
		router.GET("/live", gin.WrapF(deps.Health.LiveEndpoint))
		router.GET("/ready", gin.WrapF(deps.Health.ReadyEndpoint))
	}

	return router
}

// corsConfig 按配置构造 CORS 策略
//
// 允许任意来源时不能同时开启凭据，浏览器会拒绝这种组合。
func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	for _, origin := range origins {
		if origin == "*" {
			cfg.AllowAllOrigins = true
			cfg.AllowCredentials = false
			cfg.AllowOrigins = nil
			return cfg
		}
	}
	cfg.AllowOrigins = origins
	return cfg
}
