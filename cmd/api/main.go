package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"chatapp/backend/internal/auth"
	jwtpkg "chatapp/backend/internal/auth/jwt"
	"chatapp/backend/internal/config"
	"chatapp/backend/internal/health"
	"chatapp/backend/internal/logger"
	"chatapp/backend/internal/monitoring"
	"chatapp/backend/internal/queue"
	"chatapp/backend/internal/service"
	"chatapp/backend/internal/storage"
	"chatapp/backend/internal/storage/memory"
	sqlstore "chatapp/backend/internal/storage/sql"
	transport "chatapp/backend/internal/transport/http"
)

// store 聊天服务依赖的存储能力集合。
type store interface {
	storage.MessageRepository
	storage.UserRepository
	Health() error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if !cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	}

	zapLogger, err := logger.NewLogger(logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.Log.Development,
		LogFile:     cfg.Log.File,
		MaxSize:     cfg.Log.MaxSize,
		MaxBackups:  cfg.Log.MaxBackups,
		MaxAge:      cfg.Log.MaxAge,
		Compress:    cfg.Log.Compress,
	})
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	if cfg.UsesDefaultSecret() {
		zapLogger.Warn("using built-in development JWT secret, set CHATAPP_JWT_SECRET in production")
	}

	dataStore, cleanup, err := buildStore(cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to init storage", zap.Error(err))
	}
	defer cleanup()

	publisher := queue.NewPublisher(cfg.Queue.URL, cfg.Queue.Name, zapLogger)
	metrics := monitoring.NewMetrics()

	chatService := service.NewChatService(dataStore, publisher, zapLogger)
	chatService.SetMetrics(metrics)
	authService := auth.NewService(dataStore)
	tokens := jwtpkg.NewManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.TTL)

	router := transport.NewRouter(transport.RouterDependencies{
		Config:      cfg,
		ChatService: chatService,
		AuthService: authService,
		Tokens:      tokens,
		Metrics:     metrics,
		Health:      health.NewHandler(dataStore, cfg.Queue.URL),
		Logger:      zapLogger,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		zapLogger.Info("api server listening", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zapLogger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}

// buildStore 按配置选择存储实现，留空的 database.type 使用内存存储。
func buildStore(cfg *config.Config, zapLogger *zap.Logger) (store, func(), error) {
	if cfg.Database.Type == "" {
		zapLogger.Warn("no database configured, using in-memory storage (data is lost on restart)")
		return memory.NewStore(), func() {}, nil
	}

	s, err := sqlstore.NewStore(
		cfg.Database.Type,
		cfg.Database.DSN,
		cfg.Database.MaxOpenConns,
		cfg.Database.MaxIdleConns,
		cfg.Database.ConnMaxLifetime,
	)
	if err != nil {
		return nil, nil, err
	}
	zapLogger.Info("connected to database", zap.String("driver", cfg.Database.Type))
	return s, func() { s.Close() }, nil
}
