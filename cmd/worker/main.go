package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"chatapp/backend/internal/config"
	"chatapp/backend/internal/logger"
	"chatapp/backend/internal/monitoring"
	"chatapp/backend/internal/queue"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
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

	metrics := monitoring.NewMetrics()
	if cfg.Worker.MetricsAddr != "" {
		go serveMetrics(cfg.Worker.MetricsAddr, metrics, zapLogger)
	}

	// 投递处理目前只记录并模拟推送耗时；真实推送通道（WebSocket、
	// 移动推送）接入时替换这里的处理函数即可。
	process := func(ctx context.Context, payload queue.Payload, redelivered bool) error {
		zapLogger.Info("delivering message",
			zap.String("sender", payload.Sender),
			zap.String("receiver", payload.Receiver),
			zap.Time("sent_at", payload.Timestamp),
			zap.Bool("redelivered", redelivered),
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(cfg.Worker.ProcessDelay):
		}

		zapLogger.Info("message delivered", zap.String("receiver", payload.Receiver))
		return nil
	}

	consumer := queue.NewConsumer(cfg.Queue.URL, cfg.Queue.Name, process, zapLogger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	zapLogger.Info("worker starting",
		zap.String("queue", cfg.Queue.Name),
		zap.Duration("process_delay", cfg.Worker.ProcessDelay),
	)

	if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		zapLogger.Fatal("consumer stopped", zap.Error(err))
	}
	zapLogger.Info("worker stopped")
}

// serveMetrics 在独立端口暴露 /metrics。
func serveMetrics(addr string, metrics *monitoring.Metrics, zapLogger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())

	zapLogger.Info("worker metrics listening", zap.String("addr", addr))
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		zapLogger.Error("metrics server failed", zap.Error(err))
	}
}
