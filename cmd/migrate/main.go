package main

import (
	"log"

	"go.uber.org/zap"

	"chatapp/backend/internal/config"
	"chatapp/backend/internal/logger"
	sqlstore "chatapp/backend/internal/storage/sql"
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

	if cfg.Database.Type == "" || cfg.Database.DSN == "" {
		zapLogger.Fatal("migration requires CHATAPP_DATABASE_TYPE and CHATAPP_DATABASE_DSN")
	}

	// NewStore 内部执行 AutoMigrate
	store, err := sqlstore.NewStore(
		cfg.Database.Type,
		cfg.Database.DSN,
		cfg.Database.MaxOpenConns,
		cfg.Database.MaxIdleConns,
		cfg.Database.ConnMaxLifetime,
	)
	if err != nil {
		zapLogger.Fatal("migration failed", zap.Error(err))
	}
	defer store.Close()

	zapLogger.Info("database migration completed",
		zap.String("driver", cfg.Database.Type),
	)
}
