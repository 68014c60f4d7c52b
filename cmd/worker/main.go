// Package main runs the notification dispatch worker on its own, for
// deployments that separate the API from background processing.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/washpoint/backend/config"
	"github.com/washpoint/backend/internal/notifications"
	"github.com/washpoint/backend/internal/worker"
	"github.com/washpoint/backend/pkg/clock"
	"github.com/washpoint/backend/pkg/database"
	"github.com/washpoint/backend/pkg/queue"
	"github.com/washpoint/backend/pkg/redis"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	notificationRepo := notifications.NewRepository(pool)
	jobQueue := queue.NewQueue(rdb.Client, logger)
	dispatcher := worker.NewDispatcher(notificationRepo, jobQueue, cfg.Notify.WebhookURL,
		time.Duration(cfg.Notify.Timeout)*time.Second, clock.Real{}, logger)

	workerCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go dispatcher.Run(workerCtx)
	logger.Info("worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	cancel()
	time.Sleep(2 * time.Second)
	logger.Info("worker stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
