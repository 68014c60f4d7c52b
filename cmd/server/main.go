// Package main runs the car-wash platform HTTP server with WebSocket board
// updates, the notification worker and graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/washpoint/backend/config"
	"github.com/washpoint/backend/internal/appointments"
	"github.com/washpoint/backend/internal/auth"
	"github.com/washpoint/backend/internal/board"
	"github.com/washpoint/backend/internal/customers"
	"github.com/washpoint/backend/internal/events"
	"github.com/washpoint/backend/internal/loyalty"
	"github.com/washpoint/backend/internal/middleware"
	"github.com/washpoint/backend/internal/models"
	"github.com/washpoint/backend/internal/notifications"
	"github.com/washpoint/backend/internal/orders"
	"github.com/washpoint/backend/internal/realtime"
	"github.com/washpoint/backend/internal/shops"
	"github.com/washpoint/backend/internal/staff"
	"github.com/washpoint/backend/internal/tenant"
	"github.com/washpoint/backend/internal/tracking"
	"github.com/washpoint/backend/internal/vehicles"
	"github.com/washpoint/backend/internal/worker"
	"github.com/washpoint/backend/pkg/clock"
	"github.com/washpoint/backend/pkg/database"
	"github.com/washpoint/backend/pkg/queue"
	"github.com/washpoint/backend/pkg/redis"
	"github.com/washpoint/backend/pkg/response"
	"github.com/washpoint/backend/pkg/storage"
)

// refResolver satisfies the cross-reference checks of the appointment and
// order services from the customer and vehicle repositories.
type refResolver struct {
	customers *customers.Repository
	vehicles  *vehicles.Repository
}

func (r refResolver) CustomerExists(ctx context.Context, shopID, customerID int64) (bool, error) {
	return r.customers.CustomerExists(ctx, shopID, customerID)
}

func (r refResolver) VehicleOwner(ctx context.Context, shopID, vehicleID int64) (int64, error) {
	return r.vehicles.VehicleOwner(ctx, shopID, vehicleID)
}

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

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	var s3Client *storage.S3
	if cfg.AWS.Region != "" {
		s3Cfg := storage.S3Config{
			Region:               cfg.AWS.Region,
			AccessKeyID:          cfg.AWS.AccessKeyID,
			SecretAccessKey:      cfg.AWS.SecretAccessKey,
			PhotosBucket:         cfg.AWS.PhotosBucket,
			PresignExpireMinutes: cfg.AWS.PresignExpireMinutes,
		}
		s3Client, err = storage.NewS3(ctx, s3Cfg, logger)
		if err != nil {
			logger.Warn("s3 disabled", zap.Error(err))
		}
	}

	clk := clock.Real{}
	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)
	redisPubSub := realtime.NewRedisPubSub(rdb.Client, logger)
	hub := realtime.NewHub(logger, redisPubSub, redisPubSub)
	jobQueue := queue.NewQueue(rdb.Client, logger)

	// Auth and staff accounts
	authRepo := auth.NewRepository(pool)
	authHandler := auth.NewHandler(authRepo, jwtService, logger)
	staffHandler := staff.NewHandler(authRepo)

	// Registries
	customerRepo := customers.NewRepository(pool)
	customerHandler := customers.NewHandler(customerRepo)
	vehicleRepo := vehicles.NewRepository(pool)
	vehicleHandler := vehicles.NewHandler(vehicleRepo)
	shopRepo := shops.NewRepository(pool)
	shopHandler := shops.NewHandler(shopRepo, s3Client)
	refs := refResolver{customers: customerRepo, vehicles: vehicleRepo}

	// Notifications and loyalty, fed by the event fan-out
	notificationRepo := notifications.NewRepository(pool)
	notifier := notifications.NewNotifier(notificationRepo, jobQueue, logger)
	notificationHandler := notifications.NewHandler(notificationRepo)
	loyaltyRepo := loyalty.NewRepository(pool)
	loyaltySvc := loyalty.NewService(loyaltyRepo, logger)
	loyaltyHandler := loyalty.NewHandler(loyaltySvc)

	emitter := events.NewFanout(logger)
	emitter.OnPublish(func(ctx context.Context, change events.StatusChange) error {
		hub.PublishOnly(change.Order.ShopID, realtime.EventWashStatusChanged, gin.H{
			"order_id": change.Order.ID,
			"from":     change.From,
			"to":       change.To,
			"order":    change.Order,
		})
		return nil
	})
	emitter.OnNotify(notifier.OnStatusChange)
	emitter.OnReward(loyaltySvc.EarnPoint)

	// Appointments
	hours := appointments.Hours{
		Opening:     cfg.Hours.OpeningHour,
		Closing:     cfg.Hours.ClosingHour,
		SlotMinutes: cfg.Hours.SlotGranularity,
	}
	appointmentRepo := appointments.NewRepository(pool)
	appointmentSvc := appointments.NewService(appointmentRepo, refs, hours, clk, logger)
	appointmentHandler := appointments.NewHandler(appointmentSvc)

	// Orders, board and public tracking
	orderRepo := orders.NewRepository(pool)
	orderSvc := orders.NewService(orderRepo, refs, authRepo, clk, emitter, logger)
	orderHandler := orders.NewHandler(orderSvc, s3Client)
	boardHandler := board.NewHandler(orderRepo, clk)
	trackingHandler := tracking.NewHandler(orderSvc)

	// Notification dispatch worker
	dispatcher := worker.NewDispatcher(notificationRepo, jobQueue, cfg.Notify.WebhookURL,
		time.Duration(cfg.Notify.Timeout)*time.Second, clk, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	// Health
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Auth (public)
	router.POST("/auth/login", authHandler.Login)

	// Public tracking and kiosk (token-addressed, no session)
	public := router.Group("")
	trackingHandler.RegisterRoutes(public)

	// Protected API (JWT + tenant scope)
	api := router.Group("")
	api.Use(middleware.JWT(jwtService))
	api.POST("/auth/switch-shop", authHandler.SwitchShop)
	api.Use(tenant.Middleware())
	{
		owners := api.Group("", middleware.RequireRole(models.RoleOwner, models.RoleSuperOperator))
		supers := api.Group("", middleware.RequireRole(models.RoleSuperOperator))

		appointmentHandler.RegisterRoutes(api)
		orderHandler.RegisterRoutes(api)
		boardHandler.RegisterRoutes(api)
		customerHandler.RegisterRoutes(api)
		vehicleHandler.RegisterRoutes(api)
		notificationHandler.RegisterRoutes(api)
		loyaltyHandler.RegisterRoutes(api, owners)
		staffHandler.RegisterRoutes(owners)
		shopHandler.RegisterRoutes(api, supers)
		supers.POST("/auth/register-owner", authHandler.RegisterOwner)
	}

	// WebSocket (token in query; no Authorization header required)
	authorize := func(token string, shopID int64) (int64, string, error) {
		claims, err := jwtService.Validate(token)
		if err != nil {
			return 0, "", err
		}
		if claims.Role != models.RoleSuperOperator &&
			(claims.ShopID == nil || *claims.ShopID != shopID) {
			return 0, "", auth.ErrInvalidToken
		}
		return claims.UserID, string(claims.Role), nil
	}
	router.GET("/ws", realtime.ServeWs(hub, logger, authorize))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Background worker (notification dispatch)
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	go dispatcher.Run(workerCtx)
	logger.Info("notification worker started")

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	workerCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
