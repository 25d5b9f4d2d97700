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
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/lifelink-dev/bloodlink-api/api/swagger"
	"github.com/lifelink-dev/bloodlink-api/internal/handler"
	"github.com/lifelink-dev/bloodlink-api/internal/middleware"
	"github.com/lifelink-dev/bloodlink-api/internal/models"
	"github.com/lifelink-dev/bloodlink-api/internal/repository"
	"github.com/lifelink-dev/bloodlink-api/internal/service"
	"github.com/lifelink-dev/bloodlink-api/pkg/cache"
	"github.com/lifelink-dev/bloodlink-api/pkg/config"
	"github.com/lifelink-dev/bloodlink-api/pkg/database"
	"github.com/lifelink-dev/bloodlink-api/pkg/export"
	"github.com/lifelink-dev/bloodlink-api/pkg/jobs"
	"github.com/lifelink-dev/bloodlink-api/pkg/logger"
	corsmiddleware "github.com/lifelink-dev/bloodlink-api/pkg/middleware/cors"
	reqidmiddleware "github.com/lifelink-dev/bloodlink-api/pkg/middleware/requestid"
	"github.com/lifelink-dev/bloodlink-api/pkg/notify"
	"github.com/lifelink-dev/bloodlink-api/pkg/storage"
)

// @title BloodLink API
// @version 1.0.0
// @description Blood donation management platform
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, aggregate caching disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	hospitalRepo := repository.NewHospitalRepository(db)
	donationRepo := repository.NewDonationRepository(db)
	requestRepo := repository.NewRequestRepository(db)
	reportRepo := repository.NewReportRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Aggregates.CacheTTL, logr, redisClient != nil)

	authSvc := service.NewAuthService(userRepo, validate, logr, cfg.JWT)
	requestSvc := service.NewRequestService(requestRepo, hospitalRepo, cacheSvc, validate, logr)
	donationSvc := service.NewDonationService(donationRepo, cacheSvc, validate, logr, cfg.Eligibility.HistoryCooldownDays)
	donorSvc := service.NewDonorService(userRepo, donationRepo, cfg.Eligibility.DonorCooldownDays, logr)
	aggregateSvc := service.NewAggregateService(
		donationRepo, userRepo, hospitalRepo, requestRepo, reportRepo,
		cacheSvc, cfg.Aggregates.CacheTTL, cfg.Geo.DefaultRadiusMeters, logr,
	)

	notificationSvc := service.NewNotificationService(
		userRepo, donationRepo, notificationRepo,
		map[models.NotificationChannel]notify.Transport{
			models.ChannelEmail: notify.NewSMTPTransport(cfg.Notifications),
			models.ChannelSMS:   notify.NewLogTransport(logr),
		},
		metricsSvc, validate, logr, cfg.Eligibility.HistoryCooldownDays,
		jobs.QueueConfig{
			Workers:    cfg.Notifications.WorkerConcurrency,
			BufferSize: cfg.Notifications.QueueBuffer,
			Logger:     logr,
		},
	)

	exportStore, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to prepare export storage", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
	exportSvc := service.NewExportService(
		aggregateSvc, exportStore, signer,
		service.ExportConfig{APIPrefix: cfg.APIPrefix, ResultTTL: cfg.Exports.SignedURLTTL},
		logr, export.NewCSVExporter(), export.NewPDFExporter(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	notificationSvc.Start(ctx)
	defer notificationSvc.Stop()

	authHandler := handler.NewAuthHandler(authSvc)
	requestHandler := handler.NewRequestHandler(requestSvc, aggregateSvc)
	donationHandler := handler.NewDonationHandler(donationSvc, aggregateSvc)
	donorHandler := handler.NewDonorHandler(donorSvc)
	notificationHandler := handler.NewNotificationHandler(notificationSvc)
	exportHandler := handler.NewExportHandler(exportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	api.POST("/auth/login", authHandler.Login)

	requests := api.Group("/requests")
	requests.GET("", middleware.OptionalJWT(authSvc), requestHandler.List)
	requests.GET("/nearby", middleware.OptionalJWT(authSvc), requestHandler.Nearby)
	requests.POST("", middleware.JWT(authSvc), middleware.RBAC("ADMIN", "HOSPITAL"), requestHandler.Create)
	requests.GET("/:id", middleware.OptionalJWT(authSvc), requestHandler.Get)
	requests.PATCH("/:id", middleware.JWT(authSvc), middleware.RBAC("ADMIN", "HOSPITAL"), requestHandler.Update)
	requests.POST("/:id/volunteer", middleware.JWT(authSvc), requestHandler.Volunteer)
	requests.DELETE("/:id", middleware.JWT(authSvc), middleware.RBAC("ADMIN"), requestHandler.Delete)

	donations := api.Group("/donations", middleware.JWT(authSvc))
	donations.POST("", middleware.RBAC("ADMIN", "HOSPITAL"), donationHandler.Create)
	donations.GET("", donationHandler.List)
	donations.GET("/aggregate", donationHandler.Aggregate)
	donations.GET("/export", middleware.RBAC("ADMIN", "HOSPITAL"), exportHandler.Generate)
	donations.GET("/:id", donationHandler.Get)
	donations.PATCH("/:id", middleware.RBAC("ADMIN", "HOSPITAL"), donationHandler.Update)
	donations.DELETE("/:id", middleware.RBAC("ADMIN"), donationHandler.Delete)

	api.GET("/donors", middleware.JWT(authSvc), donorHandler.List)
	api.GET("/donors/:donorId/eligibility", middleware.JWT(authSvc), donationHandler.Eligibility)

	notifications := api.Group("/notifications", middleware.JWT(authSvc))
	notifications.GET("", notificationHandler.Feed)
	notifications.POST("/broadcast", middleware.RBAC("ADMIN"), notificationHandler.Broadcast)
	notifications.POST("/:id/read", notificationHandler.MarkRead)

	api.GET("/exports/download/:token", exportHandler.Download)

	api.GET("/ops/metrics", middleware.JWT(authSvc), middleware.RBAC("ADMIN"), metricsHandler.Snapshot)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
