package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/class-record-api/api/swagger"
	"github.com/noah-isme/class-record-api/internal/handler"
	internalmiddleware "github.com/noah-isme/class-record-api/internal/middleware"
	"github.com/noah-isme/class-record-api/internal/repository"
	"github.com/noah-isme/class-record-api/internal/service"
	"github.com/noah-isme/class-record-api/pkg/cache"
	"github.com/noah-isme/class-record-api/pkg/config"
	"github.com/noah-isme/class-record-api/pkg/database"
	"github.com/noah-isme/class-record-api/pkg/jobs"
	"github.com/noah-isme/class-record-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/class-record-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/class-record-api/pkg/middleware/requestid"
	"github.com/noah-isme/class-record-api/pkg/storage"
)

// @title Class Record API
// @version 1.0.0
// @description Class records, transmuted grades, summaries and career progression for basic education teachers.
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close()

	if err := database.EnsureSchema(ctx, db); err != nil {
		logr.Fatal("failed to apply schema", zap.Error(err))
	}

	var redisClient *redis.Client
	if cfg.Cache.Enabled {
		redisClient, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, caching disabled", zap.Error(err))
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	settingsRepo := repository.NewSettingsRepository(db)
	gradeRepo := repository.NewGradeRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	batchRepo := repository.NewBatchRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.ClassRecordTTL, logr, redisClient != nil)
	classRecordSvc := service.NewClassRecordService(settingsRepo, gradeRepo, studentRepo, cacheSvc, metricsSvc, validate, logr)
	summarySvc := service.NewSummaryService(batchRepo, studentRepo, settingsRepo, gradeRepo, cacheSvc, metricsSvc, logr)
	careerSvc := service.NewCareerService(nil, cfg.Career.Enabled, metricsSvc, validate, logr)

	if cacheSvc.Enabled() {
		warmer := service.NewSummaryWarmer(summarySvc, logr)
		queue := jobs.NewQueue("summary-warmup", warmer.Handle, jobs.QueueConfig{Workers: 2, MaxRetries: 2, Logger: logr})
		queue.Start(ctx)
		defer queue.Stop()
		warmer.Attach(queue)
		classRecordSvc.SetSummaryWarmer(warmer)
	}

	exportStore, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		logr.Fatal("failed to prepare export storage", zap.Error(err))
	}
	signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
	exportSvc := service.NewExportService(classRecordSvc, summarySvc, exportStore, signer, service.ExportConfig{
		Enabled:   cfg.Exports.Enabled,
		APIPrefix: cfg.APIPrefix,
		ResultTTL: cfg.Exports.SignedURLTTL,
	}, metricsSvc, validate, logr)
	if cfg.Exports.Enabled {
		go exportSvc.RunCleanup(ctx, cfg.Exports.CleanupInterval)
	}

	classRecordHandler := handler.NewClassRecordHandler(classRecordSvc)
	summaryHandler := handler.NewSummaryHandler(summarySvc)
	careerHandler := handler.NewCareerHandler(careerSvc)
	exportHandler := handler.NewExportHandler(exportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, db)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	records := api.Group("/class-records")
	records.GET("", classRecordHandler.Get)
	records.GET("/settings", classRecordHandler.GetSettings)
	records.PUT("/settings", classRecordHandler.UpdateSettings)
	records.PUT("/scores", classRecordHandler.UpsertScore)
	records.POST("/scores/bulk", classRecordHandler.BulkScores)

	summaries := api.Group("/summaries")
	summaries.GET("/quarterly", summaryHandler.Quarterly)
	summaries.GET("/final", summaryHandler.Final)

	career := api.Group("/career")
	career.GET("/positions", careerHandler.Positions)
	career.POST("/evaluate", careerHandler.Evaluate)

	exports := api.Group("/exports")
	exports.POST("", exportHandler.Generate)
	exports.GET("/:token", exportHandler.Download)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Error("server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}
