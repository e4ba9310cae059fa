package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/olympiad-applications/api/swagger"
	"github.com/noah-isme/olympiad-applications/internal/handler"
	internalmiddleware "github.com/noah-isme/olympiad-applications/internal/middleware"
	"github.com/noah-isme/olympiad-applications/internal/repository"
	"github.com/noah-isme/olympiad-applications/internal/service"
	"github.com/noah-isme/olympiad-applications/pkg/cache"
	"github.com/noah-isme/olympiad-applications/pkg/config"
	"github.com/noah-isme/olympiad-applications/pkg/database"
	"github.com/noah-isme/olympiad-applications/pkg/export"
	"github.com/noah-isme/olympiad-applications/pkg/logger"
	corsmiddleware "github.com/noah-isme/olympiad-applications/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/olympiad-applications/pkg/middleware/requestid"
)

// @title Olympiad Applications API
// @version 1.0.0
// @description Review olympiad applications: list, filter, change status and notes.
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

	ctx := context.Background()
	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("database connection failed", "error", err)
	}
	defer db.Close()

	if err := database.EnsureSchema(ctx, db); err != nil {
		logr.Sugar().Fatalw("schema bootstrap failed", "error", err)
	}

	metricsSvc := service.NewMetricsService()

	var cacheRepo *repository.CacheRepository
	if cfg.Cache.Enabled {
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, caching disabled", zap.Error(err))
		} else {
			cacheRepo = repository.NewCacheRepository(client)
			defer cacheRepo.Close() //nolint:errcheck
		}
	}
	var cacheSvc *service.CacheService
	if cacheRepo != nil {
		cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.TTL, logr, true)
	}

	appRepo := repository.NewApplicationRepository(db)
	appSvc := service.NewApplicationService(appRepo, cacheSvc, metricsSvc, validator.New(), logr)
	exportSvc := service.NewExportService(appSvc, export.NewCSVExporter(), export.NewPDFExporter(), metricsSvc, logr, cfg.Applications.ExportTitle)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))

	metricsHandler := handler.NewMetricsHandler(metricsSvc.Handler())
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		pingCtx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(pingCtx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	handler.NewApplicationHandler(appSvc, exportSvc).Register(api)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "cache", cacheSvc.Enabled())
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
