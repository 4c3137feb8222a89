package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/NishantDakua/charaks/api/swagger"
	"github.com/NishantDakua/charaks/internal/handler"
	internalmiddleware "github.com/NishantDakua/charaks/internal/middleware"
	"github.com/NishantDakua/charaks/internal/repository"
	"github.com/NishantDakua/charaks/internal/service"
	"github.com/NishantDakua/charaks/pkg/cache"
	"github.com/NishantDakua/charaks/pkg/config"
	"github.com/NishantDakua/charaks/pkg/database"
	"github.com/NishantDakua/charaks/pkg/logger"
	corsmiddleware "github.com/NishantDakua/charaks/pkg/middleware/cors"
	reqidmiddleware "github.com/NishantDakua/charaks/pkg/middleware/requestid"
)

// @title Charaks Admin API
// @version 1.0.0
// @description Doctor verification and admin management API
// @BasePath /
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	metricsSvc := service.NewMetricsService()

	var cacheSvc *service.CacheService
	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, dashboard caching disabled", "error", err)
		cacheSvc = service.NewCacheService(nil, metricsSvc, cfg.Dashboard.CacheTTL, logr, false)
	} else {
		defer redisClient.Close()
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Dashboard.CacheTTL, logr, true)
	}

	validate := validator.New()

	doctorRepo := repository.NewDoctorRepository(db)
	userRepo := repository.NewUserRepository(db)

	verificationSvc := service.NewVerificationService(doctorRepo, cacheSvc, metricsSvc, logr)
	dashboardSvc := service.NewDashboardService(verificationSvc, cacheSvc, cfg.Dashboard.CacheTTL, logr)
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
	})
	subAdminSvc := service.NewSubAdminService(userRepo, validate, logr)

	var exportSvc *service.ExportService
	if cfg.Exports.Enabled {
		exportSvc = service.NewExportService(verificationSvc, logr)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))

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

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.RegisterRoutes(r, cfg.APIPrefix, handler.Handlers{
		Auth:      handler.NewAuthHandler(authSvc),
		Doctors:   handler.NewDoctorHandler(verificationSvc, dashboardSvc, exportSvc),
		SubAdmins: handler.NewSubAdminHandler(subAdminSvc),
		Metrics:   handler.NewMetricsHandler(metricsSvc),
	}, authSvc, userRepo)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
