package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/studyshelf/studyshelf-api/api/swagger"
	"github.com/studyshelf/studyshelf-api/internal/feed"
	"github.com/studyshelf/studyshelf-api/internal/handler"
	"github.com/studyshelf/studyshelf-api/internal/middleware"
	"github.com/studyshelf/studyshelf-api/internal/models"
	"github.com/studyshelf/studyshelf-api/internal/repository"
	"github.com/studyshelf/studyshelf-api/internal/service"
	"github.com/studyshelf/studyshelf-api/pkg/cache"
	"github.com/studyshelf/studyshelf-api/pkg/config"
	"github.com/studyshelf/studyshelf-api/pkg/database"
	"github.com/studyshelf/studyshelf-api/pkg/logger"
	corsmiddleware "github.com/studyshelf/studyshelf-api/pkg/middleware/cors"
	reqidmiddleware "github.com/studyshelf/studyshelf-api/pkg/middleware/requestid"
	"github.com/studyshelf/studyshelf-api/pkg/storage"
)

// @title StudyShelf API
// @version 1.0.0
// @description Lecture file shelf for university departments
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := database.Migrate(cfg.Database); err != nil {
		logr.Sugar().Fatalw("migrations failed", "error", err)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("postgres connection failed", "error", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		// The API stays usable without Redis: views fall back to direct
		// aggregation and the live feed serves buffered history only.
		logr.Warn("redis unavailable, caching and live fan-out disabled", zap.Error(err))
		redisClient = nil
	} else {
		defer redisClient.Close() //nolint:errcheck
	}

	objectStore, err := storage.NewObjectStore(cfg.Storage.Dir, cfg.Storage.PublicBaseURL)
	if err != nil {
		logr.Sugar().Fatalw("object store init failed", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Storage.SignedURLSecret, cfg.Storage.SignedURLTTL)

	userRepo := repository.NewUserRepository(db)
	documentRepo := repository.NewDocumentRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsSvc := service.NewMetricsService()
	cacheRepo.SetMetricsRecorder(metricsSvc)
	validate := validator.New()

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
	})

	activitySvc := service.NewActivityService(activityRepo, cacheRepo, logr, service.ActivityServiceConfig{
		Channel:     cfg.Activity.Channel,
		RecentLimit: cfg.Activity.RecentLimit,
		Workers:     cfg.Activity.Workers,
	})
	activitySvc.Start(ctx)
	defer activitySvc.Stop()

	documentSvc := service.NewDocumentService(documentRepo, objectStore, signer, activitySvc, nil, logr, service.DocumentServiceConfig{
		MaxFileSize:     cfg.Storage.MaxFileSizeBytes,
		AllowedMIMEs:    cfg.Storage.AllowedMIMEs,
		APIPrefix:       cfg.APIPrefix,
		FetchBatchSize:  cfg.Fetch.BatchSize,
		FetchPagePacing: cfg.Fetch.PagePacing,
	})

	dashboardSvc := service.NewDashboardService(documentSvc, cacheRepo, logr, service.DashboardServiceConfig{
		CacheEnabled: cfg.Dashboard.CacheEnabled,
		CacheTTL:     cfg.Dashboard.CacheTTL,
	})
	documentSvc.SetDashboardInvalidator(dashboardSvc)

	hub := feed.NewHub(redisClient, logr, feed.HubConfig{
		Channel:  cfg.Activity.Channel,
		Capacity: cfg.Activity.FeedCapacity,
	})
	if seed, err := activityRepo.Recent(ctx, cfg.Activity.FeedCapacity); err != nil {
		logr.Warn("activity feed seed failed", zap.Error(err))
	} else {
		hub.Seed(seed)
	}
	go hub.Run(ctx)

	authHandler := handler.NewAuthHandler(authSvc)
	documentHandler := handler.NewDocumentHandler(documentSvc)
	dashboardHandler := handler.NewDashboardHandler(dashboardSvc)
	activityHandler := handler.NewActivityHandler(activitySvc, hub)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

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
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)

		authed := auth.Group("", middleware.JWT(authSvc))
		authed.POST("/logout", authHandler.Logout)
		authed.POST("/change-password", authHandler.ChangePassword)
		authed.GET("/me", authHandler.Me)
	}

	documents := api.Group("/documents")
	{
		// The download link carries its own signed token, so the route only
		// needs optional identity for activity attribution.
		documents.GET("/:id/download", middleware.OptionalJWT(authSvc), documentHandler.Download)

		authed := documents.Group("", middleware.JWT(authSvc))
		authed.POST("", documentHandler.Upload)
		authed.GET("", documentHandler.List)
		authed.DELETE("", documentHandler.Delete)
		authed.GET("/:id", documentHandler.Get)
	}

	dashboard := api.Group("/dashboard", middleware.JWT(authSvc))
	{
		dashboard.GET("/departments", dashboardHandler.Departments)
		dashboard.GET("/departments/:department/subjects", dashboardHandler.Subjects)
		dashboard.GET("/departments/:department/subjects/:subject/lectures", dashboardHandler.Lectures)
		dashboard.GET("/stats", dashboardHandler.Stats)
		dashboard.GET("/suggestions", dashboardHandler.Suggestions)
		dashboard.GET("/export", dashboardHandler.Export)
	}

	activity := api.Group("/activity")
	{
		activity.GET("", middleware.OptionalJWT(authSvc), activityHandler.Recent)
		activity.GET("/stream", middleware.OptionalJWT(authSvc), activityHandler.Stream)
		activity.POST("", middleware.JWT(authSvc), activityHandler.Record)
	}

	ops := api.Group("/ops", middleware.JWT(authSvc), middleware.RBAC(models.RoleAdmin))
	{
		ops.GET("/metrics", metricsHandler.Snapshot)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("server shutdown incomplete", zap.Error(err))
	}
	logr.Info("server stopped")
}
