package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/mzurek/ward-roster-api/api/swagger"
	"github.com/mzurek/ward-roster-api/internal/handler"
	"github.com/mzurek/ward-roster-api/internal/middleware"
	"github.com/mzurek/ward-roster-api/internal/models"
	"github.com/mzurek/ward-roster-api/internal/repository"
	"github.com/mzurek/ward-roster-api/internal/service"
	"github.com/mzurek/ward-roster-api/pkg/cache"
	"github.com/mzurek/ward-roster-api/pkg/config"
	"github.com/mzurek/ward-roster-api/pkg/database"
	"github.com/mzurek/ward-roster-api/pkg/jobs"
	"github.com/mzurek/ward-roster-api/pkg/logger"
	corsmiddleware "github.com/mzurek/ward-roster-api/pkg/middleware/cors"
	reqidmiddleware "github.com/mzurek/ward-roster-api/pkg/middleware/requestid"
	"github.com/mzurek/ward-roster-api/pkg/storage"
)

// @title Ward Roster API
// @version 1.0.0
// @description Nurse roster scheduling backend: month revisions, hour accounting and constraint validation
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
	defer db.Close()

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	// Persistence and caching.
	revisionRepo := repository.NewRevisionRepository(db)
	userRepo := repository.NewUserRepository(db)
	exportJobRepo := repository.NewExportJobRepository(db)

	var cacheRepo *repository.CacheRepository
	if cfg.Views.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, view cache disabled", "error", err)
		} else {
			cacheRepo = repository.NewCacheRepository(redisClient, logr)
			defer cacheRepo.Close() //nolint:errcheck
		}
	}
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Views.CacheTTL, logr, cfg.Views.Enabled && cacheRepo != nil)

	// Scheduling engine.
	catalogue := models.DefaultShifts
	extendSvc := service.NewExtendService(catalogue, logr)
	hoursSvc := service.NewHoursService(catalogue)
	validatorSvc := service.NewValidatorService(catalogue, hoursSvc, service.ValidatorConfig{
		DayChildrenPerWorker:   cfg.Engine.DayChildrenPerWorker,
		NightChildrenPerWorker: cfg.Engine.NightChildrenPerWorker,
		OvertimeToleranceHours: cfg.Engine.OvertimeToleranceHours,
	}, logr)
	editSvc := service.NewEditService(catalogue)
	revisionSvc := service.NewRevisionService(revisionRepo, extendSvc, catalogue, logr)
	rosterSvc := service.NewRosterService(revisionSvc, extendSvc, hoursSvc, validatorSvc, editSvc, cacheSvc, metricsSvc, logr, service.RosterConfig{
		HistoryCapacity: cfg.Engine.HistoryCapacity,
		CacheTTL:        cfg.Views.CacheTTL,
	})
	importSvc := service.NewImportService(catalogue, logr)

	// Auth and user management.
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            "ward-roster-api",
	})
	userSvc := service.NewUserService(userRepo, validate, logr)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	metricsHandler := handler.NewMetricsHandler(metricsSvc)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	authHandler := handler.NewAuthHandler(authSvc)
	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/logout", middleware.JWT(authSvc), authHandler.Logout)
		auth.POST("/change-password", middleware.JWT(authSvc), authHandler.ChangePassword)
		auth.GET("/me", middleware.JWT(authSvc), authHandler.Me)
	}

	userHandler := handler.NewUserHandler(userSvc)
	users := api.Group("/users", middleware.JWT(authSvc))
	{
		users.GET("", middleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin), userHandler.List)
		users.GET("/:id", middleware.RBAC("SUPERADMIN", "ADMIN", "SELF"), userHandler.Get)
		users.POST("", middleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin), userHandler.Create)
		users.PUT("/:id", middleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin), userHandler.Update)
		users.DELETE("/:id", middleware.RequireRoles(models.RoleSuperAdmin), userHandler.Delete)
	}

	rosterHandler := handler.NewRosterHandler(rosterSvc)
	importHandler := handler.NewImportHandler(importSvc, rosterSvc)
	schedules := api.Group("/schedules", middleware.JWT(authSvc), middleware.WithResponseMeta())
	{
		canEdit := middleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin, models.RoleCoordinator)
		schedules.GET("/:year/:month", rosterHandler.Get)
		schedules.PUT("/:year/:month", canEdit, middleware.Audit(userRepo, "schedule.save", "schedule"), rosterHandler.Save)
		schedules.POST("/:year/:month/edits", canEdit, rosterHandler.Edit)
		schedules.POST("/:year/:month/undo", canEdit, rosterHandler.Undo)
		schedules.POST("/:year/:month/redo", canEdit, rosterHandler.Redo)
		schedules.POST("/:year/:month/import", canEdit, middleware.Audit(userRepo, "schedule.import", "schedule"), importHandler.Upload)
	}

	if cfg.Exports.Enabled {
		exportStorage, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
		if err != nil {
			logr.Sugar().Fatalw("failed to prepare export storage", "error", err)
		}
		signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
		exportSvc := service.NewExportService(rosterSvc, exportStorage, signer, service.ExportConfig{
			APIPrefix: cfg.APIPrefix,
			ResultTTL: cfg.Exports.SignedURLTTL,
		}, logr, nil, nil)
		exportWorker := service.NewExportWorker(exportJobRepo, exportSvc, cfg.Exports.WorkerRetries, logr)
		queue := jobs.NewQueue("exports", exportWorker.Handle, jobs.QueueConfig{
			Workers:    cfg.Exports.WorkerConcurrency,
			MaxRetries: cfg.Exports.WorkerRetries,
			Logger:     logr,
		})
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		queue.Start(ctx)
		defer queue.Stop()

		exportJobSvc := service.NewExportJobService(exportJobRepo, queue, exportSvc, logr, service.ExportJobServiceConfig{
			ResultTTL:       cfg.Exports.SignedURLTTL,
			CleanupInterval: cfg.Exports.CleanupInterval,
			MaxRetries:      cfg.Exports.WorkerRetries,
		})
		exportJobSvc.RecoverPendingJobs(ctx)
		exportJobSvc.StartCleanup(ctx)

		exportHandler := handler.NewExportHandler(exportJobSvc)
		exports := api.Group("/exports", middleware.JWT(authSvc))
		{
			exports.POST("", middleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin, models.RoleCoordinator), exportHandler.Create)
			exports.GET("/:id", exportHandler.Status)
		}
		api.GET("/export/:token", exportHandler.Download)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
