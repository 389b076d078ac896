package main

import (
	"context"
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

	_ "github.com/tristudio/studio-scheduler-api/api/swagger"
	"github.com/tristudio/studio-scheduler-api/internal/handler"
	"github.com/tristudio/studio-scheduler-api/internal/middleware"
	"github.com/tristudio/studio-scheduler-api/internal/models"
	"github.com/tristudio/studio-scheduler-api/internal/repository"
	"github.com/tristudio/studio-scheduler-api/internal/service"
	"github.com/tristudio/studio-scheduler-api/pkg/cache"
	"github.com/tristudio/studio-scheduler-api/pkg/config"
	"github.com/tristudio/studio-scheduler-api/pkg/database"
	"github.com/tristudio/studio-scheduler-api/pkg/logger"
	corsmiddleware "github.com/tristudio/studio-scheduler-api/pkg/middleware/cors"
	reqidmiddleware "github.com/tristudio/studio-scheduler-api/pkg/middleware/requestid"
)

// @title Studio Scheduler API
// @version 1.0.0
// @description Weekly class schedule optimization for the studio network
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

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		// Caching is optional; everything recomputes from Postgres.
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	validate := validator.New()
	metrics := service.NewMetricsService()

	cacheRepo := repository.NewCacheRepository(redisClient)
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Scheduler.CacheTTL, logr, redisClient != nil)
	defer cacheRepo.Close() //nolint:errcheck

	historyRepo := repository.NewClassHistoryRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	userRepo := repository.NewUserRepository(db)

	rules := service.NewRuleSet(cfg.Scheduler, models.DefaultStudioCapacities)
	availability := service.NewStudioAvailability(rules.Capacities())
	performance := service.NewPerformanceService(rules, cacheSvc, logr)
	validatorSvc := service.NewValidatorService(rules, availability, logr)
	suggestion := service.NewSuggestionService(cfg.Suggestion, logr)
	optimizer := service.NewOptimizerService(rules, performance, availability,
		historyRepo, teacherRepo, suggestion, validatorSvc, validate, metrics, logr)

	historySvc := service.NewHistoryService(historyRepo, cacheSvc, logr)
	scheduleSvc := service.NewScheduleService(scheduleRepo, validatorSvc, validate, logr)
	teacherSvc := service.NewTeacherService(teacherRepo, validate, logr)
	authSvc := service.NewAuthService(userRepo, validate, cfg.JWT, logr)
	exportSvc := service.NewExportService(scheduleRepo, cfg.Exports, metrics, logr)
	exportSvc.Start(ctx)
	defer exportSvc.Stop()

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

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
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	registerRoutes(r, cfg, routeHandlers{
		auth:      handler.NewAuthHandler(authSvc),
		optimizer: handler.NewOptimizerHandler(optimizer, validatorSvc, performance, historySvc),
		schedules: handler.NewScheduleHandler(scheduleSvc, exportSvc),
		history:   handler.NewHistoryHandler(historySvc),
		teachers:  handler.NewTeacherHandler(teacherSvc),
		analytics: handler.NewAnalyticsHandler(performance, historySvc, scheduleSvc, metrics),
	}, authSvc)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}

type routeHandlers struct {
	auth      *handler.AuthHandler
	optimizer *handler.OptimizerHandler
	schedules *handler.ScheduleHandler
	history   *handler.HistoryHandler
	teachers  *handler.TeacherHandler
	analytics *handler.AnalyticsHandler
}

func registerRoutes(r *gin.Engine, cfg *config.Config, h routeHandlers, authSvc *service.AuthService) {
	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/login", h.auth.Login)
	auth.GET("/me", middleware.JWT(authSvc), h.auth.Me)
	auth.POST("/register", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleAdmin), h.auth.Register)

	protected := api.Group("", middleware.JWT(authSvc))

	optimizer := protected.Group("/optimizer")
	optimizer.POST("/run", middleware.RequireRoles(models.RoleAdmin, models.RoleManager), h.optimizer.Run)
	optimizer.POST("/validate", h.optimizer.Validate)
	optimizer.GET("/top-classes", h.optimizer.TopClasses)

	schedules := protected.Group("/schedules")
	schedules.GET("", h.schedules.List)
	schedules.POST("", middleware.RequireRoles(models.RoleAdmin, models.RoleManager), h.schedules.Save)
	schedules.GET("/:id", h.schedules.Get)
	schedules.PUT("/:id/classes/:classId", middleware.RequireRoles(models.RoleAdmin, models.RoleManager), h.schedules.UpdateClass)
	schedules.DELETE("/:id/classes/:classId", middleware.RequireRoles(models.RoleAdmin, models.RoleManager), h.schedules.DeleteClass)
	schedules.DELETE("/:id", middleware.RequireRoles(models.RoleAdmin), h.schedules.Delete)
	schedules.POST("/:id/exports", h.schedules.Export)
	schedules.GET("/:id/export.csv", h.schedules.DownloadCSV)

	history := protected.Group("/history")
	history.GET("", h.history.List)
	history.POST("/import", middleware.RequireRoles(models.RoleAdmin, models.RoleManager), h.history.Import)

	teachers := protected.Group("/teachers")
	teachers.GET("", h.teachers.List)
	teachers.GET("/:id", h.teachers.Get)
	teachers.POST("", middleware.RequireRoles(models.RoleAdmin, models.RoleManager), h.teachers.Create)
	teachers.PUT("/:id", middleware.RequireRoles(models.RoleAdmin, models.RoleManager), h.teachers.Update)
	teachers.DELETE("/:id", middleware.RequireRoles(models.RoleAdmin), h.teachers.Delete)

	analytics := protected.Group("/analytics")
	analytics.GET("/locations", h.analytics.Locations)
	analytics.GET("/schedules/:id/utilization", h.analytics.Utilization)
	analytics.GET("/system", h.analytics.System)
}
