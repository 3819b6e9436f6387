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

	_ "github.com/operai/workforce-api/api/swagger"
	"github.com/operai/workforce-api/internal/assistant"
	"github.com/operai/workforce-api/internal/handler"
	"github.com/operai/workforce-api/internal/llm"
	"github.com/operai/workforce-api/internal/middleware"
	"github.com/operai/workforce-api/internal/models"
	"github.com/operai/workforce-api/internal/repository"
	"github.com/operai/workforce-api/internal/service"
	"github.com/operai/workforce-api/pkg/cache"
	"github.com/operai/workforce-api/pkg/config"
	"github.com/operai/workforce-api/pkg/database"
	"github.com/operai/workforce-api/pkg/jobs"
	"github.com/operai/workforce-api/pkg/logger"
	corsmiddleware "github.com/operai/workforce-api/pkg/middleware/cors"
	reqidmiddleware "github.com/operai/workforce-api/pkg/middleware/requestid"
)

// @title OperAI Workforce API
// @version 0.1.0
// @description Workforce platform gateway with an intent-driven assistant
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()

	// Repositories.
	userRepo := repository.NewUserRepository(db)
	deptRepo := repository.NewDepartmentRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	leaveRepo := repository.NewLeaveRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	deadlineRepo := repository.NewDeadlineRequestRepository(db)
	announcementRepo := repository.NewAnnouncementRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	assistantMsgRepo := repository.NewAssistantMessageRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	// Assistant engine.
	engine := assistant.NewEngine(assistant.Stores{
		Users:         userRepo,
		Tasks:         taskRepo,
		Leaves:        leaveRepo,
		Attendance:    attendanceRepo,
		Deadlines:     deadlineRepo,
		Announcements: announcementRepo,
		Notifications: notificationRepo,
	}, assistant.DefaultCatalog(), validate, logr)

	llmClient := llm.Client(llm.NewOpenAIClient(cfg.Assistant, logr))
	if !cfg.Assistant.Enabled {
		llmClient = &llm.StaticClient{Reply: ""}
	}

	// Services.
	metricsSvc := service.NewMetricsService()
	notificationSvc := service.NewNotificationService(notificationRepo, jobs.QueueConfig{
		Workers:    cfg.Notifications.Workers,
		BufferSize: cfg.Notifications.BufferSize,
		MaxRetries: cfg.Notifications.MaxRetries,
	}, logr)
	notificationSvc.Start(context.Background())
	defer notificationSvc.Stop()

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "workforce-api",
	})
	userSvc := service.NewUserService(userRepo, deptRepo, validate, logr)
	taskSvc := service.NewTaskService(taskRepo, userRepo, notificationSvc, validate, logr)
	leaveSvc := service.NewLeaveService(leaveRepo, notificationSvc, validate, logr)
	attendanceSvc := service.NewAttendanceService(attendanceRepo, userRepo, validate, logr)
	deadlineSvc := service.NewDeadlineService(deadlineRepo, taskRepo, notificationSvc, validate, logr)
	announcementSvc := service.NewAnnouncementService(announcementRepo, notificationSvc, validate, logr)
	assistantSvc := service.NewAssistantService(engine, llmClient, assistantMsgRepo, userRepo, cfg.Assistant, validate, logr, metricsSvc.Registerer())
	dashboardSvc := service.NewDashboardService(cacheRepo, userRepo, taskRepo, leaveRepo, attendanceRepo, cfg.Dashboard, logr)

	// Handlers.
	authHandler := handler.NewAuthHandler(authSvc)
	userHandler := handler.NewUserHandler(userSvc)
	taskHandler := handler.NewTaskHandler(taskSvc)
	leaveHandler := handler.NewLeaveHandler(leaveSvc)
	attendanceHandler := handler.NewAttendanceHandler(attendanceSvc)
	deadlineHandler := handler.NewDeadlineHandler(deadlineSvc)
	announcementHandler := handler.NewAnnouncementHandler(announcementSvc)
	assistantHandler := handler.NewAssistantHandler(assistantSvc)
	notificationHandler := handler.NewNotificationHandler(notificationSvc)
	dashboardHandler := handler.NewDashboardHandler(dashboardSvc)

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

	managerial := middleware.RequireRoles(models.RoleAdmin, models.RoleHR, models.RoleTeamLead)
	adminHR := middleware.RequireRoles(models.RoleAdmin, models.RoleHR)

	api := r.Group(cfg.APIPrefix)
	{
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.Refresh)

			protected := auth.Group("", middleware.JWT(authSvc))
			protected.POST("/logout", authHandler.Logout)
			protected.POST("/change-password", authHandler.ChangePassword)
			protected.GET("/me", authHandler.Me)
		}

		secured := api.Group("", middleware.JWT(authSvc))
		{
			users := secured.Group("/users")
			users.GET("", managerial, userHandler.List)
			users.POST("", adminHR, userHandler.Create)
			users.GET("/export", adminHR, userHandler.Export)
			users.GET("/:id", middleware.RBAC("admin", "hr", "team_lead", "SELF"), userHandler.Get)

			departments := secured.Group("/departments")
			departments.GET("", userHandler.ListDepartments)
			departments.POST("", adminHR, userHandler.CreateDepartment)

			tasks := secured.Group("/tasks")
			tasks.POST("", managerial, taskHandler.Create)
			tasks.GET("", taskHandler.List)
			tasks.GET("/:id", taskHandler.Get)
			tasks.PATCH("/:id", taskHandler.Update)
			tasks.POST("/:id/reassign", managerial, taskHandler.Reassign)
			tasks.DELETE("/:id", adminHR, taskHandler.Delete)

			leaves := secured.Group("/leaves")
			leaves.POST("", leaveHandler.Apply)
			leaves.GET("", leaveHandler.List)
			leaves.POST("/:id/cancel", leaveHandler.Cancel)
			leaves.POST("/:id/approve", managerial, leaveHandler.Approve)
			leaves.POST("/:id/reject", managerial, leaveHandler.Reject)

			attendance := secured.Group("/attendance")
			attendance.POST("/check-in", attendanceHandler.CheckIn)
			attendance.POST("/check-out", attendanceHandler.CheckOut)
			attendance.PATCH("/work-mode", attendanceHandler.UpdateWorkMode)
			attendance.GET("", attendanceHandler.History)
			attendance.GET("/summary", attendanceHandler.Summary)

			deadlines := secured.Group("/deadline-requests")
			deadlines.POST("", deadlineHandler.Request)
			deadlines.GET("", deadlineHandler.List)
			deadlines.POST("/:id/approve", managerial, deadlineHandler.Approve)
			deadlines.POST("/:id/reject", managerial, deadlineHandler.Reject)

			announcements := secured.Group("/announcements")
			announcements.POST("", managerial, announcementHandler.Create)
			announcements.GET("", announcementHandler.List)
			announcements.DELETE("/:id", managerial, announcementHandler.Delete)

			ai := secured.Group("/assistant")
			ai.POST("/chat", assistantHandler.Chat)
			ai.GET("/history", assistantHandler.History)
			ai.GET("/actions", assistantHandler.Catalog)

			notifications := secured.Group("/notifications")
			notifications.GET("", notificationHandler.List)
			notifications.GET("/unread-count", notificationHandler.UnreadCount)
			notifications.POST("/:id/read", notificationHandler.MarkRead)
			notifications.POST("/read-all", notificationHandler.MarkAllRead)

			if cfg.Dashboard.Enabled {
				dashboard := secured.Group("/dashboard", managerial)
				dashboard.GET("/stats", dashboardHandler.Stats)
				dashboard.DELETE("/cache", dashboardHandler.Invalidate)
			}
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
