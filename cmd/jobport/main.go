package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/jobport/jobport/internal/analytics"
	"github.com/jobport/jobport/internal/applications"
	"github.com/jobport/jobport/internal/app"
	"github.com/jobport/jobport/internal/audit"
	"github.com/jobport/jobport/internal/auth"
	"github.com/jobport/jobport/internal/authz"
	"github.com/jobport/jobport/internal/content"
	"github.com/jobport/jobport/internal/jobs"
	"github.com/jobport/jobport/internal/notify"
	"github.com/jobport/jobport/internal/observability"
	"github.com/jobport/jobport/internal/platform/db"
	"github.com/jobport/jobport/internal/shared"
	"github.com/jobport/jobport/internal/users"
	"github.com/jobport/jobport/internal/view"
	"github.com/jobport/jobport/tasks"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "jobport_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	templates, err := view.NewEngine()
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}

	auditLogger := audit.NewLogger(dbpool)

	taskClient, err := tasks.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("create task client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := taskClient.Close(); err != nil {
			logger.Warn("task client close", slog.Any("error", err))
		}
	}()

	analyticsRepo := analytics.NewRepository(dbpool)
	analyticsCache := analytics.NewCache(redisClient, cfg.AnalyticsCacheTTL)
	if err := analyticsCache.ListenForInvalidation(ctx, ""); err != nil {
		logger.Warn("subscribe analytics invalidation", slog.Any("error", err))
	}
	analyticsService := analytics.NewService(analyticsRepo, analyticsCache)
	analyticsHandler := analytics.NewHandler(logger, analyticsService)

	authRepo := auth.NewRepository(dbpool)
	authService := auth.NewService(authRepo, analyticsService)
	authHandler := auth.NewHandler(logger, authService, templates, sessionManager, csrfManager)

	usersRepo := users.NewRepository(dbpool, auditLogger)
	usersService := users.NewService(usersRepo, analyticsService)
	usersHandler := users.NewHandler(logger, usersService)
	profileHandler := users.NewPageHandler(logger, usersService, templates, csrfManager)

	notifyRepo := notify.NewRepository(dbpool)
	notifyService := notify.NewService(notifyRepo, taskClient, usersRepo, logger)
	notifyHandler := notify.NewHandler(logger, notifyService, templates, csrfManager)

	jobsRepo := jobs.NewRepository(dbpool)
	jobsService := jobs.NewService(jobsRepo, notifyService, analyticsService, logger)

	applicationsRepo := applications.NewRepository(dbpool)
	applicationsService := applications.NewService(applicationsRepo, jobsRepo, analyticsService)
	applicationsHandler := applications.NewHandler(logger, applicationsService, templates, csrfManager)

	jobsHandler := jobs.NewHandler(logger, jobsService, applicationsService, templates, csrfManager)

	auditRepo := audit.NewRepository(dbpool)
	auditService := audit.NewService(auditRepo)
	auditHandler := audit.NewHandler(logger, auditService)

	contentRepo := content.NewRepository(dbpool, auditLogger)
	contentService := content.NewService(contentRepo)
	contentHandler := content.NewHandler(logger, contentService)

	policy := authz.NewPolicy()
	resolver := authz.NewSessionResolver(usersService)
	gate := authz.NewGate(policy, resolver, logger)

	metrics := observability.NewMetrics()

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	tasksHandler := tasks.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:              logger,
		Config:              cfg,
		Templates:           templates,
		SessionManager:      sessionManager,
		CSRFManager:         csrfManager,
		Gate:                gate,
		AuthHandler:         authHandler,
		ProfileHandler:      profileHandler,
		JobsHandler:         jobsHandler,
		ApplicationsHandler: applicationsHandler,
		NotifyHandler:       notifyHandler,
		UsersHandler:        usersHandler,
		ContentHandler:      contentHandler,
		AuditHandler:        auditHandler,
		AnalyticsHandler:    analyticsHandler,
		AnalyticsService:    analyticsService,
		TasksHandler:        tasksHandler,
		Stats:               analyticsRepo,
		Metrics:             metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
