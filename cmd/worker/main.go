package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/petroflow/petroflow/internal/app"
	"github.com/petroflow/petroflow/internal/auth"
	"github.com/petroflow/petroflow/internal/dashboard"
	"github.com/petroflow/petroflow/internal/deliveries"
	jobmetrics "github.com/petroflow/petroflow/internal/jobs"
	"github.com/petroflow/petroflow/internal/orders"
	"github.com/petroflow/petroflow/internal/platform/cache"
	"github.com/petroflow/petroflow/internal/platform/db"
	"github.com/petroflow/petroflow/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
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

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := jobmetrics.NewMetrics(nil)

	var mailer jobs.Mailer
	if cfg.SMTPHost != "" {
		mailer = &jobs.SMTPMailer{
			Addr: fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
			From: cfg.SMTPFrom,
		}
	} else {
		mailer = &jobs.LogMailer{Logger: logger}
	}

	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo, auth.NewOTPStore(redisClient), nil)

	statsCache := dashboard.NewCache(redisClient, cfg.DashboardCacheTTL)
	ordersRepo := orders.NewRepository(pool)
	deliveriesRepo := deliveries.NewRepository(pool)
	dashboardService := dashboard.NewService(ordersRepo, deliveriesRepo, statsCache)

	scanner := jobs.NewIntegrityScanner(pool)

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskTypeSendEmail, Handler: jobs.NewSendEmailHandler(mailer, logger, metrics)},
			{Type: jobs.TaskTypeDashboardWarmup, Handler: jobs.NewDashboardWarmupHandler(authService, dashboardService, logger, metrics)},
			{Type: jobs.TaskTypeIntegrityScan, Handler: jobs.NewIntegrityScanHandler(scanner, logger, metrics)},
			{Type: jobs.TaskTypeSessionCleanup, Handler: jobs.NewSessionCleanupHandler(authService, logger, metrics)},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "15 1 * * *", Task: jobs.NewDashboardWarmupTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "45 1 * * *", Task: jobs.NewIntegrityScanTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "0 2 * * *", Task: jobs.NewSessionCleanupTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
