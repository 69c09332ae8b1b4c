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

	"github.com/petroflow/petroflow/internal/app"
	"github.com/petroflow/petroflow/internal/auth"
	"github.com/petroflow/petroflow/internal/clients"
	"github.com/petroflow/petroflow/internal/dashboard"
	"github.com/petroflow/petroflow/internal/deliveries"
	"github.com/petroflow/petroflow/internal/drivers"
	"github.com/petroflow/petroflow/internal/observability"
	"github.com/petroflow/petroflow/internal/orders"
	"github.com/petroflow/petroflow/internal/platform/cache"
	"github.com/petroflow/petroflow/internal/platform/db"
	"github.com/petroflow/petroflow/internal/platform/storage"
	"github.com/petroflow/petroflow/internal/shared"
	"github.com/petroflow/petroflow/internal/tankers"
	"github.com/petroflow/petroflow/jobs"
	"github.com/petroflow/petroflow/report"
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

	sessionManager := shared.NewSessionManager(redisClient, "petroflow_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("jobs client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()

	avatarStore, err := storage.New(ctx, storage.Config{
		Endpoint:  cfg.MinioEndpoint,
		AccessKey: cfg.MinioAccessKey,
		SecretKey: cfg.MinioSecretKey,
		Bucket:    cfg.MinioBucket,
		UseSSL:    cfg.MinioUseSSL,
	})
	if err != nil {
		logger.Warn("minio unavailable, avatar uploads disabled", slog.Any("error", err))
		avatarStore = nil
	}

	statsCache := dashboard.NewCache(redisClient, cfg.DashboardCacheTTL)

	authRepo := auth.NewRepository(dbpool)
	otpStore := auth.NewOTPStore(redisClient)
	authService := auth.NewService(authRepo, otpStore, jobClient)
	authHandler := auth.NewHandler(logger, authService, sessionManager, csrfManager)

	clientsRepo := clients.NewRepository(dbpool)
	clientsService := clients.NewService(clientsRepo, statsCache)
	clientsHandler := clients.NewHandler(logger, clientsService)

	driversRepo := drivers.NewRepository(dbpool)
	driversService := drivers.NewService(driversRepo, avatarStore, statsCache)
	driversHandler := drivers.NewHandler(logger, driversService)

	tankersRepo := tankers.NewRepository(dbpool)
	tankersService := tankers.NewService(tankersRepo, statsCache)
	tankersHandler := tankers.NewHandler(logger, tankersService)

	ordersRepo := orders.NewRepository(dbpool)
	ordersService := orders.NewService(ordersRepo, statsCache)
	ordersHandler := orders.NewHandler(logger, ordersService)

	deliveriesRepo := deliveries.NewRepository(dbpool)
	deliveriesService := deliveries.NewService(deliveriesRepo, statsCache)
	pdfClient := report.NewClient(cfg.GotenbergURL)
	deliveriesHandler := deliveries.NewHandler(logger, deliveriesService, pdfClient)
	reportHandler := report.NewHandler(pdfClient, logger)

	dashboardService := dashboard.NewService(ordersRepo, deliveriesRepo, statsCache)
	dashboardHandler := dashboard.NewHandler(logger, dashboardService)

	metrics := observability.NewMetrics()

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		SessionManager:    sessionManager,
		CSRFManager:       csrfManager,
		AuthHandler:       authHandler,
		ClientsHandler:    clientsHandler,
		DriversHandler:    driversHandler,
		TankersHandler:    tankersHandler,
		OrdersHandler:     ordersHandler,
		DeliveriesHandler: deliveriesHandler,
		DashboardHandler:  dashboardHandler,
		JobHandler:        jobHandler,
		ReportHandler:     reportHandler,
		Metrics:           metrics,
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
