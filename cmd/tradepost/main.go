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

	"github.com/tradepost/tradepost/internal/app"
	"github.com/tradepost/tradepost/internal/categories"
	"github.com/tradepost/tradepost/internal/listings"
	"github.com/tradepost/tradepost/internal/observability"
	"github.com/tradepost/tradepost/internal/platform/cache"
	"github.com/tradepost/tradepost/internal/platform/db"
	"github.com/tradepost/tradepost/internal/selections"
	"github.com/tradepost/tradepost/internal/shared"
	"github.com/tradepost/tradepost/internal/users"
	"github.com/tradepost/tradepost/jobs"
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

	sessionManager := shared.NewSessionManager(redisClient, "tradepost_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	auditLogger := shared.NewAuditLogger(dbpool)

	usersRepo := users.NewRepository(dbpool)
	usersHandler := users.NewHandler(logger, usersRepo)

	categoriesRepo := categories.NewRepository(dbpool)
	categoriesService := categories.NewService(categoriesRepo, auditLogger)
	categoriesHandler := categories.NewHandler(logger, categoriesService)

	imageStore, err := listings.NewImageStore(cfg.MediaDir)
	if err != nil {
		logger.Error("init image store", slog.Any("error", err))
		os.Exit(1)
	}
	listingsRepo := listings.NewRepository(dbpool)
	listingsCache := listings.NewCache(redisClient, cfg.CatalogTTL)
	listingsService := listings.NewService(listingsRepo, listingsCache, auditLogger)
	listingsHandler := listings.NewHandler(logger, listingsService, imageStore, cfg.PageSize)

	selectionsRepo := selections.NewRepository(dbpool)
	selectionsService := selections.NewService(selectionsRepo, listingsRepo, auditLogger)
	selectionsHandler := selections.NewHandler(logger, selectionsService)

	metrics := observability.NewMetrics()

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobsClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("jobs client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobsClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, jobsClient, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		SessionManager:    sessionManager,
		CSRFManager:       csrfManager,
		Principals:        usersRepo,
		CategoriesHandler: categoriesHandler,
		ListingsHandler:   listingsHandler,
		SelectionsHandler: selectionsHandler,
		UsersHandler:      usersHandler,
		JobHandler:        jobHandler,
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
