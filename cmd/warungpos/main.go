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

	"github.com/warungpos/warungpos/internal/app"
	"github.com/warungpos/warungpos/internal/catalog"
	"github.com/warungpos/warungpos/internal/ledger"
	"github.com/warungpos/warungpos/internal/observability"
	"github.com/warungpos/warungpos/internal/platform/cache"
	"github.com/warungpos/warungpos/internal/platform/db"
	"github.com/warungpos/warungpos/internal/reports"
	"github.com/warungpos/warungpos/internal/sales"
	"github.com/warungpos/warungpos/internal/settings"
	"github.com/warungpos/warungpos/internal/shared"
	"github.com/warungpos/warungpos/jobs"
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
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	auditLogger := shared.NewAuditLogger(dbpool)
	idempotencyStore := shared.NewIdempotencyStore(dbpool)

	catalogRepo := catalog.NewRepository(dbpool)
	catalogService := catalog.NewService(catalogRepo, auditLogger)
	catalogHandler := catalog.NewHandler(logger, catalogService)

	ledgerRepo := ledger.NewRepository(dbpool)
	ledgerService := ledger.NewService(ledgerRepo, auditLogger)
	ledgerHandler := ledger.NewHandler(logger, ledgerService)

	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	salesRepo := sales.NewRepository(dbpool)
	salesService := sales.NewService(sales.ServiceParams{
		Store:    salesRepo,
		Catalog:  catalogService,
		Ledger:   ledgerService,
		Idem:     idempotencyStore,
		Enqueuer: jobClient,
		Audit:    auditLogger,
		Logger:   logger,
	})

	settingsRepo := settings.NewRepository(dbpool)
	settingsService := settings.NewService(settingsRepo, catalogService, ledgerService, salesService, auditLogger)
	settingsHandler := settings.NewHandler(logger, settingsService)

	salesHandler := sales.NewHandler(logger, salesService, catalogService, settingsService)

	reportsRepo := reports.NewRepository(dbpool)
	reportsCache := reports.NewCache(redisClient, cfg.ReportCacheTTL)
	reportsService := reports.NewService(reportsRepo, reportsCache, cfg.Location())
	reportsHandler := reports.NewHandler(logger, reportsService)

	metrics := observability.NewMetrics()

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		CatalogHandler:  catalogHandler,
		LedgerHandler:   ledgerHandler,
		SalesHandler:    salesHandler,
		ReportsHandler:  reportsHandler,
		SettingsHandler: settingsHandler,
		JobHandler:      jobHandler,
		Metrics:         metrics,
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
