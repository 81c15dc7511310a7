package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/warungpos/warungpos/internal/app"
	"github.com/warungpos/warungpos/internal/catalog"
	jobmetrics "github.com/warungpos/warungpos/internal/jobs"
	"github.com/warungpos/warungpos/internal/ledger"
	"github.com/warungpos/warungpos/internal/platform/cache"
	"github.com/warungpos/warungpos/internal/platform/db"
	"github.com/warungpos/warungpos/internal/reports"
	"github.com/warungpos/warungpos/internal/shared"
	"github.com/warungpos/warungpos/jobs"
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
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	auditLogger := shared.NewAuditLogger(pool)
	idempotencyStore := shared.NewIdempotencyStore(pool)

	catalogService := catalog.NewService(catalog.NewRepository(pool), auditLogger)
	ledgerService := ledger.NewService(ledger.NewRepository(pool), auditLogger)

	reportsCache := reports.NewCache(redisClient, cfg.ReportCacheTTL)
	reportsService := reports.NewService(reports.NewRepository(pool), reportsCache, cfg.Location())

	metrics := jobmetrics.NewMetrics(nil)

	stockJob := jobs.NewStockAlertScanJob(catalogService, logger, metrics)
	overdueJob := jobs.NewOverdueScanJob(ledgerService, logger, metrics)
	warmupJob := jobs.NewReportsWarmupJob(reportsService, logger, metrics)
	cleanupJob := jobs.NewIdempotencyCleanupJob(idempotencyStore, logger, metrics)

	cleanupTask, err := jobs.NewIdempotencyCleanupTask(jobs.IdempotencyCleanupPayload{RetentionHours: 48})
	if err != nil {
		logger.Error("build cleanup task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskStockAlertScan, Handler: stockJob.Handle},
			{Type: jobs.TaskOverdueScan, Handler: overdueJob.Handle},
			{Type: jobs.TaskReportsWarmup, Handler: warmupJob.Handle},
			{Type: jobs.TaskIdempotencyCleanup, Handler: cleanupJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "0 6 * * *", Task: jobs.NewStockAlertScanTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "30 6 * * *", Task: jobs.NewOverdueScanTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "0 3 * * *", Task: cleanupTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
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
