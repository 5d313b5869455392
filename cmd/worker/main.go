package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/suppliers-api/internal/app"
	jobmetrics "github.com/odyssey-erp/suppliers-api/internal/jobs"
	"github.com/odyssey-erp/suppliers-api/internal/platform/db"
	"github.com/odyssey-erp/suppliers-api/internal/shared"
	"github.com/odyssey-erp/suppliers-api/jobs"
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
	if err := checkWorkerConfig(cfg); err != nil {
		logger.Error("worker config", slog.Any("error", err))
		os.Exit(1)
	}

	pool, err := db.New(ctx, cfg.DBDSN, int32(cfg.DBMaxConns))
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	auditJob := jobs.NewSupplierAuditJob(shared.NewAuditLogger(pool), logger, jobmetrics.NewMetrics(nil))

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskTypeSupplierAudit, Handler: auditJob.Handle},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("starting worker", slog.String("redis", cfg.RedisAddr))
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}

// checkWorkerConfig rejects setups the audit worker cannot serve: it needs
// the queue and writes audit_logs through pgx.
func checkWorkerConfig(cfg *app.Config) error {
	if !cfg.QueueEnabled() {
		return errors.New("REDIS_ADDR must be set for the worker")
	}
	if !db.IsPostgres(cfg.DBDriver) {
		return errors.New("the audit worker requires a PostgreSQL DB_DRIVER")
	}
	return nil
}
